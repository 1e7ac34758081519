package services

import (
	"sync"
	"testing"

	"github.com/itwoqa/bugtracker/internal/config"
)

var testTicketConfig = config.TicketConfig{Prefix: "ITWO-QA", Width: 4}

func TestTicketService_Format(t *testing.T) {
	svc := &TicketService{prefix: "ITWO-QA", width: 4}

	cases := []struct {
		value    int64
		expected string
	}{
		{1, "ITWO-QA-0001"},
		{42, "ITWO-QA-0042"},
		{999, "ITWO-QA-0999"},
		{10000, "ITWO-QA-10000"},
	}

	for _, tc := range cases {
		if got := svc.Format(tc.value); got != tc.expected {
			t.Errorf("Format(%d) = %q, expected %q", tc.value, got, tc.expected)
		}
	}
}

func TestTicketService_NextNumber_Sequential(t *testing.T) {
	db := newTestDB(t)
	svc := newTicketService(db)

	expected := []string{"ITWO-QA-0001", "ITWO-QA-0002", "ITWO-QA-0003"}
	for _, want := range expected {
		got, err := svc.NextNumber()
		if err != nil {
			t.Fatalf("NextNumber failed: %v", err)
		}
		if got != want {
			t.Errorf("NextNumber = %q, expected %q", got, want)
		}
	}
}

func TestTicketService_NextNumber_ConcurrentUnique(t *testing.T) {
	db := newTestDB(t)
	svc := newTicketService(db)

	const workers = 20
	results := make(chan string, workers)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			number, err := svc.NextNumber()
			if err != nil {
				t.Errorf("NextNumber failed: %v", err)
				return
			}
			results <- number
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[string]bool)
	for number := range results {
		if seen[number] {
			t.Errorf("duplicate ticket number issued: %s", number)
		}
		seen[number] = true
	}
	if len(seen) != workers {
		t.Errorf("expected %d distinct numbers, got %d", workers, len(seen))
	}
}

func TestTicketService_NextNumber_MissingSequence(t *testing.T) {
	db := newTestDB(t)
	db.Exec("DELETE FROM ticket_sequences")

	svc := newTicketService(db)
	if _, err := svc.NextNumber(); err == nil {
		t.Error("expected error when sequence row is missing")
	}
}

func TestNewTicketService_Defaults(t *testing.T) {
	svc := NewTicketService(nil, &config.TicketConfig{})

	if svc.prefix != "ITWO-QA" {
		t.Errorf("default prefix = %q, expected %q", svc.prefix, "ITWO-QA")
	}
	if svc.width != 4 {
		t.Errorf("default width = %d, expected 4", svc.width)
	}
}
