package services

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/itwoqa/bugtracker/internal/models"
	"github.com/itwoqa/bugtracker/pkg/response"
)

func assertAppError(t *testing.T, err error, status int) *response.AppError {
	t.Helper()
	var appErr *response.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *response.AppError, got %T: %v", err, err)
	}
	if appErr.HTTPStatus != status {
		t.Fatalf("expected HTTP status %d, got %d (%s)", status, appErr.HTTPStatus, appErr.Message)
	}
	return appErr
}

func createTestBug(t *testing.T, svc *BugService) *models.Bug {
	t.Helper()
	bug, err := svc.Create(&CreateBugRequest{
		Title:       "Login button unresponsive",
		Description: "Clicking login does nothing on Firefox",
	}, "Alice", "alice@example.com")
	if err != nil {
		t.Fatalf("failed to create bug: %v", err)
	}
	return bug
}

func TestBugService_Create_Defaults(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newBugService(db)

	bug := createTestBug(t, svc)

	if bug.ID == "" {
		t.Error("bug should get a generated ID")
	}
	if bug.TicketNumber != "ITWO-QA-0001" {
		t.Errorf("TicketNumber = %q, expected %q", bug.TicketNumber, "ITWO-QA-0001")
	}
	if bug.Status != models.StatusReported {
		t.Errorf("Status = %q, expected %q", bug.Status, models.StatusReported)
	}
	if bug.Priority != models.PriorityMedium {
		t.Errorf("Priority = %q, expected %q", bug.Priority, models.PriorityMedium)
	}
	if bug.ReporterName != "Alice" || bug.ReporterEmail != "alice@example.com" {
		t.Errorf("reporter = %s <%s>, expected Alice <alice@example.com>", bug.ReporterName, bug.ReporterEmail)
	}
}

func TestBugService_Create_Validation(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newBugService(db)

	cases := []struct {
		name  string
		req   *CreateBugRequest
		rName string
		email string
	}{
		{"missing title", &CreateBugRequest{}, "Alice", "alice@example.com"},
		{"missing reporter", &CreateBugRequest{Title: "Broken"}, "", ""},
		{"bad priority", &CreateBugRequest{Title: "Broken", Priority: "sev1"}, "Alice", "alice@example.com"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(tc.req, tc.rName, tc.email)
			assertAppError(t, err, 400)
		})
	}

	var count int64
	db.Model(&models.Bug{}).Count(&count)
	if count != 0 {
		t.Errorf("rejected creations should not persist, found %d bugs", count)
	}
}

func TestBugService_Create_SequentialTicketNumbers(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newBugService(db)

	for i := 1; i <= 3; i++ {
		bug, err := svc.Create(&CreateBugRequest{Title: fmt.Sprintf("Bug %d", i)}, "Alice", "alice@example.com")
		if err != nil {
			t.Fatalf("create %d failed: %v", i, err)
		}
		want := fmt.Sprintf("ITWO-QA-%04d", i)
		if bug.TicketNumber != want {
			t.Errorf("TicketNumber = %q, expected %q", bug.TicketNumber, want)
		}
	}
}

func TestBugService_Create_ConcurrentDistinctNumbers(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newBugService(db)

	const workers = 10
	numbers := make(chan string, workers)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			bug, err := svc.Create(&CreateBugRequest{Title: fmt.Sprintf("Concurrent %d", n)}, "Alice", "alice@example.com")
			if err != nil {
				t.Errorf("create failed: %v", err)
				return
			}
			numbers <- bug.TicketNumber
		}(i)
	}
	wg.Wait()
	close(numbers)

	seen := make(map[string]bool)
	for n := range numbers {
		if seen[n] {
			t.Errorf("duplicate ticket number: %s", n)
		}
		seen[n] = true
	}
	if len(seen) != workers {
		t.Errorf("expected %d distinct numbers, got %d", workers, len(seen))
	}
}

func TestBugService_Create_PublishesEvent(t *testing.T) {
	db := newTestDB(t)
	svc, hub := newBugService(db)

	ch := hub.Subscribe("watcher")
	bug := createTestBug(t, svc)

	select {
	case event := <-ch:
		if event.Type != EventBugCreated {
			t.Errorf("Type = %q, expected %q", event.Type, EventBugCreated)
		}
		created, ok := event.Data.(*models.Bug)
		if !ok || created.ID != bug.ID {
			t.Error("event payload should be the created bug")
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("timed out waiting for bugCreated event")
	}
}

func TestBugService_List_NewestFirst(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newBugService(db)

	first := createTestBug(t, svc)
	// Backdate the first bug so ordering is unambiguous
	db.Model(&models.Bug{}).Where("id = ?", first.ID).
		Update("created_at", time.Now().Add(-time.Hour))
	second := createTestBug(t, svc)

	bugs, err := svc.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(bugs) != 2 {
		t.Fatalf("expected 2 bugs, got %d", len(bugs))
	}
	if bugs[0].ID != second.ID || bugs[1].ID != first.ID {
		t.Error("bugs should be ordered newest first")
	}
}

func TestBugService_GetByID_NotFound(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newBugService(db)

	_, err := svc.GetByID("missing-id")
	appErr := assertAppError(t, err, 404)
	if appErr.Message != "Bug not found" {
		t.Errorf("message = %q, expected %q", appErr.Message, "Bug not found")
	}
}

func TestBugService_Update_FullReplace(t *testing.T) {
	db := newTestDB(t)
	svc, hub := newBugService(db)

	bug := createTestBug(t, svc)
	ch := hub.Subscribe("watcher")

	updated, err := svc.Update(bug.ID, &UpdateBugRequest{
		Title:    "Login button unresponsive on all browsers",
		Status:   models.StatusInProgress,
		Assignee: "Bob",
		Priority: models.PriorityHigh,
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if updated.Title != "Login button unresponsive on all browsers" {
		t.Errorf("Title not replaced: %q", updated.Title)
	}
	if updated.Description != "" {
		t.Errorf("omitted description should be cleared, got %q", updated.Description)
	}
	if updated.Status != models.StatusInProgress {
		t.Errorf("Status = %q, expected %q", updated.Status, models.StatusInProgress)
	}
	if updated.Assignee != "Bob" {
		t.Errorf("Assignee = %q, expected %q", updated.Assignee, "Bob")
	}
	if updated.TicketNumber != bug.TicketNumber {
		t.Error("ticket number must never change")
	}

	select {
	case event := <-ch:
		if event.Type != EventBugUpdated {
			t.Errorf("Type = %q, expected %q", event.Type, EventBugUpdated)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("timed out waiting for bugUpdated event")
	}
}

func TestBugService_Update_InvalidTransition(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newBugService(db)

	bug := createTestBug(t, svc)

	_, err := svc.Update(bug.ID, &UpdateBugRequest{
		Title:    bug.Title,
		Status:   models.StatusTesting, // reported cannot jump straight to testing
		Priority: bug.Priority,
	})
	assertAppError(t, err, 400)

	fresh, _ := svc.GetByID(bug.ID)
	if fresh.Status != models.StatusReported {
		t.Errorf("rejected update must not change status, got %q", fresh.Status)
	}
}

func TestBugService_Update_ResolvedIsFrozen(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newBugService(db)

	bug := createTestBug(t, svc)
	db.Model(&models.Bug{}).Where("id = ?", bug.ID).Update("status", models.StatusResolved)

	_, err := svc.Update(bug.ID, &UpdateBugRequest{
		Title:    "New title",
		Status:   models.StatusResolved,
		Priority: models.PriorityLow,
	})
	appErr := assertAppError(t, err, 403)
	if appErr.Message != "Cannot edit a resolved bug" {
		t.Errorf("message = %q, expected %q", appErr.Message, "Cannot edit a resolved bug")
	}

	fresh, _ := svc.GetByID(bug.ID)
	if fresh.Title != bug.Title {
		t.Error("rejected update must leave the bug untouched")
	}
}

func TestBugService_Delete_StatusGate(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newBugService(db)

	cases := []struct {
		status  string
		allowed bool
	}{
		{models.StatusReported, true},
		{models.StatusReturned, true},
		{models.StatusInProgress, false},
		{models.StatusTesting, false},
		{models.StatusResolved, false},
	}

	for _, tc := range cases {
		t.Run(tc.status, func(t *testing.T) {
			bug := createTestBug(t, svc)
			db.Model(&models.Bug{}).Where("id = ?", bug.ID).Update("status", tc.status)

			err := svc.Delete(bug.ID)
			if tc.allowed {
				if err != nil {
					t.Fatalf("delete in %s should succeed: %v", tc.status, err)
				}
				if _, err := svc.GetByID(bug.ID); err == nil {
					t.Error("deleted bug should be gone")
				}
			} else {
				appErr := assertAppError(t, err, 403)
				if appErr.Message != "Can only delete bugs in Reported or Returned status" {
					t.Errorf("unexpected message: %q", appErr.Message)
				}
				if _, err := svc.GetByID(bug.ID); err != nil {
					t.Error("rejected delete must keep the bug")
				}
			}
		})
	}
}

func TestBugService_Delete_CascadesComments(t *testing.T) {
	db := newTestDB(t)
	svc, hub := newBugService(db)
	comments := NewCommentService(db, hub)

	bug := createTestBug(t, svc)
	if _, err := comments.Add(bug.ID, "Alice", "Still broken"); err != nil {
		t.Fatalf("failed to add comment: %v", err)
	}

	ch := hub.Subscribe("watcher")
	if err := svc.Delete(bug.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	var count int64
	db.Model(&models.Comment{}).Where("bug_id = ?", bug.ID).Count(&count)
	if count != 0 {
		t.Errorf("comments should be removed with the bug, found %d", count)
	}

	select {
	case event := <-ch:
		if event.Type != EventBugDeleted {
			t.Errorf("Type = %q, expected %q", event.Type, EventBugDeleted)
		}
		data, ok := event.Data.(map[string]string)
		if !ok || data["id"] != bug.ID {
			t.Error("bugDeleted payload should carry the bug id")
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("timed out waiting for bugDeleted event")
	}
}
