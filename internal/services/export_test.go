package services

import (
	"testing"
	"time"

	"github.com/itwoqa/bugtracker/internal/models"
)

func TestExportService_Filename(t *testing.T) {
	svc := NewExportService(nil)

	want := "bug-reports-" + time.Now().Format("2006-01-02") + ".xlsx"
	if got := svc.Filename(); got != want {
		t.Errorf("Filename = %q, expected %q", got, want)
	}
}

func TestExportService_BuildWorkbook(t *testing.T) {
	db := newTestDB(t)
	bugs, hub := newBugService(db)
	comments := NewCommentService(db, hub)
	svc := NewExportService(db)

	bug, err := bugs.Create(&CreateBugRequest{
		Title:       "Search results truncated",
		Description: "Only 10 of 50 results shown",
		Priority:    models.PriorityHigh,
		Assignee:    "Bob",
	}, "Alice", "alice@example.com")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	db.Model(&models.Bug{}).Where("id = ?", bug.ID).Update("status", models.StatusInProgress)

	c1, _ := comments.Add(bug.ID, "Bob", "Looking into it")
	db.Model(&models.Comment{}).Where("id = ?", c1.ID).
		Update("created_at", time.Now().Add(-time.Minute))
	comments.Add(bug.ID, "Alice", "Thanks")

	f, err := svc.BuildWorkbook()
	if err != nil {
		t.Fatalf("BuildWorkbook failed: %v", err)
	}
	defer f.Close()

	const sheet = "Bug Reports"

	header, err := f.GetCellValue(sheet, "A1")
	if err != nil {
		t.Fatalf("GetCellValue failed: %v", err)
	}
	if header != "Bug ID" {
		t.Errorf("A1 = %q, expected %q", header, "Bug ID")
	}

	checks := map[string]string{
		"A2": bug.TicketNumber,
		"B2": "Search results truncated",
		"D2": "In Progress",
		"E2": "High",
		"F2": "Alice",
		"G2": "alice@example.com",
		"H2": "Bob",
		"K2": "Bob: Looking into it | Alice: Thanks",
	}
	for cell, want := range checks {
		got, _ := f.GetCellValue(sheet, cell)
		if got != want {
			t.Errorf("%s = %q, expected %q", cell, got, want)
		}
	}
}

func TestExportService_BuildWorkbook_NoComments(t *testing.T) {
	db := newTestDB(t)
	bugs, _ := newBugService(db)
	svc := NewExportService(db)

	createTestBug(t, bugs)

	f, err := svc.BuildWorkbook()
	if err != nil {
		t.Fatalf("BuildWorkbook failed: %v", err)
	}
	defer f.Close()

	got, _ := f.GetCellValue("Bug Reports", "K2")
	if got != "No comments" {
		t.Errorf("K2 = %q, expected %q", got, "No comments")
	}
}

func TestDisplayLabel(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"reported", "Reported"},
		{"in-progress", "In Progress"},
		{"testing", "Testing"},
		{"critical", "Critical"},
	}

	for _, tc := range cases {
		if got := displayLabel(tc.in); got != tc.want {
			t.Errorf("displayLabel(%q) = %q, expected %q", tc.in, got, tc.want)
		}
	}
}
