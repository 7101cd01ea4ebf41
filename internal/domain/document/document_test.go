package document

import (
	"strings"
	"testing"
	"time"
)

func TestNew_Valid(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	doc, err := New(12, 5, "oai:de:slub-dresden:db:id-1", "Faust", 3, "2", "Goethe", created, time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.UID() != 12 || doc.PID() != 5 {
		t.Errorf("UID/PID = %d/%d", doc.UID(), doc.PID())
	}
	if !doc.HasParent() || doc.PartOf() != 3 {
		t.Errorf("PartOf() = %d", doc.PartOf())
	}
	if !doc.UpdatedAt().Equal(created) {
		t.Errorf("UpdatedAt() = %v, want createdAt", doc.UpdatedAt())
	}
	if !doc.IsNew() {
		t.Error("IsNew() = false for unmodified document")
	}
}

func TestNew_Updated(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	doc, err := New(1, 1, "r", "", 0, "", "", created, created.Add(time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.IsNew() {
		t.Error("IsNew() = true for modified document")
	}
	if doc.HasParent() {
		t.Error("HasParent() = true for toplevel document")
	}
}

func TestNew_Invalid(t *testing.T) {
	_, err := New(0, 1, "r", "", 0, "", "", time.Now(), time.Time{})
	if err == nil || !strings.Contains(err.Error(), "uid") {
		t.Errorf("zero uid: error = %v", err)
	}
	_, err = New(1, 1, "", "", 0, "", "", time.Now(), time.Time{})
	if err == nil || !strings.Contains(err.Error(), "record id") {
		t.Errorf("empty record id: error = %v", err)
	}
}

func TestWithSuperiorTitle(t *testing.T) {
	doc, _ := New(1, 1, "r", "", 2, "", "", time.Now(), time.Time{})
	titled := doc.WithSuperiorTitle("Collected Works")
	if titled.SuperiorTitle() != "Collected Works" {
		t.Errorf("SuperiorTitle() = %q", titled.SuperiorTitle())
	}
	if doc.SuperiorTitle() != "" {
		t.Error("WithSuperiorTitle mutated receiver")
	}
}
