package history

import (
	"fmt"
	"testing"
	"time"

	"skyshield/internal/model"
)

func TestStoreEvictsOldest(t *testing.T) {
	s := NewStore(3)
	for i := 0; i < 5; i++ {
		s.Add(model.Assessment{ID: fmt.Sprintf("a%d", i)})
	}
	got := s.List(0)
	if len(got) != 3 {
		t.Fatalf("length: got %d, want 3", len(got))
	}
	if got[0].ID != "a2" || got[2].ID != "a4" {
		t.Fatalf("eviction order wrong: %s..%s", got[0].ID, got[2].ID)
	}
}

func TestStoreListLimit(t *testing.T) {
	s := NewStore(10)
	for i := 0; i < 4; i++ {
		s.Add(model.Assessment{ID: fmt.Sprintf("a%d", i)})
	}
	got := s.List(2)
	if len(got) != 2 || got[0].ID != "a2" || got[1].ID != "a3" {
		t.Fatalf("limit slice wrong: %+v", got)
	}
	if n := len(s.List(100)); n != 4 {
		t.Fatalf("oversized limit: got %d, want 4", n)
	}
}

func TestStoreSince(t *testing.T) {
	s := NewStore(10)
	base := time.Now().UTC()
	s.Add(model.Assessment{ID: "old", Timestamp: base.Add(-time.Hour)})
	s.Add(model.Assessment{ID: "new", Timestamp: base.Add(time.Hour)})

	got := s.Since(base)
	if len(got) != 1 || got[0].ID != "new" {
		t.Fatalf("since filter wrong: %+v", got)
	}
}

func TestStoreClear(t *testing.T) {
	s := NewStore(10)
	s.Add(model.Assessment{ID: "a"})
	s.Clear()
	if len(s.List(0)) != 0 {
		t.Fatal("clear left entries behind")
	}
}
