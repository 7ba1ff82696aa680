package repo

import (
	"math/rand"
	"testing"
	"time"
)

func TestDemoRecords(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	recs := DemoRecords("alice", 12, now, rand.New(rand.NewSource(7)))

	if len(recs) != 12 {
		t.Fatalf("want 12 records, got %d", len(recs))
	}
	seen := map[string]bool{}
	for i, r := range recs {
		if r.ID == "" || seen[r.ID] {
			t.Fatalf("record %d has empty or duplicate id %q", i, r.ID)
		}
		seen[r.ID] = true
		if r.Account != "alice" {
			t.Fatalf("record %d belongs to %q", i, r.Account)
		}
		if r.Amount < 120 || r.Amount > 4999 {
			t.Fatalf("record %d amount out of range: %v", i, r.Amount)
		}
		if i > 0 && !r.CreatedAt.After(recs[i-1].CreatedAt) {
			t.Fatalf("records should be oldest first, %d not after %d", i, i-1)
		}
	}
	if !recs[11].CreatedAt.Equal(now) {
		t.Fatalf("newest record should be stamped now, got %s", recs[11].CreatedAt)
	}
}
