package storage

import (
	"path/filepath"
	"testing"
	"time"

	"maker_go/internal/domain"
)

func setupTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := NewJournal(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("failed to open test journal: %v", err)
	}
	return j
}

func TestJournalRecordAndRecent(t *testing.T) {
	j := setupTestJournal(t)

	entries := []*domain.JournalEntry{
		{Event: domain.JournalPlaced, Symbol: "tPNKUSD", OrderID: "1", Side: "buy", Amount: "100", Price: "0.10"},
		{Event: domain.JournalFilled, Symbol: "tPNKUSD", OrderID: "1", Side: "buy", Amount: "100", Price: "0.10"},
		{Event: domain.JournalRecentered, Symbol: "tPNKUSD", Price: "0.10"},
	}
	for _, e := range entries {
		if err := j.Record(e); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	recent, err := j.Recent(2)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("Recent returned %d entries, want 2", len(recent))
	}
	// Newest first
	if recent[0].Event != domain.JournalRecentered {
		t.Errorf("Newest event = %s, want %s", recent[0].Event, domain.JournalRecentered)
	}
}

func TestJournalBySymbol(t *testing.T) {
	j := setupTestJournal(t)

	j.Record(&domain.JournalEntry{Event: domain.JournalPlaced, Symbol: "tPNKUSD", OrderID: "1"})
	j.Record(&domain.JournalEntry{Event: domain.JournalPlaced, Symbol: "tBTCUSD", OrderID: "2"})

	got, err := j.BySymbol("tPNKUSD", time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("BySymbol failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("BySymbol returned %d entries, want 1", len(got))
	}
	if got[0].OrderID != "1" {
		t.Errorf("OrderID = %s, want 1", got[0].OrderID)
	}
}
