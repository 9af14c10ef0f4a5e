package memory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Debashish4357/Personal-Finance-Aggregator/internal/bankfeed"
	"github.com/Debashish4357/Personal-Finance-Aggregator/internal/core"
)

func TestFetchDrainsQueue(t *testing.T) {
	s := New()
	account := core.Account{ID: 1}

	s.Seed(1,
		bankfeed.RawRecord{Description: "Zomato order", Amount: decimal.NewFromInt(500)},
		bankfeed.RawRecord{Description: "Uber ride", Amount: decimal.NewFromInt(300)},
	)

	got, err := s.Fetch(context.Background(), account)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}

	again, err := s.Fetch(context.Background(), account)
	if err != nil {
		t.Fatalf("second Fetch failed: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("expected drained queue, got %d records", len(again))
	}
}

func TestFetchIsolatesAccounts(t *testing.T) {
	s := New()
	s.Seed(1, bankfeed.RawRecord{Description: "Zomato order", Amount: decimal.NewFromInt(500)})

	got, err := s.Fetch(context.Background(), core.Account{ID: 2})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no records for another account, got %d", len(got))
	}
}
