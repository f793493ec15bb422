package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"telegram-wallet-bot/internal/models"
	"telegram-wallet-bot/internal/storage/memory"

	"github.com/shopspring/decimal"
)

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, time.August, 10, 12, 0, 0, 0, time.UTC)

	store := memory.New()
	store.PutWallet(ctx, models.WalletState{
		Balance:     decimal.NewFromInt(100),
		LastUpdated: now.AddDate(0, 0, -2),
	})

	src := testLedger(store, now)
	mustLoad(t, src) // applies a catch-up credit
	src.AddExpense(ctx, decimal.RequireFromString("19.99"))
	src.AddExpense(ctx, decimal.NewFromInt(5))

	snapshot := src.ExportSnapshot(ctx)
	data, err := json.Marshal(snapshot)
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}

	dst := testLedger(memory.New(), now)
	mustLoad(t, dst)
	if err := dst.ImportSnapshot(ctx, data); err != nil {
		t.Fatalf("import snapshot: %v", err)
	}

	if !dst.Balance().Equal(src.Balance()) {
		t.Errorf("imported balance = %s, want %s", dst.Balance(), src.Balance())
	}
	got, want := dst.Entries(), src.Entries()
	if len(got) != len(want) {
		t.Fatalf("imported %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i].ID {
			t.Errorf("entry %d: id %d, want %d", i, got[i].ID, want[i].ID)
		}
		if got[i].Kind != want[i].Kind {
			t.Errorf("entry %d: kind %s, want %s", i, got[i].Kind, want[i].Kind)
		}
		if !got[i].Amount.Equal(want[i].Amount) {
			t.Errorf("entry %d: amount %s, want %s", i, got[i].Amount, want[i].Amount)
		}
		if !got[i].Timestamp.Equal(want[i].Timestamp) {
			t.Errorf("entry %d: timestamp %s, want %s", i, got[i].Timestamp, want[i].Timestamp)
		}
	}
}

func TestSnapshotBalanceIsPlainNumber(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, time.August, 10, 12, 0, 0, 0, time.UTC)
	l := testLedger(memory.New(), now)
	mustLoad(t, l)

	data, err := json.Marshal(l.ExportSnapshot(ctx))
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}
	if strings.Contains(string(data), `"walletBalance":"`) {
		t.Errorf("walletBalance serialized as string: %s", data)
	}
}

func TestImportSnapshotRejectsMalformedPayloads(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, time.August, 10, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		data string
	}{
		{"not json", "not json at all"},
		{"empty object", `{}`},
		{"expenses not array", `{"expenses": 5, "walletBalance": 100}`},
		{"balance not numeric", `{"expenses": [], "walletBalance": "abc"}`},
		{"missing balance", `{"expenses": []}`},
	}

	for _, tc := range cases {
		store := memory.New()
		store.PutWallet(ctx, models.WalletState{Balance: decimal.NewFromInt(100), LastUpdated: now})
		l := testLedger(store, now)
		mustLoad(t, l)

		err := l.ImportSnapshot(ctx, []byte(tc.data))
		if !errors.Is(err, ErrInvalidFormat) {
			t.Errorf("%s: err = %v, want ErrInvalidFormat", tc.name, err)
		}
		// Validation failures must not touch prior state.
		if !l.Balance().Equal(decimal.NewFromInt(100)) {
			t.Errorf("%s: balance mutated on rejected import", tc.name)
		}
	}
}

func TestImportSnapshotReplacesWholesale(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, time.August, 10, 12, 0, 0, 0, time.UTC)

	store := memory.New()
	store.PutWallet(ctx, models.WalletState{Balance: decimal.NewFromInt(100), LastUpdated: now})
	l := testLedger(store, now)
	mustLoad(t, l)
	l.AddExpense(ctx, decimal.NewFromInt(40))

	payload := `{"expenses": [{"id": 7, "kind": "expense", "date": "2026-08-09T10:00:00Z",
		"amount": 15, "resultingBalance": 185}], "walletBalance": 185}`
	if err := l.ImportSnapshot(ctx, []byte(payload)); err != nil {
		t.Fatalf("import: %v", err)
	}

	if !l.Balance().Equal(decimal.NewFromInt(185)) {
		t.Errorf("balance = %s, want 185", l.Balance())
	}
	entries := l.Entries()
	if len(entries) != 1 || entries[0].ID != 7 {
		t.Fatalf("active list not replaced, got %+v", entries)
	}
	stored, _ := store.GetAllEntries(ctx)
	if len(stored) != 1 {
		t.Errorf("store not replaced, %d entries", len(stored))
	}
}
