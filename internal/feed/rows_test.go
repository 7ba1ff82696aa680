package feed

import (
	"github.com/KushnerykPavel/ledger-dashboard/internal/repo"
	"testing"
)

func TestStatusStyle(t *testing.T) {
	cases := map[string]Style{
		"Success":  StyleGood,
		"Pending":  StyleWarn,
		"success":  StyleWarn,
		"SUCCESS":  StyleWarn,
		"":         StyleWarn,
		"Success ": StyleWarn,
		"Refunded": StyleWarn,
	}
	for status, want := range cases {
		if got := StatusStyle(status); got != want {
			t.Fatalf("status %q: want %s got %s", status, want, got)
		}
	}
}

func TestBuildRows_SuccessAndPending(t *testing.T) {
	rows := BuildRows([]repo.Transaction{
		{Type: "Card Payment", Merchant: "Amazon", Amount: 1299, Status: "Success", Time: "01 Mar 2025, 10:00 AM"},
		{Type: "UPI Transfer", Merchant: "Swiggy", Amount: 349.5, Status: "Pending", Time: "01 Mar 2025, 09:58 AM"},
	})
	if len(rows) != 2 {
		t.Fatalf("want 2 rows, got %d", len(rows))
	}
	if rows[0].Style != StyleGood || rows[1].Style != StyleWarn {
		t.Fatalf("unexpected styles %s, %s", rows[0].Style, rows[1].Style)
	}
	if rows[0].Amount != "₹ 1,299" || rows[1].Amount != "₹ 349.5" {
		t.Fatalf("unexpected amounts %q, %q", rows[0].Amount, rows[1].Amount)
	}
}

func TestBuildRows_MissingFieldsUseDefaults(t *testing.T) {
	rows := BuildRows([]repo.Transaction{{}})
	r := rows[0]
	if r.Type != "-" || r.Merchant != "-" || r.Status != "-" || r.Time != "-" {
		t.Fatalf("missing fields should render as '-', got %+v", r)
	}
	if r.Amount != "₹ 0" {
		t.Fatalf("missing amount should render as zero, got %q", r.Amount)
	}
	if r.Style != StyleWarn {
		t.Fatalf("missing status is not success, got %s", r.Style)
	}
}

func amounts(vals ...float64) []repo.Transaction {
	out := make([]repo.Transaction, len(vals))
	for i, v := range vals {
		out[i] = repo.Transaction{Amount: v}
	}
	return out
}

func TestSeries(t *testing.T) {
	cases := []struct {
		name  string
		items []repo.Transaction
		want  []float64
	}{
		{"empty", nil, []float64{}},
		{"single", amounts(5), []float64{5}},
		{"reversed to oldest first", amounts(30, 15, 20, 10), []float64{10, 20, 15, 30}},
		{"only newest ten", amounts(12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1), []float64{3, 4, 5, 6, 7, 8, 9, 10, 11, 12}},
	}
	for _, c := range cases {
		got := Series(c.items)
		if len(got) != len(c.want) {
			t.Fatalf("%s: want len %d got %d (%v)", c.name, len(c.want), len(got), got)
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Fatalf("%s: want %v got %v", c.name, c.want, got)
			}
		}
	}
}

func TestSeries_LengthIsMinOfNAndTen(t *testing.T) {
	for n := 0; n <= 25; n++ {
		vals := make([]float64, n)
		for i := range vals {
			vals[i] = float64(i)
		}
		got := Series(amounts(vals...))
		if want := min(n, SeriesLength); len(got) != want {
			t.Fatalf("n=%d: want series length %d got %d", n, want, len(got))
		}
		// Input is newest first, so the series must end with the newest item.
		if n > 0 && got[len(got)-1] != 0 {
			t.Fatalf("n=%d: last point should be the newest amount, got %v", n, got)
		}
	}
}
