package repo

import "testing"

func TestBalance(t *testing.T) {
	cases := []struct {
		name string
		recs []Record
		want string
	}{
		{"empty", nil, "58240"},
		{"only success counts", []Record{
			{Amount: 240, Status: SuccessStatus},
			{Amount: 1000, Status: "Pending"},
			{Amount: 0.5, Status: SuccessStatus},
		}, "57999.5"},
		{"floored", []Record{{Amount: 60000, Status: SuccessStatus}}, "1200"},
	}
	for _, c := range cases {
		if got := Balance(c.recs).String(); got != c.want {
			t.Fatalf("%s: want %s got %s", c.name, c.want, got)
		}
	}
}

func TestBalance_OnlyNewestWindow(t *testing.T) {
	recs := make([]Record, 0, BalanceWindow+2)
	for i := 0; i < BalanceWindow+2; i++ {
		recs = append(recs, Record{Amount: 100, Status: SuccessStatus})
	}
	if got := Balance(recs).String(); got != "57240" {
		t.Fatalf("expected only %d records counted, got balance %s", BalanceWindow, got)
	}
}
