package feed

import (
	"github.com/KushnerykPavel/ledger-dashboard/internal/repo"
	"github.com/dustin/go-humanize"
)

const (
	// SeriesLength is how many of the newest amounts feed the sparkline.
	SeriesLength = 10

	currencySymbol = "₹"
	missingField   = "-"
)

type Style string

const (
	StyleGood Style = "good"
	StyleWarn Style = "warn"
)

// StatusStyle is good only for the exact success status.
func StatusStyle(status string) Style {
	if status == repo.SuccessStatus {
		return StyleGood
	}
	return StyleWarn
}

// Row is one rendered table line. Absent text fields show as "-".
type Row struct {
	Type     string `json:"type"`
	Merchant string `json:"merchant"`
	Amount   string `json:"amount"`
	Status   string `json:"status"`
	Time     string `json:"time"`
	Style    Style  `json:"style"`
}

func BuildRows(items []repo.Transaction) []Row {
	rows := make([]Row, 0, len(items))
	for _, t := range items {
		rows = append(rows, Row{
			Type:     orMissing(t.Type),
			Merchant: orMissing(t.Merchant),
			Amount:   FormatAmount(t.Amount),
			Status:   orMissing(t.Status),
			Time:     orMissing(t.Time),
			Style:    StatusStyle(t.Status),
		})
	}
	return rows
}

func FormatAmount(amount float64) string {
	return currencySymbol + " " + humanize.Commaf(amount)
}

// Series returns the amounts of the newest SeriesLength items in
// chronological order. The feed is trusted to be newest first.
func Series(items []repo.Transaction) []float64 {
	n := min(len(items), SeriesLength)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[n-1-i] = items[i].Amount
	}
	return out
}

func orMissing(s string) string {
	if s == "" {
		return missingField
	}
	return s
}
