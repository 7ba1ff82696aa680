package repo

import "github.com/shopspring/decimal"

var (
	openingBalance = decimal.NewFromInt(58240)
	balanceFloor   = decimal.NewFromInt(1200)
)

// BalanceWindow is how many recent records count towards the balance.
const BalanceWindow = 10

// Balance derives the demo account balance from the newest records: the
// opening balance minus successful spend, never below the floor.
func Balance(recent []Record) decimal.Decimal {
	if len(recent) > BalanceWindow {
		recent = recent[:BalanceWindow]
	}

	spend := decimal.Zero
	for _, r := range recent {
		if r.Status == SuccessStatus {
			spend = spend.Add(decimal.NewFromFloat(r.Amount))
		}
	}
	return decimal.Max(openingBalance.Sub(spend), balanceFloor)
}
