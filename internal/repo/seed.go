package repo

import (
	"github.com/google/uuid"
	"math/rand"
	"time"
)

var (
	demoMerchants = []string{"Amazon", "Flipkart", "Swiggy", "Zomato", "Uber", "Netflix", "Airtel", "Jio", "IRCTC", "BookMyShow"}
	demoTypes     = []string{"UPI Transfer", "Card Payment", "Wallet Top-up"}
	demoStatuses  = []string{SuccessStatus, SuccessStatus, SuccessStatus, "Pending"}
)

// DemoRecords builds n plausible records for account ending at now, one
// minute apart, oldest first.
func DemoRecords(account string, n int, now time.Time, rnd *rand.Rand) []Record {
	out := make([]Record, 0, n)
	for i := n - 1; i >= 0; i-- {
		out = append(out, Record{
			ID:        uuid.New().String(),
			Account:   account,
			Type:      demoTypes[rnd.Intn(len(demoTypes))],
			Merchant:  demoMerchants[rnd.Intn(len(demoMerchants))],
			Amount:    float64(120 + rnd.Intn(4999-120+1)),
			Status:    demoStatuses[rnd.Intn(len(demoStatuses))],
			CreatedAt: now.Add(-time.Duration(i) * time.Minute).UTC(),
		})
	}
	return out
}
