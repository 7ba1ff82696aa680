package repo

import (
	"github.com/pkg/errors"
	"net/http"
	"strings"
	"time"
)

// SuccessStatus is the only status that gets the positive style; every
// other value is treated the same way.
const SuccessStatus = "Success"

// DisplayTimeLayout is how the ledger formats Transaction.Time.
const DisplayTimeLayout = "02 Jan 2006, 03:04 PM"

// Transaction is one entry of the feed as seen on the wire.
type Transaction struct {
	Type     string  `json:"tx_type"`
	Merchant string  `json:"merchant"`
	Amount   float64 `json:"amount"`
	Status   string  `json:"status"`
	Time     string  `json:"time"`
}

// Feed is the body of GET /api/transactions, most recent first.
type Feed struct {
	Items []Transaction `json:"items"`
}

func (f *Feed) Render(w http.ResponseWriter, r *http.Request) error {
	if f.Items == nil {
		f.Items = []Transaction{}
	}
	return nil
}

// DefaultAccount owns records that name no account.
const DefaultAccount = "demo"

// ValidateAccount rejects names that would break the record key layout.
func ValidateAccount(account string) error {
	if account == "" || len(account) > 64 || strings.ContainsAny(account, "/\\ \t\n") {
		return errors.Errorf("invalid account %q", account)
	}
	return nil
}

// Record is the persisted form of a transaction.
type Record struct {
	ID        string    `json:"id"`
	Account   string    `json:"account,omitempty"`
	Type      string    `json:"tx_type"`
	Merchant  string    `json:"merchant"`
	Amount    float64   `json:"amount"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func (r Record) AccountID() string {
	if r.Account == "" {
		return DefaultAccount
	}
	return r.Account
}

func (r Record) Transaction() Transaction {
	return Transaction{
		Type:     r.Type,
		Merchant: r.Merchant,
		Amount:   r.Amount,
		Status:   r.Status,
		Time:     r.CreatedAt.Format(DisplayTimeLayout),
	}
}

type RecordRequest struct {
	Account  string  `json:"account"`
	Type     string  `json:"tx_type"`
	Merchant string  `json:"merchant"`
	Amount   float64 `json:"amount"`
	Status   string  `json:"status"`
}

func (p *RecordRequest) Bind(r *http.Request) error {
	p.Type = strings.TrimSpace(p.Type)
	p.Merchant = strings.TrimSpace(p.Merchant)
	p.Status = strings.TrimSpace(p.Status)
	p.Account = strings.TrimSpace(p.Account)

	if p.Account == "" {
		p.Account = DefaultAccount
	}
	if err := ValidateAccount(p.Account); err != nil {
		return err
	}

	if p.Type == "" {
		return errors.New("tx_type must not be empty")
	}
	if p.Merchant == "" {
		return errors.New("merchant must not be empty")
	}
	if p.Amount <= 0 {
		return errors.Errorf("amount must be positive, got %v", p.Amount)
	}
	if p.Status == "" {
		p.Status = SuccessStatus
	}
	return nil
}

type RecordResponse struct {
	ID   string `json:"id"`
	Addr string `json:"addr"`
}

func (rd *RecordResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

type BalanceResponse struct {
	Balance string `json:"balance"`
}

func (b *BalanceResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}
