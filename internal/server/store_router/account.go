package store_router

import (
	"github.com/KushnerykPavel/ledger-dashboard/internal/repo"
	"net/http"
	"strings"
)

// account reads the ?account= scope of a read request.
func account(r *http.Request) (string, error) {
	name := strings.TrimSpace(r.URL.Query().Get("account"))
	if name == "" {
		return repo.DefaultAccount, nil
	}
	return name, repo.ValidateAccount(name)
}
