package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"github.com/KushnerykPavel/ledger-dashboard/internal/repo"
	"github.com/pkg/errors"
	"io"
	"net/http"
	"net/url"
)

const maxFeedBytes = 1 << 20

type Fetcher interface {
	Fetch(ctx context.Context) ([]repo.Transaction, error)
}

// HTTPFetcher reads the feed from a fixed URL.
type HTTPFetcher struct {
	url    string
	client *http.Client
}

func NewHTTPFetcher(url string, client *http.Client) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{url: url, client: client}
}

func (f *HTTPFetcher) URL() string { return f.url }

// AccountURL scopes a ledger URL to one account. An unparsable URL is
// returned unchanged so the fetch reports it.
func AccountURL(raw, account string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	q.Set("account", account)
	u.RawQuery = q.Encode()
	return u.String()
}

// Fetch returns the decoded items. A body without "items" is an empty feed.
// A non-200 status, a body that is not an object or an "items" value that
// is not a list is an error. Individual items decode leniently.
func (f *HTTPFetcher) Fetch(ctx context.Context) ([]repo.Transaction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build feed request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "request feed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("feed responded %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, errors.Wrap(err, "read feed body")
	}

	if trimmed := bytes.TrimSpace(body); len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, errors.New("feed body is not a JSON object")
	}

	var feed repo.Feed
	if err := json.Unmarshal(body, &feed); err != nil {
		return nil, errors.Wrap(err, "decode feed")
	}
	return feed.Items, nil
}
