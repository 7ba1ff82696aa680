package store_router

import (
	"encoding/json"
	"github.com/KushnerykPavel/ledger-dashboard/internal/repo"
	"github.com/go-chi/chi/v5"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/raft"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeRaft commits every command to the ledger as soon as it is applied.
type fakeRaft struct {
	mu       sync.Mutex
	state    raft.RaftState
	leader   raft.ServerAddress
	ledger   *repo.Ledger
	index    uint64
	commands int
}

func (f *fakeRaft) State() raft.RaftState { return f.state }

func (f *fakeRaft) LeaderWithID() (raft.ServerAddress, raft.ServerID) {
	return f.leader, "node1"
}

func (f *fakeRaft) Apply(cmd []byte, timeout time.Duration) raft.ApplyFuture {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.index++
	f.commands++
	resp := f.ledger.Apply(&raft.Log{Index: f.index, Type: raft.LogCommand, Data: cmd})
	return &fakeFuture{index: f.index, resp: resp}
}

type fakeFuture struct {
	index uint64
	resp  interface{}
}

func (f *fakeFuture) Error() error          { return nil }
func (f *fakeFuture) Index() uint64         { return f.index }
func (f *fakeFuture) Response() interface{} { return f.resp }

func newTestRouter(t *testing.T, state raft.RaftState) (*chi.Mux, *fakeRaft, *Handler) {
	t.Helper()
	db, err := repo.OpenBadger("", hclog.NewNullLogger())
	if err != nil {
		t.Fatalf("open badger: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ledger := repo.NewLedger(db, hclog.NewNullLogger())
	fr := &fakeRaft{state: state, leader: "localhost:1111", ledger: ledger}
	h := New(fr, ledger, ":2221", hclog.NewNullLogger())

	router := chi.NewRouter()
	Routes(router, h)
	return router, fr, h
}

func postRecord(t *testing.T, router http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/transactions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRecordThenFeed_NewestFirst(t *testing.T) {
	router, _, h := newTestRouter(t, raft.Leader)

	base := time.Date(2024, 5, 6, 14, 5, 0, 0, time.UTC)
	for i, merchant := range []string{"Amazon", "Swiggy", "Uber"} {
		at := base.Add(time.Duration(i) * time.Minute)
		h.now = func() time.Time { return at }
		rec := postRecord(t, router, `{"tx_type":"Card Payment","merchant":"`+merchant+`","amount":250.5}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("record %s: status %d body %s", merchant, rec.Code, rec.Body.String())
		}
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/transactions", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("feed status %d", rec.Code)
	}

	var feed repo.Feed
	if err := json.Unmarshal(rec.Body.Bytes(), &feed); err != nil {
		t.Fatalf("decode feed: %v", err)
	}
	if len(feed.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(feed.Items))
	}
	if feed.Items[0].Merchant != "Uber" || feed.Items[2].Merchant != "Amazon" {
		t.Fatalf("feed not newest first: %+v", feed.Items)
	}
	if feed.Items[0].Status != repo.SuccessStatus {
		t.Fatalf("missing status should default to success, got %q", feed.Items[0].Status)
	}
	if feed.Items[0].Time != "06 May 2024, 02:07 PM" {
		t.Fatalf("unexpected display time %q", feed.Items[0].Time)
	}
}

func TestFeed_EmptyLedgerRendersEmptyItems(t *testing.T) {
	router, _, _ := newTestRouter(t, raft.Follower)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/transactions", nil))
	if got := strings.TrimSpace(rec.Body.String()); got != `{"items":[]}` {
		t.Fatalf("unexpected empty feed body %s", got)
	}
}

func TestFeed_CapsAtLimit(t *testing.T) {
	router, fr, _ := newTestRouter(t, raft.Leader)

	recs := repo.DemoRecords(repo.DefaultAccount, FeedLimit+5, time.Now(), newRand())
	for _, r := range recs {
		if err := repo.Propose(fr, repo.OpAppend, "", r, time.Second); err != nil {
			t.Fatalf("propose: %v", err)
		}
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/transactions", nil))
	var feed repo.Feed
	if err := json.Unmarshal(rec.Body.Bytes(), &feed); err != nil {
		t.Fatalf("decode feed: %v", err)
	}
	if len(feed.Items) != FeedLimit {
		t.Fatalf("expected %d items, got %d", FeedLimit, len(feed.Items))
	}
}

func TestRecord_FollowerRejects(t *testing.T) {
	router, fr, _ := newTestRouter(t, raft.Follower)

	rec := postRecord(t, router, `{"tx_type":"UPI Transfer","merchant":"Jio","amount":99}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "localhost:1111") {
		t.Fatalf("response should name the leader: %s", rec.Body.String())
	}
	if fr.commands != 0 {
		t.Fatalf("follower must not apply commands")
	}
}

func TestRecord_InvalidBody(t *testing.T) {
	router, fr, _ := newTestRouter(t, raft.Leader)

	cases := map[string]string{
		"no merchant":     `{"tx_type":"UPI Transfer","amount":10}`,
		"negative amount": `{"tx_type":"UPI Transfer","merchant":"Jio","amount":-1}`,
		"not json":        `{`,
	}
	for name, body := range cases {
		rec := postRecord(t, router, body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", name, rec.Code)
		}
	}
	if fr.commands != 0 {
		t.Fatalf("invalid requests must not reach raft")
	}
}

func TestBalance(t *testing.T) {
	router, _, _ := newTestRouter(t, raft.Leader)

	postRecord(t, router, `{"tx_type":"Card Payment","merchant":"Netflix","amount":240}`)
	postRecord(t, router, `{"tx_type":"Card Payment","merchant":"Airtel","amount":1000,"status":"Pending"}`)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/balance", nil))

	var body repo.BalanceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode balance: %v", err)
	}
	if body.Balance != "58000.00" {
		t.Fatalf("expected 58000.00, got %s", body.Balance)
	}
}

func newRand() *rand.Rand {
	return rand.New(rand.NewSource(7))
}

func TestFeed_ScopedByAccount(t *testing.T) {
	router, _, _ := newTestRouter(t, raft.Leader)

	postRecord(t, router, `{"account":"alice","tx_type":"Card Payment","merchant":"Netflix","amount":240}`)
	postRecord(t, router, `{"tx_type":"Card Payment","merchant":"Airtel","amount":300}`)

	for path, want := range map[string]string{
		"/api/transactions?account=alice": "Netflix",
		"/api/transactions":               "Airtel",
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		var feed repo.Feed
		if err := json.Unmarshal(rec.Body.Bytes(), &feed); err != nil {
			t.Fatalf("%s: decode feed: %v", path, err)
		}
		if len(feed.Items) != 1 || feed.Items[0].Merchant != want {
			t.Fatalf("%s: want only %s, got %+v", path, want, feed.Items)
		}
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/balance?account=alice", nil))
	if !strings.Contains(rec.Body.String(), `"58000.00"`) {
		t.Fatalf("unexpected alice balance %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/transactions?account=a%2Fb", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad account, got %d", rec.Code)
	}
}
