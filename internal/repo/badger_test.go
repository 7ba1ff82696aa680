package repo

import (
	"bytes"
	"encoding/json"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/raft"
	"io"
	"testing"
	"time"
)

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	db, err := OpenBadger("", hclog.NewNullLogger())
	if err != nil {
		t.Fatalf("open badger: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewLedger(db, hclog.NewNullLogger())
}

func appendEntry(t *testing.T, l *Ledger, rec Record) *ApplyResponse {
	t.Helper()
	value, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal record: %v", err)
	}
	data, err := json.Marshal(CommandPayload{Operation: OpAppend, Value: value})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	resp, ok := l.Apply(&raft.Log{Type: raft.LogCommand, Data: data}).(*ApplyResponse)
	if !ok {
		t.Fatalf("apply did not return *ApplyResponse")
	}
	return resp
}

func record(id string, amount float64, at time.Time) Record {
	return Record{ID: id, Type: "Card Payment", Merchant: "Amazon", Amount: amount, Status: SuccessStatus, CreatedAt: at}
}

func TestLedger_RecentIsNewestFirst(t *testing.T) {
	l := newTestLedger(t)
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	// Applied out of chronological order on purpose.
	for i, m := range []int{2, 0, 3, 1} {
		id := string(rune('a' + i))
		if resp := appendEntry(t, l, record(id, float64(m), base.Add(time.Duration(m)*time.Minute))); resp.Error != nil {
			t.Fatalf("append %s: %v", id, resp.Error)
		}
	}

	recs, err := l.Recent(DefaultAccount, 3)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("want 3 records, got %d", len(recs))
	}
	for i, want := range []float64{3, 2, 1} {
		if recs[i].Amount != want {
			t.Fatalf("position %d: want amount %v got %v", i, want, recs[i].Amount)
		}
	}
}

func TestLedger_AppendIsIdempotent(t *testing.T) {
	l := newTestLedger(t)
	rec := record("dup", 10, time.Unix(1700000000, 0).UTC())

	appendEntry(t, l, rec)
	appendEntry(t, l, rec)

	recs, err := l.Recent(DefaultAccount, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("replayed append should not duplicate, got %d records", len(recs))
	}
}

func TestLedger_ApplyRejectsBadCommands(t *testing.T) {
	l := newTestLedger(t)

	resp := l.Apply(&raft.Log{Type: raft.LogCommand, Data: []byte("{not json")}).(*ApplyResponse)
	if resp.Error == nil {
		t.Fatalf("expected decode error")
	}

	data, _ := json.Marshal(CommandPayload{Operation: "EXPLODE"})
	resp = l.Apply(&raft.Log{Type: raft.LogCommand, Data: data}).(*ApplyResponse)
	if resp.Error == nil {
		t.Fatalf("expected unknown operation error")
	}

	if out := l.Apply(&raft.Log{Type: raft.LogNoop}); out != nil {
		t.Fatalf("non-command entries should yield nil, got %v", out)
	}

	noID, _ := json.Marshal(Record{Merchant: "x"})
	data, _ = json.Marshal(CommandPayload{Operation: OpAppend, Value: noID})
	resp = l.Apply(&raft.Log{Type: raft.LogCommand, Data: data}).(*ApplyResponse)
	if resp.Error == nil {
		t.Fatalf("expected error for record without id")
	}
}

func TestLedger_EmptyAndDelete(t *testing.T) {
	l := newTestLedger(t)
	if empty, err := l.Empty(DefaultAccount); err != nil || !empty {
		t.Fatalf("fresh ledger should be empty (empty=%v err=%v)", empty, err)
	}

	rec := record("one", 5, time.Unix(1700000000, 0).UTC())
	appendEntry(t, l, rec)
	if empty, _ := l.Empty(DefaultAccount); empty {
		t.Fatalf("ledger should not be empty after append")
	}

	data, _ := json.Marshal(CommandPayload{Operation: OpDelete, Key: RecordKey(rec)})
	if resp := l.Apply(&raft.Log{Type: raft.LogCommand, Data: data}).(*ApplyResponse); resp.Error != nil {
		t.Fatalf("delete: %v", resp.Error)
	}
	if empty, _ := l.Empty(DefaultAccount); !empty {
		t.Fatalf("ledger should be empty after delete")
	}
}

type bufferSink struct {
	bytes.Buffer
	cancelled bool
}

func (s *bufferSink) ID() string    { return "test" }
func (s *bufferSink) Cancel() error { s.cancelled = true; return nil }
func (s *bufferSink) Close() error  { return nil }

func TestLedger_SnapshotRestore(t *testing.T) {
	src := newTestLedger(t)
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		appendEntry(t, src, record(string(rune('a'+i)), float64(i+1), base.Add(time.Duration(i)*time.Minute)))
	}

	snap, err := src.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	sink := &bufferSink{}
	if err := snap.Persist(sink); err != nil {
		t.Fatalf("persist: %v", err)
	}
	snap.Release()

	dst := newTestLedger(t)
	appendEntry(t, dst, record("stale", 99, base.Add(time.Hour)))
	if err := dst.Restore(io.NopCloser(bytes.NewReader(sink.Bytes()))); err != nil {
		t.Fatalf("restore: %v", err)
	}

	recs, err := dst.Recent(DefaultAccount, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recs) != 4 {
		t.Fatalf("restore should replace content, got %d records", len(recs))
	}
	if recs[0].ID != "d" || recs[3].ID != "a" {
		t.Fatalf("unexpected order after restore: %s..%s", recs[0].ID, recs[3].ID)
	}
}

func TestLedger_AccountsAreSeparate(t *testing.T) {
	l := newTestLedger(t)
	at := time.Unix(1700000000, 0).UTC()

	mine := record("mine", 10, at)
	mine.Account = "alice"
	theirs := record("theirs", 20, at.Add(time.Minute))
	theirs.Account = "bob"
	appendEntry(t, l, mine)
	appendEntry(t, l, theirs)
	appendEntry(t, l, record("legacy", 30, at))

	for account, want := range map[string]string{"alice": "mine", "bob": "theirs", DefaultAccount: "legacy"} {
		recs, err := l.Recent(account, 10)
		if err != nil {
			t.Fatalf("recent %s: %v", account, err)
		}
		if len(recs) != 1 || recs[0].ID != want {
			t.Fatalf("account %s: want only %s, got %+v", account, want, recs)
		}
	}
	if empty, _ := l.Empty("carol"); !empty {
		t.Fatalf("account without records should be empty")
	}

	bad := record("bad", 1, at)
	bad.Account = "a/b"
	if resp := appendEntry(t, l, bad); resp.Error == nil {
		t.Fatalf("expected error for account with a slash")
	}
}
