package repo

import (
	"encoding/json"
	"fmt"
	"github.com/dgraph-io/badger/v2"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/raft"
	"github.com/pkg/errors"
	"io"
	"strings"
)

const (
	OpAppend = "APPEND"
	OpSet    = "SET"
	OpDelete = "DELETE"
)

var recordPrefix = []byte("tx/")

// CommandPayload is the raft log entry body, see Ledger.Apply.
type CommandPayload struct {
	Operation string          `json:"operation"`
	Key       string          `json:"key,omitempty"`
	Value     json.RawMessage `json:"value,omitempty"`
}

// ApplyResponse is what raft.ApplyFuture.Response yields on the leader.
type ApplyResponse struct {
	Error error
	Data  interface{}
}

// Ledger is the badger-backed state machine holding transaction records.
type Ledger struct {
	db  *badger.DB
	log hclog.Logger
}

func NewLedger(db *badger.DB, log hclog.Logger) *Ledger {
	return &Ledger{db: db, log: log}
}

// OpenBadger opens the store under dir, or an in-memory store when dir is empty.
func OpenBadger(dir string, log hclog.Logger) (*badger.DB, error) {
	opts := badger.DefaultOptions(dir).WithLogger(badgerLogger{log.Named("badger")})
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "open badger at %q", dir)
	}
	return db, nil
}

func accountPrefix(account string) []byte {
	return []byte(fmt.Sprintf("%s%s/", recordPrefix, account))
}

// RecordKey orders records by creation time within their account.
func RecordKey(r Record) string {
	return fmt.Sprintf("%s%020d/%s", accountPrefix(r.AccountID()), r.CreatedAt.UnixNano(), r.ID)
}

func (l *Ledger) set(key string, value []byte) error {
	if len(value) == 0 {
		return nil
	}

	txn := l.db.NewTransaction(true)
	defer txn.Discard()

	if err := txn.Set([]byte(key), value); err != nil {
		return errors.Wrapf(err, "set %s", key)
	}
	return txn.Commit()
}

func (l *Ledger) exists(key string) (bool, error) {
	txn := l.db.NewTransaction(false)
	defer txn.Discard()

	_, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "get %s", key)
	}
	return true, nil
}

func (l *Ledger) delete(key string) error {
	txn := l.db.NewTransaction(true)
	defer txn.Discard()

	if err := txn.Delete([]byte(key)); err != nil {
		return errors.Wrapf(err, "delete %s", key)
	}
	return txn.Commit()
}

// appendRecord stores a record under its time-ordered key. Replaying the
// same record is a no-op.
func (l *Ledger) appendRecord(value json.RawMessage) (*Record, error) {
	var rec Record
	if err := json.Unmarshal(value, &rec); err != nil {
		return nil, errors.Wrap(err, "decode record")
	}
	if rec.ID == "" {
		return nil, errors.New("record without id")
	}
	if err := ValidateAccount(rec.AccountID()); err != nil {
		return nil, err
	}

	key := RecordKey(rec)
	found, err := l.exists(key)
	if err != nil {
		return nil, err
	}
	if found {
		return &rec, nil
	}

	l.log.Debug("append record", "id", rec.ID, "merchant", rec.Merchant, "amount", rec.Amount)
	return &rec, l.set(key, value)
}

// Recent returns up to limit records of one account, newest first.
func (l *Ledger) Recent(account string, limit int) ([]Record, error) {
	out := make([]Record, 0, limit)
	if limit <= 0 {
		return out, nil
	}

	txn := l.db.NewTransaction(false)
	defer txn.Discard()

	opts := badger.DefaultIteratorOptions
	opts.Reverse = true
	it := txn.NewIterator(opts)
	defer it.Close()

	prefix := accountPrefix(account)
	seek := append(append([]byte{}, prefix...), 0xFF)
	for it.Seek(seek); it.ValidForPrefix(prefix) && len(out) < limit; it.Next() {
		var rec Record
		err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
		if err != nil {
			return nil, errors.Wrapf(err, "read record %s", it.Item().Key())
		}
		out = append(out, rec)
	}
	return out, nil
}

// Empty reports whether the account has no record yet.
func (l *Ledger) Empty(account string) (bool, error) {
	recs, err := l.Recent(account, 1)
	if err != nil {
		return false, err
	}
	return len(recs) == 0, nil
}

// Apply is invoked once a log entry is committed. The returned value is
// made available through the ApplyFuture on the node that proposed it.
func (l *Ledger) Apply(entry *raft.Log) interface{} {
	if entry.Type != raft.LogCommand {
		l.log.Warn("ignoring non-command log entry", "type", entry.Type.String(), "index", entry.Index)
		return nil
	}

	var payload CommandPayload
	if err := json.Unmarshal(entry.Data, &payload); err != nil {
		l.log.Error("undecodable command", "index", entry.Index, "error", err)
		return &ApplyResponse{Error: errors.Wrap(err, "decode command")}
	}

	switch strings.ToUpper(strings.TrimSpace(payload.Operation)) {
	case OpAppend:
		rec, err := l.appendRecord(payload.Value)
		return &ApplyResponse{Error: err, Data: rec}
	case OpSet:
		return &ApplyResponse{Error: l.set(payload.Key, payload.Value), Data: payload.Key}
	case OpDelete:
		return &ApplyResponse{Error: l.delete(payload.Key)}
	}

	l.log.Error("unknown operation", "operation", payload.Operation, "index", entry.Index)
	return &ApplyResponse{Error: errors.Errorf("unknown operation %q", payload.Operation)}
}

// Snapshot copies every stored key so Persist can run alongside Apply.
func (l *Ledger) Snapshot() (raft.FSMSnapshot, error) {
	snap := &ledgerSnapshot{}

	txn := l.db.NewTransaction(false)
	defer txn.Discard()

	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		item := it.Item()
		value, err := item.ValueCopy(nil)
		if err != nil {
			return nil, errors.Wrapf(err, "copy %s", item.Key())
		}
		snap.entries = append(snap.entries, CommandPayload{
			Operation: OpSet,
			Key:       string(item.KeyCopy(nil)),
			Value:     value,
		})
	}
	return snap, nil
}

// Restore replaces the whole store with the snapshot content. Raft never
// calls it concurrently with Apply.
func (l *Ledger) Restore(rc io.ReadCloser) error {
	defer func() {
		if err := rc.Close(); err != nil {
			l.log.Warn("closing snapshot reader", "error", err)
		}
	}()

	if err := l.db.DropAll(); err != nil {
		return errors.Wrap(err, "drop before restore")
	}

	var restored int
	decoder := json.NewDecoder(rc)
	for decoder.More() {
		var entry CommandPayload
		if err := decoder.Decode(&entry); err != nil {
			return errors.Wrapf(err, "decode snapshot entry %d", restored)
		}
		if err := l.set(entry.Key, entry.Value); err != nil {
			return err
		}
		restored++
	}

	l.log.Info("restored snapshot", "entries", restored)
	return nil
}

type ledgerSnapshot struct {
	entries []CommandPayload
}

func (s *ledgerSnapshot) Persist(sink raft.SnapshotSink) error {
	encoder := json.NewEncoder(sink)
	for _, entry := range s.entries {
		if err := encoder.Encode(entry); err != nil {
			_ = sink.Cancel()
			return errors.Wrap(err, "write snapshot")
		}
	}
	return sink.Close()
}

func (s *ledgerSnapshot) Release() {}

type badgerLogger struct {
	hclog.Logger
}

func (b badgerLogger) Errorf(format string, args ...interface{}) {
	b.Logger.Error(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (b badgerLogger) Warningf(format string, args ...interface{}) {
	b.Logger.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (b badgerLogger) Infof(format string, args ...interface{}) {
	b.Logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (b badgerLogger) Debugf(format string, args ...interface{}) {
	b.Logger.Trace(strings.TrimSpace(fmt.Sprintf(format, args...)))
}
