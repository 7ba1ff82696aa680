package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"github.com/KushnerykPavel/ledger-dashboard/internal/feed"
	"github.com/KushnerykPavel/ledger-dashboard/internal/repo"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/raft"
	"github.com/pkg/errors"
	"io"
	"net/http"
	"strings"
	"time"
)

const probeTimeout = time.Second

type backendStats struct {
	State string `json:"state"`
}

// Gateway fronts the ledger replicas. Reads go to any live replica and
// writes to the leader.
type Gateway struct {
	backends []string
	client   *http.Client
	log      hclog.Logger
}

func NewGateway(backends []string, client *http.Client, log hclog.Logger) *Gateway {
	if client == nil {
		client = http.DefaultClient
	}
	return &Gateway{backends: backends, client: client, log: log}
}

func (g *Gateway) stats(ctx context.Context, addr string) (*backendStats, bool) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/raft/stats", addr), nil)
	if err != nil {
		return nil, false
	}
	resp, err := g.client.Do(req)
	if err != nil {
		g.log.Debug("backend unreachable", "addr", addr, "error", err)
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, false
	}

	var stats backendStats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return nil, false
	}
	return &stats, true
}

// Available returns the first backend answering its stats probe.
func (g *Gateway) Available(ctx context.Context) (string, bool) {
	for _, addr := range g.backends {
		if _, ok := g.stats(ctx, addr); ok {
			return addr, true
		}
	}
	return "", false
}

// Leader returns the backend whose raft state is leader.
func (g *Gateway) Leader(ctx context.Context) (string, bool) {
	for _, addr := range g.backends {
		if stats, ok := g.stats(ctx, addr); ok && stats.State == raft.Leader.String() {
			return addr, true
		}
	}
	return "", false
}

func (g *Gateway) availableProxy(w http.ResponseWriter, r *http.Request) {
	if addr, ok := g.Available(r.Context()); ok {
		g.proxyRequest(addr+r.URL.RequestURI(), w, r)
		return
	}
	g.log.Warn("no ledger backend available", "path", r.URL.Path)
	w.WriteHeader(http.StatusBadGateway)
}

func (g *Gateway) leaderProxy(w http.ResponseWriter, r *http.Request) {
	if addr, ok := g.Leader(r.Context()); ok {
		g.proxyRequest(addr+r.URL.RequestURI(), w, r)
		return
	}
	g.log.Warn("no ledger leader", "path", r.URL.Path)
	w.WriteHeader(http.StatusBadGateway)
}

func (g *Gateway) proxyRequest(url string, w http.ResponseWriter, r *http.Request) {
	proxyReq, err := http.NewRequestWithContext(r.Context(), r.Method, url, r.Body)
	if err != nil {
		http.Error(w, "Error creating proxy request", http.StatusInternalServerError)
		return
	}
	for name, values := range r.Header {
		for _, value := range values {
			proxyReq.Header.Add(name, value)
		}
	}

	resp, err := g.client.Do(proxyReq)
	if err != nil {
		g.log.Error("proxy request failed", "url", url, "error", err)
		http.Error(w, "Error sending proxy request", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	for name, values := range resp.Header {
		for _, value := range values {
			w.Header().Add(name, value)
		}
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		g.log.Warn("copying proxied body", "url", url, "error", err)
	}
}

// Balance asks a live replica for the balance of account.
func (g *Gateway) Balance(ctx context.Context, account string) (string, error) {
	addr, ok := g.Available(ctx)
	if !ok {
		return "", errors.New("no ledger backend available")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feed.AccountURL(addr+"/api/balance", account), nil)
	if err != nil {
		return "", errors.Wrap(err, "build balance request")
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "request balance")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("balance responded %d", resp.StatusCode)
	}
	var body repo.BalanceResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", errors.Wrap(err, "decode balance")
	}
	return body.Balance, nil
}

// Join asks the leader to add every node_id=raft_addr entry as a voter.
func (g *Gateway) Join(ctx context.Context, nodes []string) error {
	leader, ok := g.Leader(ctx)
	if !ok {
		return errors.New("no ledger leader to join")
	}

	for _, node := range nodes {
		id, addr, _ := strings.Cut(node, "=")
		payload, err := json.Marshal(map[string]string{"node_id": id, "raft_address": addr})
		if err != nil {
			return errors.Wrap(err, "encode join request")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, leader+"/raft/join", bytes.NewReader(payload))
		if err != nil {
			return errors.Wrap(err, "build join request")
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := g.client.Do(req)
		if err != nil {
			return errors.Wrapf(err, "join %s", id)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return errors.Errorf("join %s responded %d: %s", id, resp.StatusCode, strings.TrimSpace(string(body)))
		}
		g.log.Info("node joined", "node", id, "addr", addr, "leader", leader)
	}
	return nil
}
