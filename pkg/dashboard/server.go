package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/wallet-hunter/pkg/db"
	"github.com/wallet-hunter/pkg/wallets"
)

type Dashboard struct {
	store *db.Store
	port  int
}

func New(store *db.Store, port int) *Dashboard {
	return &Dashboard{store: store, port: port}
}

// Handler exposes the read-only ledger API, process metrics and the
// single-page frontend.
func (d *Dashboard) Handler() http.Handler {
	mux := http.NewServeMux()

	// API endpoints
	mux.HandleFunc("/api/stats", cors(d.handleStats))
	mux.HandleFunc("/api/harvests", cors(d.handleHarvests))
	mux.HandleFunc("/api/hits", cors(d.handleHits))
	mux.HandleFunc("/api/wallet/", cors(d.handleWallet))
	mux.Handle("/metrics", promhttp.Handler())

	// Serve frontend
	mux.HandleFunc("/", d.serveFrontend)
	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (d *Dashboard) Run(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", d.port)
	srv := &http.Server{Addr: addr, Handler: d.Handler(), ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", addr).Msg("🌐 dashboard started")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func cors(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(200)
			return
		}
		if r.Method != "GET" {
			http.Error(w, "GET only", 405)
			return
		}
		h(w, r)
	}
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func limitParam(r *http.Request, def int) int {
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func (d *Dashboard) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := d.store.GetStats()
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, stats)
}

func (d *Dashboard) handleHarvests(w http.ResponseWriter, r *http.Request) {
	runs, err := d.store.RecentHarvestRuns(limitParam(r, 50))
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	if runs == nil {
		runs = []db.HarvestRun{}
	}
	writeJSON(w, runs)
}

func (d *Dashboard) handleHits(w http.ResponseWriter, r *http.Request) {
	hits, err := d.store.RecentTrackingHits(limitParam(r, 100))
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	if hits == nil {
		hits = []db.TrackingHit{}
	}
	writeJSON(w, hits)
}

// handleWallet answers /api/wallet/<address> with every grade run that
// flagged the address.
func (d *Dashboard) handleWallet(w http.ResponseWriter, r *http.Request) {
	addr := strings.TrimPrefix(r.URL.Path, "/api/wallet/")
	if !wallets.IsAddress(addr) {
		http.Error(w, "invalid address", 400)
		return
	}
	graded, err := d.store.GradedWalletsFor(addr)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	if graded == nil {
		graded = []db.GradedWallet{}
	}
	writeJSON(w, map[string]interface{}{
		"address": addr,
		"graded":  graded,
	})
}
