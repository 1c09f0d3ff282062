package db

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS harvest_runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    token TEXT NOT NULL,
    label TEXT NOT NULL,
    direction TEXT NOT NULL,
    path TEXT NOT NULL,
    start_block INTEGER,
    end_block INTEGER,
    pages INTEGER DEFAULT 0,
    added INTEGER DEFAULT 0,
    complete BOOLEAN DEFAULT FALSE,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS grade_runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    report TEXT NOT NULL,
    lists INTEGER DEFAULT 0,
    total INTEGER DEFAULT 0,
    flagged INTEGER DEFAULT 0,
    purged BOOLEAN DEFAULT FALSE,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS graded_wallets (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    grade_run_id INTEGER REFERENCES grade_runs(id),
    address TEXT NOT NULL,
    labels TEXT DEFAULT '[]',
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS tracking_runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    since TIMESTAMP,
    since_block INTEGER,
    path TEXT NOT NULL,
    wallets INTEGER DEFAULT 0,
    skipped INTEGER DEFAULT 0,
    tokens INTEGER DEFAULT 0,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS tracking_hits (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id INTEGER REFERENCES tracking_runs(id),
    token TEXT NOT NULL,
    buyers TEXT DEFAULT '[]',
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_harvest_token ON harvest_runs(token);
CREATE INDEX IF NOT EXISTS idx_graded_addr ON graded_wallets(address);
CREATE INDEX IF NOT EXISTS idx_hit_token ON tracking_hits(token);
CREATE INDEX IF NOT EXISTS idx_hit_run ON tracking_hits(run_id);
`

type Store struct {
	db *sql.DB
}

func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// ---- Harvests ----

func (s *Store) InsertHarvestRun(r HarvestRun) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO harvest_runs (token, label, direction, path, start_block, end_block, pages, added, complete)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Token, r.Label, r.Direction, r.Path, r.StartBlock, r.EndBlock, r.Pages, r.Added, r.Complete)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) RecentHarvestRuns(limit int) ([]HarvestRun, error) {
	rows, err := s.db.Query(`
		SELECT id, token, label, direction, path, start_block, end_block, pages, added, complete, created_at
		FROM harvest_runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []HarvestRun
	for rows.Next() {
		var r HarvestRun
		if err := rows.Scan(&r.ID, &r.Token, &r.Label, &r.Direction, &r.Path, &r.StartBlock, &r.EndBlock,
			&r.Pages, &r.Added, &r.Complete, &r.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// ---- Grading ----

// InsertGradeRun stores a grade run and its flagged wallets in one transaction.
func (s *Store) InsertGradeRun(r GradeRun, wallets []GradedWallet) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		INSERT INTO grade_runs (name, report, lists, total, flagged, purged)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.Name, r.Report, r.Lists, r.Total, len(wallets), r.Purged)
	if err != nil {
		return 0, err
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.Prepare(`INSERT INTO graded_wallets (grade_run_id, address, labels) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()
	for _, w := range wallets {
		labels, _ := json.Marshal(w.Labels)
		if _, err := stmt.Exec(runID, w.Address, string(labels)); err != nil {
			return 0, err
		}
	}
	return runID, tx.Commit()
}

// GradedWalletsFor returns every time address was flagged, newest first.
func (s *Store) GradedWalletsFor(address string) ([]GradedWallet, error) {
	rows, err := s.db.Query(`
		SELECT id, grade_run_id, address, COALESCE(labels,'[]'), created_at
		FROM graded_wallets WHERE address=? COLLATE NOCASE ORDER BY id DESC`, address)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GradedWallet
	for rows.Next() {
		var w GradedWallet
		var labels string
		if err := rows.Scan(&w.ID, &w.GradeRunID, &w.Address, &labels, &w.CreatedAt); err != nil {
			return nil, err
		}
		json.Unmarshal([]byte(labels), &w.Labels)
		out = append(out, w)
	}
	return out, rows.Err()
}

// ---- Tracking ----

// InsertTrackingRun stores a tracking run and its hits in one transaction.
func (s *Store) InsertTrackingRun(r TrackingRun, hits []TrackingHit) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		INSERT INTO tracking_runs (since, since_block, path, wallets, skipped, tokens)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.Since.UTC(), r.SinceBlock, r.Path, r.Wallets, r.Skipped, r.Tokens)
	if err != nil {
		return 0, err
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.Prepare(`INSERT INTO tracking_hits (run_id, token, buyers) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()
	for _, h := range hits {
		buyers, _ := json.Marshal(h.Buyers)
		if _, err := stmt.Exec(runID, h.Token, string(buyers)); err != nil {
			return 0, err
		}
	}
	return runID, tx.Commit()
}

func (s *Store) RecentTrackingHits(limit int) ([]TrackingHit, error) {
	rows, err := s.db.Query(`
		SELECT id, run_id, token, COALESCE(buyers,'[]'), created_at
		FROM tracking_hits ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []TrackingHit
	for rows.Next() {
		var h TrackingHit
		var buyers string
		if err := rows.Scan(&h.ID, &h.RunID, &h.Token, &buyers, &h.CreatedAt); err != nil {
			return nil, err
		}
		json.Unmarshal([]byte(buyers), &h.Buyers)
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// ---- Stats ----

func (s *Store) GetStats() (map[string]int64, error) {
	stats := map[string]int64{}
	for _, table := range []string{"harvest_runs", "grade_runs", "graded_wallets", "tracking_runs", "tracking_hits"} {
		var count int64
		if err := s.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
			return nil, err
		}
		stats[table] = count
	}
	return stats, nil
}
