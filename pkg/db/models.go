package db

import (
	"time"
)

// ---- Ledger Models ----

type HarvestRun struct {
	ID         int64     `json:"id"`
	Token      string    `json:"token"`
	Label      string    `json:"label"`
	Direction  string    `json:"direction"` // "buy","sell"
	Path       string    `json:"path"`
	StartBlock uint64    `json:"start_block"`
	EndBlock   uint64    `json:"end_block"`
	Pages      int       `json:"pages"`
	Added      int       `json:"added"`
	Complete   bool      `json:"complete"`
	CreatedAt  time.Time `json:"created_at"`
}

type GradeRun struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Report    string    `json:"report"`
	Lists     int       `json:"lists"`
	Total     int       `json:"total"`
	Flagged   int       `json:"flagged"`
	Purged    bool      `json:"purged"`
	CreatedAt time.Time `json:"created_at"`
}

type GradedWallet struct {
	ID         int64     `json:"id"`
	GradeRunID int64     `json:"grade_run_id"`
	Address    string    `json:"address"`
	Labels     []string  `json:"labels"`
	CreatedAt  time.Time `json:"created_at"`
}

type TrackingRun struct {
	ID         int64     `json:"id"`
	Since      time.Time `json:"since"`
	SinceBlock uint64    `json:"since_block"`
	Path       string    `json:"path"`
	Wallets    int       `json:"wallets"`
	Skipped    int       `json:"skipped"`
	Tokens     int       `json:"tokens"`
	CreatedAt  time.Time `json:"created_at"`
}

type TrackingHit struct {
	ID        int64     `json:"id"`
	RunID     int64     `json:"run_id"`
	Token     string    `json:"token"`
	Buyers    []string  `json:"buyers"` // buyer descriptions
	CreatedAt time.Time `json:"created_at"`
}
