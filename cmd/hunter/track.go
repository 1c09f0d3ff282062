package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/wallet-hunter/pkg/dashboard"
	"github.com/wallet-hunter/pkg/db"
	"github.com/wallet-hunter/pkg/explorer"
	"github.com/wallet-hunter/pkg/monitor"
	"github.com/wallet-hunter/pkg/report"
	"github.com/wallet-hunter/pkg/tracker"
)

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Find tokens bought by many tracked wallets since a point in time",
	RunE:  runTrack,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run tracking on TRACK_SCHEDULE until interrupted",
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().Bool("dashboard", false, "also serve the dashboard and /metrics on DASHBOARD_PORT")
	trackCmd.Flags().String("since", "", "look back to this date-time, YYYY/MM/DD HH:MM:SS (default TRACK_WINDOW ago)")
}

func runTrack(cmd *cobra.Command, args []string) error {
	since := time.Now().Add(-hunter.cfg.TrackWindow)
	if s, _ := cmd.Flags().GetString("since"); s != "" {
		t, err := time.ParseInLocation(explorer.DateTimeLayout, s, hunter.cfg.Location)
		if err != nil {
			return fmt.Errorf("--since: %w", err)
		}
		since = t
	}

	res, err := trackOnce(cmd.Context(), since)
	if err != nil {
		return err
	}
	report.Tracking(cmd.OutOrStdout(), res)
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	if _, err := hunter.explorerClient(); err != nil {
		return err
	}
	sched, err := monitor.NewScheduler(hunter.cfg, func(ctx context.Context, since time.Time) error {
		res, err := trackOnce(ctx, since)
		if err != nil {
			return err
		}
		report.Tracking(cmd.OutOrStdout(), res)
		return nil
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	errCh := make(chan error, 2)
	go func() { errCh <- sched.Run(ctx) }()
	if serve, _ := cmd.Flags().GetBool("dashboard"); serve {
		dash := dashboard.New(hunter.store, hunter.cfg.DashboardPort)
		go func() { errCh <- dash.Run(ctx) }()
	}

	err = <-errCh
	cancel()
	if errors.Is(err, context.Canceled) && cmd.Context().Err() != nil {
		err = nil
	}
	log.Info().Msg("goodbye 👋")
	return err
}

// trackOnce runs one tracking pass and records it in the ledger.
func trackOnce(ctx context.Context, since time.Time) (*tracker.Result, error) {
	client, err := hunter.explorerClient()
	if err != nil {
		return nil, err
	}
	res, err := tracker.New(hunter.cfg, client).Track(ctx, since)
	if err != nil {
		return nil, err
	}

	hits := make([]db.TrackingHit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hits = append(hits, db.TrackingHit{Token: h.Token, Buyers: h.Buyers})
	}
	_, err = hunter.store.InsertTrackingRun(db.TrackingRun{
		Since:      res.Since,
		SinceBlock: res.SinceBlock,
		Path:       res.Path,
		Wallets:    res.Wallets,
		Skipped:    res.Skipped,
		Tokens:     res.Tokens,
	}, hits)
	if err != nil {
		log.Error().Err(err).Msg("record tracking run")
	}
	return res, nil
}
