package main

import (
	"github.com/spf13/cobra"

	"github.com/wallet-hunter/pkg/dashboard"
	"github.com/wallet-hunter/pkg/report"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent harvest runs and tracking hits from the ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		harvests, err := hunter.store.RecentHarvestRuns(limit)
		if err != nil {
			return err
		}
		hits, err := hunter.store.RecentTrackingHits(limit)
		if err != nil {
			return err
		}
		report.History(cmd.OutOrStdout(), harvests, hits)
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the ledger dashboard over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetInt("port")
		if port == 0 {
			port = hunter.cfg.DashboardPort
		}
		return dashboard.New(hunter.store, port).Run(cmd.Context())
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "rows per table")
	serveCmd.Flags().Int("port", 0, "listen port (default DASHBOARD_PORT)")
}
