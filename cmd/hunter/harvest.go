package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/wallet-hunter/pkg/db"
	"github.com/wallet-hunter/pkg/grader"
	"github.com/wallet-hunter/pkg/harvester"
	"github.com/wallet-hunter/pkg/report"
	"github.com/wallet-hunter/pkg/wallets"
)

var harvestCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Collect the buyers (or sellers) of a token between two date-times",
	Example: `  hunter harvest --token 0x2859e4544C4bB03966803b044A93563Bd2D0DD4D \
    --start "2022/05/21 13:50:30" --end "2022/05/21 14:50:30" --name shiba`,
	RunE: runHarvest,
}

var gradeCmd = &cobra.Command{
	Use:   "grade",
	Short: "Report wallets that appear in two or more harvested lists",
	RunE:  runGrade,
}

func init() {
	harvestCmd.Flags().String("token", "", "token contract address")
	harvestCmd.Flags().String("start", "", "start date-time, YYYY/MM/DD HH:MM:SS")
	harvestCmd.Flags().String("end", "", "end date-time, YYYY/MM/DD HH:MM:SS")
	harvestCmd.Flags().String("name", "", "label for the wallet list")
	harvestCmd.Flags().Bool("sell", false, "collect sellers instead of buyers")
	harvestCmd.Flags().BoolP("yes", "y", false, "overwrite an existing list without asking")
	for _, f := range []string{"token", "start", "end", "name"} {
		harvestCmd.MarkFlagRequired(f)
	}

	gradeCmd.Flags().String("name", "", "report name under the graded directory")
	gradeCmd.Flags().BoolP("yes", "y", false, "delete the graded lists without asking")
	gradeCmd.MarkFlagRequired("name")
}

func runHarvest(cmd *cobra.Command, args []string) error {
	client, err := hunter.explorerClient()
	if err != nil {
		return err
	}

	p := harvester.Params{Direction: wallets.Buy}
	p.Token, _ = cmd.Flags().GetString("token")
	p.Start, _ = cmd.Flags().GetString("start")
	p.End, _ = cmd.Flags().GetString("end")
	p.Label, _ = cmd.Flags().GetString("name")
	if sell, _ := cmd.Flags().GetBool("sell"); sell {
		p.Direction = wallets.Sell
	}

	res, err := harvester.New(hunter.cfg, client, confirmer(cmd)).Harvest(cmd.Context(), p)
	if res != nil {
		recordHarvest(res)
		report.Harvest(cmd.OutOrStdout(), res)
	}
	return err
}

func recordHarvest(res *harvester.Result) {
	_, err := hunter.store.InsertHarvestRun(db.HarvestRun{
		Token:      res.Token,
		Label:      res.Label,
		Direction:  string(res.Direction),
		Path:       res.Path,
		StartBlock: res.StartBlock,
		EndBlock:   res.EndBlock,
		Pages:      res.Pages,
		Added:      res.Added,
		Complete:   res.Complete,
	})
	if err != nil {
		log.Error().Err(err).Msg("record harvest run")
	}
}

func runGrade(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("name")

	res, err := grader.New(hunter.cfg, confirmer(cmd)).Grade(cmd.Context(), name)
	if res == nil {
		return err
	}
	if res.Lists >= 2 {
		recordGrade(res)
	}
	report.Grade(cmd.OutOrStdout(), res)
	return err
}

func recordGrade(res *grader.Result) {
	flagged := make([]db.GradedWallet, 0, len(res.Wallets))
	for _, w := range res.Wallets {
		flagged = append(flagged, db.GradedWallet{Address: w.Address, Labels: w.Labels})
	}
	_, err := hunter.store.InsertGradeRun(db.GradeRun{
		Name:   res.Name,
		Report: res.Report,
		Lists:  res.Lists,
		Total:  res.Total,
		Purged: res.Purged,
	}, flagged)
	if err != nil {
		log.Error().Err(err).Msg("record grade run")
	}
}
