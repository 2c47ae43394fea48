package main

import (
	"fmt"
	"os"

	"diaries-qc/internal/models"

	"github.com/spf13/cobra"
)

var (
	startFlag   string
	endFlag     string
	monthFlag   string
	outFlag     string
	publishFlag bool
	rootCmd     = &cobra.Command{
		Use:           "diaries-qc",
		Short:         "Data-quality checks for financial diaries interviews",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func reportCmd(kind models.ReportKind, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(kind),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), kind, runFlags{
				start:   startFlag,
				end:     endFlag,
				month:   monthFlag,
				out:     outFlag,
				publish: publishFlag,
			})
		},
	}
}

func main() {
	rootCmd.PersistentFlags().StringVar(&startFlag, "start", "", "First interview day, YYYY-MM-DD (default: 30 days ago)")
	rootCmd.PersistentFlags().StringVar(&endFlag, "end", "", "Last interview day, YYYY-MM-DD (default: yesterday)")
	rootCmd.PersistentFlags().StringVar(&monthFlag, "month", "", "Calendar month YYYY-MM instead of --start/--end")
	rootCmd.PersistentFlags().StringVarP(&outFlag, "out", "o", "", "Output file (.csv or .xlsx); CSV to stdout when empty")
	rootCmd.PersistentFlags().BoolVar(&publishFlag, "publish", false, "Publish the report to Redis for the dashboard")

	rootCmd.AddCommand(
		reportCmd(models.KindScorecard, "Per-interview completion scorecard"),
		reportCmd(models.KindIssues, "Cashflow and health data-quality issues"),
		reportCmd(models.KindRASummary, "Per-RA schedule and quality summary"),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
