package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"StockScope/internal/model"
)

var (
	analyzePeriod     string
	analyzeCSV        string
	analyzeFinancials bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze SYMBOL",
	Short: "Fetch a symbol and print its analysis",
	Long: `Fetch price history and company data for SYMBOL, compute indicators and
summary statistics, and print a report.

Examples:
  stockscope analyze AAPL
  stockscope analyze msft --period 2y --financials
  stockscope analyze BRK.B --csv brk.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzePeriod, "period", "p", string(model.DefaultPeriod), "lookback period (1mo, 3mo, 6mo, 1y, 2y, 5y)")
	analyzeCmd.Flags().StringVar(&analyzeCSV, "csv", "", "also write the CSV export to this file")
	analyzeCmd.Flags().BoolVar(&analyzeFinancials, "financials", false, "fetch financial statements")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	period, err := model.ParsePeriod(analyzePeriod)
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	an := a.analyzer
	if analyzeFinancials {
		an = an.WithFinancials(true)
	}
	sess := a.sessions.Create()
	if _, err := an.Analyze(cmd.Context(), sess, args[0], period); err != nil {
		return err
	}

	report, err := an.Report(sess)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), report)

	if analyzeCSV == "" {
		return nil
	}
	f, err := os.Create(analyzeCSV)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()
	if err := an.Export(f, sess, time.Now()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nCSV written to %s\n", analyzeCSV)
	return nil
}
