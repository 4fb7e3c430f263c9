package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"StockScope/internal/calculator"
	"StockScope/internal/format"
	"StockScope/internal/model"
)

var (
	newsLimit     int
	comparePeriod string
	fetchesLimit  int
)

var quoteCmd = &cobra.Command{
	Use:   "quote SYMBOL",
	Short: "Print the latest daily quote",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		symbol, err := format.NormalizeSymbol(args[0])
		if err != nil {
			return err
		}
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		q, err := a.collector.FetchLatestQuote(cmd.Context(), symbol)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), format.FormatQuote(q))
		return nil
	},
}

var marketCmd = &cobra.Command{
	Use:   "market",
	Short: "Print the major index moves",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		fmt.Fprint(cmd.OutOrStdout(), format.FormatMarketSummary(a.collector.FetchMarketSummary(cmd.Context())))
		return nil
	},
}

var newsCmd = &cobra.Command{
	Use:   "news SYMBOL",
	Short: "Print recent headlines",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		symbol, err := format.NormalizeSymbol(args[0])
		if err != nil {
			return err
		}
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		items, err := a.collector.FetchNews(cmd.Context(), symbol, newsLimit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, it := range items {
			fmt.Fprintf(out, "- %s\n  %s\n", it.Title, it.Link)
		}
		return nil
	},
}

var compareCmd = &cobra.Command{
	Use:   "compare SYMBOL SYMBOL...",
	Short: "Compare trend and risk across symbols",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		period, err := model.ParsePeriod(comparePeriod)
		if err != nil {
			return err
		}
		symbols := make([]string, 0, len(args))
		for _, raw := range args {
			s, err := format.NormalizeSymbol(raw)
			if err != nil {
				return err
			}
			symbols = append(symbols, s)
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		bundles := a.collector.Compare(cmd.Context(), symbols, period)
		opts := calculator.DefaultSummaryOptions()
		opts.RiskFreeRate = a.cfg.Analysis.RiskFreeRate

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-8s %12s %10s %8s %10s  %s\n", "Symbol", "Last", "Vol", "Sharpe", "Drawdown", "Trend")
		for _, s := range symbols {
			b, ok := bundles[s]
			if !ok {
				fmt.Fprintf(out, "%-8s %s\n", s, "no data")
				continue
			}
			st := calculator.ComputeSummary(b.History, opts)
			fmt.Fprintf(out, "%-8s %12s %10s %8s %10s  %s\n", s,
				format.FormatCurrency(b.LastClose()),
				format.FormatFraction(st.Volatility, 2),
				format.FormatRatio(st.SharpeRatio),
				format.FormatFraction(st.MaxDrawdown, 2),
				st.Trend)
		}
		return nil
	},
}

var fetchesCmd = &cobra.Command{
	Use:   "fetches",
	Short: "Print the recent fetch audit trail",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		events, err := a.recorder.RecentFetches(fetchesLimit)
		if err != nil {
			return err
		}
		sort.SliceStable(events, func(i, j int) bool { return events[i].Timestamp.After(events[j].Timestamp) })
		out := cmd.OutOrStdout()
		for _, e := range events {
			fmt.Fprintf(out, "%s %-10s %-8s %-4s %-9s %s\n",
				e.Timestamp.Format("2006-01-02 15:04:05"), e.Operation, e.Symbol, e.Period, e.Outcome,
				strings.TrimSpace(e.Reason))
		}
		return nil
	},
}

func init() {
	newsCmd.Flags().IntVarP(&newsLimit, "limit", "n", 5, "number of headlines")
	compareCmd.Flags().StringVarP(&comparePeriod, "period", "p", string(model.DefaultPeriod), "lookback period")
	fetchesCmd.Flags().IntVarP(&fetchesLimit, "limit", "n", 20, "number of events")
	rootCmd.AddCommand(quoteCmd, marketCmd, newsCmd, compareCmd, fetchesCmd)
}
