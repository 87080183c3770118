package main

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/xint-dev/xint/internal/budget"
)

var (
	costsPeriod string
	costsJSON   bool

	costsCmd = &cobra.Command{
		Use:   "costs",
		Short: "Inspect and manage the daily budget",
	}

	costsShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Show spend for a period (today, week, month or all)",
		Args:  cobra.NoArgs,
		RunE:  runCostsShow,
	}

	costsRecordCmd = &cobra.Command{
		Use:   "record <operation> <usd>",
		Short: "Record a spend entry",
		Args:  cobra.ExactArgs(2),
		RunE:  runCostsRecord,
	}

	costsLimitCmd = &cobra.Command{
		Use:   "limit <usd>",
		Short: "Set the daily budget limit",
		Args:  cobra.ExactArgs(1),
		RunE:  runCostsLimit,
	}
)

func init() {
	costsShowCmd.Flags().StringVar(&costsPeriod, "period", string(budget.PeriodToday), "period to summarize")
	costsShowCmd.Flags().BoolVar(&costsJSON, "json", false, "print the summary as JSON")
	costsCmd.AddCommand(costsShowCmd)
	costsCmd.AddCommand(costsRecordCmd)
	costsCmd.AddCommand(costsLimitCmd)
}

func openTracker(cmd *cobra.Command) (budget.Tracker, error) {
	cfg, logger, err := setup()
	if err != nil {
		return nil, err
	}
	tracker, err := budget.NewTracker(cmd.Context(), logger, cfg.Budget)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize budget tracker: %w", err)
	}
	return tracker, nil
}

func parseUSD(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid USD amount %q", s)
	}
	return v, nil
}

func runCostsShow(cmd *cobra.Command, _ []string) error {
	period, err := budget.ParsePeriod(costsPeriod)
	if err != nil {
		return err
	}
	tracker, err := openTracker(cmd)
	if err != nil {
		return err
	}
	defer tracker.Close()

	sum, err := tracker.Summary(cmd.Context(), period)
	if err != nil {
		return fmt.Errorf("failed to load cost summary: %w", err)
	}

	out := cmd.OutOrStdout()
	if costsJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(sum)
	}
	fmt.Fprintf(out, "Period:    %s\n", sum.Period)
	fmt.Fprintf(out, "Total:     %s (%d calls)\n", budget.FormatUSD(sum.TotalUSD), sum.Calls)
	fmt.Fprintf(out, "Today:     %s of %s\n", budget.FormatUSD(sum.Today.Spent), budget.FormatUSD(sum.Today.Limit))
	fmt.Fprintf(out, "Remaining: %s\n", budget.FormatUSD(sum.Today.Remaining))
	if !sum.Today.Allowed {
		fmt.Fprintln(out, "Budget exhausted: guarded tools are denied until tomorrow")
	}
	for _, op := range slices.Sorted(maps.Keys(sum.ByOperation)) {
		t := sum.ByOperation[op]
		fmt.Fprintf(out, "  %-28s %6d calls  %s\n", op, t.Calls, budget.FormatUSD(t.CostUSD))
	}
	return nil
}

func runCostsRecord(cmd *cobra.Command, args []string) error {
	cost, err := parseUSD(args[1])
	if err != nil {
		return err
	}
	tracker, err := openTracker(cmd)
	if err != nil {
		return err
	}
	defer tracker.Close()

	if err := tracker.Spend(cmd.Context(), budget.Entry{Operation: args[0], CostUSD: cost}); err != nil {
		return fmt.Errorf("failed to record spend: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s for %s\n", budget.FormatUSD(cost), args[0])
	return nil
}

func runCostsLimit(cmd *cobra.Command, args []string) error {
	limit, err := parseUSD(args[0])
	if err != nil {
		return err
	}
	tracker, err := openTracker(cmd)
	if err != nil {
		return err
	}
	defer tracker.Close()

	if err := tracker.SetLimit(cmd.Context(), limit); err != nil {
		return fmt.Errorf("failed to set limit: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Daily limit set to %s\n", budget.FormatUSD(limit))
	return nil
}
