package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xint-dev/xint/internal/reliability"
)

var (
	reliabilityCmd = &cobra.Command{
		Use:   "reliability",
		Short: "Inspect recorded command results",
	}

	reliabilityShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Show per-operation success rates and latency",
		Args:  cobra.NoArgs,
		RunE:  runReliabilityShow,
	}
)

func init() {
	reliabilityCmd.AddCommand(reliabilityShowCmd)
}

func runReliabilityShow(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	report, err := reliability.NewFileRecorder(logger, cfg.Reliability.Path).Report(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load reliability report: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(report) == 0 {
		fmt.Fprintln(out, "No operations recorded")
		return nil
	}
	fmt.Fprintf(out, "%-32s %7s %7s %9s %9s\n", "OPERATION", "TOTAL", "OK", "RATE", "AVG MS")
	for _, s := range report {
		fmt.Fprintf(out, "%-32s %7d %7d %8.1f%% %9.1f\n",
			s.Operation, s.Total, s.Success, s.SuccessRate()*100, s.AvgMs())
	}
	return nil
}
