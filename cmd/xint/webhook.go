package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xint-dev/xint/internal/common/config"
	"github.com/xint-dev/xint/internal/webhook"
)

var (
	webhookCmd = &cobra.Command{
		Use:   "webhook",
		Short: "Webhook helpers",
	}

	webhookCheckCmd = &cobra.Command{
		Use:   "check <url>",
		Short: "Check a webhook URL against the admission rules",
		Long:  `Check a webhook URL. Only https is accepted, except http on loopback hosts. XINT_WEBHOOK_ALLOWED_HOSTS restricts hosts when set.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			canonical, err := webhook.NewChecker(config.EnvSettings()).Validate(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Webhook URL accepted: %s\n", canonical)
			return nil
		},
	}
)

func init() {
	webhookCmd.AddCommand(webhookCheckCmd)
}
