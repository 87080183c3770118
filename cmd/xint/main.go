package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xint-dev/xint/internal/common/cnst"
	"github.com/xint-dev/xint/internal/common/config"
	"github.com/xint-dev/xint/pkg/logger"
	"github.com/xint-dev/xint/pkg/version"
)

var (
	configPath string

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of xint",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "xint version %s\n", version.Get())
		},
	}

	testCmd = &cobra.Command{
		Use:   "test",
		Short: "Validate the configuration file",
		RunE:  runTest,
	}

	rootCmd = &cobra.Command{
		Use:          cnst.CommandName,
		Short:        "xint MCP server",
		Long:         `xint serves X research and package tools to MCP clients, gated by a policy mode and a daily budget`,
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "conf", "c", "", "path to configuration file (yaml or toml)")
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(webhookCmd)
	rootCmd.AddCommand(costsCmd)
	rootCmd.AddCommand(reliabilityCmd)
}

// loadConfig reads --conf when given. Without it a missing default file
// means built-in defaults.
func loadConfig() (*config.XintConfig, string, error) {
	if configPath != "" {
		return config.LoadConfig(configPath)
	}
	return config.LoadConfigOrDefault("")
}

// setup loads configuration and builds the logger shared by subcommands
func setup() (*config.XintConfig, *zap.Logger, error) {
	cfg, cfgPath, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration from %s: %w", cfgPath, err)
	}
	lg, err := logger.NewLogger(&cfg.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, lg, nil
}

func runTest(cmd *cobra.Command, _ []string) error {
	cfg, cfgPath, err := loadConfig()
	if err != nil {
		return fmt.Errorf("configuration test failed: %w", err)
	}
	out := cmd.OutOrStdout()
	if cfgPath == "" {
		fmt.Fprintln(out, "No configuration file found, built-in defaults are valid")
	} else {
		fmt.Fprintf(out, "Configuration file %s is valid\n", cfgPath)
	}
	fmt.Fprintf(out, "policy mode: %s\n", cfg.Policy.Mode)
	fmt.Fprintf(out, "budget storage: %s (enforce: %t, daily limit: %.2f USD)\n",
		cfg.Budget.Storage.Type, cfg.Budget.Enforce, cfg.Budget.DailyLimitUSD)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
