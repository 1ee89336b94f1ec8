package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd builds the `aewis-admin` command tree.
// NewRootCmd 构建 `aewis-admin` 命令树。
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "aewis-admin",
		Short: "A CLI tool for administering the academic early-warning service.",
		Long: `aewis-admin generates synthetic observation data, seeds a college's
collection through the configured database and classifies CSV files offline.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("config", "", "path to config.yaml")

	rootCmd.AddCommand(newDemoCSVCmd(), newSeedCmd(), newClassifyCmd())
	return rootCmd
}

// Execute is the main entry point for the CLI application.
// It parses the command-line arguments and executes the appropriate command.
// If an error occurs, it prints the error and exits.
// Execute 是 CLI 应用程序的主入口点。
// 它解析命令行参数并执行相应的命令。如果发生错误，它会打印错误并退出。
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
