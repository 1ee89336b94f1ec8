package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/turtacn/aewis/internal/infrastructure/demodata"
)

func newDemoCSVCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo-csv",
		Short: "Write a synthetic observation CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, _ := cmd.Flags().GetInt("rows")
			seed, _ := cmd.Flags().GetInt64("seed")
			out, _ := cmd.Flags().GetString("out")
			if rows <= 0 {
				return fmt.Errorf("--rows must be positive")
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}
			if err := demodata.WriteCSV(w, rows, seed); err != nil {
				return fmt.Errorf("write demo csv: %w", err)
			}
			if out != "-" {
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d rows to %s\n", rows, out)
			}
			return nil
		},
	}
	cmd.Flags().Int("rows", demodata.DefaultRows, "number of rows")
	cmd.Flags().Int64("seed", demodata.DefaultSeed, "random seed")
	cmd.Flags().String("out", "demo_data.csv", "output file, - for stdout")
	return cmd
}
