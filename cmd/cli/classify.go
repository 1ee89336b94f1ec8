package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	appservice "github.com/turtacn/aewis/internal/application/service"
	"github.com/turtacn/aewis/internal/infrastructure/ingest"
	"github.com/turtacn/aewis/pkg/constants"
	"github.com/turtacn/aewis/pkg/logger"
)

func newClassifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify a CSV file and print the upload summary without storing it",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("file")
			college, _ := cmd.Flags().GetString("college")
			if path == "" {
				return fmt.Errorf("--file is required")
			}
			if !ingest.IsCSVFilename(path) {
				return fmt.Errorf("%s: CSV file required", path)
			}

			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			observations, err := ingest.ReadObservations(f)
			if err != nil {
				return err
			}

			svc := appservice.NewRiskAppService(nil, nil, nil, nil, nil, appservice.RiskAppServiceConfig{}, logger.NewNoopLogger())
			resp, err := svc.ClassifyObservations(cmd.Context(), college, observations)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			full, _ := cmd.Flags().GetBool("full")
			if full {
				return enc.Encode(resp)
			}
			return enc.Encode(struct {
				CollegeID string      `json:"college_id"`
				Summary   interface{} `json:"summary"`
			}{resp.CollegeID, resp.Summary})
		},
	}
	cmd.Flags().String("file", "", "CSV file to classify")
	cmd.Flags().String("college", constants.DemoCollegeAlias, "college id reported in the output")
	cmd.Flags().Bool("full", false, "print heatmap and top risks as well")
	return cmd
}
