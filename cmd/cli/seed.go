package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	appservice "github.com/turtacn/aewis/internal/application/service"
	"github.com/turtacn/aewis/internal/config"
	"github.com/turtacn/aewis/internal/infrastructure/demodata"
	"github.com/turtacn/aewis/internal/infrastructure/events"
	"github.com/turtacn/aewis/internal/infrastructure/monitoring"
	"github.com/turtacn/aewis/internal/infrastructure/persistence/postgres"
	"github.com/turtacn/aewis/pkg/constants"
)

func newSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Replace a college's collection with synthetic observations",
		RunE: func(cmd *cobra.Command, args []string) error {
			configFile, _ := cmd.Flags().GetString("config")
			college, _ := cmd.Flags().GetString("college")
			rows, _ := cmd.Flags().GetInt("rows")
			seed, _ := cmd.Flags().GetInt64("seed")
			if rows <= 0 {
				return fmt.Errorf("--rows must be positive")
			}

			log, err := monitoring.NewZapLogger(&config.LogConfig{Level: "warn", Format: "console"})
			if err != nil {
				return err
			}
			cfg, err := config.LoadConfig(configFile, log)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			db, err := postgres.NewDBConnection(ctx, &cfg.Database, log)
			if err != nil {
				return err
			}
			defer db.Close()
			if !cfg.Database.AutoMigrate {
				if err := db.AutoMigrate(ctx); err != nil {
					return err
				}
			}

			repo := postgres.NewRiskRepository(db.DB(), cfg.Database.BatchSize, nil, log)
			svc := appservice.NewRiskAppService(repo, nil, events.NewLogPublisher(log), nil, nil,
				appservice.RiskAppServiceConfig{ClassifyWorkers: cfg.Scoring.ClassifyWorkers, RiskTrend: cfg.Scoring.RiskTrendPlaceholder},
				log)

			resp, err := svc.UploadObservations(ctx, college, demodata.NewGenerator(seed).Generate(rows))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %s: %d rows (%d high, %d medium, %d low), crisis subjects %v\n",
				resp.CollegeID, resp.Summary.TotalStudents, resp.Summary.HighRisk, resp.Summary.MediumRisk,
				resp.Summary.LowRisk, resp.Summary.CrisisSubjects)
			return nil
		},
	}
	cmd.Flags().String("college", constants.DefaultCollegeID, "college id to replace")
	cmd.Flags().Int("rows", demodata.DefaultRows, "number of rows")
	cmd.Flags().Int64("seed", demodata.DefaultSeed, "random seed")
	return cmd
}
