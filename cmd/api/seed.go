package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/voltai/billing-service/internal/billing"
	"github.com/voltai/billing-service/internal/service"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the demo customers into Postgres",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newBootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.close()

		if !rt.pg.Enabled() {
			return fmt.Errorf("seed requires postgres storage; set POSTGRES_DSN")
		}

		customers := service.NewCustomerService(service.CustomerDependencies{
			CustomerRepo: rt.customers,
			Calculator:   billing.NewCalculator(rt.cfg.Billing.RatePerKWh),
			Logger:       rt.logger,
			Threshold:    rt.cfg.Billing.HighUsageThreshold,
		})
		created, err := service.SeedDemoCustomers(cmd.Context(), customers)
		if err != nil {
			return err
		}
		rt.logger.Info("demo customers seeded", zap.Int("created", created))
		return nil
	},
}
