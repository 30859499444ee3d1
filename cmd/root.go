package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wasatch-geo/riskmodel/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "riskmodel",
	Short: "Spatial binary-classification risk modelling toolkit",
	Long:  "Fits logistic-regression and random-forest classifiers on labeled spatial point data, evaluates them with seeded k-fold cross-validation (AUROC, accuracy), and projects trained models over gridded covariate surfaces to produce risk maps.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
