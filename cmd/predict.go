package main

import (
	"context"
	"fmt"
	"math"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wasatch-geo/riskmodel/internal/model"
	"github.com/wasatch-geo/riskmodel/internal/raster"
	"github.com/wasatch-geo/riskmodel/internal/store"
)

var (
	predictModel   string
	predictGrid    string
	predictOut     string
	predictSRID    int
	predictWorkers int
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Project a trained model over a covariate grid",
	Long:  "Loads one ESRI ASCII grid (.asc) per feature layer from a directory, applies the trained model to every unmasked cell, and writes the risk surface as an ASCII grid.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		srid := predictSRID
		if srid == 0 {
			srid = cfg.Raster.SRID
		}
		workers := predictWorkers
		if workers == 0 {
			workers = cfg.Raster.Workers
		}

		summary, err := runPredict(ctx, st, predictModel, predictGrid, predictOut, srid, workers)
		if err != nil {
			return err
		}
		fmt.Printf("risk surface: %d cells predicted, %d masked (range %.4f-%.4f)\n",
			summary.predicted, summary.masked, summary.min, summary.max)
		fmt.Printf("written to %s\n", predictOut)
		return nil
	},
}

type predictSummary struct {
	predicted, masked int
	min, max          float64
}

// runPredict loads the model artifact and covariate grid, predicts the risk
// surface, writes it, and records the run.
func runPredict(ctx context.Context, st store.Store, modelPath, gridDir, out string, srid, workers int) (*predictSummary, error) {
	m, err := model.Load(modelPath)
	if err != nil {
		return nil, err
	}
	g, err := raster.LoadDir(gridDir, srid)
	if err != nil {
		return nil, err
	}

	run, err := st.CreateRun(ctx, store.RunKindPredict, gridDir, map[string]any{
		"artifact": modelPath,
		"variant":  m.Variant(),
		"features": m.Features(),
	})
	if err != nil {
		return nil, err
	}

	risk, err := raster.PredictSurface(ctx, m, g, workers)
	if err != nil {
		_ = st.FailRun(ctx, run.ID, err)
		return nil, err
	}
	if err := raster.WriteASCFile(out, risk, raster.RiskLayer); err != nil {
		_ = st.FailRun(ctx, run.ID, err)
		return nil, err
	}

	summary := summarizeRisk(risk)
	if err := st.CompleteRun(ctx, run.ID, map[string]any{
		"output":    out,
		"predicted": summary.predicted,
		"masked":    summary.masked,
	}); err != nil {
		return nil, err
	}

	zap.L().Info("prediction run complete",
		zap.String("run_id", run.ID),
		zap.String("output", out),
	)
	return summary, nil
}

func summarizeRisk(g *raster.Grid) *predictSummary {
	values, _ := g.Layer(raster.RiskLayer)
	s := &predictSummary{min: math.Inf(1), max: math.Inf(-1)}
	for _, v := range values {
		if v == g.NoData {
			s.masked++
			continue
		}
		s.predicted++
		s.min = math.Min(s.min, v)
		s.max = math.Max(s.max, v)
	}
	return s
}

func init() {
	predictCmd.Flags().StringVar(&predictModel, "model", "", "trained model artifact")
	predictCmd.Flags().StringVar(&predictGrid, "grid", "", "directory of .asc covariate layers")
	predictCmd.Flags().StringVar(&predictOut, "out", "risk.asc", "output risk surface path")
	predictCmd.Flags().IntVar(&predictSRID, "srid", 0, "grid spatial reference system (default from config)")
	predictCmd.Flags().IntVar(&predictWorkers, "workers", 0, "parallel row workers (0 = all cores)")
	_ = predictCmd.MarkFlagRequired("model")
	_ = predictCmd.MarkFlagRequired("grid")
	rootCmd.AddCommand(predictCmd)
}
