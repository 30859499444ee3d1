package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wasatch-geo/riskmodel/internal/dataset"
	"github.com/wasatch-geo/riskmodel/internal/model"
	"github.com/wasatch-geo/riskmodel/internal/score"
	"github.com/wasatch-geo/riskmodel/internal/store"
)

var (
	fitDataFlags  dataFlags
	fitModelFlags modelFlags
	fitOut        string
)

var fitCmd = &cobra.Command{
	Use:   "fit",
	Short: "Fit a classifier on the full sample and write a model artifact",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		m, metrics, err := runFit(ctx, st, fitDataFlags, fitModelFlags.toConfig(), fitOut)
		if err != nil {
			return err
		}

		fmt.Printf("model: %s (%d features)\n", m.Variant(), len(m.Features()))
		for _, name := range sortedKeys(metrics) {
			fmt.Printf("training %s: %.4f\n", name, metrics[name])
		}
		if f, ok := m.(*model.Forest); ok {
			if imp := f.Importance(); imp != nil {
				fmt.Println("feature importance:")
				for _, name := range sortedKeys(imp) {
					fmt.Printf("  %s: %.4f\n", name, imp[name])
				}
			}
		}
		fmt.Printf("artifact written to %s\n", fitOut)
		return nil
	},
}

// runFit fits the configured model on the full sample, reports training
// metrics, writes the artifact, and records the run.
func runFit(ctx context.Context, st store.Store, df dataFlags, mc model.Config, out string) (model.Model, map[string]float64, error) {
	s, features, err := df.load(ctx)
	if err != nil {
		return nil, nil, err
	}

	run, err := st.CreateRun(ctx, store.RunKindFit, df.data, mc)
	if err != nil {
		return nil, nil, err
	}

	m, metrics, err := fitAndScore(s, features, mc)
	if err != nil {
		_ = st.FailRun(ctx, run.ID, err)
		return nil, nil, err
	}

	if err := model.Save(out, m); err != nil {
		_ = st.FailRun(ctx, run.ID, err)
		return nil, nil, err
	}

	if err := st.CompleteRun(ctx, run.ID, map[string]any{"training": metrics, "artifact": out}); err != nil {
		return nil, nil, err
	}

	zap.L().Info("model fitted",
		zap.String("run_id", run.ID),
		zap.String("variant", string(mc.Variant)),
		zap.Int("records", s.Len()),
		zap.Int("features", len(features)),
	)
	return m, metrics, nil
}

// fitAndScore trains on the full sample and scores the training
// predictions with the default metric set.
func fitAndScore(s *dataset.Sample, features []string, mc model.Config) (model.Model, map[string]float64, error) {
	x, err := s.Matrix(features)
	if err != nil {
		return nil, nil, err
	}
	y := s.Labels()

	m, err := model.Fit(mc, features, x, y)
	if err != nil {
		return nil, nil, err
	}

	probs, err := m.Predict(x)
	if err != nil {
		return nil, nil, err
	}

	metrics := make(map[string]float64)
	for _, metric := range score.Defaults() {
		v, err := metric.Score(probs, y)
		if err != nil {
			return nil, nil, eris.Wrapf(err, "score training predictions")
		}
		metrics[metric.Name()] = v
	}
	return m, metrics, nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func init() {
	fitDataFlags.register(fitCmd)
	fitModelFlags.register(fitCmd)
	fitCmd.Flags().StringVar(&fitOut, "out", "model.json", "output model artifact path")
	rootCmd.AddCommand(fitCmd)
}
