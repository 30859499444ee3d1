package resample

import (
	"context"
	"runtime"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wasatch-geo/riskmodel/internal/dataset"
	"github.com/wasatch-geo/riskmodel/internal/errs"
	"github.com/wasatch-geo/riskmodel/internal/model"
	"github.com/wasatch-geo/riskmodel/internal/score"
)

// Options configures a cross-validation run.
type Options struct {
	Folds    int   `json:"folds" yaml:"folds"`
	Stratify bool  `json:"stratify" yaml:"stratify"`
	Seed     int64 `json:"seed" yaml:"seed"`
	// Workers bounds fold-level parallelism; 0 uses all cores. Folds share
	// only the read-only sample and assignment, so no locking is involved.
	Workers int `json:"workers" yaml:"workers"`
}

// CrossValidate evaluates the configured model variant with k-fold
// cross-validation: train on k-1 folds, score the held-out fold, aggregate
// per-fold metric values with an unweighted mean.
func CrossValidate(ctx context.Context, s *dataset.Sample, features []string, cfg model.Config, metrics []score.Metric, opts Options) (*score.Report, error) {
	labels := s.Labels()

	var assignment Assignment
	var err error
	if opts.Stratify {
		assignment, err = StratifiedKFold(labels, opts.Folds, opts.Seed)
	} else {
		assignment, err = KFold(s.Len(), opts.Folds, opts.Seed)
	}
	if err != nil {
		return nil, err
	}

	if len(metrics) == 0 {
		metrics = score.Defaults()
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	log := zap.L().With(
		zap.String("variant", string(cfg.Variant)),
		zap.Int("folds", opts.Folds),
		zap.Bool("stratify", opts.Stratify),
		zap.Int64("seed", opts.Seed),
	)
	log.Info("starting cross-validation", zap.Int("records", s.Len()), zap.Int("workers", workers))
	start := time.Now()

	results := make([]score.FoldScore, opts.Folds)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for fold := 0; fold < opts.Folds; fold++ {
		fold := fold
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			fs, err := evaluateFold(s, features, cfg, metrics, assignment, labels, fold)
			if err != nil {
				return err
			}
			results[fold] = *fs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := score.Aggregate(results)
	log.Info("cross-validation complete",
		zap.Duration("elapsed", time.Since(start)),
		zap.Any("mean", report.Mean),
	)
	return report, nil
}

// evaluateFold trains on all folds but one and scores the held-out fold.
func evaluateFold(s *dataset.Sample, features []string, cfg model.Config, metrics []score.Metric, assignment Assignment, labels []float64, fold int) (*score.FoldScore, error) {
	train, test := assignment.Split(fold)

	if singleClass(labels, train) {
		return nil, errs.Resamplingf("training subset for fold %d contains a single class", fold)
	}

	trainX, err := s.MatrixRows(features, train)
	if err != nil {
		return nil, err
	}
	testX, err := s.MatrixRows(features, test)
	if err != nil {
		return nil, err
	}

	// Offset the seed per fold so ensemble fits differ across folds while the
	// whole run stays reproducible for a fixed seed.
	foldCfg := cfg
	foldCfg.Seed = cfg.Seed + int64(fold) + 1

	m, err := model.Fit(foldCfg, features, trainX, s.LabelsAt(train))
	if err != nil {
		return nil, eris.Wrapf(err, "resample: fit fold %d", fold)
	}
	probs, err := m.Predict(testX)
	if err != nil {
		return nil, eris.Wrapf(err, "resample: predict fold %d", fold)
	}

	testY := s.LabelsAt(test)
	fs := &score.FoldScore{Fold: fold, Size: len(test), Metrics: make(map[string]float64, len(metrics))}
	for _, metric := range metrics {
		v, err := metric.Score(probs, testY)
		if err != nil {
			return nil, errs.Resamplingf("fold %d: %s undefined on held-out set (%v); consider stratification", fold, metric.Name(), err)
		}
		fs.Metrics[metric.Name()] = v
	}

	zap.L().Debug("fold evaluated", zap.Int("fold", fold), zap.Int("test_size", len(test)))
	return fs, nil
}

func singleClass(labels []float64, idx []int) bool {
	var pos, neg bool
	for _, i := range idx {
		if labels[i] == 1 {
			pos = true
		} else {
			neg = true
		}
	}
	return !(pos && neg)
}
