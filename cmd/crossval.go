package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/wasatch-geo/riskmodel/internal/model"
	"github.com/wasatch-geo/riskmodel/internal/resample"
	"github.com/wasatch-geo/riskmodel/internal/score"
	"github.com/wasatch-geo/riskmodel/internal/store"
)

var (
	cvDataFlags  dataFlags
	cvModelFlags modelFlags
	cvFolds      int
	cvStratify   bool
	cvWorkers    int
	cvFormat     string
)

var crossvalCmd = &cobra.Command{
	Use:   "crossval",
	Short: "Evaluate a classifier with k-fold cross-validation",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		mc := cvModelFlags.toConfig()
		opts := cvOptions(cmd.Flags(), &mc)

		report, err := runCrossval(ctx, st, cvDataFlags, mc, opts)
		if err != nil {
			return err
		}
		return printReport(os.Stdout, report, cvFormat)
	},
}

// cvOptions merges the crossval flag values over the configured defaults.
// An explicitly passed flag always wins, so --seed 0 and --stratify=false
// are honored rather than falling back to the config.
func cvOptions(flags *pflag.FlagSet, mc *model.Config) resample.Options {
	opts := resample.Options{
		Folds:    cvFolds,
		Stratify: cvStratify,
		Seed:     mc.Seed,
		Workers:  cvWorkers,
	}
	if opts.Folds == 0 {
		opts.Folds = cfg.CV.Folds
	}
	if !flags.Changed("stratify") {
		opts.Stratify = cfg.CV.Stratify
	}
	if flags.Changed("seed") {
		opts.Seed = cvModelFlags.seed
		mc.Seed = cvModelFlags.seed
	} else if opts.Seed == 0 {
		opts.Seed = cfg.CV.Seed
	}
	if opts.Workers == 0 {
		opts.Workers = cfg.CV.Workers
	}
	return opts
}

// runCrossval cross-validates the configured model and records the run.
func runCrossval(ctx context.Context, st store.Store, df dataFlags, mc model.Config, opts resample.Options) (*score.Report, error) {
	s, features, err := df.load(ctx)
	if err != nil {
		return nil, err
	}

	run, err := st.CreateRun(ctx, store.RunKindCrossval, df.data, map[string]any{"model": mc, "resample": opts})
	if err != nil {
		return nil, err
	}

	report, err := resample.CrossValidate(ctx, s, features, mc, score.Defaults(), opts)
	if err != nil {
		_ = st.FailRun(ctx, run.ID, err)
		return nil, err
	}

	if err := st.CompleteRun(ctx, run.ID, report); err != nil {
		return nil, err
	}
	return report, nil
}

// printReport renders a score report as text, json, or yaml.
func printReport(w *os.File, report *score.Report, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(report), "encode report")
	case "yaml":
		return eris.Wrap(yaml.NewEncoder(w).Encode(report), "encode report")
	case "text", "":
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "fold\tsize\tauroc\taccuracy")
		for _, f := range report.Folds {
			fmt.Fprintf(tw, "%d\t%d\t%.4f\t%.4f\n", f.Fold, f.Size, f.Metrics["auroc"], f.Metrics["accuracy"])
		}
		fmt.Fprintf(tw, "mean\t\t%.4f\t%.4f\n", report.Mean["auroc"], report.Mean["accuracy"])
		return tw.Flush()
	default:
		return eris.Errorf("unknown output format %q", format)
	}
}

func init() {
	cvDataFlags.register(crossvalCmd)
	cvModelFlags.register(crossvalCmd)
	crossvalCmd.Flags().IntVar(&cvFolds, "folds", 0, "number of folds (default from config)")
	crossvalCmd.Flags().BoolVar(&cvStratify, "stratify", false, "preserve class ratio within folds (default from config)")
	crossvalCmd.Flags().IntVar(&cvWorkers, "workers", 0, "parallel fold workers (0 = all cores)")
	crossvalCmd.Flags().StringVar(&cvFormat, "format", "text", "output format: text, json, or yaml")
	rootCmd.AddCommand(crossvalCmd)
}
