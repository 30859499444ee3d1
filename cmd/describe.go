package main

import (
	"fmt"
	"math"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"
)

var describeData string

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Print per-column summary statistics for a dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := loadTable(describeData)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "column\tn\tmissing\tmean\tstddev\tmin\tmedian\tmax")
		for _, name := range t.Names() {
			col, _ := t.Column(name)
			s := summarize(col)
			fmt.Fprintf(w, "%s\t%d\t%d\t%.4g\t%.4g\t%.4g\t%.4g\t%.4g\n",
				name, s.n, s.missing, s.mean, s.stddev, s.min, s.median, s.max)
		}
		return w.Flush()
	},
}

type colSummary struct {
	n, missing                     int
	mean, stddev, min, median, max float64
}

// summarize computes descriptive statistics over the finite values of a
// column.
func summarize(col []float64) colSummary {
	var vals []float64
	for _, v := range col {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			vals = append(vals, v)
		}
	}
	s := colSummary{n: len(vals), missing: len(col) - len(vals)}
	if len(vals) == 0 {
		s.mean, s.stddev, s.min, s.median, s.max = math.NaN(), math.NaN(), math.NaN(), math.NaN(), math.NaN()
		return s
	}
	sort.Float64s(vals)
	s.mean = stat.Mean(vals, nil)
	s.stddev = stat.StdDev(vals, nil)
	s.min = vals[0]
	s.max = vals[len(vals)-1]
	s.median = stat.Quantile(0.5, stat.Empirical, vals, nil)
	return s
}

func init() {
	describeCmd.Flags().StringVar(&describeData, "data", "", "input dataset (.csv or .shp)")
	_ = describeCmd.MarkFlagRequired("data")
	rootCmd.AddCommand(describeCmd)
}
