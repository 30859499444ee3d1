// Package feature declares which sample columns act as model inputs.
package feature

import "github.com/wasatch-geo/riskmodel/internal/errs"

// Select returns the predictive feature set: the table columns minus the
// exclusion set (identifiers, coordinates, and the label). Column order is
// preserved. Excluding a column that does not exist, or excluding every
// column, is a schema error.
func Select(columns, exclude []string) ([]string, error) {
	have := make(map[string]bool, len(columns))
	for _, c := range columns {
		have[c] = true
	}

	drop := make(map[string]bool, len(exclude))
	for _, e := range exclude {
		if !have[e] {
			return nil, errs.Schemaf("feature: excluded column %q not found", e)
		}
		drop[e] = true
	}

	var features []string
	for _, c := range columns {
		if !drop[c] {
			features = append(features, c)
		}
	}
	if len(features) == 0 {
		return nil, errs.Schemaf("feature: exclusion set removes every column")
	}
	return features, nil
}

// Validate checks that every feature name exists among the given columns.
func Validate(features, columns []string) error {
	have := make(map[string]bool, len(columns))
	for _, c := range columns {
		have[c] = true
	}
	for _, f := range features {
		if !have[f] {
			return errs.Schemaf("feature: column %q not found", f)
		}
	}
	return nil
}
