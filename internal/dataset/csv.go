package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// ReadCSV parses a comma-separated record set with a header row into a
// table. Cells that do not parse as numbers (including empty cells) become
// NaN so the schema checks downstream can reject them where it matters.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, eris.New("csv: empty input")
	}
	if err != nil {
		return nil, eris.Wrap(err, "csv: read header")
	}

	names := make([]string, len(header))
	for i, h := range header {
		names[i] = strings.TrimSpace(h)
	}

	values := make([][]float64, len(names))
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "csv: read record")
		}
		for i := range names {
			v := nan
			if i < len(record) {
				if f, perr := strconv.ParseFloat(strings.TrimSpace(record[i]), 64); perr == nil {
					v = f
				}
			}
			values[i] = append(values[i], v)
		}
	}

	t := NewTable()
	for i, name := range names {
		if err := t.AddColumn(name, values[i]); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// ReadCSVFile reads a CSV table from disk.
func ReadCSVFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "csv: open %s", path)
	}
	defer func() { _ = f.Close() }()
	return ReadCSV(f)
}
