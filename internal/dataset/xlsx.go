package dataset

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// ReadXLSXFile reads the first sheet of a spreadsheet into a table. The
// first row is the header; cells that do not parse as numbers (including
// empty cells) become NaN, matching the CSV loader.
func ReadXLSXFile(path string) (*Table, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "xlsx: open %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("xlsx: no sheets in %s", path)
	}
	sheet := f.Sheets[0]

	if len(sheet.Rows) == 0 {
		return nil, eris.Errorf("xlsx: empty sheet in %s", path)
	}

	header := sheet.Rows[0]
	names := make([]string, len(header.Cells))
	for i, cell := range header.Cells {
		names[i] = strings.TrimSpace(cell.String())
	}

	values := make([][]float64, len(names))
	for _, row := range sheet.Rows[1:] {
		for i := range names {
			v := nan
			if i < len(row.Cells) {
				raw := strings.TrimSpace(row.Cells[i].String())
				if f, perr := strconv.ParseFloat(raw, 64); perr == nil {
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
