package tui

import (
	"encoding/json"
	"fmt"
	"sort"

	table "github.com/charmbracelet/bubbles/table"
	"github.com/paulmach/orb/geojson"
)

// refreshAttrsFromCurrent rebuilds the table columns/rows from the dataset
func (m *Model) refreshAttrsFromCurrent() {
	cols, rows := buildAttributes(m.engine.Features())
	// If there are no columns or rows, disable attributes view to avoid rendering panics
	if len(cols) == 0 || len(rows) == 0 {
		m.showAttrs = false
		m.status = "no attributes for current dataset"
		return
	}
	tcols := make([]table.Column, 0, len(cols)+1)
	tcols = append(tcols, table.Column{Title: "#", Width: 4})
	for _, c := range cols {
		tcols = append(tcols, table.Column{Title: c, Width: min(24, len(c)+2)})
	}
	trows := make([]table.Row, 0, len(rows))
	for i, r := range rows {
		row := make([]string, 0, len(r)+1)
		row = append(row, fmt.Sprintf("%d", i+1))
		row = append(row, r...)
		trows = append(trows, table.Row(row))
	}
	// Avoid transient mismatch: clear rows, set columns, then set rows
	m.tbl.SetRows(nil)
	m.tbl.SetColumns(tcols)
	m.tbl.SetRows(trows)
	if sel := m.engine.Selection(); sel >= 0 && sel < len(trows) {
		m.tbl.SetCursor(sel)
	}
}

// buildAttributes unions the property keys of fs and returns one row per
// feature. Keys are sorted so the column order is stable.
func buildAttributes(fs []*geojson.Feature) ([]string, [][]string) {
	seen := map[string]bool{}
	var cols []string
	for _, f := range fs {
		if f == nil {
			continue
		}
		for k := range f.Properties {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}
	sort.Strings(cols)
	if len(cols) == 0 {
		return nil, nil
	}
	rows := make([][]string, 0, len(fs))
	for _, f := range fs {
		vals := make([]string, len(cols))
		if f != nil {
			for i, k := range cols {
				vals[i] = formatValue(f.Properties[k])
			}
		}
		rows = append(rows, vals)
	}
	return cols, rows
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return fmt.Sprintf("%g", t)
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		bs, _ := json.Marshal(t)
		return string(bs)
	}
}
