package nodes

import (
	"fmt"
	"strings"

	"github.com/hr-assistant/server/internal/agent/model"
)

// FormatResult renders query rows as prose for the response prompt.
// A single column becomes a sentence; several columns become one line per row.
func FormatResult(rs *model.ResultSet) string {
	if rs.Empty() {
		return NoResultsText
	}

	if len(rs.Columns) == 1 {
		values := make([]string, 0, len(rs.Rows))
		for _, row := range rs.Rows {
			values = append(values, formatValue(cell(row, 0)))
		}
		return fmt.Sprintf("The %ss are: %s.", rs.Columns[0], strings.Join(values, ", "))
	}

	lines := make([]string, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		pairs := make([]string, 0, len(rs.Columns))
		for i, col := range rs.Columns {
			pairs = append(pairs, col+": "+formatValue(cell(row, i)))
		}
		lines = append(lines, strings.Join(pairs, ", "))
	}
	return "Here is the requested data:\n" + strings.Join(lines, "\n")
}

func cell(row []any, i int) any {
	if i < len(row) {
		return row[i]
	}
	return nil
}

func formatValue(v any) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprint(v)
}
