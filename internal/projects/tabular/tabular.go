// Package tabular flattens project results into a header plus string rows.
package tabular

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/sciome/bmdexpress-web/internal/projects/domain"
)

// Projection is the uniform tabular view of a result. Every row has
// exactly len(ColumnHeader) cells.
type Projection struct {
	Name         string            `json:"name"`
	Kind         domain.ResultKind `json:"kind"`
	ColumnHeader []string          `json:"columnHeader"`
	Rows         [][]string        `json:"rows"`
}

// Project renders r. When the rows cannot be produced the header is kept
// and Rows is empty. Short rows are padded with empty cells and cells
// beyond the header are dropped.
func Project(r domain.Result) Projection {
	var kind domain.ResultKind
	switch r.(type) {
	case *domain.DoseResponseExperiment:
		kind = domain.KindExperiment
	case *domain.BMDResult:
		kind = domain.KindBMD
	case *domain.CategoryResult:
		kind = domain.KindCategory
	default:
		panic(fmt.Sprintf("tabular: unexpected result type %T", r))
	}

	header := r.ColumnHeader()
	if header == nil {
		header = []string{}
	}
	out := Projection{
		Name:         r.ResultName(),
		Kind:         kind,
		ColumnHeader: header,
		Rows:         [][]string{},
	}

	rows, err := r.RowData()
	if err != nil {
		return out
	}
	out.Rows = make([][]string, 0, len(rows))
	for _, row := range rows {
		cells := make([]string, len(header))
		for i := 0; i < len(cells) && i < len(row); i++ {
			cells[i] = Cell(row[i])
		}
		out.Rows = append(out.Rows, cells)
	}
	return out
}

// Cell renders a single value. The output does not depend on locale.
func Cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return formatFloat(x, 64)
	case float32:
		return formatFloat(float64(x), 32)
	case *float64:
		if x == nil {
			return ""
		}
		return formatFloat(*x, 64)
	case int:
		return strconv.FormatInt(int64(x), 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case []string:
		return strings.Join(x, ";")
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func formatFloat(f float64, bits int) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, bits)
}
