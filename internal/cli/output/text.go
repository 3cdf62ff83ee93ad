package output

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/yndnr/kvsh/internal/core/domain"
	"github.com/yndnr/kvsh/internal/resp"
)

// TextFormatter renders results as human-readable lines.
type TextFormatter struct{}

// Format writes the lines for data, one per row.
func (f *TextFormatter) Format(w io.Writer, data any) error {
	lines, err := Lines(data)
	if err != nil {
		return err
	}
	for _, line := range lines {
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// Lines returns the display lines for a reply, typed value or scan page.
func Lines(data any) ([]string, error) {
	switch v := data.(type) {
	case resp.Reply:
		return ReplyLines(v), nil
	case domain.Value:
		return ValueLines(v), nil
	case ScanPage:
		return ScanLines(v), nil
	case *ScanPage:
		return ScanLines(*v), nil
	case nil:
		return []string{"(nil)"}, nil
	default:
		return nil, fmt.Errorf("output: cannot format %T as text", data)
	}
}

// ReplyLines renders a generic reply. Arrays get a count header and one
// 1-indexed line per element; nested arrays are shown inline.
func ReplyLines(r resp.Reply) []string {
	switch v := r.(type) {
	case nil, resp.Nil:
		return []string{"(nil)"}
	case resp.Array:
		lines := make([]string, 0, len(v)+1)
		lines = append(lines, fmt.Sprintf("%d element(s):", len(v)))
		for i, elem := range v {
			lines = append(lines, fmt.Sprintf("[%d] %s", i+1, elem.Text()))
		}
		return lines
	default:
		return []string{v.Text()}
	}
}

// ValueLines renders a type-probed value.
func ValueLines(v domain.Value) []string {
	switch val := v.(type) {
	case domain.ScalarString:
		if !val.Present {
			return []string{"(nil)"}
		}
		return []string{val.Text}

	case domain.FieldList:
		lines := []string{fmt.Sprintf("Hash (%d fields):", len(val))}
		for _, f := range val {
			lines = append(lines, fmt.Sprintf("  %s: %s", f.Name, f.Value))
		}
		return lines

	case domain.ItemList:
		lines := []string{fmt.Sprintf("List (%d items):", len(val))}
		for i, item := range val {
			lines = append(lines, fmt.Sprintf("  [%d] %s", i, item))
		}
		return lines

	case domain.MemberSet:
		lines := []string{fmt.Sprintf("Set (%d members):", len(val))}
		for _, m := range val {
			lines = append(lines, "  - "+m)
		}
		return lines

	case domain.ScoredList:
		lines := []string{fmt.Sprintf("Sorted Set (%d elements):", len(val))}
		for _, e := range val {
			lines = append(lines, fmt.Sprintf("  %s (Score: %s)", e.Member, FormatScore(e.Score)))
		}
		return lines

	default:
		return []string{"(nil)"}
	}
}

// ScanLines renders one SCAN page.
func ScanLines(p ScanPage) []string {
	lines := make([]string, 0, len(p.Keys)+2)
	lines = append(lines,
		"Cursor: "+p.Cursor,
		fmt.Sprintf("Keys Found (%d max):", p.Count),
	)
	for _, k := range p.Keys {
		lines = append(lines, " - "+k)
	}
	return lines
}

// FormatScore prints a sorted set score without exponent notation.
func FormatScore(score float64) string {
	switch {
	case math.IsInf(score, 1):
		return "inf"
	case math.IsInf(score, -1):
		return "-inf"
	default:
		return strconv.FormatFloat(score, 'f', -1, 64)
	}
}
