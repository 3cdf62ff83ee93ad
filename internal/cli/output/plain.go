package output

import (
	"github.com/yndnr/kvsh/internal/core/domain"
	"github.com/yndnr/kvsh/internal/resp"
)

// fieldEntry keeps hash fields ordered in structured output.
type fieldEntry struct {
	Field string `json:"field" yaml:"field"`
	Value string `json:"value" yaml:"value"`
}

type scoredEntry struct {
	Member string  `json:"member" yaml:"member"`
	Score  float64 `json:"score" yaml:"score"`
}

type typedEntry struct {
	Type  string `json:"type" yaml:"type"`
	Value any    `json:"value" yaml:"value"`
}

type scanEntry struct {
	Cursor string   `json:"cursor" yaml:"cursor"`
	Count  int      `json:"count" yaml:"count"`
	Keys   []string `json:"keys" yaml:"keys"`
}

type errorEntry struct {
	Error string `json:"error" yaml:"error"`
}

// Plain converts a reply, typed value or scan page into values that
// encoding/json and yaml.v3 serialize directly.
func Plain(data any) any {
	switch v := data.(type) {
	case resp.Reply:
		return plainReply(v)
	case domain.Value:
		return plainValue(v)
	case ScanPage:
		return scanEntry{Cursor: v.Cursor, Count: v.Count, Keys: nonNil(v.Keys)}
	case *ScanPage:
		return Plain(*v)
	default:
		return data
	}
}

func plainReply(r resp.Reply) any {
	switch v := r.(type) {
	case nil, resp.Nil:
		return nil
	case resp.Integer:
		return int64(v)
	case resp.String:
		return string(v)
	case resp.Error:
		return errorEntry{Error: string(v)}
	case resp.Array:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = plainReply(elem)
		}
		return out
	default:
		return r.Text()
	}
}

func plainValue(v domain.Value) any {
	switch val := v.(type) {
	case domain.ScalarString:
		if !val.Present {
			return typedEntry{Type: string(domain.KeyTypeNone), Value: nil}
		}
		return typedEntry{Type: string(domain.KeyTypeString), Value: val.Text}
	case domain.FieldList:
		fields := make([]fieldEntry, len(val))
		for i, f := range val {
			fields[i] = fieldEntry{Field: f.Name, Value: f.Value}
		}
		return typedEntry{Type: string(domain.KeyTypeHash), Value: fields}
	case domain.ItemList:
		return typedEntry{Type: string(domain.KeyTypeList), Value: nonNil(val)}
	case domain.MemberSet:
		return typedEntry{Type: string(domain.KeyTypeSet), Value: nonNil(val)}
	case domain.ScoredList:
		entries := make([]scoredEntry, len(val))
		for i, e := range val {
			entries[i] = scoredEntry{Member: e.Member, Score: e.Score}
		}
		return typedEntry{Type: string(domain.KeyTypeZSet), Value: entries}
	default:
		return nil
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
