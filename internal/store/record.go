package store

import (
	"context"
	"fmt"
	"strings"
)

// Record is one entity instance. Fields are free-form; the store only manages
// "id", "createdAt" and "updatedAt". Values follow encoding/json conventions
// (string, float64, bool, nil, map[string]any, []any).
type Record map[string]any

// ID returns the record id, coercing the usual JSON number types. Returns 0
// when the field is absent or not numeric.
func (r Record) ID() int {
	n, ok := toFloat(r["id"])
	if !ok {
		return 0
	}
	return int(n)
}

// Clone returns a deep copy of the record so callers cannot mutate store
// state through returned values.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	return Record(cloneMap(r))
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case Record:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// matches reports whether a field value satisfies a filter value. String
// filters match by case-insensitive substring containment on the stringified
// field; everything else matches by (numeric-aware) equality. Absent or nil
// fields never match.
func matches(field, want any) bool {
	if s, ok := want.(string); ok {
		if field == nil || field == "" || field == false {
			return false
		}
		if n, ok := toFloat(field); ok && n == 0 {
			return false
		}
		return strings.Contains(strings.ToLower(stringify(field)), strings.ToLower(s))
	}

	if fn, fok := toFloat(field); fok {
		wn, wok := toFloat(want)
		return wok && fn == wn
	}

	return field == want
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// Actor identifies who is performing a mutation, for the audit trail.
type Actor struct {
	UserID    int
	IP        string
	UserAgent string
}

type actorKey struct{}

// WithActor returns a context carrying the acting user for audit entries.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFromContext extracts the actor from the context, falling back to the
// system placeholder when no request context is available.
func ActorFromContext(ctx context.Context) Actor {
	if a, ok := ctx.Value(actorKey{}).(Actor); ok {
		if a.UserID == 0 {
			a.UserID = 1
		}
		if a.IP == "" {
			a.IP = "127.0.0.1"
		}
		if a.UserAgent == "" {
			a.UserAgent = "Sistema Interno"
		}
		return a
	}
	return Actor{UserID: 1, IP: "127.0.0.1", UserAgent: "Sistema Interno"}
}
