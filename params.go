package livy

import (
	"fmt"
	"strings"
)

// ListOptions selects a window of a paged collection or log.
type ListOptions struct {
	// From is the zero-based offset of the first entry to return.
	From *int64

	// Size is the maximum number of entries to return.
	Size *int64
}

func (o *ListOptions) query() string {
	if o == nil {
		return ""
	}
	return params(param("from", o.From), param("size", o.Size))
}

// param formats a single key=value query fragment. It returns the empty
// string when value is absent.
func param[T any](key string, value *T) string {
	if value == nil {
		return ""
	}
	return fmt.Sprintf("%s=%v", key, *value)
}

// params joins query fragments into a query string, skipping absent ones
// and preserving their order. The result carries a leading "?" only when at
// least one fragment survives. Values are emitted literally; callers pass
// already-safe values (numeric offsets and sizes).
func params(fragments ...string) string {
	b := strings.Builder{}
	for _, fragment := range fragments {
		if fragment == "" {
			continue
		}
		if b.Len() == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(fragment)
	}
	return b.String()
}
