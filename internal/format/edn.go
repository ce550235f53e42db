package format

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// WriteEDN writes the subset of EDN our payloads need: maps with keyword
// keys, vectors, strings, integers, floats, booleans and nil. snake_case
// keys become kebab-case keywords.
func WriteEDN(w io.Writer, v any, pretty bool) error {
	x, err := generic(v)
	if err != nil {
		return err
	}
	e := ednWriter{pretty: pretty}
	e.value(x, 0)
	e.buf.WriteByte('\n')
	_, err = w.Write(e.buf.Bytes())
	return err
}

type ednWriter struct {
	buf    bytes.Buffer
	pretty bool
}

func (e *ednWriter) value(v any, depth int) {
	switch t := v.(type) {
	case nil:
		e.buf.WriteString("nil")
	case bool:
		e.buf.WriteString(strconv.FormatBool(t))
	case string:
		e.buf.WriteString(strconv.Quote(t))
	case int64:
		e.buf.WriteString(strconv.FormatInt(t, 10))
	case float64:
		s := strconv.FormatFloat(t, 'f', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		e.buf.WriteString(s)
	case []any:
		e.vector(t, depth)
	case map[string]any:
		e.mapping(t, depth)
	default:
		e.buf.WriteString(strconv.Quote(fmt.Sprintf("%v", v)))
	}
}

func (e *ednWriter) sep(i, n, depth int) {
	if i == n-1 {
		return
	}
	if e.pretty {
		e.buf.WriteByte('\n')
		e.buf.WriteString(strings.Repeat("  ", depth+1))
		return
	}
	e.buf.WriteByte(' ')
}

func (e *ednWriter) open(ch byte, n, depth int) {
	e.buf.WriteByte(ch)
	if e.pretty && n > 0 {
		e.buf.WriteByte('\n')
		e.buf.WriteString(strings.Repeat("  ", depth+1))
	}
}

func (e *ednWriter) close(ch byte, n, depth int) {
	if e.pretty && n > 0 {
		e.buf.WriteByte('\n')
		e.buf.WriteString(strings.Repeat("  ", depth))
	}
	e.buf.WriteByte(ch)
}

func (e *ednWriter) vector(xs []any, depth int) {
	e.open('[', len(xs), depth)
	for i, x := range xs {
		e.value(x, depth+1)
		e.sep(i, len(xs), depth)
	}
	e.close(']', len(xs), depth)
}

func (e *ednWriter) mapping(m map[string]any, depth int) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	e.open('{', len(keys), depth)
	for i, k := range keys {
		e.buf.WriteByte(':')
		e.buf.WriteString(keyword(k))
		e.buf.WriteByte(' ')
		e.value(m[k], depth+1)
		e.sep(i, len(keys), depth)
	}
	e.close('}', len(keys), depth)
}

func keyword(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "_", "-")
	return strings.ReplaceAll(s, " ", "-")
}
