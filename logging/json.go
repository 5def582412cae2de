package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"
)

// JSONHandler writes one JSON object per record. Keys keep the order they
// were logged in (time, level, msg, then attributes), so a turn's fields line
// up from one record to the next. With Indent set each object spans several
// lines.
type JSONHandler struct {
	w      io.Writer
	mu     *sync.Mutex
	level  slog.Leveler
	indent bool

	attrs  []slog.Attr
	groups []string
}

// JSONOptions configures a JSONHandler.
type JSONOptions struct {
	Level  slog.Leveler
	Indent bool
}

func NewJSONHandler(w io.Writer, opts JSONOptions) *JSONHandler {
	var level slog.Leveler = slog.LevelInfo
	if opts.Level != nil {
		level = opts.Level
	}
	return &JSONHandler{w: w, mu: &sync.Mutex{}, level: level, indent: opts.Indent}
}

func (h *JSONHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *JSONHandler) Handle(_ context.Context, r slog.Record) error {
	when := r.Time
	if when.IsZero() {
		when = time.Now()
	}
	root := newObject()
	root.set("time", when.Format(time.RFC3339Nano))
	root.set("level", r.Level.String())
	root.set("msg", r.Message)

	for _, a := range h.attrs {
		root.add(a)
	}
	dst := root
	for _, g := range h.groups {
		dst = dst.group(g)
	}
	r.Attrs(func(a slog.Attr) bool {
		dst.add(a)
		return true
	})

	b, err := h.encode(root)
	if err != nil {
		b = []byte(`{"level":` + strconv.Quote(r.Level.String()) +
			`,"msg":` + strconv.Quote(r.Message) +
			`,"error":` + strconv.Quote(err.Error()) + `}`)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.w.Write(append(b, '\n'))
	return err
}

func (h *JSONHandler) encode(o *object) ([]byte, error) {
	if h.indent {
		return json.MarshalIndent(o, "", "  ")
	}
	return json.Marshal(o)
}

// WithAttrs nests attrs under the groups opened so far.
func (h *JSONHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append([]slog.Attr(nil), h.attrs...)
	for _, a := range attrs {
		for i := len(h.groups) - 1; i >= 0; i-- {
			a = slog.Attr{Key: h.groups[i], Value: slog.GroupValue(a)}
		}
		clone.attrs = append(clone.attrs, a)
	}
	return &clone
}

func (h *JSONHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string(nil), h.groups...), name)
	return &clone
}

// object is a JSON object that remembers key insertion order. Setting a key
// twice keeps its first position and the last value.
type object struct {
	keys []string
	vals map[string]any
}

func newObject() *object {
	return &object{vals: make(map[string]any)}
}

func (o *object) set(k string, v any) {
	if _, ok := o.vals[k]; !ok {
		o.keys = append(o.keys, k)
	}
	o.vals[k] = v
}

// group returns the nested object under k, replacing any scalar there.
func (o *object) group(k string) *object {
	if g, ok := o.vals[k].(*object); ok {
		return g
	}
	g := newObject()
	o.set(k, g)
	return g
}

func (o *object) add(a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Value.Kind() == slog.KindGroup {
		dst := o
		if a.Key != "" {
			dst = o.group(a.Key)
		}
		for _, ga := range a.Value.Group() {
			dst.add(ga)
		}
		return
	}
	if a.Key == "" {
		return
	}
	o.set(a.Key, valueToAny(a.Value))
}

func (o *object) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			b.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		b.Write(key)
		b.WriteByte(':')
		v, err := json.Marshal(o.vals[k])
		if err != nil {
			return nil, fmt.Errorf("attr %s: %w", k, err)
		}
		b.Write(v)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

func valueToAny(v slog.Value) any {
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindInt64:
		return v.Int64()
	case slog.KindUint64:
		return v.Uint64()
	case slog.KindFloat64:
		return v.Float64()
	case slog.KindBool:
		return v.Bool()
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().Format(time.RFC3339Nano)
	}
	switch x := v.Any().(type) {
	case error:
		return x.Error()
	case fmt.Stringer:
		return x.String()
	}
	return v.Any()
}
