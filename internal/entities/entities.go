// Package entities describes the back-office record types: where they live on
// the server, how they render in tables and detail views, and which fields
// the create and edit forms collect.
package entities

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"trustdesk-cli/internal/api"
	"trustdesk-cli/internal/listing"
	"trustdesk-cli/internal/model"
)

type Column[T any] struct {
	Title string
	Width int
	Value func(T) string
}

// Field is one input on a create/edit form. Key is the wire name and also
// the CLI flag name.
type Field struct {
	Key      string
	Label    string
	Help     string
	Required bool
	Options  []string
	// File fields hold local paths and are uploaded as attachments.
	File bool
	// Multi fields accept several comma-separated values.
	Multi bool
}

type Descriptor[T listing.Record] struct {
	Name     string
	Singular string
	Title    string
	Aliases  []string
	Spec     api.ResourceSpec
	Columns  []Column[T]
	Fields   []Field

	// Values returns the form values for an existing record, used to
	// prefill edits.
	Values func(T) map[string]string
	// Build turns form values into a request input.
	Build func(map[string]string) (any, error)
	// Detail renders a record as markdown.
	Detail func(T) string
}

func (d Descriptor[T]) ReadOnly() bool { return d.Spec.ReadOnly }

func (d Descriptor[T]) Resource(c *api.Client) *api.Resource[T] {
	return api.NewResource[T](c, d.Spec)
}

// Row renders one table row in column order.
func (d Descriptor[T]) Row(rec T) []string {
	out := make([]string, len(d.Columns))
	for i, col := range d.Columns {
		out[i] = col.Value(rec)
	}
	return out
}

// Info is the type-independent part of a descriptor.
type Info struct {
	Name     string
	Singular string
	Title    string
	Aliases  []string
	ReadOnly bool
}

func (d Descriptor[T]) Info() Info {
	return Info{Name: d.Name, Singular: d.Singular, Title: d.Title, Aliases: d.Aliases, ReadOnly: d.Spec.ReadOnly}
}

// All lists every entity in menu order.
func All() []Info {
	return []Info{
		Users().Info(),
		Projects().Info(),
		Complaints().Info(),
		Inspections().Info(),
		Trustmarks().Info(),
		Notifications().Info(),
		Activity().Info(),
	}
}

func Names() []string {
	all := All()
	out := make([]string, 0, len(all))
	for _, e := range all {
		out = append(out, e.Name)
	}
	return out
}

// Lookup resolves a name, singular or alias to its entity.
func Lookup(name string) (Info, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, e := range All() {
		if key == e.Name || key == e.Singular {
			return e, true
		}
		for _, a := range e.Aliases {
			if key == a {
				return e, true
			}
		}
	}
	return Info{}, false
}

type builder struct {
	values map[string]string
	errs   []model.FieldError
}

func newBuilder(values map[string]string) *builder {
	return &builder{values: values}
}

func (b *builder) str(key string) string {
	return strings.TrimSpace(b.values[key])
}

func (b *builder) fail(key, msg string) {
	b.errs = append(b.errs, model.FieldError{Field: key, Message: msg})
}

func (b *builder) int64(key string) int64 {
	raw := b.str(key)
	if raw == "" {
		return 0
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		b.fail(key, "must be a number")
		return 0
	}
	return n
}

func (b *builder) optInt64(key string) *int64 {
	if b.str(key) == "" {
		return nil
	}
	n := b.int64(key)
	return &n
}

func (b *builder) optBool(key string) *bool {
	raw := b.str(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		b.fail(key, "must be true or false")
		return nil
	}
	return &v
}

func (b *builder) list(key string) []string {
	raw := b.str(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (b *builder) err() error {
	if len(b.errs) == 0 {
		return nil
	}
	sort.SliceStable(b.errs, func(i, j int) bool { return b.errs[i].Field < b.errs[j].Field })
	return &model.InputError{Fields: b.errs}
}

func idString(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}

func optIDString(id *int64) string {
	if id == nil {
		return ""
	}
	return idString(*id)
}

func dateString(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2006-01-02 15:04")
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
