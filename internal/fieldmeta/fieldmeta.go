package fieldmeta

import (
	"strings"
)

// Type is the closed set of field semantics the grid knows how to render
// and edit. Raw backend type strings are normalized through ParseType.
type Type int

const (
	Text Type = iota
	Email
	Phone
	URL
	Number
	Currency
	Percent
	Date
	DateTime
	Checkbox
	Picklist
	Textarea
	Lookup
)

var typeNames = map[Type]string{
	Text:     "text",
	Email:    "email",
	Phone:    "phone",
	URL:      "url",
	Number:   "number",
	Currency: "currency",
	Percent:  "percent",
	Date:     "date",
	DateTime: "datetime",
	Checkbox: "checkbox",
	Picklist: "picklist",
	Textarea: "textarea",
	Lookup:   "lookup",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "text"
}

// ParseType normalizes a raw backend type string. Unknown types fall back
// to Text so a misreported field never breaks column projection.
func ParseType(raw string) Type {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "text", "string":
		return Text
	case "email":
		return Email
	case "phone":
		return Phone
	case "url":
		return URL
	case "number", "integer", "int", "double", "float":
		return Number
	case "currency", "monetary":
		return Currency
	case "percent":
		return Percent
	case "date":
		return Date
	case "datetime", "timestamp":
		return DateTime
	case "checkbox", "boolean", "bool":
		return Checkbox
	case "picklist", "select":
		return Picklist
	case "textarea", "longtext":
		return Textarea
	case "lookup", "reference":
		return Lookup
	default:
		return Text
	}
}

// IsTextual reports whether the type edits through a plain text input.
func (t Type) IsTextual() bool {
	switch t {
	case Text, Email, Phone, URL, Textarea:
		return true
	default:
		return false
	}
}

// IsNumeric reports whether the type edits through a numeric input.
func (t Type) IsNumeric() bool {
	switch t {
	case Number, Currency, Percent:
		return true
	default:
		return false
	}
}

func (t Type) IsDate() bool {
	return t == Date || t == DateTime
}

// Field describes one attribute of the related object, normalized from
// backend metadata. Immutable once built; the catalog is re-derived when
// the configured field list or backend metadata changes.
type Field struct {
	Name           string   `json:"name"`
	Label          string   `json:"label"`
	Type           Type     `json:"-"`
	TypeName       string   `json:"type"`
	Required       bool     `json:"required"`
	Editable       bool     `json:"editable"`
	Visible        bool     `json:"visible"`
	Sortable       bool     `json:"sortable"`
	Filterable     bool     `json:"filterable"`
	Width          int      `json:"width,omitempty"`
	PicklistValues []string `json:"picklistValues,omitempty"`
	LookupObject   string   `json:"lookupObject,omitempty"`
}

// RawField is the wire shape delivered by the metadata service before
// normalization.
type RawField struct {
	Name           string   `json:"name"`
	Label          string   `json:"label"`
	Type           string   `json:"type"`
	Required       bool     `json:"required"`
	Editable       bool     `json:"editable"`
	Sortable       bool     `json:"sortable"`
	Filterable     bool     `json:"filterable"`
	Width          int      `json:"width"`
	PicklistValues []string `json:"picklistValues"`
	LookupObject   string   `json:"lookupObject"`
}

// Catalog holds the normalized field descriptors for one object, in
// metadata order, with name lookup.
type Catalog struct {
	fields []Field
	byName map[string]int
}

// NewCatalog normalizes raw metadata into editor-ready descriptors.
// visibleNames marks which fields the host configured for display.
func NewCatalog(raw []RawField, visibleNames []string) *Catalog {
	visible := make(map[string]bool, len(visibleNames))
	for _, name := range visibleNames {
		visible[strings.TrimSpace(name)] = true
	}

	c := &Catalog{byName: make(map[string]int, len(raw))}
	for _, rf := range raw {
		if rf.Name == "" {
			continue
		}
		label := rf.Label
		if label == "" {
			label = rf.Name
		}
		f := Field{
			Name:           rf.Name,
			Label:          label,
			Type:           ParseType(rf.Type),
			Required:       rf.Required,
			Editable:       rf.Editable,
			Visible:        visible[rf.Name],
			Sortable:       rf.Sortable,
			Filterable:     rf.Filterable,
			Width:          rf.Width,
			PicklistValues: rf.PicklistValues,
			LookupObject:   rf.LookupObject,
		}
		f.TypeName = f.Type.String()
		c.byName[f.Name] = len(c.fields)
		c.fields = append(c.fields, f)
	}
	return c
}

// Lookup returns the descriptor for name, if known.
func (c *Catalog) Lookup(name string) (Field, bool) {
	if c == nil {
		return Field{}, false
	}
	idx, ok := c.byName[name]
	if !ok {
		return Field{}, false
	}
	return c.fields[idx], true
}

// Fields returns all descriptors in metadata order.
func (c *Catalog) Fields() []Field {
	if c == nil {
		return nil
	}
	out := make([]Field, len(c.fields))
	copy(out, c.fields)
	return out
}

// EditableFields returns the descriptors a bulk-edit chooser may target.
func (c *Catalog) EditableFields() []Field {
	if c == nil {
		return nil
	}
	var out []Field
	for _, f := range c.fields {
		if f.Editable {
			out = append(out, f)
		}
	}
	return out
}

// VisibleFields returns the descriptors marked visible by configuration.
func (c *Catalog) VisibleFields() []Field {
	if c == nil {
		return nil
	}
	var out []Field
	for _, f := range c.fields {
		if f.Visible {
			out = append(out, f)
		}
	}
	return out
}

// SetVisible re-marks visibility from a new configured field list and
// returns the updated catalog. The receiver is not modified.
func (c *Catalog) SetVisible(visibleNames []string) *Catalog {
	visible := make(map[string]bool, len(visibleNames))
	for _, name := range visibleNames {
		visible[strings.TrimSpace(name)] = true
	}
	next := &Catalog{
		fields: make([]Field, len(c.fields)),
		byName: make(map[string]int, len(c.byName)),
	}
	copy(next.fields, c.fields)
	for name, idx := range c.byName {
		next.byName[name] = idx
	}
	for i := range next.fields {
		next.fields[i].Visible = visible[next.fields[i].Name]
	}
	return next
}
