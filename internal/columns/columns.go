package columns

import (
	"strings"

	"github.com/Lumos-Labs-HQ/relgrid/internal/fieldmeta"
)

// Column is the rendering-oriented projection of a field descriptor.
// Derived, never persisted; rebuilt whenever the catalog or the visible
// field list changes.
type Column struct {
	Label          string         `json:"label"`
	FieldName      string         `json:"fieldName"`
	Type           string         `json:"type"`
	Editable       bool           `json:"editable"`
	Sortable       bool           `json:"sortable"`
	TypeAttributes map[string]any `json:"typeAttributes,omitempty"`
	RowActions     []RowAction    `json:"rowActions,omitempty"`
}

// RowAction is one entry of the trailing actions column.
type RowAction struct {
	Label string `json:"label"`
	Name  string `json:"name"`
	Icon  string `json:"icon"`
}

const (
	ActionsType = "action"

	ActionDelete = "delete"
	ActionView   = "view"
)

// IsActions reports whether the column is the trailing non-data column.
func (c Column) IsActions() bool {
	return c.Type == ActionsType
}

// Options controls the projection.
type Options struct {
	AllowInlineEdit bool
	AllowDelete     bool
	AllowView       bool
	CurrencyCode    string
}

// Build maps an ordered field-name list plus the catalog into display
// columns. A name with no metadata falls back to a plain text column
// labeled with the raw name, so a misconfigured field list never breaks
// rendering.
func Build(fieldNames []string, catalog *fieldmeta.Catalog, opts Options) []Column {
	cols := make([]Column, 0, len(fieldNames)+1)
	for _, raw := range fieldNames {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		field, ok := catalog.Lookup(name)
		if !ok {
			cols = append(cols, Column{
				Label:     name,
				FieldName: name,
				Type:      "text",
				Editable:  opts.AllowInlineEdit,
			})
			continue
		}
		cols = append(cols, project(field, opts))
	}

	if opts.AllowDelete || opts.AllowView {
		cols = append(cols, actionsColumn(opts))
	}
	return cols
}

func project(field fieldmeta.Field, opts Options) Column {
	col := Column{
		Label:     field.Label,
		FieldName: field.Name,
		Type:      displayType(field.Type),
		Editable:  opts.AllowInlineEdit && field.Editable,
		Sortable:  field.Sortable,
	}

	switch field.Type {
	case fieldmeta.Currency:
		code := opts.CurrencyCode
		if code == "" {
			code = "USD"
		}
		col.TypeAttributes = map[string]any{
			"currencyCode":          code,
			"minimumFractionDigits": 2,
		}
	case fieldmeta.Percent:
		col.TypeAttributes = map[string]any{
			"minimumFractionDigits": 2,
		}
	case fieldmeta.Date:
		col.TypeAttributes = map[string]any{
			"year":  "numeric",
			"month": "2-digit",
			"day":   "2-digit",
		}
	case fieldmeta.DateTime:
		col.TypeAttributes = map[string]any{
			"year":   "numeric",
			"month":  "2-digit",
			"day":    "2-digit",
			"hour":   "2-digit",
			"minute": "2-digit",
		}
	case fieldmeta.Picklist:
		col.TypeAttributes = map[string]any{
			"placeholder": "Select an option",
			"options":     field.PicklistValues,
		}
	case fieldmeta.Lookup:
		// Rendered as a link labeled by the companion <field>_Name value,
		// opening in a new context.
		col.Type = "url"
		col.TypeAttributes = map[string]any{
			"label":  map[string]any{"fieldName": field.Name + "_Name"},
			"target": "_blank",
		}
	}

	return col
}

func displayType(t fieldmeta.Type) string {
	switch t {
	case fieldmeta.Text, fieldmeta.Textarea, fieldmeta.Picklist:
		return "text"
	case fieldmeta.Email:
		return "email"
	case fieldmeta.Phone:
		return "phone"
	case fieldmeta.URL, fieldmeta.Lookup:
		return "url"
	case fieldmeta.Number:
		return "number"
	case fieldmeta.Currency:
		return "currency"
	case fieldmeta.Percent:
		return "percent"
	case fieldmeta.Date, fieldmeta.DateTime:
		return "date"
	case fieldmeta.Checkbox:
		return "boolean"
	default:
		return "text"
	}
}

func actionsColumn(opts Options) Column {
	var actions []RowAction
	if opts.AllowDelete {
		actions = append(actions, RowAction{
			Label: "Delete",
			Name:  ActionDelete,
			Icon:  "utility:delete",
		})
	}
	if opts.AllowView {
		actions = append(actions, RowAction{
			Label: "View",
			Name:  ActionView,
			Icon:  "utility:preview",
		})
	}
	return Column{Type: ActionsType, RowActions: actions}
}

// DataColumns filters out the trailing actions column; CSV export and
// header derivation work on data columns only.
func DataColumns(cols []Column) []Column {
	out := make([]Column, 0, len(cols))
	for _, c := range cols {
		if !c.IsActions() {
			out = append(out, c)
		}
	}
	return out
}
