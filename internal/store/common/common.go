package common

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Lumos-Labs-HQ/relgrid/internal/recordsvc"
)

// validIdentifier matches SQL identifiers (table/column names); anything
// else is rejected before it can reach a query string.
var validIdentifier = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// IsValidIdentifier checks a table or column name.
func IsValidIdentifier(name string) bool {
	return validIdentifier.MatchString(name)
}

// TableName maps an object API name onto its backing table.
func TableName(objectName string) (string, error) {
	table := strings.ToLower(objectName)
	if !IsValidIdentifier(table) {
		return "", fmt.Errorf("invalid object name: %s", objectName)
	}
	return table, nil
}

// CheckFieldNames rejects any field name unusable as a column.
func CheckFieldNames(names []string) error {
	for _, name := range names {
		if !IsValidIdentifier(name) {
			return fmt.Errorf("invalid field name: %s", name)
		}
	}
	return nil
}

// MetadataTable is the shared field-metadata table, one row per
// (object, field).
const MetadataTable = "grid_fields"

// SearchColumns picks the columns a free-text search term applies to:
// filterable fields of a textual type, falling back to every textual
// field when nothing is marked filterable.
func SearchColumns(fields []recordsvc.RawFieldMeta) []string {
	textual := func(t string) bool {
		switch strings.ToLower(t) {
		case "text", "string", "email", "phone", "url", "textarea", "longtext", "picklist", "select":
			return true
		}
		return false
	}

	var filterable, all []string
	for _, f := range fields {
		if !textual(f.Type) || !IsValidIdentifier(f.Name) {
			continue
		}
		all = append(all, f.Name)
		if f.Filterable {
			filterable = append(filterable, f.Name)
		}
	}
	if len(filterable) > 0 {
		return filterable
	}
	return all
}

// ValidateRecords applies the backend business rules shared by every
// engine: a required field present in a patch must be non-empty, and a
// picklist field must carry one of its allowed options.
func ValidateRecords(patches []recordsvc.Patch, fields []recordsvc.RawFieldMeta) *recordsvc.ValidationResult {
	byName := make(map[string]recordsvc.RawFieldMeta, len(fields))
	for _, f := range fields {
		byName[f.Name] = f
	}

	for _, patch := range patches {
		for name, value := range patch.Fields {
			meta, ok := byName[name]
			if !ok {
				continue
			}
			if meta.Required && isEmpty(value) {
				return &recordsvc.ValidationResult{
					IsValid:      false,
					ErrorMessage: fmt.Sprintf("%s is required", label(meta)),
				}
			}
			if strings.EqualFold(meta.Type, "picklist") && !isEmpty(value) {
				sval := fmt.Sprintf("%v", value)
				allowed := false
				for _, opt := range meta.PicklistValues {
					if opt == sval {
						allowed = true
						break
					}
				}
				if !allowed {
					return &recordsvc.ValidationResult{
						IsValid:      false,
						ErrorMessage: fmt.Sprintf("%q is not a valid option for %s", sval, label(meta)),
					}
				}
			}
		}
	}
	return &recordsvc.ValidationResult{IsValid: true}
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

func label(f recordsvc.RawFieldMeta) string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

// JoinPicklist flattens picklist options for storage in one column.
func JoinPicklist(values []string) string {
	return strings.Join(values, ";")
}

// SplitPicklist restores picklist options from storage.
func SplitPicklist(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ";")
}

// ColumnType maps a field type onto a portable column type. Engines with
// stricter needs override individual entries.
func ColumnType(fieldType string) string {
	switch strings.ToLower(fieldType) {
	case "number", "currency", "percent":
		return "NUMERIC"
	case "checkbox", "boolean", "bool":
		return "BOOLEAN"
	case "date":
		return "DATE"
	case "datetime", "timestamp":
		return "TIMESTAMP"
	case "textarea", "longtext":
		return "TEXT"
	default:
		return "VARCHAR(255)"
	}
}
