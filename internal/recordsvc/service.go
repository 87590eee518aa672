package recordsvc

import (
	"context"
)

// Record is one row of the related list: an opaque id plus a field-name
// to value mapping. IsDirty and IsNew are transient presentation flags,
// never persisted. Records are replaced wholesale on refresh, never
// mutated in place from a draft.
type Record struct {
	ID      string         `json:"id"`
	Fields  map[string]any `json:"fields"`
	IsDirty bool           `json:"isDirty,omitempty"`
	IsNew   bool           `json:"isNew,omitempty"`
}

// Get returns the value of a field, nil when absent.
func (r Record) Get(field string) any {
	if r.Fields == nil {
		return nil
	}
	return r.Fields[field]
}

// Patch is a partial record: an id plus only the changed fields. Saves
// send patches, never whole records.
type Patch struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// Query parameterizes one page fetch.
type Query struct {
	ParentID          string
	ObjectName        string
	RelationshipField string
	FieldNames        []string
	PageSize          int
	PageNumber        int
	SortField         string
	SortDirection     string
	SearchTerm        string
}

// Page is the result of a page fetch: the rows plus the server-side
// total for the whole filtered set.
type Page struct {
	Records    []Record `json:"records"`
	TotalCount int      `json:"totalCount"`
}

// ValidationResult is the backend's pre-save business-rule verdict.
type ValidationResult struct {
	IsValid      bool   `json:"isValid"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// Service is the persistence collaborator behind the grid. Every method
// may suspend; implementations own transport, storage and caching.
type Service interface {
	FetchRelatedRecords(ctx context.Context, q Query) (*Page, error)
	FetchFieldMetadata(ctx context.Context, objectName string) ([]RawFieldMeta, error)
	ValidateRecords(ctx context.Context, patches []Patch, objectName string) (*ValidationResult, error)
	SaveRecords(ctx context.Context, patches []Patch, objectName string) error
	BulkUpdateRecords(ctx context.Context, recordIDs []string, fieldValues map[string]any, objectName string) error
	DeleteRecords(ctx context.Context, recordIDs []string, objectName string) error
}

// RawFieldMeta is the unnormalized field-metadata wire shape; the field
// catalog turns it into typed descriptors.
type RawFieldMeta struct {
	Name           string   `json:"name"`
	Label          string   `json:"label"`
	Type           string   `json:"type"`
	Required       bool     `json:"required"`
	Editable       bool     `json:"editable"`
	Sortable       bool     `json:"sortable"`
	Filterable     bool     `json:"filterable"`
	Width          int      `json:"width,omitempty"`
	PicklistValues []string `json:"picklistValues,omitempty"`
	LookupObject   string   `json:"lookupObject,omitempty"`
}
