package seeder

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Lumos-Labs-HQ/relgrid/internal/recordsvc"
	"github.com/Lumos-Labs-HQ/relgrid/internal/store/common"
)

// Dataset is the YAML seed file: field metadata for one object, explicit
// records, and an optional generation block for filler data.
type Dataset struct {
	Version           int              `yaml:"version"`
	Object            string           `yaml:"object"`
	RelationshipField string           `yaml:"relationship_field"`
	Fields            []FieldDef       `yaml:"fields"`
	Records           []map[string]any `yaml:"records"`
	Generate          *GenerateSpec    `yaml:"generate,omitempty"`
}

type FieldDef struct {
	Name           string   `yaml:"name"`
	Label          string   `yaml:"label,omitempty"`
	Type           string   `yaml:"type"`
	Required       bool     `yaml:"required,omitempty"`
	Editable       bool     `yaml:"editable,omitempty"`
	Sortable       bool     `yaml:"sortable,omitempty"`
	Filterable     bool     `yaml:"filterable,omitempty"`
	Width          int      `yaml:"width,omitempty"`
	PicklistValues []string `yaml:"picklist_values,omitempty"`
	LookupObject   string   `yaml:"lookup_object,omitempty"`
}

// GenerateSpec asks the seeder to fabricate records on top of the
// explicit ones, spread across the given parent IDs.
type GenerateSpec struct {
	Count     int      `yaml:"count"`
	ParentIDs []string `yaml:"parent_ids"`
}

// LoadDataset reads and validates a YAML seed file.
func LoadDataset(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset file: %w", err)
	}

	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("failed to parse dataset file: %w", err)
	}

	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return &ds, nil
}

func (d *Dataset) Validate() error {
	if strings.TrimSpace(d.Object) == "" {
		return fmt.Errorf("dataset is missing an object name")
	}
	if !common.IsValidIdentifier(d.Object) {
		return fmt.Errorf("invalid object name: %s", d.Object)
	}
	if strings.TrimSpace(d.RelationshipField) == "" {
		return fmt.Errorf("dataset is missing a relationship_field")
	}
	if !common.IsValidIdentifier(d.RelationshipField) {
		return fmt.Errorf("invalid relationship field: %s", d.RelationshipField)
	}
	if len(d.Fields) == 0 {
		return fmt.Errorf("dataset declares no fields")
	}
	for _, f := range d.Fields {
		if !common.IsValidIdentifier(f.Name) {
			return fmt.Errorf("invalid field name: %s", f.Name)
		}
	}
	if d.Generate != nil && d.Generate.Count > 0 && len(d.Generate.ParentIDs) == 0 {
		return fmt.Errorf("generate block needs at least one parent_ids entry")
	}
	return nil
}

// FieldMeta converts the YAML field definitions into the metadata wire
// shape stored alongside the records.
func (d *Dataset) FieldMeta() []recordsvc.RawFieldMeta {
	meta := make([]recordsvc.RawFieldMeta, 0, len(d.Fields)+1)
	declared := false
	for _, f := range d.Fields {
		if f.Name == d.RelationshipField {
			declared = true
		}
	}
	if !declared {
		meta = append(meta, recordsvc.RawFieldMeta{
			Name: d.RelationshipField,
			Type: "lookup",
		})
	}
	for _, f := range d.Fields {
		meta = append(meta, recordsvc.RawFieldMeta{
			Name:           f.Name,
			Label:          f.Label,
			Type:           f.Type,
			Required:       f.Required,
			Editable:       f.Editable,
			Sortable:       f.Sortable,
			Filterable:     f.Filterable,
			Width:          f.Width,
			PicklistValues: f.PicklistValues,
			LookupObject:   f.LookupObject,
		})
	}
	return meta
}
