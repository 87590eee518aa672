package seeder

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleDataset = `
version: 1
object: Contact
relationship_field: AccountId
fields:
  - name: Name
    label: Full Name
    type: text
    required: true
    editable: true
    sortable: true
    filterable: true
  - name: Status
    type: picklist
    editable: true
    picklist_values: [Active, Inactive]
records:
  - id: rec-001
    AccountId: acc-001
    Name: Amy Taylor
    Status: Active
generate:
  count: 5
  parent_ids: [acc-001, acc-002]
`

func writeDataset(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write dataset: %v", err)
	}
	return path
}

func TestLoadDataset(t *testing.T) {
	ds, err := LoadDataset(writeDataset(t, sampleDataset))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ds.Object != "Contact" {
		t.Errorf("expected object Contact, got %s", ds.Object)
	}
	if ds.RelationshipField != "AccountId" {
		t.Errorf("expected relationship field AccountId, got %s", ds.RelationshipField)
	}
	if len(ds.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(ds.Fields))
	}
	if ds.Fields[1].PicklistValues[1] != "Inactive" {
		t.Errorf("unexpected picklist values: %v", ds.Fields[1].PicklistValues)
	}
	if len(ds.Records) != 1 || ds.Records[0]["Name"] != "Amy Taylor" {
		t.Errorf("unexpected records: %v", ds.Records)
	}
	if ds.Generate == nil || ds.Generate.Count != 5 {
		t.Errorf("unexpected generate block: %+v", ds.Generate)
	}
}

func TestLoadDatasetRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"missing object":       "relationship_field: AccountId\nfields:\n  - name: Name\n    type: text\n",
		"missing relationship": "object: Contact\nfields:\n  - name: Name\n    type: text\n",
		"no fields":            "object: Contact\nrelationship_field: AccountId\n",
		"injected field name":  "object: Contact\nrelationship_field: AccountId\nfields:\n  - name: \"Name; DROP\"\n    type: text\n",
		"generate no parents":  "object: Contact\nrelationship_field: AccountId\nfields:\n  - name: Name\n    type: text\ngenerate:\n  count: 3\n",
	}

	for name, content := range cases {
		if _, err := LoadDataset(writeDataset(t, content)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestFieldMetaIncludesRelationship(t *testing.T) {
	ds := &Dataset{
		Object:            "Contact",
		RelationshipField: "AccountId",
		Fields: []FieldDef{
			{Name: "Name", Type: "text"},
		},
	}

	meta := ds.FieldMeta()
	if len(meta) != 2 {
		t.Fatalf("expected 2 metadata entries, got %d", len(meta))
	}
	if meta[0].Name != "AccountId" || meta[0].Type != "lookup" {
		t.Errorf("expected relationship lookup first, got %+v", meta[0])
	}
}

func TestFieldMetaSkipsDeclaredRelationship(t *testing.T) {
	ds := &Dataset{
		Object:            "Contact",
		RelationshipField: "AccountId",
		Fields: []FieldDef{
			{Name: "AccountId", Type: "lookup", LookupObject: "Account"},
			{Name: "Name", Type: "text"},
		},
	}

	meta := ds.FieldMeta()
	if len(meta) != 2 {
		t.Fatalf("expected 2 metadata entries, got %d", len(meta))
	}
	if meta[0].LookupObject != "Account" {
		t.Errorf("expected declared lookup kept, got %+v", meta[0])
	}
}

func TestGenerateForFieldPicklist(t *testing.T) {
	g := NewDataGenerator()
	f := FieldDef{Name: "Status", Type: "picklist", PicklistValues: []string{"Active", "Inactive"}}

	for i := 0; i < 20; i++ {
		v := g.GenerateForField(f)
		if v != "Active" && v != "Inactive" {
			t.Fatalf("generated value outside picklist: %v", v)
		}
	}
}

func TestGenerateForFieldTypes(t *testing.T) {
	g := NewDataGenerator()

	if _, ok := g.GenerateForField(FieldDef{Name: "Amount", Type: "currency"}).(float64); !ok {
		t.Error("expected float64 for currency")
	}
	if _, ok := g.GenerateForField(FieldDef{Name: "Active", Type: "checkbox"}).(bool); !ok {
		t.Error("expected bool for checkbox")
	}
	if v, ok := g.GenerateForField(FieldDef{Name: "Email", Type: "email"}).(string); !ok || v == "" {
		t.Error("expected non-empty string for email")
	}
}
