package common

import (
	"testing"

	"github.com/Lumos-Labs-HQ/relgrid/internal/recordsvc"
)

func TestTableName(t *testing.T) {
	table, err := TableName("Contact")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table != "contact" {
		t.Errorf("expected contact, got %s", table)
	}

	if _, err := TableName("contacts; DROP TABLE users"); err == nil {
		t.Error("expected error for injected object name")
	}
	if _, err := TableName(""); err == nil {
		t.Error("expected error for empty object name")
	}
}

func TestCheckFieldNames(t *testing.T) {
	if err := CheckFieldNames([]string{"Name", "Email", "annual_revenue"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := CheckFieldNames([]string{"Name", "Email, Phone"}); err == nil {
		t.Error("expected error for comma in field name")
	}
}

func TestSearchColumnsPrefersFilterable(t *testing.T) {
	fields := []recordsvc.RawFieldMeta{
		{Name: "Name", Type: "text", Filterable: true},
		{Name: "Email", Type: "email"},
		{Name: "Amount", Type: "currency", Filterable: true},
	}
	cols := SearchColumns(fields)
	if len(cols) != 1 || cols[0] != "Name" {
		t.Errorf("expected [Name], got %v", cols)
	}
}

func TestSearchColumnsFallsBackToTextual(t *testing.T) {
	fields := []recordsvc.RawFieldMeta{
		{Name: "Name", Type: "text"},
		{Name: "Email", Type: "email"},
		{Name: "Amount", Type: "currency"},
	}
	cols := SearchColumns(fields)
	if len(cols) != 2 || cols[0] != "Name" || cols[1] != "Email" {
		t.Errorf("expected [Name Email], got %v", cols)
	}
}

func TestValidateRecordsRequired(t *testing.T) {
	fields := []recordsvc.RawFieldMeta{
		{Name: "Name", Label: "Full Name", Type: "text", Required: true},
	}
	patches := []recordsvc.Patch{
		{ID: "1", Fields: map[string]any{"Name": "  "}},
	}

	result := ValidateRecords(patches, fields)
	if result.IsValid {
		t.Fatal("expected validation to fail")
	}
	if result.ErrorMessage != "Full Name is required" {
		t.Errorf("unexpected message: %s", result.ErrorMessage)
	}
}

func TestValidateRecordsPicklist(t *testing.T) {
	fields := []recordsvc.RawFieldMeta{
		{Name: "Status", Type: "picklist", PicklistValues: []string{"Active", "Inactive"}},
	}

	result := ValidateRecords([]recordsvc.Patch{
		{ID: "1", Fields: map[string]any{"Status": "Archived"}},
	}, fields)
	if result.IsValid {
		t.Fatal("expected validation to fail")
	}
	if result.ErrorMessage != `"Archived" is not a valid option for Status` {
		t.Errorf("unexpected message: %s", result.ErrorMessage)
	}

	result = ValidateRecords([]recordsvc.Patch{
		{ID: "1", Fields: map[string]any{"Status": "Active"}},
	}, fields)
	if !result.IsValid {
		t.Errorf("expected validation to pass, got %s", result.ErrorMessage)
	}
}

func TestValidateRecordsIgnoresUnknownFields(t *testing.T) {
	result := ValidateRecords([]recordsvc.Patch{
		{ID: "1", Fields: map[string]any{"Mystery": "value"}},
	}, nil)
	if !result.IsValid {
		t.Errorf("expected validation to pass, got %s", result.ErrorMessage)
	}
}

func TestPicklistRoundTrip(t *testing.T) {
	joined := JoinPicklist([]string{"New", "Working", "Closed"})
	if joined != "New;Working;Closed" {
		t.Errorf("unexpected joined value: %s", joined)
	}
	split := SplitPicklist(joined)
	if len(split) != 3 || split[1] != "Working" {
		t.Errorf("unexpected split value: %v", split)
	}
	if SplitPicklist("") != nil {
		t.Error("expected nil for empty input")
	}
}
