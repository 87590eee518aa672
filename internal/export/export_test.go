package export

import (
	"strings"
	"testing"

	"github.com/Lumos-Labs-HQ/relgrid/internal/columns"
	"github.com/Lumos-Labs-HQ/relgrid/internal/recordsvc"
)

func TestFilename(t *testing.T) {
	if got := Filename("Contact"); got != "Contact_export.csv" {
		t.Errorf("Expected Contact_export.csv, got %s", got)
	}
}

func TestMarshalCSVQuoting(t *testing.T) {
	cols := []columns.Column{
		{Label: "Name", FieldName: "name", Type: "text"},
		{Label: "Amount", FieldName: "amount", Type: "number"},
	}
	records := []recordsvc.Record{
		{ID: "001", Fields: map[string]any{"name": "A,B", "amount": 5}},
	}

	out, err := MarshalCSV(cols, records)
	if err != nil {
		t.Fatalf("MarshalCSV failed: %v", err)
	}

	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected header plus 1 row, got %d lines", len(lines))
	}
	if lines[0] != "Name,Amount" {
		t.Errorf("Expected header 'Name,Amount', got %q", lines[0])
	}
	if lines[1] != `"A,B",5` {
		t.Errorf("Expected row '\"A,B\",5', got %q", lines[1])
	}
}

func TestMarshalCSVDoublesEmbeddedQuotes(t *testing.T) {
	cols := []columns.Column{{Label: "Name", FieldName: "name", Type: "text"}}
	records := []recordsvc.Record{
		{ID: "001", Fields: map[string]any{"name": `say "hi"`}},
	}

	out, err := MarshalCSV(cols, records)
	if err != nil {
		t.Fatalf("MarshalCSV failed: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	if lines[1] != `"say ""hi"""` {
		t.Errorf("Expected embedded quotes doubled, got %q", lines[1])
	}
}

func TestMarshalCSVExcludesActionsColumn(t *testing.T) {
	cols := []columns.Column{
		{Label: "Name", FieldName: "name", Type: "text"},
		{Type: columns.ActionsType},
	}
	records := []recordsvc.Record{
		{ID: "001", Fields: map[string]any{"name": "X"}},
	}

	out, err := MarshalCSV(cols, records)
	if err != nil {
		t.Fatalf("MarshalCSV failed: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	if lines[0] != "Name" {
		t.Errorf("Expected actions column excluded from header, got %q", lines[0])
	}
	if lines[1] != "X" {
		t.Errorf("Expected single data cell, got %q", lines[1])
	}
}

func TestMarshalCSVValueFormats(t *testing.T) {
	cols := []columns.Column{
		{Label: "A", FieldName: "a"},
		{Label: "B", FieldName: "b"},
		{Label: "C", FieldName: "c"},
		{Label: "D", FieldName: "d"},
	}
	records := []recordsvc.Record{
		{ID: "1", Fields: map[string]any{"a": 2.5, "b": float64(7), "c": true, "d": nil}},
	}

	out, err := MarshalCSV(cols, records)
	if err != nil {
		t.Fatalf("MarshalCSV failed: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	if lines[1] != "2.5,7,true," {
		t.Errorf("Unexpected formatted row: %q", lines[1])
	}
}

func TestMarshalCSVEmptyColumns(t *testing.T) {
	out, err := MarshalCSV(nil, nil)
	if err != nil {
		t.Fatalf("MarshalCSV failed: %v", err)
	}
	if out != nil {
		t.Errorf("Expected nil output for no columns, got %q", out)
	}
}
