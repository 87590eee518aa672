package grid

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Lumos-Labs-HQ/relgrid/internal/config"
	"github.com/Lumos-Labs-HQ/relgrid/internal/notify"
	"github.com/Lumos-Labs-HQ/relgrid/internal/recordsvc"
)

type stubService struct {
	meta      []recordsvc.RawFieldMeta
	metaErr   error
	pages     map[int]*recordsvc.Page
	fetchErr  error
	lastQuery recordsvc.Query
	fetches   int
	// When set, called before returning so a test can interleave fetches.
	onFetch func(q recordsvc.Query)
}

func (s *stubService) FetchRelatedRecords(ctx context.Context, q recordsvc.Query) (*recordsvc.Page, error) {
	s.fetches++
	s.lastQuery = q
	if s.onFetch != nil {
		s.onFetch(q)
	}
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	if page, ok := s.pages[q.PageNumber]; ok {
		return page, nil
	}
	return &recordsvc.Page{}, nil
}

func (s *stubService) FetchFieldMetadata(ctx context.Context, objectName string) ([]recordsvc.RawFieldMeta, error) {
	return s.meta, s.metaErr
}

func (s *stubService) ValidateRecords(ctx context.Context, patches []recordsvc.Patch, objectName string) (*recordsvc.ValidationResult, error) {
	return &recordsvc.ValidationResult{IsValid: true}, nil
}

func (s *stubService) SaveRecords(ctx context.Context, patches []recordsvc.Patch, objectName string) error {
	return nil
}

func (s *stubService) BulkUpdateRecords(ctx context.Context, recordIDs []string, fieldValues map[string]any, objectName string) error {
	return nil
}

func (s *stubService) DeleteRecords(ctx context.Context, recordIDs []string, objectName string) error {
	return nil
}

func testGridConfig() config.Grid {
	cfg := config.DefaultConfig().Grid
	cfg.FieldsToDisplay = "Name,Email"
	return cfg
}

func testService() *stubService {
	return &stubService{
		meta: []recordsvc.RawFieldMeta{
			{Name: "Name", Label: "Name", Type: "STRING", Editable: true, Sortable: true},
			{Name: "Email", Label: "Email", Type: "EMAIL", Editable: true},
			{Name: "CreatedDate", Label: "Created", Type: "DATETIME"},
		},
		pages: map[int]*recordsvc.Page{
			1: {
				Records: []recordsvc.Record{
					{ID: "001", Fields: map[string]any{"Name": "Ada", "Email": "ada@x.com"}},
					{ID: "002", Fields: map[string]any{"Name": "Bo", "Email": "bo@x.com"}},
				},
				TotalCount: 25,
			},
			2: {
				Records: []recordsvc.Record{
					{ID: "011", Fields: map[string]any{"Name": "Kim"}},
				},
				TotalCount: 25,
			},
		},
	}
}

func TestLoadBuildsColumnsAndRows(t *testing.T) {
	svc := testService()
	g := New(testGridConfig(), "acct-1", svc, nil, nil)

	if err := g.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	cols := g.Columns()
	// Name, Email plus trailing actions column.
	if len(cols) != 3 {
		t.Fatalf("Expected 3 columns, got %d", len(cols))
	}
	if !cols[len(cols)-1].IsActions() {
		t.Error("Expected trailing actions column")
	}

	records := g.Records()
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if g.TotalCount() != 25 {
		t.Errorf("Expected total 25, got %d", g.TotalCount())
	}
	if svc.lastQuery.ParentID != "acct-1" || svc.lastQuery.RelationshipField != "AccountId" {
		t.Errorf("Unexpected query: %+v", svc.lastQuery)
	}
}

func TestMetadataFailureKeepsFallbackColumns(t *testing.T) {
	svc := testService()
	svc.metaErr = errors.New("schema service down")
	g := New(testGridConfig(), "acct-1", svc, nil, nil)

	if err := g.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	cols := g.Columns()
	if cols[0].Label != "Name" || cols[0].Type != "text" {
		t.Errorf("Expected fallback text column, got %+v", cols[0])
	}
}

func TestFetchFailureClearsTable(t *testing.T) {
	svc := testService()
	g := New(testGridConfig(), "acct-1", svc, nil, nil)
	if err := g.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	svc.fetchErr = errors.New("query timeout")
	if err := g.Refresh(context.Background()); err == nil {
		t.Fatal("Expected refresh failure")
	}

	if len(g.Records()) != 0 {
		t.Error("Expected table cleared on primary fetch failure")
	}
	if g.LoadError() == "" {
		t.Error("Expected inline error state recorded")
	}

	svc.fetchErr = nil
	if err := g.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if g.LoadError() != "" {
		t.Error("Expected error state cleared after successful refresh")
	}
}

func TestSortChangeResetsPage(t *testing.T) {
	svc := testService()
	g := New(testGridConfig(), "acct-1", svc, nil, nil)
	g.Load(context.Background())

	g.NextPage(context.Background())
	g.NextPage(context.Background())
	if g.Pagination.CurrentPage() != 3 {
		t.Fatalf("Expected page 3, got %d", g.Pagination.CurrentPage())
	}

	if err := g.SetSort(context.Background(), "Email", "desc"); err != nil {
		t.Fatalf("SetSort failed: %v", err)
	}
	if g.Pagination.CurrentPage() != 1 {
		t.Errorf("Expected sort change to reset page to 1, got %d", g.Pagination.CurrentPage())
	}
	if svc.lastQuery.SortField != "Email" || svc.lastQuery.SortDirection != "desc" {
		t.Errorf("Expected sort parameters in query, got %+v", svc.lastQuery)
	}
}

func TestSearchAndPageSizeResetPage(t *testing.T) {
	svc := testService()
	g := New(testGridConfig(), "acct-1", svc, nil, nil)
	g.Load(context.Background())
	g.NextPage(context.Background())

	g.SetSearch(context.Background(), "ada")
	if g.Pagination.CurrentPage() != 1 {
		t.Errorf("Expected search to reset page, got %d", g.Pagination.CurrentPage())
	}
	if svc.lastQuery.SearchTerm != "ada" {
		t.Errorf("Expected search term in query, got %q", svc.lastQuery.SearchTerm)
	}

	g.NextPage(context.Background())
	g.SetPageSize(context.Background(), 25)
	if g.Pagination.CurrentPage() != 1 {
		t.Errorf("Expected page-size change to reset page, got %d", g.Pagination.CurrentPage())
	}
}

func TestPageBoundsDoNotRefetch(t *testing.T) {
	svc := testService()
	g := New(testGridConfig(), "acct-1", svc, nil, nil)
	g.Load(context.Background())

	before := svc.fetches
	g.PreviousPage(context.Background())
	if svc.fetches != before {
		t.Error("Expected Previous on first page to skip the refetch")
	}
}

func TestSelectionDroppedOnPageChange(t *testing.T) {
	svc := testService()
	g := New(testGridConfig(), "acct-1", svc, nil, nil)
	g.Load(context.Background())

	g.Selection.Toggle("001", true)
	g.Selection.Toggle("002", true)

	if err := g.NextPage(context.Background()); err != nil {
		t.Fatalf("NextPage failed: %v", err)
	}

	if g.Selection.Count() != 0 {
		t.Errorf("Expected selection cleared of previous-page ids, got %v", g.Selection.IDs())
	}
}

func TestBeginEditEnforcement(t *testing.T) {
	svc := testService()
	cfg := testGridConfig()
	cfg.FieldsToDisplay = "Name,CreatedDate"
	g := New(cfg, "acct-1", svc, nil, nil)
	g.Load(context.Background())

	if err := g.BeginEdit("001", "Name"); err != nil {
		t.Fatalf("BeginEdit failed: %v", err)
	}
	if !g.Edits.IsEditing("001", "Name") {
		t.Error("Expected cell in edit mode")
	}

	if err := g.BeginEdit("001", "CreatedDate"); !errors.Is(err, ErrNotEditable) {
		t.Errorf("Expected ErrNotEditable for read-only column, got %v", err)
	}
	if err := g.BeginEdit("999", "Name"); !errors.Is(err, ErrUnknownRecord) {
		t.Errorf("Expected ErrUnknownRecord, got %v", err)
	}
}

func TestBeginEditBlockedWhenInlineEditDisabled(t *testing.T) {
	svc := testService()
	cfg := testGridConfig()
	cfg.AllowInlineEdit = false
	g := New(cfg, "acct-1", svc, nil, nil)
	g.Load(context.Background())

	if err := g.BeginEdit("001", "Name"); !errors.Is(err, ErrNotEditable) {
		t.Errorf("Expected ErrNotEditable with inline edit globally off, got %v", err)
	}
}

func TestDirtyFlagFollowsEdits(t *testing.T) {
	svc := testService()
	g := New(testGridConfig(), "acct-1", svc, nil, nil)
	g.Load(context.Background())

	g.BeginEdit("001", "Name")
	records := g.Records()
	if !records[0].IsDirty {
		t.Error("Expected record with open edit to be dirty")
	}
	if records[1].IsDirty {
		t.Error("Expected untouched record to be clean")
	}

	g.CancelEdit("001", "Name")
	records = g.Records()
	if records[0].IsDirty {
		t.Error("Expected dirty flag cleared after cancel")
	}
}

func TestCancelLeavesPersistedValue(t *testing.T) {
	svc := testService()
	g := New(testGridConfig(), "acct-1", svc, nil, nil)
	g.Load(context.Background())

	g.BeginEdit("001", "Name")
	g.UpdateEdit("001", "Name", "Changed")
	g.CancelEdit("001", "Name")

	records := g.Records()
	if records[0].Get("Name") != "Ada" {
		t.Errorf("Expected persisted value untouched, got %v", records[0].Get("Name"))
	}
}

func TestStaleResponseDiscarded(t *testing.T) {
	svc := testService()
	g := New(testGridConfig(), "acct-1", svc, nil, nil)
	g.Load(context.Background())

	// While the page-2 fetch is in flight, a newer fetch is issued; the
	// in-flight response must be discarded.
	interleaved := false
	svc.onFetch = func(q recordsvc.Query) {
		if q.PageNumber == 2 && !interleaved {
			interleaved = true
			g.requestID.Add(1)
		}
	}

	g.NextPage(context.Background())

	records := g.Records()
	if len(records) != 2 || records[0].ID != "001" {
		t.Errorf("Expected stale page-2 response discarded, got %v", records)
	}
}

func TestSetVisibleFields(t *testing.T) {
	svc := testService()
	g := New(testGridConfig(), "acct-1", svc, nil, nil)
	g.Load(context.Background())

	g.SetVisibleFields([]string{"Email"})
	cols := g.Columns()
	if cols[0].FieldName != "Email" {
		t.Errorf("Expected Email column first, got %+v", cols[0])
	}
	if len(cols) != 2 {
		t.Errorf("Expected Email plus actions, got %d columns", len(cols))
	}

	// Empty list is ignored.
	g.SetVisibleFields(nil)
	if len(g.Columns()) != 2 {
		t.Error("Expected empty field list to be ignored")
	}
}

func TestExportCSV(t *testing.T) {
	svc := testService()
	recorder := &notify.Recorder{}
	g := New(testGridConfig(), "acct-1", svc, recorder, nil)
	g.Load(context.Background())

	data, filename, err := g.ExportCSV()
	if err != nil {
		t.Fatalf("ExportCSV failed: %v", err)
	}
	if filename != "Contact_export.csv" {
		t.Errorf("Expected Contact_export.csv, got %s", filename)
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if lines[0] != "Name,Email" {
		t.Errorf("Expected header Name,Email, got %q", lines[0])
	}
	if len(lines) != 3 {
		t.Errorf("Expected header plus 2 rows, got %d", len(lines))
	}

	toast, ok := recorder.Last()
	if !ok || toast.Variant != notify.Success {
		t.Errorf("Expected success toast, got %+v", toast)
	}
}

func TestSaveThroughCoordinatorClearsDirty(t *testing.T) {
	svc := testService()
	g := New(testGridConfig(), "acct-1", svc, nil, nil)
	g.Load(context.Background())

	g.BeginEdit("001", "Name")
	g.UpdateEdit("001", "Name", "Ada L")

	if err := g.Coordinator.SaveCell(context.Background(), "001", "Name"); err != nil {
		t.Fatalf("SaveCell failed: %v", err)
	}
	if g.Edits.IsEditing("001", "Name") {
		t.Error("Expected edit entry removed after save")
	}
	if g.Records()[0].IsDirty {
		t.Error("Expected record clean after save and refresh")
	}
}
