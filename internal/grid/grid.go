package grid

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/Lumos-Labs-HQ/relgrid/internal/columns"
	"github.com/Lumos-Labs-HQ/relgrid/internal/config"
	"github.com/Lumos-Labs-HQ/relgrid/internal/export"
	"github.com/Lumos-Labs-HQ/relgrid/internal/fieldmeta"
	"github.com/Lumos-Labs-HQ/relgrid/internal/gridstate"
	"github.com/Lumos-Labs-HQ/relgrid/internal/mutation"
	"github.com/Lumos-Labs-HQ/relgrid/internal/notify"
	"github.com/Lumos-Labs-HQ/relgrid/internal/recordsvc"
)

var (
	// ErrNotEditable rejects an edit on a column that does not allow it.
	// Editability is enforced here, at the rendering boundary, not in the
	// edit-state store.
	ErrNotEditable = errors.New("field is not editable")
	// ErrUnknownRecord rejects an edit for a record outside the loaded page.
	ErrUnknownRecord = errors.New("record not in current page")
)

// Grid is the composition root: it derives columns from the field
// catalog, owns the loaded page of records, and routes interaction to
// the edit, selection and pagination stores and the mutation
// coordinator.
type Grid struct {
	cfg      config.Grid
	svc      recordsvc.Service
	notifier notify.Notifier
	logger   *zap.SugaredLogger

	Edits       *gridstate.EditStateStore
	Selection   *gridstate.SelectionStore
	Pagination  *gridstate.PaginationController
	Coordinator *mutation.Coordinator

	mu            sync.Mutex
	parentID      string
	fieldNames    []string
	catalog       *fieldmeta.Catalog
	cols          []columns.Column
	records       []recordsvc.Record
	totalCount    int
	sortField     string
	sortDirection string
	searchTerm    string
	loadError     string

	// Monotonic fetch tag; a response carrying an older tag than the
	// latest issued one is stale and discarded.
	requestID atomic.Uint64
}

// New wires a grid for one parent record.
func New(cfg config.Grid, parentID string, svc recordsvc.Service, notifier notify.Notifier, logger *zap.SugaredLogger) *Grid {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if notifier == nil {
		notifier = notify.Discard{}
	}
	g := &Grid{
		cfg:           cfg,
		svc:           svc,
		notifier:      notifier,
		logger:        logger,
		parentID:      parentID,
		fieldNames:    cfg.FieldNames(),
		sortField:     cfg.SortField,
		sortDirection: strings.ToLower(cfg.SortDirection),
		Edits:         gridstate.NewEditStateStore(),
		Selection:     gridstate.NewSelectionStore(cfg.MaxRowSelection),
		Pagination:    gridstate.NewPaginationController(cfg.PageSize),
	}
	g.Coordinator = mutation.NewCoordinator(mutation.Config{
		Service:        svc,
		Edits:          g.Edits,
		Selection:      g.Selection,
		Notifier:       notifier,
		Logger:         logger,
		Refresh:        g.Refresh,
		ObjectName:     cfg.ObjectName,
		ValidateOnSave: cfg.ValidateOnSave,
	})
	g.rebuildColumns()
	return g
}

// Load fetches field metadata and the first page. A metadata failure is
// logged and leaves the fallback columns in place; a record-fetch
// failure clears the table and records the inline error state.
func (g *Grid) Load(ctx context.Context) error {
	raw, err := g.svc.FetchFieldMetadata(ctx, g.cfg.ObjectName)
	if err != nil {
		g.logger.Errorw("failed to load field metadata", "object", g.cfg.ObjectName, "error", err)
	} else {
		g.mu.Lock()
		g.catalog = fieldmeta.NewCatalog(toRawFields(raw), g.fieldNames)
		g.rebuildColumns()
		g.mu.Unlock()
	}
	return g.Refresh(ctx)
}

// Refresh re-fetches the current page with the current sort, search and
// paging parameters. Stale responses are discarded by request id.
func (g *Grid) Refresh(ctx context.Context) error {
	g.mu.Lock()
	q := recordsvc.Query{
		ParentID:          g.parentID,
		ObjectName:        g.cfg.ObjectName,
		RelationshipField: g.cfg.RelationshipField,
		FieldNames:        g.fieldNames,
		PageSize:          g.Pagination.PageSize(),
		PageNumber:        g.Pagination.CurrentPage(),
		SortField:         g.sortField,
		SortDirection:     g.sortDirection,
		SearchTerm:        g.searchTerm,
	}
	g.mu.Unlock()

	id := g.requestID.Add(1)
	page, err := g.svc.FetchRelatedRecords(ctx, q)

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.requestID.Load() != id {
		// A newer fetch was issued while this one was in flight.
		g.logger.Debugw("discarding stale fetch response", "request", id)
		return nil
	}

	if err != nil {
		g.records = nil
		g.totalCount = 0
		g.loadError = err.Error()
		return fmt.Errorf("failed to fetch related records: %w", err)
	}

	g.loadError = ""
	g.records = page.Records
	g.totalCount = page.TotalCount
	g.Pagination.SetTotalRecords(page.TotalCount)

	ids := make([]string, 0, len(page.Records))
	for i := range page.Records {
		rid := page.Records[i].ID
		ids = append(ids, rid)
		page.Records[i].IsDirty = g.Edits.HasEditsFor(rid)
	}
	// Selection may only reference records on the loaded page.
	g.Selection.Retain(ids)
	return nil
}

// SetSort changes the sort parameters and resets to the first page.
func (g *Grid) SetSort(ctx context.Context, field, direction string) error {
	g.mu.Lock()
	g.sortField = field
	if dir := strings.ToLower(direction); dir == "desc" {
		g.sortDirection = "desc"
	} else {
		g.sortDirection = "asc"
	}
	g.Pagination.Reset()
	g.mu.Unlock()
	return g.Refresh(ctx)
}

// SetSearch changes the search term and resets to the first page.
func (g *Grid) SetSearch(ctx context.Context, term string) error {
	g.mu.Lock()
	g.searchTerm = term
	g.Pagination.Reset()
	g.mu.Unlock()
	return g.Refresh(ctx)
}

// SetPageSize changes the window size and resets to the first page.
func (g *Grid) SetPageSize(ctx context.Context, size int) error {
	g.mu.Lock()
	g.Pagination.SetPageSize(size)
	g.mu.Unlock()
	return g.Refresh(ctx)
}

// NextPage advances a page; a no-op on the last page.
func (g *Grid) NextPage(ctx context.Context) error {
	g.mu.Lock()
	before := g.Pagination.CurrentPage()
	g.Pagination.Next()
	changed := g.Pagination.CurrentPage() != before
	g.mu.Unlock()
	if !changed {
		return nil
	}
	return g.Refresh(ctx)
}

// PreviousPage goes back a page; a no-op on the first page.
func (g *Grid) PreviousPage(ctx context.Context) error {
	g.mu.Lock()
	before := g.Pagination.CurrentPage()
	g.Pagination.Previous()
	changed := g.Pagination.CurrentPage() != before
	g.mu.Unlock()
	if !changed {
		return nil
	}
	return g.Refresh(ctx)
}

// SetPage jumps to an explicit page number.
func (g *Grid) SetPage(ctx context.Context, page int) error {
	g.mu.Lock()
	g.Pagination.SetPage(page)
	g.mu.Unlock()
	return g.Refresh(ctx)
}

// SetVisibleFields re-projects columns from a new configured field list
// without refetching metadata.
func (g *Grid) SetVisibleFields(names []string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	trimmed := make([]string, 0, len(names))
	for _, n := range names {
		if name := strings.TrimSpace(n); name != "" {
			trimmed = append(trimmed, name)
		}
	}
	if len(trimmed) == 0 {
		return
	}
	g.fieldNames = trimmed
	if g.catalog != nil {
		g.catalog = g.catalog.SetVisible(trimmed)
	}
	g.rebuildColumns()
}

// BeginEdit opens a cell for editing. This is the rendering boundary
// that enforces editability and page membership before the edit-state
// store is touched.
func (g *Grid) BeginEdit(recordID, field string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	var rec *recordsvc.Record
	for i := range g.records {
		if g.records[i].ID == recordID {
			rec = &g.records[i]
			break
		}
	}
	if rec == nil {
		return ErrUnknownRecord
	}

	editable := false
	for _, col := range g.cols {
		if col.FieldName == field && col.Editable {
			editable = true
			break
		}
	}
	if !editable {
		return ErrNotEditable
	}

	g.Edits.Begin(recordID, field, rec.Get(field))
	return nil
}

// UpdateEdit replaces the draft value of an open cell.
func (g *Grid) UpdateEdit(recordID, field string, value any) error {
	return g.Edits.Update(recordID, field, value)
}

// CancelEdit discards the draft for a cell.
func (g *Grid) CancelEdit(recordID, field string) {
	g.Edits.Cancel(recordID, field)
}

// SelectAllVisible selects every record on the loaded page.
func (g *Grid) SelectAllVisible() {
	g.mu.Lock()
	defer g.mu.Unlock()
	ids := make([]string, 0, len(g.records))
	for i := range g.records {
		ids = append(ids, g.records[i].ID)
	}
	g.Selection.SelectAll(ids)
}

// ExportCSV serializes the currently displayed rows and visible columns.
func (g *Grid) ExportCSV() ([]byte, string, error) {
	g.mu.Lock()
	cols := make([]columns.Column, len(g.cols))
	copy(cols, g.cols)
	records := make([]recordsvc.Record, len(g.records))
	copy(records, g.records)
	g.mu.Unlock()

	data, err := export.MarshalCSV(cols, records)
	if err != nil {
		g.notifier.Notify(notify.Toast{Title: "Error", Message: "Error exporting data", Variant: notify.Error})
		return nil, "", fmt.Errorf("csv export failed: %w", err)
	}
	g.notifier.Notify(notify.Toast{Title: "Success", Message: "Data exported successfully", Variant: notify.Success})
	return data, export.Filename(g.cfg.ObjectName), nil
}

// Columns returns the current display columns.
func (g *Grid) Columns() []columns.Column {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]columns.Column, len(g.cols))
	copy(out, g.cols)
	return out
}

// Records returns the loaded page with dirty flags reflecting open edits.
func (g *Grid) Records() []recordsvc.Record {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]recordsvc.Record, len(g.records))
	copy(out, g.records)
	for i := range out {
		out[i].IsDirty = g.Edits.HasEditsFor(out[i].ID)
	}
	return out
}

// Catalog returns the current field catalog; nil before Load.
func (g *Grid) Catalog() *fieldmeta.Catalog {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.catalog
}

func (g *Grid) TotalCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.totalCount
}

// LoadError returns the inline error state of the last failed fetch,
// empty when the last fetch succeeded.
func (g *Grid) LoadError() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.loadError
}

func (g *Grid) SortField() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sortField
}

func (g *Grid) SortDirection() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sortDirection
}

func (g *Grid) SearchTerm() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.searchTerm
}

func (g *Grid) rebuildColumns() {
	g.cols = columns.Build(g.fieldNames, g.catalog, columns.Options{
		AllowInlineEdit: g.cfg.AllowInlineEdit,
		AllowDelete:     g.cfg.AllowDelete,
		AllowView:       true,
		CurrencyCode:    g.cfg.CurrencyCode,
	})
}

func toRawFields(raw []recordsvc.RawFieldMeta) []fieldmeta.RawField {
	out := make([]fieldmeta.RawField, len(raw))
	for i, r := range raw {
		out[i] = fieldmeta.RawField{
			Name:           r.Name,
			Label:          r.Label,
			Type:           r.Type,
			Required:       r.Required,
			Editable:       r.Editable,
			Sortable:       r.Sortable,
			Filterable:     r.Filterable,
			Width:          r.Width,
			PicklistValues: r.PicklistValues,
			LookupObject:   r.LookupObject,
		}
	}
	return out
}
