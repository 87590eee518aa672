package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/Lumos-Labs-HQ/relgrid/internal/columns"
	"github.com/Lumos-Labs-HQ/relgrid/internal/export"
	"github.com/Lumos-Labs-HQ/relgrid/internal/fieldmeta"
	"github.com/Lumos-Labs-HQ/relgrid/internal/gridstate"
	"github.com/Lumos-Labs-HQ/relgrid/internal/recordsvc"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type recordsResponse struct {
	Records     []recordsvc.Record `json:"records"`
	TotalCount  int                `json:"totalCount"`
	PageNumber  int                `json:"pageNumber"`
	PageSize    int                `json:"pageSize"`
	TotalPages  int                `json:"totalPages"`
	IsFirstPage bool               `json:"isFirstPage"`
	IsLastPage  bool               `json:"isLastPage"`
	StartRecord int                `json:"startRecord"`
	EndRecord   int                `json:"endRecord"`
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	parentID := r.URL.Query().Get("parentId")
	if parentID == "" {
		respondError(w, http.StatusBadRequest, "Query parameter 'parentId' is required")
		return
	}

	pageSize := queryInt(r, "pageSize", s.cfg.Grid.PageSize)
	page := queryInt(r, "page", 1)
	sortField := r.URL.Query().Get("sort")
	if sortField == "" {
		sortField = s.cfg.Grid.SortField
	}
	sortDir := r.URL.Query().Get("dir")
	if sortDir == "" {
		sortDir = s.cfg.Grid.SortDirection
	}

	q := recordsvc.Query{
		ParentID:          parentID,
		ObjectName:        s.cfg.Grid.ObjectName,
		RelationshipField: s.cfg.Grid.RelationshipField,
		FieldNames:        s.cfg.Grid.FieldNames(),
		PageSize:          pageSize,
		PageNumber:        page,
		SortField:         sortField,
		SortDirection:     sortDir,
		SearchTerm:        r.URL.Query().Get("q"),
	}

	result, err := s.store.FetchRelatedRecords(r.Context(), q)
	if err != nil {
		s.logger.Errorw("record fetch failed", "parentId", parentID, "error", err)
		respondError(w, http.StatusInternalServerError, "Unable to load records")
		return
	}

	pager := gridstate.NewPaginationController(pageSize)
	pager.SetTotalRecords(result.TotalCount)
	pager.SetPage(page)

	// A requested page past the end clamps to the last page, and the
	// rows must come from the page actually reported.
	if pager.CurrentPage() != q.PageNumber {
		q.PageNumber = pager.CurrentPage()
		result, err = s.store.FetchRelatedRecords(r.Context(), q)
		if err != nil {
			s.logger.Errorw("record fetch failed", "parentId", parentID, "error", err)
			respondError(w, http.StatusInternalServerError, "Unable to load records")
			return
		}
	}

	respondJSON(w, http.StatusOK, recordsResponse{
		Records:     result.Records,
		TotalCount:  result.TotalCount,
		PageNumber:  pager.CurrentPage(),
		PageSize:    pager.PageSize(),
		TotalPages:  pager.TotalPages(),
		IsFirstPage: pager.IsFirstPage(),
		IsLastPage:  pager.IsLastPage(),
		StartRecord: pager.StartRecord(),
		EndRecord:   pager.EndRecord(),
	})
}

type gridConfigResponse struct {
	ObjectName         string `json:"objectName"`
	CardTitle          string `json:"cardTitle"`
	PageSize           int    `json:"pageSize"`
	AllowInlineEdit    bool   `json:"allowInlineEdit"`
	AllowBulkEdit      bool   `json:"allowBulkEdit"`
	AllowDelete        bool   `json:"allowDelete"`
	ShowRowNumbers     bool   `json:"showRowNumbers"`
	HideCheckboxColumn bool   `json:"hideCheckboxColumn"`
	MaxRowSelection    int    `json:"maxRowSelection"`
	SortField          string `json:"sortField"`
	SortDirection      string `json:"sortDirection"`
	CurrencyCode       string `json:"currencyCode"`
}

// handleConfig hands the embedding host the display settings it cannot
// derive from columns or records: card title, row numbers, checkbox
// column, selection cap and the permission toggles.
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	g := s.cfg.Grid
	respondJSON(w, http.StatusOK, gridConfigResponse{
		ObjectName:         g.ObjectName,
		CardTitle:          g.CardTitle,
		PageSize:           g.PageSize,
		AllowInlineEdit:    g.AllowInlineEdit,
		AllowBulkEdit:      g.AllowBulkEdit,
		AllowDelete:        g.AllowDelete,
		ShowRowNumbers:     g.ShowRowNumbers,
		HideCheckboxColumn: g.HideCheckboxColumn,
		MaxRowSelection:    g.MaxRowSelection,
		SortField:          g.SortField,
		SortDirection:      g.SortDirection,
		CurrencyCode:       g.CurrencyCode,
	})
}

func (s *Server) handleMetadata(w http.ResponseWriter, r *http.Request) {
	meta, err := s.store.FetchFieldMetadata(r.Context(), s.cfg.Grid.ObjectName)
	if err != nil {
		s.logger.Errorw("metadata fetch failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Unable to load field metadata")
		return
	}
	respondJSON(w, http.StatusOK, meta)
}

func (s *Server) handleColumns(w http.ResponseWriter, r *http.Request) {
	meta, err := s.store.FetchFieldMetadata(r.Context(), s.cfg.Grid.ObjectName)
	if err != nil {
		s.logger.Errorw("metadata fetch failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Unable to load field metadata")
		return
	}

	cols := s.buildColumns(meta)
	respondJSON(w, http.StatusOK, cols)
}

type saveRequest struct {
	Records []recordsvc.Patch `json:"records"`
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Records) == 0 {
		respondError(w, http.StatusBadRequest, "No records to save")
		return
	}

	if s.cfg.Grid.ValidateOnSave {
		result, err := s.store.ValidateRecords(r.Context(), req.Records, s.cfg.Grid.ObjectName)
		if err != nil {
			s.logger.Errorw("validation failed", "error", err)
			respondError(w, http.StatusInternalServerError, "Unable to validate records")
			return
		}
		if !result.IsValid {
			respondError(w, http.StatusUnprocessableEntity, result.ErrorMessage)
			return
		}
	}

	if err := s.store.SaveRecords(r.Context(), req.Records, s.cfg.Grid.ObjectName); err != nil {
		s.logger.Errorw("save failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Unable to save records")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"saved": len(req.Records)})
}

type bulkUpdateRequest struct {
	RecordIDs   []string       `json:"recordIds"`
	FieldValues map[string]any `json:"fieldValues"`
}

func (s *Server) handleBulkUpdate(w http.ResponseWriter, r *http.Request) {
	if !s.cfg.Grid.AllowBulkEdit {
		respondError(w, http.StatusForbidden, "Bulk edit is disabled")
		return
	}

	var req bulkUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.RecordIDs) == 0 {
		respondError(w, http.StatusBadRequest, "No records selected")
		return
	}
	if len(req.FieldValues) == 0 {
		respondError(w, http.StatusBadRequest, "No field values provided")
		return
	}

	if err := s.store.BulkUpdateRecords(r.Context(), req.RecordIDs, req.FieldValues, s.cfg.Grid.ObjectName); err != nil {
		s.logger.Errorw("bulk update failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Unable to update records")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"updated": len(req.RecordIDs)})
}

type deleteRequest struct {
	RecordIDs []string `json:"recordIds"`
}

type deleteTokenRequest struct {
	Token string `json:"token"`
}

// handleDeleteRequest stages a deletion and hands back a confirmation
// token; nothing is removed until the token is confirmed.
func (s *Server) handleDeleteRequest(w http.ResponseWriter, r *http.Request) {
	if !s.cfg.Grid.AllowDelete {
		respondError(w, http.StatusForbidden, "Delete is disabled")
		return
	}

	var req deleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.RecordIDs) == 0 {
		respondError(w, http.StatusBadRequest, "No records selected")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"token": s.pendingDeletes.Stage(req.RecordIDs),
		"count": len(req.RecordIDs),
	})
}

func (s *Server) handleDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	var req deleteTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ids, ok := s.pendingDeletes.Take(req.Token)
	if !ok {
		respondError(w, http.StatusNotFound, "Unknown or expired delete token")
		return
	}

	if err := s.store.DeleteRecords(r.Context(), ids, s.cfg.Grid.ObjectName); err != nil {
		s.logger.Errorw("delete failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Unable to delete records")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"deleted": len(ids)})
}

func (s *Server) handleDeleteCancel(w http.ResponseWriter, r *http.Request) {
	var req deleteTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !s.pendingDeletes.Cancel(req.Token) {
		respondError(w, http.StatusNotFound, "Unknown or expired delete token")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"cancelled": true})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	parentID := r.URL.Query().Get("parentId")
	if parentID == "" {
		respondError(w, http.StatusBadRequest, "Query parameter 'parentId' is required")
		return
	}

	meta, err := s.store.FetchFieldMetadata(r.Context(), s.cfg.Grid.ObjectName)
	if err != nil {
		s.logger.Errorw("metadata fetch failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Unable to load field metadata")
		return
	}

	// The export covers the whole related list, not one page.
	q := recordsvc.Query{
		ParentID:          parentID,
		ObjectName:        s.cfg.Grid.ObjectName,
		RelationshipField: s.cfg.Grid.RelationshipField,
		FieldNames:        s.cfg.Grid.FieldNames(),
		PageSize:          10000,
		PageNumber:        1,
		SortField:         s.cfg.Grid.SortField,
		SortDirection:     s.cfg.Grid.SortDirection,
	}
	result, err := s.store.FetchRelatedRecords(r.Context(), q)
	if err != nil {
		s.logger.Errorw("export fetch failed", "parentId", parentID, "error", err)
		respondError(w, http.StatusInternalServerError, "Unable to load records")
		return
	}

	data, err := export.MarshalCSV(s.buildColumns(meta), result.Records)
	if err != nil {
		s.logger.Errorw("export failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Unable to build CSV export")
		return
	}
	if data == nil {
		respondError(w, http.StatusNotFound, "No data to export")
		return
	}

	filename := export.Filename(s.cfg.Grid.ObjectName)
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *Server) buildColumns(meta []recordsvc.RawFieldMeta) []columns.Column {
	raw := make([]fieldmeta.RawField, len(meta))
	for i, m := range meta {
		raw[i] = fieldmeta.RawField{
			Name:           m.Name,
			Label:          m.Label,
			Type:           m.Type,
			Required:       m.Required,
			Editable:       m.Editable,
			Sortable:       m.Sortable,
			Filterable:     m.Filterable,
			Width:          m.Width,
			PicklistValues: m.PicklistValues,
			LookupObject:   m.LookupObject,
		}
	}

	fieldNames := s.cfg.Grid.FieldNames()
	catalog := fieldmeta.NewCatalog(raw, fieldNames)
	return columns.Build(fieldNames, catalog, columns.Options{
		AllowInlineEdit: s.cfg.Grid.AllowInlineEdit,
		AllowDelete:     s.cfg.Grid.AllowDelete,
		AllowView:       true,
		CurrencyCode:    s.cfg.Grid.CurrencyCode,
	})
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}
