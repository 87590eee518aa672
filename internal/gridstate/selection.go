package gridstate

import "sort"

// SelectionStore tracks the set of selected record ids and derives the
// three-state header checkbox flags. Order is irrelevant; the cap, when
// positive, silently ignores selections beyond it.
type SelectionStore struct {
	ids map[string]bool
	max int
}

func NewSelectionStore(maxSelection int) *SelectionStore {
	return &SelectionStore{ids: make(map[string]bool), max: maxSelection}
}

// Toggle adds or removes a single id. Adding beyond the cap is ignored.
func (s *SelectionStore) Toggle(recordID string, selected bool) {
	if !selected {
		delete(s.ids, recordID)
		return
	}
	if s.max > 0 && len(s.ids) >= s.max && !s.ids[recordID] {
		return
	}
	s.ids[recordID] = true
}

// SelectAll replaces the selection with the given ids, clamped to the cap.
func (s *SelectionStore) SelectAll(ids []string) {
	s.ids = make(map[string]bool, len(ids))
	for _, id := range ids {
		if s.max > 0 && len(s.ids) >= s.max {
			break
		}
		s.ids[id] = true
	}
}

// Clear empties the selection.
func (s *SelectionStore) Clear() {
	s.ids = make(map[string]bool)
}

// Remove drops the given ids, keeping the rest of the selection.
func (s *SelectionStore) Remove(ids []string) {
	for _, id := range ids {
		delete(s.ids, id)
	}
}

// Retain drops every selected id not present in keep. Used on page change
// so the selection never references records outside the loaded page.
func (s *SelectionStore) Retain(keep []string) {
	allowed := make(map[string]bool, len(keep))
	for _, id := range keep {
		allowed[id] = true
	}
	for id := range s.ids {
		if !allowed[id] {
			delete(s.ids, id)
		}
	}
}

func (s *SelectionStore) Contains(recordID string) bool {
	return s.ids[recordID]
}

func (s *SelectionStore) Count() int {
	return len(s.ids)
}

// IDs returns the selected ids in a stable order.
func (s *SelectionStore) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// AllSelected reports whether every visible record is selected and the
// page is non-empty.
func (s *SelectionStore) AllSelected(visibleCount int) bool {
	return visibleCount > 0 && len(s.ids) == visibleCount
}

// PartiallySelected reports a non-empty selection short of the full page,
// the indeterminate state of the header checkbox.
func (s *SelectionStore) PartiallySelected(visibleCount int) bool {
	return len(s.ids) > 0 && len(s.ids) < visibleCount
}

// BulkActionsEnabled gates the bulk edit/delete controls.
func (s *SelectionStore) BulkActionsEnabled() bool {
	return len(s.ids) > 0
}
