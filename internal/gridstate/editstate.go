package gridstate

import (
	"errors"
	"sort"
)

var (
	// ErrNoEntry signals misuse: updating or committing a cell that was
	// never put into edit mode.
	ErrNoEntry = errors.New("no edit entry for cell")
)

// CellKey addresses one in-progress cell edit.
type CellKey struct {
	RecordID string
	Field    string
}

// EditEntry holds the draft value for one cell plus the value captured
// when editing started. Presence of an entry is exactly the signal that
// the cell renders in edit mode.
type EditEntry struct {
	RecordID      string `json:"recordId"`
	Field         string `json:"field"`
	Value         any    `json:"value"`
	OriginalValue any    `json:"originalValue"`
}

// EditStateStore tracks in-progress cell edits keyed by (record, field).
// Entries survive failed saves so the attempted value can be resubmitted;
// they are removed only on cancel or after the backend confirms a save.
type EditStateStore struct {
	entries map[CellKey]EditEntry
}

func NewEditStateStore() *EditStateStore {
	return &EditStateStore{entries: make(map[CellKey]EditEntry)}
}

// Begin creates or overwrites the entry for the cell. Editability is
// enforced at the rendering boundary, not here.
func (s *EditStateStore) Begin(recordID, field string, currentValue any) {
	key := CellKey{recordID, field}
	s.entries[key] = EditEntry{
		RecordID:      recordID,
		Field:         field,
		Value:         currentValue,
		OriginalValue: currentValue,
	}
}

// Update replaces the draft value of an open entry, preserving the
// original value. Returns ErrNoEntry if the cell is not being edited.
func (s *EditStateStore) Update(recordID, field string, newValue any) error {
	key := CellKey{recordID, field}
	entry, ok := s.entries[key]
	if !ok {
		return ErrNoEntry
	}
	entry.Value = newValue
	s.entries[key] = entry
	return nil
}

// Commit reads the entry for building a save payload. It does not remove
// the entry; removal happens only after the save succeeds, so a failed
// save leaves the cell in edit mode with the attempted value.
func (s *EditStateStore) Commit(recordID, field string) (EditEntry, error) {
	entry, ok := s.entries[CellKey{recordID, field}]
	if !ok {
		return EditEntry{}, ErrNoEntry
	}
	return entry, nil
}

// Cancel removes the entry unconditionally, discarding the draft.
func (s *EditStateStore) Cancel(recordID, field string) {
	delete(s.entries, CellKey{recordID, field})
}

// Resolve removes the entry after a confirmed save.
func (s *EditStateStore) Resolve(recordID, field string) {
	delete(s.entries, CellKey{recordID, field})
}

// DiscardAllFor removes every entry for a record, used when the record is
// deleted or leaves the current page.
func (s *EditStateStore) DiscardAllFor(recordID string) {
	for key := range s.entries {
		if key.RecordID == recordID {
			delete(s.entries, key)
		}
	}
}

// DiscardAll empties the store.
func (s *EditStateStore) DiscardAll() {
	s.entries = make(map[CellKey]EditEntry)
}

// IsEditing reports whether the cell has an open entry.
func (s *EditStateStore) IsEditing(recordID, field string) bool {
	_, ok := s.entries[CellKey{recordID, field}]
	return ok
}

// HasEditsFor reports whether any cell of the record has an open entry.
// Drives the record's dirty flag in the grid.
func (s *EditStateStore) HasEditsFor(recordID string) bool {
	for key := range s.entries {
		if key.RecordID == recordID {
			return true
		}
	}
	return false
}

func (s *EditStateStore) Len() int {
	return len(s.entries)
}

// Entries returns all open entries in a stable order.
func (s *EditStateStore) Entries() []EditEntry {
	out := make([]EditEntry, 0, len(s.entries))
	for _, entry := range s.entries {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RecordID != out[j].RecordID {
			return out[i].RecordID < out[j].RecordID
		}
		return out[i].Field < out[j].Field
	})
	return out
}

// EntriesByRecord groups open entries into per-record field maps, the
// shape of a partial-record save batch.
func (s *EditStateStore) EntriesByRecord() map[string]map[string]any {
	out := make(map[string]map[string]any)
	for key, entry := range s.entries {
		patch, ok := out[key.RecordID]
		if !ok {
			patch = make(map[string]any)
			out[key.RecordID] = patch
		}
		patch[key.Field] = entry.Value
	}
	return out
}
