package mutation

import (
	"context"
	"errors"
	"fmt"

	"github.com/looplab/fsm"
	"go.uber.org/zap"

	"github.com/Lumos-Labs-HQ/relgrid/internal/gridstate"
	"github.com/Lumos-Labs-HQ/relgrid/internal/notify"
	"github.com/Lumos-Labs-HQ/relgrid/internal/recordsvc"
)

// Operation states. Failed transitions return to idle with local state
// intact; success passes through refreshing before settling back to idle.
const (
	StateIdle       = "idle"
	StateValidating = "validating"
	StateSaving     = "saving"
	StateRefreshing = "refreshing"
)

const (
	eventValidate = "validate"
	eventSave     = "save"
	eventRefresh  = "refresh"
	eventFinish   = "finish"
	eventFail     = "fail"
)

var (
	// ErrBusy rejects a mutation started while another is in flight.
	ErrBusy = errors.New("another mutation is in progress")
	// ErrNoSelection rejects a bulk action with an empty target set.
	ErrNoSelection = errors.New("no records selected")
	// ErrNoField rejects a bulk edit without a chosen target field.
	ErrNoField = errors.New("no field chosen for bulk edit")
	// ErrUnknownToken rejects a confirm/cancel for an unknown pending delete.
	ErrUnknownToken = errors.New("unknown delete confirmation token")
)

// Refresher re-fetches the current page after a successful mutation. The
// refetch, not a local patch, is the source of truth for displayed data.
type Refresher func(ctx context.Context) error

// Coordinator orchestrates save, bulk save, bulk update and delete
// against the record service. It builds payloads from the edit and
// selection stores, interprets outcomes, emits exactly one toast per
// terminal outcome and triggers a refresh after success.
type Coordinator struct {
	svc       recordsvc.Service
	edits     *gridstate.EditStateStore
	selection *gridstate.SelectionStore
	notifier  notify.Notifier
	logger    *zap.SugaredLogger
	refresh   Refresher

	objectName     string
	validateOnSave bool
	machine        *fsm.FSM
	pendingDeletes *DeleteTokens
}

// Config wires a coordinator.
type Config struct {
	Service        recordsvc.Service
	Edits          *gridstate.EditStateStore
	Selection      *gridstate.SelectionStore
	Notifier       notify.Notifier
	Logger         *zap.SugaredLogger
	Refresh        Refresher
	ObjectName     string
	ValidateOnSave bool
}

func NewCoordinator(cfg Config) *Coordinator {
	c := &Coordinator{
		svc:            cfg.Service,
		edits:          cfg.Edits,
		selection:      cfg.Selection,
		notifier:       cfg.Notifier,
		logger:         cfg.Logger,
		refresh:        cfg.Refresh,
		objectName:     cfg.ObjectName,
		validateOnSave: cfg.ValidateOnSave,
		pendingDeletes: NewDeleteTokens(),
	}
	if c.logger == nil {
		c.logger = zap.NewNop().Sugar()
	}
	if c.notifier == nil {
		c.notifier = notify.Discard{}
	}
	c.machine = fsm.NewFSM(
		StateIdle,
		fsm.Events{
			{Name: eventValidate, Src: []string{StateIdle}, Dst: StateValidating},
			{Name: eventSave, Src: []string{StateIdle, StateValidating}, Dst: StateSaving},
			{Name: eventRefresh, Src: []string{StateSaving}, Dst: StateRefreshing},
			{Name: eventFinish, Src: []string{StateRefreshing}, Dst: StateIdle},
			{Name: eventFail, Src: []string{StateValidating, StateSaving, StateRefreshing}, Dst: StateIdle},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				c.logger.Debugw("mutation state change", "from", e.Src, "to", e.Dst, "event", e.Event)
			},
		},
	)
	return c
}

// IsProcessing is the shared coarse in-flight flag. It disables the
// mutation-triggering controls; any in-flight mutation blocks new ones.
func (c *Coordinator) IsProcessing() bool {
	return c.machine.Current() != StateIdle
}

// State exposes the machine state for observability.
func (c *Coordinator) State() string {
	return c.machine.Current()
}

// acquire moves the machine out of idle or reports the coordinator busy.
// The returned release always runs, so isProcessing is cleared on every
// path including panics and backend failures.
func (c *Coordinator) acquire(ctx context.Context) (func(), error) {
	if c.IsProcessing() {
		return nil, ErrBusy
	}
	if err := c.machine.Event(ctx, eventValidate); err != nil {
		return nil, ErrBusy
	}
	return func() {
		if c.machine.Current() != StateIdle {
			c.machine.SetState(StateIdle)
		}
	}, nil
}

// SaveCell saves the open draft for one cell as a one-record,
// single-field patch. On validation or save failure the entry is left
// intact and the cell stays in edit mode with the attempted value.
func (c *Coordinator) SaveCell(ctx context.Context, recordID, field string) error {
	release, err := c.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	entry, err := c.edits.Commit(recordID, field)
	if err != nil {
		c.toastError("Error", "No pending change for this cell")
		return fmt.Errorf("failed to commit edit for %s.%s: %w", recordID, field, err)
	}

	patch := recordsvc.Patch{ID: recordID, Fields: map[string]any{field: entry.Value}}
	if err := c.runSave(ctx, []recordsvc.Patch{patch}); err != nil {
		return err
	}

	c.edits.Resolve(recordID, field)
	c.toastSuccess("Success", "Record updated successfully")
	c.runRefresh(ctx)
	return nil
}

// SaveAll commits every open draft, grouped by record id, as one batch.
// Success clears all included entries; failure clears nothing.
func (c *Coordinator) SaveAll(ctx context.Context) error {
	release, err := c.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	grouped := c.edits.EntriesByRecord()
	if len(grouped) == 0 {
		c.toastWarning("Warning", "No changes to save")
		return nil
	}

	patches := make([]recordsvc.Patch, 0, len(grouped))
	for id, fields := range grouped {
		patches = append(patches, recordsvc.Patch{ID: id, Fields: fields})
	}

	if err := c.runSave(ctx, patches); err != nil {
		return err
	}

	for _, patch := range patches {
		for field := range patch.Fields {
			c.edits.Resolve(patch.ID, field)
		}
	}
	c.toastSuccess("Success", "Records updated successfully")
	c.runRefresh(ctx)
	return nil
}

// DiscardAll cancels every open draft without touching the backend.
func (c *Coordinator) DiscardAll() {
	c.edits.DiscardAll()
}

// ApplyBulkEdit assigns one field/value pair identically to every target
// id in a single batch update. Success clears the selection; the draft
// is discarded by the caller whether applied or cancelled.
func (c *Coordinator) ApplyBulkEdit(ctx context.Context, recordIDs []string, field string, value any) error {
	if len(recordIDs) == 0 {
		c.toastWarning("Warning", "Please select records to edit")
		return ErrNoSelection
	}
	if field == "" {
		c.toastWarning("Warning", "Please select a field to update")
		return ErrNoField
	}

	release, err := c.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if err := c.machine.Event(ctx, eventSave); err != nil {
		return ErrBusy
	}
	if err := c.svc.BulkUpdateRecords(ctx, recordIDs, map[string]any{field: value}, c.objectName); err != nil {
		c.machine.Event(ctx, eventFail)
		c.toastError("Error", messageOr(err, "Error updating records"))
		return fmt.Errorf("bulk update failed: %w", err)
	}

	c.selection.Clear()
	c.toastSuccess("Success", fmt.Sprintf("%d records updated successfully", len(recordIDs)))
	c.runRefresh(ctx)
	return nil
}

// RequestDelete stages an irreversible delete behind an explicit
// confirmation token. No backend call happens until ConfirmDelete.
func (c *Coordinator) RequestDelete(recordIDs []string) (string, error) {
	if len(recordIDs) == 0 {
		c.toastWarning("Warning", "Please select records to delete")
		return "", ErrNoSelection
	}
	return c.pendingDeletes.Stage(recordIDs), nil
}

// PendingDelete returns the ids staged under a token.
func (c *Coordinator) PendingDelete(token string) ([]string, bool) {
	return c.pendingDeletes.Peek(token)
}

// CancelDelete declines a staged delete. No backend call is made and the
// selection is left untouched.
func (c *Coordinator) CancelDelete(token string) error {
	if !c.pendingDeletes.Cancel(token) {
		return ErrUnknownToken
	}
	return nil
}

// ConfirmDelete dispatches a staged delete as one batch. On success the
// ids leave the selection set and their open drafts are discarded; on
// failure selection and rows are untouched.
func (c *Coordinator) ConfirmDelete(ctx context.Context, token string) error {
	ids, ok := c.pendingDeletes.Take(token)
	if !ok {
		return ErrUnknownToken
	}

	release, err := c.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if err := c.machine.Event(ctx, eventSave); err != nil {
		return ErrBusy
	}
	if err := c.svc.DeleteRecords(ctx, ids, c.objectName); err != nil {
		c.machine.Event(ctx, eventFail)
		c.toastError("Error", messageOr(err, "Error deleting records"))
		return fmt.Errorf("delete failed: %w", err)
	}

	c.selection.Remove(ids)
	for _, id := range ids {
		c.edits.DiscardAllFor(id)
	}
	if len(ids) == 1 {
		c.toastSuccess("Success", "Record deleted successfully")
	} else {
		c.toastSuccess("Success", fmt.Sprintf("%d records deleted successfully", len(ids)))
	}
	c.runRefresh(ctx)
	return nil
}

// runSave performs the validate-then-save leg shared by SaveCell and
// SaveAll. The caller still owns the edit entries; nothing is cleared on
// failure.
func (c *Coordinator) runSave(ctx context.Context, patches []recordsvc.Patch) error {
	if c.validateOnSave {
		result, err := c.svc.ValidateRecords(ctx, patches, c.objectName)
		if err != nil {
			c.machine.Event(ctx, eventFail)
			c.toastError("Error", messageOr(err, "Error validating records"))
			return fmt.Errorf("validation call failed: %w", err)
		}
		if !result.IsValid {
			c.machine.Event(ctx, eventFail)
			c.toastError("Validation Error", messageOr(nil, result.ErrorMessage))
			return fmt.Errorf("validation rejected: %s", result.ErrorMessage)
		}
	}

	if err := c.machine.Event(ctx, eventSave); err != nil {
		return ErrBusy
	}
	if err := c.svc.SaveRecords(ctx, patches, c.objectName); err != nil {
		c.machine.Event(ctx, eventFail)
		c.toastError("Error", messageOr(err, "Error saving records"))
		return fmt.Errorf("save failed: %w", err)
	}
	return nil
}

// runRefresh re-fetches after a successful mutation. A refresh failure
// is logged, not toasted: the mutation's own toast already reported the
// terminal outcome, and the fetch layer surfaces its error state.
func (c *Coordinator) runRefresh(ctx context.Context) {
	if err := c.machine.Event(ctx, eventRefresh); err != nil {
		return
	}
	if c.refresh != nil {
		if err := c.refresh(ctx); err != nil {
			c.logger.Warnw("refresh after mutation failed", "error", err)
		}
	}
	c.machine.Event(ctx, eventFinish)
}

func (c *Coordinator) toastSuccess(title, msg string) {
	c.notifier.Notify(notify.Toast{Title: title, Message: msg, Variant: notify.Success})
}

func (c *Coordinator) toastWarning(title, msg string) {
	c.notifier.Notify(notify.Toast{Title: title, Message: msg, Variant: notify.Warning})
}

func (c *Coordinator) toastError(title, msg string) {
	c.notifier.Notify(notify.Toast{Title: title, Message: msg, Variant: notify.Error})
}

// messageOr prefers the backend-supplied message, falling back to a
// generic one so no failure surfaces blank.
func messageOr(err error, fallback string) string {
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	if fallback != "" {
		return fallback
	}
	return "An unexpected error occurred"
}
