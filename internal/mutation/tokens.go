package mutation

import (
	"sync"

	"github.com/google/uuid"
)

// DeleteTokens stages irreversible deletions behind single-use
// confirmation tokens. Both the coordinator and the HTTP surface run
// the two-step protocol through this one implementation.
type DeleteTokens struct {
	mu     sync.Mutex
	staged map[string][]string
}

func NewDeleteTokens() *DeleteTokens {
	return &DeleteTokens{staged: make(map[string][]string)}
}

// Stage records the target ids and returns their confirmation token.
func (t *DeleteTokens) Stage(recordIDs []string) string {
	ids := make([]string, len(recordIDs))
	copy(ids, recordIDs)

	token := uuid.NewString()
	t.mu.Lock()
	t.staged[token] = ids
	t.mu.Unlock()
	return token
}

// Peek returns the ids staged under a token without consuming it.
func (t *DeleteTokens) Peek(token string) ([]string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	ids, ok := t.staged[token]
	return ids, ok
}

// Take consumes a token, returning its ids. A token can be taken once.
func (t *DeleteTokens) Take(token string) ([]string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	ids, ok := t.staged[token]
	if ok {
		delete(t.staged, token)
	}
	return ids, ok
}

// Cancel discards a staged deletion.
func (t *DeleteTokens) Cancel(token string) bool {
	_, ok := t.Take(token)
	return ok
}
