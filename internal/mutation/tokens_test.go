package mutation

import "testing"

func TestDeleteTokensSingleUse(t *testing.T) {
	tokens := NewDeleteTokens()

	token := tokens.Stage([]string{"001", "002"})
	if token == "" {
		t.Fatal("expected a non-empty token")
	}

	if ids, ok := tokens.Peek(token); !ok || len(ids) != 2 {
		t.Fatalf("expected staged ids via Peek, got %v %v", ids, ok)
	}

	ids, ok := tokens.Take(token)
	if !ok || len(ids) != 2 {
		t.Fatalf("expected staged ids via Take, got %v %v", ids, ok)
	}
	if _, ok := tokens.Take(token); ok {
		t.Error("expected token consumed after Take")
	}
	if tokens.Cancel(token) {
		t.Error("expected Cancel to fail for a consumed token")
	}
}

func TestDeleteTokensStageCopiesIDs(t *testing.T) {
	tokens := NewDeleteTokens()

	src := []string{"001", "002"}
	token := tokens.Stage(src)
	src[0] = "mutated"

	ids, _ := tokens.Peek(token)
	if ids[0] != "001" {
		t.Errorf("expected staged ids isolated from caller slice, got %v", ids)
	}
}

func TestDeleteTokensAreDistinct(t *testing.T) {
	tokens := NewDeleteTokens()
	a := tokens.Stage([]string{"001"})
	b := tokens.Stage([]string{"002"})
	if a == b {
		t.Fatal("expected distinct tokens per staging")
	}
	if tokens.Cancel(a) != true || tokens.Cancel(a) != false {
		t.Error("expected Cancel to consume only its own token once")
	}
	if ids, ok := tokens.Peek(b); !ok || ids[0] != "002" {
		t.Errorf("expected second staging untouched, got %v %v", ids, ok)
	}
}
