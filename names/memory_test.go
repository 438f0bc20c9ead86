package names

import (
	"testing"

	"memory-match/game"
)

var _ game.NameStore = (*Memory)(nil)

func TestMemory(t *testing.T) {
	s := NewMemory()
	if _, ok := s.Get("player1"); ok {
		t.Error("empty store should report no value")
	}
	s.Set("player1", "Alice")
	if v, ok := s.Get("player1"); !ok || v != "Alice" {
		t.Errorf("Get = %q, %v", v, ok)
	}
	s.Remove("player1")
	if _, ok := s.Get("player1"); ok {
		t.Error("value should be gone after Remove")
	}
	s.Remove("missing")
}

func TestBookScopesAreIsolated(t *testing.T) {
	b := NewBook()
	b.Scope("tab-a").Set("player1", "Alice")
	b.Scope("tab-b").Set("player1", "Bob")

	if v, _ := b.Scope("tab-a").Get("player1"); v != "Alice" {
		t.Errorf("tab-a: expected Alice, got %q", v)
	}
	if v, _ := b.Scope("tab-b").Get("player1"); v != "Bob" {
		t.Errorf("tab-b: expected Bob, got %q", v)
	}
	if b.Len() != 2 {
		t.Errorf("expected 2 scopes, got %d", b.Len())
	}
}
