package models

import (
	"strings"
	"testing"
)

func TestNewItemName(t *testing.T) {
	t.Run("valid single character", func(t *testing.T) {
		n, err := NewItemName("a")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n.String() != "a" {
			t.Fatalf("expected %q, got %q", "a", n.String())
		}
	})

	t.Run("valid 255 multibyte characters", func(t *testing.T) {
		s := strings.Repeat("é", 255)
		n, err := NewItemName(s)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n.String() != s {
			t.Fatal("expected name to be kept intact")
		}
	})

	t.Run("trims surrounding whitespace", func(t *testing.T) {
		n, err := NewItemName("  Vintage Camera ")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n.String() != "Vintage Camera" {
			t.Fatalf("expected %q, got %q", "Vintage Camera", n.String())
		}
	})

	t.Run("blank string returns error", func(t *testing.T) {
		if _, err := NewItemName("   "); err == nil {
			t.Fatal("expected error, got nil")
		}
	})

	t.Run("256 characters returns error", func(t *testing.T) {
		if _, err := NewItemName(strings.Repeat("x", 256)); err == nil {
			t.Fatal("expected error, got nil")
		}
	})
}
