package pool

import (
	"errors"
	"testing"
)

func TestValue_Extract(t *testing.T) {
	t.Run("round-trips the construction type", func(t *testing.T) {
		v := NewValue(42)
		n, err := Extract[int](v)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if n != 42 {
			t.Errorf("Extract[int] = %d, want 42", n)
		}
	})

	t.Run("type mismatch fails", func(t *testing.T) {
		v := NewValue(42)
		_, err := Extract[string](v)
		if !errors.Is(err, ErrTypeMismatch) {
			t.Errorf("expected ErrTypeMismatch, got %v", err)
		}
	})

	t.Run("empty value fails", func(t *testing.T) {
		_, err := Extract[int](Value{})
		if !errors.Is(err, ErrTypeMismatch) {
			t.Errorf("expected ErrTypeMismatch for empty value, got %v", err)
		}
	})

	t.Run("zero payload is still filled", func(t *testing.T) {
		v := NewValue(0)
		if v.Empty() {
			t.Error("a Value holding zero should not report Empty")
		}
		if n := mustExtractInt(t, v); n != 0 {
			t.Errorf("Extract[int] = %d, want 0", n)
		}
	})

	t.Run("struct payload", func(t *testing.T) {
		type point struct{ X, Y int }
		v := NewValue(point{3, 4})
		p, err := Extract[point](v)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if p.X != 3 || p.Y != 4 {
			t.Errorf("Extract[point] = %+v, want {3 4}", p)
		}
	})
}

func TestValue_Empty(t *testing.T) {
	if !(Value{}).Empty() {
		t.Error("zero Value should report Empty")
	}
	if NewValue("x").Empty() {
		t.Error("filled Value should not report Empty")
	}
}
