package usecase

import (
	"sync"
	"testing"
)

func TestNewFocusSourceRejectsOutOfRange(t *testing.T) {
	for _, n := range []int{0, -1, 10, 100} {
		if _, err := NewFocusSource(n); err == nil {
			t.Fatalf("expected error for %d", n)
		}
	}
	f, err := NewFocusSource(7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Get() != 7 {
		t.Fatalf("expected 7, got %d", f.Get())
	}
}

func TestFocusSourceSet(t *testing.T) {
	f, _ := NewFocusSource(1)
	if err := f.Set(9); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Get() != 9 {
		t.Fatalf("expected 9, got %d", f.Get())
	}
	if err := f.Set(0); err == nil {
		t.Fatalf("expected error for 0")
	}
	if f.Get() != 9 {
		t.Fatalf("invalid set must not change value, got %d", f.Get())
	}
}

func TestFocusSourceConcurrentAccess(t *testing.T) {
	f, _ := NewFocusSource(1)
	var wg sync.WaitGroup
	for i := 1; i <= 9; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = f.Set(n)
			_ = f.Get()
		}(i)
	}
	wg.Wait()
	got := f.Get()
	if got < 1 || got > 9 {
		t.Fatalf("value %d out of range after concurrent access", got)
	}
}
