package usecase

import (
	"fmt"
	"sync/atomic"
)

// FocusSource holds the currently selected focus number. It is injected
// into the collector and the API handler so both read and update the same
// value without a process-wide singleton.
type FocusSource struct {
	n atomic.Int32
}

func NewFocusSource(initial int) (*FocusSource, error) {
	f := &FocusSource{}
	if err := f.Set(initial); err != nil {
		return nil, err
	}
	return f, nil
}

// Set updates the focus number; values outside 1-9 are rejected.
func (f *FocusSource) Set(n int) error {
	if n < 1 || n > 9 {
		return fmt.Errorf("focus number must be 1-9, got %d", n)
	}
	f.n.Store(int32(n))
	return nil
}

// Get returns the current focus number.
func (f *FocusSource) Get() int { return int(f.n.Load()) }
