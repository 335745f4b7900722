package main

import "testing"

func TestSizeTrackerUpdates(t *testing.T) {
	s := newSizeTracker(80, 24)
	s.update(120, 40)

	w, h, err := s.getSize()
	if err != nil {
		t.Fatalf("getSize: %v", err)
	}
	if w != 120 || h != 40 {
		t.Errorf("Expected 120x40, got %dx%d", w, h)
	}
}
