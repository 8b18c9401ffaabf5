package logging

import "testing"

func TestNew(t *testing.T) {
	for _, dev := range []bool{false, true} {
		logger, err := New("debug", dev)
		if err != nil {
			t.Fatalf("New(dev=%v): %v", dev, err)
		}
		if !logger.Core().Enabled(-1) {
			t.Fatalf("debug level should be enabled (dev=%v)", dev)
		}
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New("loud", false); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
