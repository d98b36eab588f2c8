package gpio

import (
	"errors"
	"testing"
)

func TestFakeReaderRead(t *testing.T) {
	samples := []Sample{
		{1, 0},
		{0, 1},
		{1, 1},
	}
	f := NewFakeReader(samples)

	for i, want := range samples {
		got, err := f.Read()
		if err != nil {
			t.Fatalf("sample %d: unexpected error: %v", i, err)
		}
		if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
			t.Errorf("sample %d: expected %v, got %v", i, want, got)
		}
	}

	// Fourth read should repeat last sample
	got, err := f.Read()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0] != 1 || got[1] != 1 {
		t.Errorf("sample 3 (repeat): expected [1 1], got %v", got)
	}
}

func TestFakeReaderReturnsCopy(t *testing.T) {
	f := NewFakeReader([]Sample{{1}})

	got, _ := f.Read()
	got[0] = 0

	again, _ := f.Read()
	if again[0] != 1 {
		t.Error("mutating a returned sample changed the script")
	}
}

func TestFakeReaderNoSamples(t *testing.T) {
	f := NewFakeReader(nil)
	_, err := f.Read()
	if err == nil {
		t.Error("expected error with no samples")
	}
}

func TestFakeReaderError(t *testing.T) {
	f := NewFakeReader([]Sample{{1}})
	f.ReadError = errors.New("simulated error")

	_, err := f.Read()
	if err == nil {
		t.Fatal("expected error to be returned")
	}
	if err.Error() != "simulated error" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFakeReaderClose(t *testing.T) {
	f := NewFakeReader([]Sample{{1}})
	if f.Closed {
		t.Error("should not be closed initially")
	}

	if err := f.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !f.Closed {
		t.Error("should be closed after Close()")
	}
}

func TestFakeReaderReset(t *testing.T) {
	f := NewFakeReader([]Sample{{1}, {0}})

	// Consume first sample
	f.Read()

	f.Reset()

	// Should read first sample again
	got, _ := f.Read()
	if got[0] != 1 {
		t.Errorf("after reset: expected [1], got %v", got)
	}
}

func TestFakeReaderSatisfiesReader(t *testing.T) {
	var _ Reader = NewFakeReader(nil)
}

func TestConfigChipDefault(t *testing.T) {
	if got := (Config{}).chip(); got != DefaultChip {
		t.Errorf("empty chip: got %q, want %q", got, DefaultChip)
	}
	if got := (Config{Chip: "gpiochip4"}).chip(); got != "gpiochip4" {
		t.Errorf("explicit chip: got %q, want gpiochip4", got)
	}
}
