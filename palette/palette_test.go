package palette

import (
	"math"
	"testing"
)

func TestNew_Presets(t *testing.T) {
	for _, name := range Names() {
		r, err := New(name, 64)
		if err != nil {
			t.Fatalf("New(%q): %v", name, err)
		}
		if r.Len() != 64 {
			t.Errorf("%s: %d steps, want 64", name, r.Len())
		}
		if r.At(0) == r.At(1) {
			t.Errorf("%s: ends of the ramp are identical", name)
		}
		if r.At(0.5).A != 255 {
			t.Errorf("%s: preset should be opaque", name)
		}
	}
}

func TestNew_UnknownName(t *testing.T) {
	if _, err := New("sepia", 16); err == nil {
		t.Error("expected error for unknown palette")
	}
}

func TestRamp_AtClamps(t *testing.T) {
	r := MustNew("viridis", 16)

	if r.At(-3) != r.At(0) {
		t.Error("negative t should clamp to the first colour")
	}
	if r.At(7) != r.At(1) {
		t.Error("t > 1 should clamp to the last colour")
	}
	if r.At(float32(math.NaN())) != r.At(0) {
		t.Error("NaN should clamp to the first colour")
	}
}
