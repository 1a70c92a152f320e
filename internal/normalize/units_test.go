package normalize

import "testing"

func TestValue_MassRoundTrip(t *testing.T) {
	// 2.2 lb and 1 kg must land in the same bucket.
	lb := Value("weight", "2.2 lb")
	kg := Value("weight", "1 kg")
	if lb != kg {
		t.Errorf("expected 2.2 lb and 1 kg to agree, got %q vs %q", lb, kg)
	}
	if kg != "1.00 kg" {
		t.Errorf("expected canonical 1.00 kg, got %q", kg)
	}
}

func TestValue_MassVariants(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"950 g", "0.95 kg"},
		{"2 kgs", "2.00 kg"},
		{"16 oz", "0.45 kg"},
		{"5 pounds", "2.27 kg"},
		{"1,5 kg", "1.50 kg"}, // European decimal comma
	}
	for _, tt := range tests {
		if got := Value("weight", tt.raw); got != tt.want {
			t.Errorf("Value(weight, %q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestValue_MassDisagreement(t *testing.T) {
	if Value("weight", "1 kg") == Value("weight", "5 kg") {
		t.Error("different masses must not collapse into one bucket")
	}
}

func TestValue_Length(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"45 cm", "45.0 cm"},
		{"18 in", "45.7 cm"},
		{"450 mm", "45.0 cm"},
	}
	for _, tt := range tests {
		if got := Value("seat_height", tt.raw); got != tt.want {
			t.Errorf("Value(seat_height, %q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestValue_Dimensions(t *testing.T) {
	got := Value("dimensions", "52 x 50  X 66 cm")
	want := "52 × 50 × 66 cm"
	if got != want {
		t.Errorf("Value(dimensions) = %q, want %q", got, want)
	}
}

func TestValue_DimensionsLeavesWordsAlone(t *testing.T) {
	// Only the separator between numbers is rewritten; an "x" inside a
	// word stays put.
	tests := []struct {
		raw  string
		want string
	}{
		{"approx. 10x20 cm", "approx. 10 × 20 cm"},
		{"10x20x30 mm", "10 × 20 × 30 mm"},
		{"extra box 5 x 5 cm", "extra box 5 × 5 cm"},
	}
	for _, tt := range tests {
		if got := Value("packed_size", tt.raw); got != tt.want {
			t.Errorf("Value(packed_size, %q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestValue_UnparseablePassthrough(t *testing.T) {
	// Unknown units and prose pass through unchanged (modulo surface
	// cleanup for non-dimensional keys).
	if got := Value("weight", "approximately nothing"); got != "approximately nothing" {
		t.Errorf("unparseable mass must pass through, got %q", got)
	}
	if got := Value("ip_rating", "IPX4"); got != "IPX4" {
		t.Errorf("unknown-dimension key must surface-normalize only, got %q", got)
	}
}

func TestPhrase(t *testing.T) {
	a := Phrase("  Folds FLAT, for transport!  ")
	b := Phrase("folds flat for transport")
	if a != b {
		t.Errorf("expected phrase variants to agree, got %q vs %q", a, b)
	}
}

func TestKey(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Battery Life", "battery_life"},
		{"load-capacity", "load_capacity"},
		{"Packed  Size", "packed_size"},
	}
	for _, tt := range tests {
		if got := Key(tt.raw); got != tt.want {
			t.Errorf("Key(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
