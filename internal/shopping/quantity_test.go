package shopping

import "testing"

func TestParseLeadingNumber(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantVal  float64
		wantRest string
		wantOK   bool
	}{
		{name: "PlainInteger", input: "200", wantVal: 200, wantRest: "", wantOK: true},
		{name: "Decimal", input: "2.5", wantVal: 2.5, wantRest: "", wantOK: true},
		{name: "NumberWithUnit", input: "3 tbsp", wantVal: 3, wantRest: "tbsp", wantOK: true},
		{name: "NumberWithUnitNoSpace", input: "200g", wantVal: 200, wantRest: "g", wantOK: true},
		{name: "NonNumeric", input: "to taste", wantVal: 0, wantRest: "to taste", wantOK: false},
		{name: "Empty", input: "", wantVal: 0, wantRest: "", wantOK: false},
		{name: "Fraction", input: "1/2", wantVal: 0, wantRest: "1/2", wantOK: false},
		{name: "DotsOnly", input: "..", wantVal: 0, wantRest: "..", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, rest, ok := parseLeadingNumber(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("parseLeadingNumber(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && v != tt.wantVal {
				t.Errorf("parseLeadingNumber(%q) value = %v, want %v", tt.input, v, tt.wantVal)
			}
			if rest != tt.wantRest {
				t.Errorf("parseLeadingNumber(%q) remainder = %q, want %q", tt.input, rest, tt.wantRest)
			}
		})
	}
}

func TestScaleQuantity(t *testing.T) {
	t.Run("NoOpAtFactorOne", func(t *testing.T) {
		for _, q := range []string{"200", "1/2", "to taste", "", "3 tbsp", "適量"} {
			if got := ScaleQuantity(q, 1.0); got != q {
				t.Errorf("ScaleQuantity(%q, 1.0) = %q, want unchanged", q, got)
			}
		}
	})

	t.Run("Numeric", func(t *testing.T) {
		tests := []struct {
			quantity string
			factor   float64
			want     string
		}{
			{"200", 2.0, "400"},
			{"3", 0.5, "1.5"},
			{"2.5", 2.0, "5"},
			{"1", 1.5, "1.5"},
			{"3 tbsp", 2.0, "6 tbsp"},
			{"200g", 0.5, "100 g"},
		}
		for _, tt := range tests {
			if got := ScaleQuantity(tt.quantity, tt.factor); got != tt.want {
				t.Errorf("ScaleQuantity(%q, %v) = %q, want %q", tt.quantity, tt.factor, got, tt.want)
			}
		}
	})

	t.Run("NonNumericPassthrough", func(t *testing.T) {
		if got := ScaleQuantity("to taste", 3.0); got != "to taste" {
			t.Errorf("ScaleQuantity(\"to taste\", 3.0) = %q, want \"to taste\"", got)
		}
	})

	t.Run("FractionPassthrough", func(t *testing.T) {
		// Fractions are never scaled arithmetically; they survive verbatim.
		if got := ScaleQuantity("1/2", 2.0); got != "1/2" {
			t.Errorf("ScaleQuantity(\"1/2\", 2.0) = %q, want \"1/2\"", got)
		}
	})
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{5.0, "5"},
		{1.5, "1.5"},
		{0.25, "0.2"},
		{400, "400"},
	}
	for _, tt := range tests {
		if got := formatAmount(tt.v); got != tt.want {
			t.Errorf("formatAmount(%v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}
