package ocr

import "testing"

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"multiplication sign", "3 × 4", "3 * 4"},
		{"middle dot", "2·x", "2 * x"},
		{"division sign", "10 ÷ 2", "10 / 2"},
		{"unicode minus", "5 − 3", "5 - 3"},
		{"superscript square", "x² + 1", "x^2 + 1"},
		{"superscript cube", "x³", "x^3"},
		{"double star power", "x**2", "x^2"},
		{"O misread between digits", "Solve 5O2 + 1", "Solve 502 + 1"},
		{"l misread before digit", "l2 + 3 = 15", "12 + 3 = 15"},
		{"l misread after digit", "4l apples", "41 apples"},
		{"standalone Z misread", "Z + 3", "2 + 3"},
		{"sqrt with parens", "√(16)", "sqrt(16)"},
		{"bare sqrt", "Find √16", "Find sqrt(16)"},
		{"sqrt of variable", "√x + 1", "sqrt(x) + 1"},
		{"whitespace collapse", "  2x   +  3 =7 ", "2x + 3 = 7"},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeText(tt.in); got != tt.want {
				t.Errorf("NormalizeText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeTextLeavesVariablesAlone(t *testing.T) {
	// Lowercase z and letters not adjacent to digits are variables, not
	// misreads.
	in := "Solve z + lemons = 4"
	want := "Solve z + lemons = 4"
	if got := NormalizeText(in); got != want {
		t.Errorf("NormalizeText(%q) = %q, want %q", in, got, want)
	}
}
