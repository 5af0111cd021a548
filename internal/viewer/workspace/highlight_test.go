package workspace

import (
	"testing"

	mdwerror "github.com/msto63/codasai/foundation/core/error"
)

const sample = "fn main() {\n    let x = 1;\n    println!(\"{}\", x);\n}\n"

func TestHighlight(t *testing.T) {
	tests := []struct {
		name     string
		from, to string
		want     string
		wantOK   bool
	}{
		{"function body", `^fn main`, `^}`, "fn main() {\n    let x = 1;\n    println!(\"{}\", x);\n}", true},
		{"single line", `let x`, `;`, "let x = 1;", true},
		{"to searched after start", `x`, `x`, "x = 1;\n    println!(\"{}\", x", true},
		{"to missing covers one char", `let`, `zzz`, "l", true},
		{"from missing", `nothing`, `}`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			span, ok, err := Highlight(sample, tt.from, tt.to)
			if err != nil {
				t.Fatalf("Highlight() error = %v", err)
			}
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got := sample[span.Start:span.End]; got != tt.want {
				t.Errorf("span text = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHighlight_InvalidPattern(t *testing.T) {
	_, _, err := Highlight(sample, `(`, `}`)
	if !mdwerror.HasCode(err, mdwerror.CodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

func TestSpanLines(t *testing.T) {
	span, ok, _ := Highlight(sample, `let`, `println`)
	if !ok {
		t.Fatal("expected match")
	}
	first, last := span.Lines(sample)
	if first != 2 || last != 3 {
		t.Errorf("Lines() = %d, %d, want 2, 3", first, last)
	}
}
