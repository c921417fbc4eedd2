package alerr

import "testing"

func TestEditDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"postgres", "postgres", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"postgres", "postgress", 1},
		{"sqlite", "sqlit", 1},
		{"ab", "ba", 2},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			if got := editDistance(tt.a, tt.b); got != tt.want {
				t.Errorf("editDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestDidYouMean(t *testing.T) {
	options := []string{"postgres", "sqlite"}

	if got := DidYouMean("postgress", options); got != "did you mean 'postgres'?" {
		t.Errorf("DidYouMean(postgress) = %q", got)
	}
	if got := DidYouMean("oracle", options); got != "" {
		t.Errorf("DidYouMean(oracle) = %q, want empty", got)
	}
	if _, ok := ClosestName("x", nil); ok {
		t.Error("ClosestName with no options should not match")
	}
}
