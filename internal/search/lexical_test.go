package search

import "testing"

func TestLexicalScore(t *testing.T) {
	tests := []struct {
		name  string
		query string
		text  string
		want  float64
	}{
		{"half overlap", "cats birds", "cats dogs", 0.5},
		{"full overlap", "Cats Dogs", "dogs and cats", 1},
		{"case folded", "SOLAR", "solar power", 1},
		{"duplicate query tokens count once", "cats cats", "cats", 1},
		{"no overlap", "cats", "dogs", 0},
		{"empty text", "cats", "", 0},
		{"empty query", "   ", "cats", 0},
		{"punctuation is part of the token", "cats", "cats,", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LexicalScore(TokenSet(tt.query), tt.text)
			if got != tt.want {
				t.Errorf("LexicalScore(%q, %q) = %v, want %v", tt.query, tt.text, got, tt.want)
			}
		})
	}
}

func TestWeightsBlend(t *testing.T) {
	got := DefaultWeights.Blend(0.9, 0.5)
	if d := got - 0.78; d > 1e-9 || d < -1e-9 {
		t.Errorf("Blend = %v, want 0.78", got)
	}
}
