package tokenizer

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tok := New(1)

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "lowercases and splits on whitespace",
			text: "Pizza Tonight",
			want: []string{"pizza", "tonight"},
		},
		{
			name: "punctuation separates tokens",
			text: "pizza, pasta! (and wine)",
			want: []string{"pizza", "pasta", "and", "wine"},
		},
		{
			name: "digits are kept",
			text: "blade runner 2049",
			want: []string{"blade", "runner", "2049"},
		},
		{
			name: "apostrophes split words",
			text: "don't",
			want: []string{"don", "t"},
		},
		{
			name: "empty input",
			text: "",
			want: nil,
		},
		{
			name: "only punctuation",
			text: "?!... ---",
			want: nil,
		},
		{
			name: "repeated terms are kept",
			text: "pizza pizza pizza",
			want: []string{"pizza", "pizza", "pizza"},
		},
		{
			name: "unicode letters survive",
			text: "Crème Brûlée",
			want: []string{"crème", "brûlée"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tok.Tokenize(tt.text)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestTokenizeMinLength(t *testing.T) {
	tok := New(3)
	got := tok.Tokenize("I am in a big building")
	want := []string{"big", "building"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize with min length 3 = %v, want %v", got, want)
	}
}

func TestNewClampsMinLength(t *testing.T) {
	tok := New(0)
	got := tok.Tokenize("a b")
	want := []string{"a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize with clamped min length = %v, want %v", got, want)
	}
}

func TestDistinct(t *testing.T) {
	tok := New(1)

	got := tok.Distinct("Pizza PIZZA pasta pizza")
	want := []string{"pizza", "pasta"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Distinct = %v, want %v", got, want)
	}

	if got := tok.Distinct("..."); len(got) != 0 {
		t.Errorf("Distinct on punctuation = %v, want empty", got)
	}
}
