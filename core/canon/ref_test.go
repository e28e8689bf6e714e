package canon

import (
	"errors"
	"testing"

	scerrors "github.com/FocuswithJustin/JuniperScripture/core/errors"
)

func TestParseReference(t *testing.T) {
	tests := []struct {
		input string
		want  Address
	}{
		{"Gen.1.1", NewAddress(1, 1, 1)},
		{"1John.3.16", NewAddress(62, 3, 16)},
		{"Genesis 1:1", NewAddress(1, 1, 1)},
		{"genesis 1:1", NewAddress(1, 1, 1)},
		{"1 John 3:16", NewAddress(62, 3, 16)},
		{"  John 3:16  ", NewAddress(43, 3, 16)},
		{"Song of Solomon 2:4", NewAddress(22, 2, 4)},
		{"Psalm 23", Address{Book: 19, Chapter: 23}},
		{"Ps.119", Address{Book: 19, Chapter: 119}},
		{"Jude", Address{Book: 65, Chapter: 1}},
		{"Rev 22:21", NewAddress(66, 22, 21)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseReference(tt.input)
			if err != nil {
				t.Fatalf("ParseReference(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseReference(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseReferenceErrors(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"Hezekiah 1:1",
		"Gen 1:1 and more",
		"3:16",
		"Gen 0:1",
		"Gen 1:0",
		"Gen 1:",
	}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			_, err := ParseReference(input)
			if err == nil {
				t.Fatalf("ParseReference(%q) expected error", input)
			}
			var pe *scerrors.ParseError
			if !errors.As(err, &pe) {
				t.Errorf("error %v is not a *ParseError", err)
			}
		})
	}
}

func TestParseReferenceRoundTrip(t *testing.T) {
	for _, b := range Books {
		addr := NewAddress(b.ID, 2, 3)
		for _, text := range []string{addr.String(), addr.OSIS()} {
			got, err := ParseReference(text)
			if err != nil {
				t.Errorf("ParseReference(%q) error: %v", text, err)
				continue
			}
			if got != addr {
				t.Errorf("ParseReference(%q) = %+v, want %+v", text, got, addr)
			}
		}
	}
}
