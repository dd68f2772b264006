package suggest

import (
	"testing"
)

var crops = []string{"Potato", "Onion", "Tomato", "Apple", "Mango", "Banana", "Grape", "Turmeric"}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestSuggest(t *testing.T) {
	s, err := New(crops, 3)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	tests := []struct {
		term string
		want string
	}{
		{"potatoe", "Potato"},
		{"Tumeric", "Turmeric"},
		{"mang", "Mango"},
		{"pot", "Potato"},
		{"GRAPES", "Grape"},
	}
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			got := s.Suggest(tt.term)
			if !contains(got, tt.want) {
				t.Errorf("Suggest(%q) = %v, want it to contain %q", tt.term, got, tt.want)
			}
			if len(got) > 3 {
				t.Errorf("Suggest(%q) returned %d suggestions, max is 3", tt.term, len(got))
			}
		})
	}
}

func TestSuggest_NoMatch(t *testing.T) {
	s, err := New(crops, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if got := s.Suggest("   "); got != nil {
		t.Errorf("Suggest(blank) = %v, want nil", got)
	}
	if got := s.Suggest("xylophone"); len(got) != 0 {
		t.Errorf("Suggest(xylophone) = %v, want none", got)
	}
}
