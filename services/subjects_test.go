package services

import (
	"reflect"
	"testing"
)

func TestParseSubjects(t *testing.T) {
	tests := []struct {
		name    string
		in      []string
		want    []string
		wantErr bool
	}{
		{name: "single", in: []string{"math"}, want: []string{"Math"}},
		{name: "two canonicalised", in: []string{" computer science ", "PHYSICS"}, want: []string{"Computer Science", "Physics"}},
		{name: "duplicates collapse", in: []string{"Math", "math"}, want: []string{"Math"}},
		{name: "blank entries ignored", in: []string{"", "Biology", " "}, want: []string{"Biology"}},
		{name: "empty", in: nil, wantErr: true},
		{name: "three distinct", in: []string{"Math", "Physics", "History"}, wantErr: true},
		{name: "unknown", in: []string{"Astrology"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSubjects(tt.in)
			if tt.wantErr {
				if KindOf(err) != KindInvalidSubjects {
					t.Fatalf("expected invalid subjects, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanonicalSubject(t *testing.T) {
	if s, ok := CanonicalSubject("  aRaBiC"); !ok || s != "Arabic" {
		t.Fatalf("CanonicalSubject = %q, %v", s, ok)
	}
	if _, ok := CanonicalSubject("Art"); ok {
		t.Fatal("Art should not be an offered subject")
	}
}
