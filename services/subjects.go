package services

import "strings"

// Subjects offered by the academy, in canonical spelling.
var Subjects = []string{
	"Math",
	"Physics",
	"Chemistry",
	"Biology",
	"English",
	"French",
	"Arabic",
	"Computer Science",
	"History",
	"Geography",
}

const maxSubjectsPerTeacher = 2

// CanonicalSubject maps a case-insensitive subject name to its canonical form.
func CanonicalSubject(raw string) (string, bool) {
	want := strings.TrimSpace(raw)
	for _, s := range Subjects {
		if strings.EqualFold(s, want) {
			return s, true
		}
	}
	return "", false
}

// ParseSubjects normalises a teacher's subject list. It must contain one or two
// distinct allowed subjects.
func ParseSubjects(raw []string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	for _, r := range raw {
		if strings.TrimSpace(r) == "" {
			continue
		}
		s, ok := CanonicalSubject(r)
		if !ok {
			return nil, &Error{Kind: KindInvalidSubjects, Field: r}
		}
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	if len(out) == 0 || len(out) > maxSubjectsPerTeacher {
		return nil, ErrInvalidSubjects
	}
	return out, nil
}
