package services

import (
	"context"
	"strings"

	"academy_go/database"
	"academy_go/models"
	"academy_go/utils"
)

const minPasswordLength = 6

// validateInput trims every string in the input then reports the first missing field.
func validateInput(in interface{}) error {
	utils.TrimStrings(in)
	field, err := utils.FirstInvalidField(in)
	if err != nil {
		return upstream("validate input", err)
	}
	if field != "" {
		return missingField(field)
	}
	return nil
}

func checkEmail(email string) error {
	if !utils.IsValidEmail(email) {
		return &Error{Kind: KindInvalidEmailFormat, Field: email}
	}
	return nil
}

func checkPassword(password string) error {
	if len(password) < minPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

// atomically runs fn in one transaction. Errors that are not already classified
// come from the commit itself.
func atomically(ctx context.Context, store database.Store, fn func(tx database.Store) error) error {
	err := store.Atomic(ctx, fn)
	if err != nil && KindOf(err) == "" {
		return upstream("commit", err)
	}
	return err
}

func resolveGrade(ctx context.Context, st database.GradeStore, id string) (*models.Grade, error) {
	g, err := st.FindGrade(ctx, id)
	if database.IsNotFound(err) {
		return nil, &Error{Kind: KindUnknownGrade, Field: id}
	}
	if err != nil {
		return nil, upstream("find grade", err)
	}
	return g, nil
}

func resolveTeacher(ctx context.Context, st database.TeacherStore, id string) (*models.Teacher, error) {
	t, err := st.FindTeacher(ctx, id)
	if database.IsNotFound(err) {
		return nil, &Error{Kind: KindUnknownTeacher, Field: id}
	}
	if err != nil {
		return nil, upstream("find teacher", err)
	}
	return t, nil
}

func resolveGroup(ctx context.Context, st database.GroupStore, id string) (*models.Group, error) {
	g, err := st.FindGroup(ctx, id)
	if database.IsNotFound(err) {
		return nil, &Error{Kind: KindUnknownGroup, Field: id}
	}
	if err != nil {
		return nil, upstream("find group", err)
	}
	return g, nil
}

// notFound converts a store miss into NotFound and anything else into UpstreamFailure.
func notFound(op string, err error) error {
	if database.IsNotFound(err) {
		return ErrNotFound
	}
	return upstream(op, err)
}

func compact(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func trim(s string) string { return strings.TrimSpace(s) }
