package services

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// Kind classifies a failure so the transport layer can map it without string matching.
type Kind string

const (
	KindUnauthenticated Kind = "unauthenticated"
	KindForbidden       Kind = "forbidden"

	KindMissingToken     Kind = "missing_token"
	KindMalformedToken   Kind = "malformed_token"
	KindInvalidSignature Kind = "invalid_signature"
	KindExpiredToken     Kind = "expired_token"
	KindRevokedToken     Kind = "revoked_token"

	KindMissingField Kind = "missing_field"

	KindUnknownGrade   Kind = "unknown_grade"
	KindUnknownTeacher Kind = "unknown_teacher"
	KindUnknownGroup   Kind = "unknown_group"
	KindNotFound       Kind = "not_found"

	KindSubjectNotTaught     Kind = "subject_not_taught"
	KindTeacherGroupMismatch Kind = "teacher_group_mismatch"
	KindGradeMismatch        Kind = "grade_mismatch"
	KindAlreadyEnrolled      Kind = "already_enrolled"

	KindGradeInUse       Kind = "grade_in_use"
	KindGradeHasGroups   Kind = "grade_has_groups"
	KindTeacherHasGroups Kind = "teacher_has_groups"

	KindInvalidCredentials Kind = "invalid_credentials"
	KindWeakPassword       Kind = "weak_password"
	KindEmailTaken         Kind = "email_taken"
	KindInvalidSubjects    Kind = "invalid_subjects"
	KindInvalidEmailFormat Kind = "invalid_email_format"
	KindInvalidStatus      Kind = "invalid_status"
	KindInvalidFile        Kind = "invalid_file"
	KindConflict           Kind = "conflict"

	KindUpstreamFailure Kind = "upstream_failure"
)

// Error is the error type returned by every service in this package.
type Error struct {
	Kind  Kind
	Field string
	Err   error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Field != "" {
		msg += ": " + e.Field
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrUnauthenticated = &Error{Kind: KindUnauthenticated}
	ErrForbidden       = &Error{Kind: KindForbidden}

	ErrMissingToken     = &Error{Kind: KindMissingToken}
	ErrMalformedToken   = &Error{Kind: KindMalformedToken}
	ErrInvalidSignature = &Error{Kind: KindInvalidSignature}
	ErrExpiredToken     = &Error{Kind: KindExpiredToken}
	ErrRevokedToken     = &Error{Kind: KindRevokedToken}

	ErrMissingField = &Error{Kind: KindMissingField}

	ErrUnknownGrade   = &Error{Kind: KindUnknownGrade}
	ErrUnknownTeacher = &Error{Kind: KindUnknownTeacher}
	ErrUnknownGroup   = &Error{Kind: KindUnknownGroup}
	ErrNotFound       = &Error{Kind: KindNotFound}

	ErrSubjectNotTaught     = &Error{Kind: KindSubjectNotTaught}
	ErrTeacherGroupMismatch = &Error{Kind: KindTeacherGroupMismatch}
	ErrGradeMismatch        = &Error{Kind: KindGradeMismatch}
	ErrAlreadyEnrolled      = &Error{Kind: KindAlreadyEnrolled}

	ErrGradeInUse       = &Error{Kind: KindGradeInUse}
	ErrGradeHasGroups   = &Error{Kind: KindGradeHasGroups}
	ErrTeacherHasGroups = &Error{Kind: KindTeacherHasGroups}

	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials}
	ErrWeakPassword       = &Error{Kind: KindWeakPassword}
	ErrEmailTaken         = &Error{Kind: KindEmailTaken}
	ErrInvalidSubjects    = &Error{Kind: KindInvalidSubjects}
	ErrInvalidEmailFormat = &Error{Kind: KindInvalidEmailFormat}
	ErrInvalidStatus      = &Error{Kind: KindInvalidStatus}
	ErrInvalidFile        = &Error{Kind: KindInvalidFile}
	ErrConflict           = &Error{Kind: KindConflict}

	ErrUpstreamFailure = &Error{Kind: KindUpstreamFailure}
)

func missingField(field string) error {
	return &Error{Kind: KindMissingField, Field: field}
}

// upstream logs a collaborator failure once and wraps it as UpstreamFailure.
func upstream(op string, err error) error {
	log.WithError(err).WithField("op", op).Error("upstream failure")
	return &Error{Kind: KindUpstreamFailure, Err: fmt.Errorf("%s: %w", op, err)}
}

// KindOf returns the kind carried by err, or "" for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsUnauthenticated reports whether err means the caller has no valid session.
func IsUnauthenticated(err error) bool {
	switch KindOf(err) {
	case KindUnauthenticated, KindMissingToken, KindMalformedToken,
		KindInvalidSignature, KindExpiredToken, KindRevokedToken:
		return true
	}
	return false
}
