package services

import (
	"errors"
	"testing"
	"time"

	"academy_go/models"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func newSessionFixture(t *testing.T) (*fixture, *SessionService, *fakeClock) {
	t.Helper()
	f := newFixture(t)
	clock := &fakeClock{now: time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)}
	sessions := NewSessionService(f.store, testHasher, SessionOptions{
		Secret: "test-secret",
		TTL:    time.Hour,
		Issuer: "academy-test",
		Now:    clock.Now,
	})
	if _, err := f.admins.EnsureSuperadmin(f.ctx, "root@academy.test", "rootpass"); err != nil {
		t.Fatalf("seed superadmin: %v", err)
	}
	if _, err := f.admins.Create(f.ctx, AdminInput{FullName: "Office", Email: "office@academy.test", Password: "officepass"}); err != nil {
		t.Fatalf("create admin: %v", err)
	}
	return f, sessions, clock
}

func TestSessionRoundTrip(t *testing.T) {
	f, sessions, _ := newSessionFixture(t)

	sess, err := sessions.Issue(f.ctx, Credentials{Email: "  Office@Academy.test ", Password: "officepass", Namespace: NamespaceAdmin})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if sess.Principal.Role != RoleAdmin {
		t.Fatalf("role = %q, want admin", sess.Principal.Role)
	}

	p, err := sessions.Validate(f.ctx, sess.Token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if p.ID != sess.Principal.ID || p.Role != RoleAdmin {
		t.Fatalf("principal = %+v, want %+v", p, sess.Principal)
	}
}

func TestSessionInvalidCredentialsAreIndistinguishable(t *testing.T) {
	f, sessions, _ := newSessionFixture(t)

	_, unknown := sessions.Issue(f.ctx, Credentials{Email: "nobody@academy.test", Password: "whatever", Namespace: NamespaceAdmin})
	_, wrong := sessions.Issue(f.ctx, Credentials{Email: "office@academy.test", Password: "not-it", Namespace: NamespaceAdmin})

	assertKind(t, unknown, KindInvalidCredentials)
	assertKind(t, wrong, KindInvalidCredentials)
	if unknown.Error() != wrong.Error() {
		t.Fatalf("messages differ: %q vs %q", unknown.Error(), wrong.Error())
	}
}

func TestSessionNamespacesAreSeparate(t *testing.T) {
	f, sessions, _ := newSessionFixture(t)
	f.teacher(t, "teach@academy.test", "Math")

	_, err := sessions.Issue(f.ctx, Credentials{Email: "teach@academy.test", Password: "secret123", Namespace: NamespaceAdmin})
	assertKind(t, err, KindInvalidCredentials)

	_, err = sessions.Issue(f.ctx, Credentials{Email: "office@academy.test", Password: "officepass", Namespace: NamespaceTeacher})
	assertKind(t, err, KindInvalidCredentials)

	sess, err := sessions.Issue(f.ctx, Credentials{Email: "teach@academy.test", Password: "secret123", Namespace: NamespaceTeacher})
	if err != nil {
		t.Fatalf("teacher login: %v", err)
	}
	if sess.Principal.Role != RoleTeacher {
		t.Fatalf("role = %q, want teacher", sess.Principal.Role)
	}
}

func TestSessionValidateFailures(t *testing.T) {
	f, sessions, clock := newSessionFixture(t)
	sess, err := sessions.Issue(f.ctx, Credentials{Email: "office@academy.test", Password: "officepass", Namespace: NamespaceAdmin})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	other := NewSessionService(f.store, testHasher, SessionOptions{Secret: "other-secret", Now: clock.Now})
	foreign, err := other.Issue(f.ctx, Credentials{Email: "office@academy.test", Password: "officepass", Namespace: NamespaceAdmin})
	if err != nil {
		t.Fatalf("Issue with other secret: %v", err)
	}

	tests := []struct {
		name  string
		token string
		want  Kind
	}{
		{"missing", "", KindMissingToken},
		{"blank", "   ", KindMissingToken},
		{"malformed", "not-a-token", KindMalformedToken},
		{"bad signature", foreign.Token, KindInvalidSignature},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sessions.Validate(f.ctx, tt.token)
			assertKind(t, err, tt.want)
		})
	}

	clock.now = clock.now.Add(2 * time.Hour)
	_, err = sessions.Validate(f.ctx, sess.Token)
	assertKind(t, err, KindExpiredToken)
}

func TestSessionExpiryMatchesTokenClaim(t *testing.T) {
	f, sessions, clock := newSessionFixture(t)
	clock.now = clock.now.Add(750 * time.Millisecond)

	sess, err := sessions.Issue(f.ctx, Credentials{Email: "root@academy.test", Password: "rootpass", Namespace: NamespaceAdmin})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	claims, err := sessions.parse(sess.Token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !sess.ExpiresAt.Equal(claims.ExpiresAt.Time) {
		t.Fatalf("reported expiry %v, token exp %v", sess.ExpiresAt, claims.ExpiresAt.Time)
	}
	if sess.ExpiresAt.After(clock.now.Add(time.Hour)) {
		t.Fatalf("reported expiry %v is later than issue time + ttl", sess.ExpiresAt)
	}
}

func TestSessionRevoke(t *testing.T) {
	f, sessions, _ := newSessionFixture(t)
	sess, err := sessions.Issue(f.ctx, Credentials{Email: "root@academy.test", Password: "rootpass", Namespace: NamespaceAdmin})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if err := sessions.Revoke(f.ctx, sess.Token); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	_, err = sessions.Validate(f.ctx, sess.Token)
	assertKind(t, err, KindRevokedToken)
}

func TestSessionAuthorize(t *testing.T) {
	f, sessions, _ := newSessionFixture(t)
	f.teacher(t, "teach@academy.test", "Math")
	teacherSess, err := sessions.Issue(f.ctx, Credentials{Email: "teach@academy.test", Password: "secret123", Namespace: NamespaceTeacher})
	if err != nil {
		t.Fatalf("teacher login: %v", err)
	}
	rootSess, err := sessions.Issue(f.ctx, Credentials{Email: "root@academy.test", Password: "rootpass", Namespace: NamespaceAdmin})
	if err != nil {
		t.Fatalf("root login: %v", err)
	}

	_, err = sessions.Authorize(f.ctx, "", CapManageGrades)
	assertKind(t, err, KindUnauthenticated)
	if !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected wrapped missing token, got %v", err)
	}

	_, err = sessions.Authorize(f.ctx, teacherSess.Token, CapManageGrades)
	assertKind(t, err, KindForbidden)

	p, err := sessions.Authorize(f.ctx, rootSess.Token, CapManageAdmins)
	if err != nil {
		t.Fatalf("superadmin on admins: %v", err)
	}
	if p.Role != RoleSuperadmin {
		t.Fatalf("role = %q", p.Role)
	}

	p, err = sessions.Authorize(f.ctx, "", CapSubmitRegistration)
	if err != nil || p != nil {
		t.Fatalf("public capability: got (%v, %v), want (nil, nil)", p, err)
	}
}

func TestSessionProfile(t *testing.T) {
	f, sessions, _ := newSessionFixture(t)
	tc := f.teacher(t, "teach@academy.test", "Math")

	got, err := sessions.Profile(f.ctx, &Principal{ID: tc.ID, Role: RoleTeacher})
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if teacher, ok := got.(*models.Teacher); !ok || teacher.ID != tc.ID {
		t.Fatalf("Profile returned %#v", got)
	}

	_, err = sessions.Profile(f.ctx, nil)
	assertKind(t, err, KindUnauthenticated)
}
