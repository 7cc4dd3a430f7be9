package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"academy_go/services"

	"github.com/gofiber/fiber/v2"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		kind services.Kind
		want int
	}{
		{services.KindMissingToken, fiber.StatusUnauthorized},
		{services.KindInvalidCredentials, fiber.StatusUnauthorized},
		{services.KindForbidden, fiber.StatusForbidden},
		{services.KindMissingField, fiber.StatusBadRequest},
		{services.KindInvalidFile, fiber.StatusBadRequest},
		{services.KindUnknownTeacher, fiber.StatusNotFound},
		{services.KindGradeMismatch, fiber.StatusUnprocessableEntity},
		{services.KindAlreadyEnrolled, fiber.StatusConflict},
		{services.KindEmailTaken, fiber.StatusConflict},
		{services.KindUpstreamFailure, fiber.StatusServiceUnavailable},
		{services.Kind(""), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := StatusFor(tt.kind); got != tt.want {
			t.Errorf("StatusFor(%q) = %d, want %d", tt.kind, got, tt.want)
		}
	}
}

func respond(t *testing.T, err error) (int, map[string]string) {
	t.Helper()
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error { return RespondError(c, err) })
	resp, testErr := app.Test(httptest.NewRequest("GET", "/", nil), -1)
	if testErr != nil {
		t.Fatalf("app.Test: %v", testErr)
	}
	defer resp.Body.Close()
	body := map[string]string{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp.StatusCode, body
}

func TestRespondError(t *testing.T) {
	status, body := respond(t, &services.Error{Kind: services.KindMissingField, Field: "student.grade"})
	if status != fiber.StatusBadRequest || body["error"] != "missing_field" || body["field"] != "student.grade" {
		t.Fatalf("missing field: %d %v", status, body)
	}

	status, body = respond(t, &services.Error{Kind: services.KindUnauthenticated, Err: services.ErrRevokedToken})
	if status != fiber.StatusUnauthorized || body["reason"] != "revoked_token" {
		t.Fatalf("unauthenticated: %d %v", status, body)
	}

	status, body = respond(t, &services.Error{Kind: services.KindUpstreamFailure, Field: "db", Err: errors.New("dial tcp: refused")})
	if status != fiber.StatusServiceUnavailable || body["field"] != "" {
		t.Fatalf("upstream leaked details: %d %v", status, body)
	}

	status, body = respond(t, errors.New("boom"))
	if status != fiber.StatusInternalServerError || body["error"] != "internal server error" {
		t.Fatalf("foreign error: %d %v", status, body)
	}
}

type stubAuthorizer struct {
	gotToken  string
	principal *services.Principal
	err       error
}

func (s *stubAuthorizer) Authorize(_ context.Context, raw string, _ services.Capability) (*services.Principal, error) {
	s.gotToken = raw
	return s.principal, s.err
}

func TestRequireCapability(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		query      string
		auth       *stubAuthorizer
		wantStatus int
		wantToken  string
	}{
		{
			name:       "bearer header",
			header:     "Bearer abc.def",
			auth:       &stubAuthorizer{principal: &services.Principal{ID: "u1", Role: services.RoleAdmin}},
			wantStatus: fiber.StatusOK,
			wantToken:  "abc.def",
		},
		{
			name:       "lowercase scheme",
			header:     "bearer xyz",
			auth:       &stubAuthorizer{principal: &services.Principal{ID: "u1", Role: services.RoleAdmin}},
			wantStatus: fiber.StatusOK,
			wantToken:  "xyz",
		},
		{
			name:       "query token ignored on REST routes",
			query:      "?token=q1",
			auth:       &stubAuthorizer{err: &services.Error{Kind: services.KindUnauthenticated, Err: services.ErrMissingToken}},
			wantStatus: fiber.StatusUnauthorized,
			wantToken:  "",
		},
		{
			name:       "forbidden",
			header:     "Bearer t",
			auth:       &stubAuthorizer{err: &services.Error{Kind: services.KindForbidden}},
			wantStatus: fiber.StatusForbidden,
			wantToken:  "t",
		},
		{
			name:       "missing",
			auth:       &stubAuthorizer{err: &services.Error{Kind: services.KindUnauthenticated, Err: services.ErrMissingToken}},
			wantStatus: fiber.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", RequireCapability(tt.auth, services.CapManageStudents), func(c *fiber.Ctx) error {
				if GetCurrentPrincipal(c) == nil {
					return c.SendStatus(fiber.StatusTeapot)
				}
				return c.SendStatus(fiber.StatusOK)
			})
			req := httptest.NewRequest("GET", "/"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req, -1)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if tt.auth.gotToken != tt.wantToken {
				t.Fatalf("token = %q, want %q", tt.auth.gotToken, tt.wantToken)
			}
		})
	}
}
