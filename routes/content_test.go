package routes

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"academy_go/services"
	"academy_go/services/mail"
)

func field(t *testing.T, body map[string]interface{}, key string) map[string]interface{} {
	t.Helper()
	obj, ok := body[key].(map[string]interface{})
	if !ok {
		t.Fatalf("response has no %q object: %v", key, body)
	}
	return obj
}

func total(body map[string]interface{}) int {
	n, _ := body["total"].(float64)
	return int(n)
}

func TestAnnouncementsPublishedFilter(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, services.NamespaceAdmin, "office@academy.test", "officepass")

	status, body := s.do(t, http.MethodPost, "/api/announcements", admin, `{"title":"draft","body":"b","published":false}`)
	if status != http.StatusCreated {
		t.Fatalf("create draft status = %d body %v", status, body)
	}
	draft := field(t, body, "announcement")
	if draft["published"] != false {
		t.Fatalf("draft returned as published: %v", draft)
	}

	status, body = s.do(t, http.MethodPost, "/api/announcements", admin, `{"title":"news","body":"b"}`)
	if status != http.StatusCreated || field(t, body, "announcement")["published"] != true {
		t.Fatalf("default publish status = %d body %v", status, body)
	}

	_, body = s.do(t, http.MethodGet, "/api/announcements", "", "")
	if total(body) != 1 {
		t.Fatalf("public listing = %v, want only the published announcement", body["announcements"])
	}

	status, _ = s.do(t, http.MethodPut, "/api/announcements/"+draft["id"].(string), admin, `{"title":"draft","body":"b","published":true}`)
	if status != http.StatusOK {
		t.Fatalf("publish status = %d", status)
	}
	_, body = s.do(t, http.MethodGet, "/api/announcements", "", "")
	if total(body) != 2 {
		t.Fatalf("published draft not listed: %v", body["announcements"])
	}

	status, _ = s.do(t, http.MethodPost, "/api/announcements", "", `{"title":"x","body":"y"}`)
	if status != http.StatusUnauthorized {
		t.Fatalf("anonymous create status = %d", status)
	}
}

func TestTestimonialsHiddenUntilApproved(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, services.NamespaceAdmin, "office@academy.test", "officepass")

	status, body := s.do(t, http.MethodPost, "/api/testimonials", "", `{"author_name":"Omar","content":"Great school"}`)
	if status != http.StatusCreated {
		t.Fatalf("submit status = %d body %v", status, body)
	}
	id := field(t, body, "testimonial")["id"].(string)

	status, body = s.do(t, http.MethodPost, "/api/testimonials", "", `{"author_name":"Omar"}`)
	if status != http.StatusBadRequest || body["field"] != "content" {
		t.Fatalf("missing content status = %d body %v", status, body)
	}

	if _, body = s.do(t, http.MethodGet, "/api/testimonials", "", ""); total(body) != 0 {
		t.Fatalf("unapproved testimonial is public: %v", body)
	}
	if _, body = s.do(t, http.MethodGet, "/api/testimonials/all", admin, ""); total(body) != 1 {
		t.Fatalf("admin listing = %v", body)
	}

	if status, _ = s.do(t, http.MethodPatch, "/api/testimonials/"+id+"/approve", admin, ""); status != http.StatusOK {
		t.Fatalf("approve status = %d", status)
	}
	if _, body = s.do(t, http.MethodGet, "/api/testimonials", "", ""); total(body) != 1 {
		t.Fatalf("approved testimonial not public: %v", body)
	}

	if status, _ = s.do(t, http.MethodPatch, "/api/testimonials/missing/approve", admin, ""); status != http.StatusNotFound {
		t.Fatalf("approve missing status = %d", status)
	}
}

func TestNewsletterSubscribe(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, services.NamespaceAdmin, "office@academy.test", "officepass")

	status, body := s.do(t, http.MethodPost, "/api/newsletter/subscribe", "", `{"email":"Reader@Example.com"}`)
	if status != http.StatusCreated || field(t, body, "subscriber")["email"] != "reader@example.com" {
		t.Fatalf("subscribe status = %d body %v", status, body)
	}

	status, body = s.do(t, http.MethodPost, "/api/newsletter/subscribe", "", `{"email":"reader@example.com"}`)
	if status != http.StatusConflict || body["error"] != string(services.KindConflict) {
		t.Fatalf("duplicate status = %d body %v", status, body)
	}

	status, body = s.do(t, http.MethodPost, "/api/newsletter/subscribe", "", `{"email":"not-an-email"}`)
	if status != http.StatusBadRequest || body["error"] != string(services.KindInvalidEmailFormat) {
		t.Fatalf("invalid email status = %d body %v", status, body)
	}

	if status, _ = s.do(t, http.MethodGet, "/api/newsletter/subscribers", "", ""); status != http.StatusUnauthorized {
		t.Fatalf("anonymous subscriber listing status = %d", status)
	}
	if _, body = s.do(t, http.MethodGet, "/api/newsletter/subscribers", admin, ""); total(body) != 1 {
		t.Fatalf("subscribers = %v", body)
	}
}

func TestProgramGradeReference(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, services.NamespaceAdmin, "office@academy.test", "officepass")

	status, body := s.do(t, http.MethodPost, "/api/programs", admin, `{"title":"Summer camp","grade_id":"nope"}`)
	if status != http.StatusNotFound || body["error"] != string(services.KindUnknownGrade) {
		t.Fatalf("unknown grade status = %d body %v", status, body)
	}

	_, body = s.do(t, http.MethodPost, "/api/grades", admin, `{"name":"Grade 7"}`)
	gradeID := field(t, body, "grade")["id"].(string)

	status, body = s.do(t, http.MethodPost, "/api/programs", admin, `{"title":"Summer camp","grade_id":"`+gradeID+`"}`)
	if status != http.StatusCreated {
		t.Fatalf("create status = %d body %v", status, body)
	}
	if status, _ = s.do(t, http.MethodPost, "/api/programs", admin, `{"title":"Open day"}`); status != http.StatusCreated {
		t.Fatalf("create without grade status = %d", status)
	}

	if _, body = s.do(t, http.MethodGet, "/api/programs?grade_id="+gradeID, "", ""); total(body) != 1 {
		t.Fatalf("filtered programs = %v", body)
	}
	if _, body = s.do(t, http.MethodGet, "/api/programs", "", ""); total(body) != 2 {
		t.Fatalf("all programs = %v", body)
	}
}

type failingMailer struct{}

func (failingMailer) Send(context.Context, mail.Message) error {
	return errors.New("smtp relay down")
}

func TestContactRelay(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodPost, "/api/contact", "", `{"name":"Lina","email":"lina@example.com","message":"Do you offer evening classes?"}`)
	if status != http.StatusAccepted {
		t.Fatalf("status = %d body %v", status, body)
	}
	sent := s.mailer.Sent()
	if len(sent) != 1 || sent[0].To[0] != testInbox || sent[0].ReplyTo != "lina@example.com" {
		t.Fatalf("relayed mail = %+v", sent)
	}

	status, body = s.do(t, http.MethodPost, "/api/contact", "", `{"name":"Lina","email":"lina@example","message":"hi"}`)
	if status != http.StatusBadRequest || body["error"] != string(services.KindInvalidEmailFormat) {
		t.Fatalf("bad email status = %d body %v", status, body)
	}

	broken := newTestServer(t, func(d *Deps) { d.Mailer = failingMailer{} })
	status, body = broken.do(t, http.MethodPost, "/api/contact", "", `{"name":"Lina","email":"lina@example.com","message":"hi"}`)
	if status != http.StatusServiceUnavailable || body["error"] != string(services.KindUpstreamFailure) {
		t.Fatalf("mailer failure status = %d body %v", status, body)
	}
}

func (s *testServer) upload(t *testing.T, path, token, filename string, data []byte, caption string) (int, []byte) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if caption != "" {
		if err := w.WriteField("caption", caption); err != nil {
			t.Fatalf("write caption: %v", err)
		}
	}
	part, err := w.CreateFormFile("image", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	part.Write(data)
	w.Close()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, raw
}

func TestGalleryUpload(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, services.NamespaceAdmin, "office@academy.test", "officepass")

	if status, raw := s.upload(t, "/api/gallery", admin, "tool.exe", []byte("x"), ""); status != http.StatusBadRequest {
		t.Fatalf("bad extension status = %d body %s", status, raw)
	}
	status, raw := s.upload(t, "/api/gallery", admin, "class.png", []byte("png"), "Open day")
	if status != http.StatusCreated {
		t.Fatalf("upload status = %d body %s", status, raw)
	}
	if s.objects.Len() != 1 {
		t.Fatalf("stored objects = %d", s.objects.Len())
	}

	_, body := s.do(t, http.MethodGet, "/api/gallery", "", "")
	images, _ := body["images"].([]interface{})
	if len(images) != 1 || images[0].(map[string]interface{})["caption"] != "Open day" {
		t.Fatalf("gallery = %v", body)
	}
	id := images[0].(map[string]interface{})["id"].(string)

	if status, _ := s.do(t, http.MethodDelete, "/api/gallery/"+id, admin, ""); status != http.StatusOK {
		t.Fatalf("delete status = %d", status)
	}
	if s.objects.Len() != 0 {
		t.Fatalf("stored objects = %d after delete", s.objects.Len())
	}
}
