package services

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
)

func TestHealthReport(t *testing.T) {
	db := newTestDB(t)
	unreachable := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	defer unreachable.Close()

	tests := []struct {
		name       string
		service    *HealthService
		wantStatus string
		wantHTTP   int
	}{
		{"database only", NewHealthService(db, nil, "test"), overallStatusOK, 200},
		{"redis down", NewHealthService(db, unreachable, "test"), overallStatusDegraded, 200},
		{"no database", NewHealthService(nil, nil, ""), overallStatusCritical, 503},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := tt.service.GetHealthReport(context.Background())
			if report.Status != tt.wantStatus {
				t.Fatalf("status = %q, want %q (deps %+v)", report.Status, tt.wantStatus, report.Dependencies)
			}
			if got := tt.service.HTTPStatusForOverall(report.Status); got != tt.wantHTTP {
				t.Fatalf("http = %d, want %d", got, tt.wantHTTP)
			}
			if len(report.Dependencies) != 2 {
				t.Fatalf("dependencies = %d", len(report.Dependencies))
			}
		})
	}
}

func TestHumanizeDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0s"},
		{90 * time.Second, "1m 30s"},
		{26*time.Hour + 5*time.Second, "1d 2h 5s"},
	}
	for _, tt := range tests {
		if got := humanizeDuration(tt.in); got != tt.want {
			t.Errorf("humanizeDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
