package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"academy_go/database"
	"academy_go/models"
	"academy_go/services/mail"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// DigestJob mails the list of pending registrations to administrators.
type DigestJob struct {
	store  database.Store
	mailer mail.Mailer
	inbox  string
}

func NewDigestJob(store database.Store, mailer mail.Mailer, inbox string) *DigestJob {
	return &DigestJob{store: store, mailer: mailer, inbox: inbox}
}

// Run sends one digest. Nothing is sent when no registration is pending.
func (j *DigestJob) Run(ctx context.Context) (int, error) {
	pending, err := j.store.ListRegistrations(ctx, models.RegistrationPending)
	if err != nil {
		return 0, upstream("list pending registrations", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}
	recipients, err := j.recipients(ctx)
	if err != nil {
		return 0, err
	}
	if len(recipients) == 0 {
		log.Warn("digest: no recipients configured")
		return 0, nil
	}

	msg := mail.Message{
		To:          recipients,
		Subject:     fmt.Sprintf("%d pending registration(s)", len(pending)),
		TextContent: digestBody(pending),
	}
	if err := j.mailer.Send(ctx, msg); err != nil {
		return 0, upstream("send digest", err)
	}
	log.WithFields(log.Fields{"pending": len(pending), "recipients": len(recipients)}).Info("registration digest sent")
	return len(pending), nil
}

func (j *DigestJob) recipients(ctx context.Context) ([]string, error) {
	var out []string
	seen := map[string]bool{}
	add := func(email string) {
		email = strings.ToLower(strings.TrimSpace(email))
		if email != "" && !seen[email] {
			seen[email] = true
			out = append(out, email)
		}
	}
	add(j.inbox)
	for _, role := range []string{models.RoleSuperadmin, models.RoleAdmin} {
		users, err := j.store.ListUsers(ctx, role)
		if err != nil {
			return nil, upstream("list digest recipients", err)
		}
		for _, u := range users {
			add(u.Email)
		}
	}
	return out, nil
}

func digestBody(regs []models.Registration) string {
	var b strings.Builder
	b.WriteString("Registrations awaiting review:\n\n")
	for _, r := range regs {
		fmt.Fprintf(&b, "- %s %s (grade %s), parent %s <%s>, group %s, submitted %s\n",
			r.StudentFirstName, r.StudentLastName, r.StudentGrade,
			r.ParentName, r.ParentEmail, r.GroupID, r.CreatedAt.Format("2006-01-02"))
	}
	return b.String()
}

// StartDigestSchedule runs the job on the given cron spec until the returned
// scheduler is stopped.
func StartDigestSchedule(spec string, job *DigestJob) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := job.Run(ctx); err != nil {
			log.WithError(err).Error("registration digest failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid digest schedule %q: %w", spec, err)
	}
	c.Start()
	return c, nil
}
