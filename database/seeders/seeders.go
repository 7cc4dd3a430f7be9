package seeders

import (
	"context"
	"time"

	"academy_go/services"

	log "github.com/sirupsen/logrus"
)

// SeedSuperadmin provisions the bootstrap superadmin from configuration.
// Without credentials the step is skipped so that an existing deployment
// can start without them.
func SeedSuperadmin(admins *services.AdminService, email, password string) {
	if email == "" || password == "" {
		log.Warn("SUPERADMIN_EMAIL/SUPERADMIN_PASSWORD not set, skipping superadmin seed")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	created, err := admins.EnsureSuperadmin(ctx, email, password)
	if err != nil {
		log.WithError(err).Error("failed to seed superadmin")
		return
	}
	if created {
		log.WithField("email", email).Info("superadmin account created")
		return
	}
	log.Info("superadmin already present, skipping seed")
}
