package services

import (
	"context"
	"strings"

	"academy_go/database"
	"academy_go/models"
	"academy_go/services/websocket"

	log "github.com/sirupsen/logrus"
)

// Notifier pushes events to connected administrators.
type Notifier interface {
	BroadcastToRoles(event string, data interface{}, roles ...string) int
}

type RegistrationStudent struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Grade     string `json:"grade" validate:"required"`
}

type RegistrationInput struct {
	Student RegistrationStudent `json:"student"`
	Parent  ParentInfo          `json:"parent"`
	Group   string              `json:"group" validate:"required"`
	// Status is ignored; new registrations always start pending.
	Status string `json:"status"`
}

type RegistrationService struct {
	store    database.Store
	notifier Notifier
}

func NewRegistrationService(store database.Store, notifier Notifier) *RegistrationService {
	return &RegistrationService{store: store, notifier: notifier}
}

// Create stores a public registration. The group is kept as an opaque reference
// and only looked at when an admin reviews it.
func (s *RegistrationService) Create(ctx context.Context, in RegistrationInput) (*models.Registration, error) {
	if err := validateInput(&in); err != nil {
		return nil, err
	}
	if err := checkEmail(in.Parent.Email); err != nil {
		return nil, err
	}

	reg := &models.Registration{
		StudentFirstName: in.Student.FirstName,
		StudentLastName:  in.Student.LastName,
		StudentGrade:     in.Student.Grade,
		ParentName:       in.Parent.Name,
		ParentEmail:      in.Parent.Email,
		ParentPhone:      in.Parent.Phone,
		GroupID:          in.Group,
		Status:           models.RegistrationPending,
	}
	if err := s.store.CreateRegistration(ctx, reg); err != nil {
		return nil, upstream("create registration", err)
	}
	log.WithFields(log.Fields{"registration_id": reg.ID, "group_id": reg.GroupID}).Info("registration received")

	if s.notifier != nil {
		s.notifier.BroadcastToRoles(websocket.EventRegistrationCreated, reg, string(RoleSuperadmin), string(RoleAdmin))
	}
	return reg, nil
}

func (s *RegistrationService) List(ctx context.Context, status string) ([]models.Registration, error) {
	status = strings.ToLower(trim(status))
	if status != "" && !isRegistrationStatus(status) {
		return nil, &Error{Kind: KindInvalidStatus, Field: status}
	}
	regs, err := s.store.ListRegistrations(ctx, status)
	if err != nil {
		return nil, upstream("list registrations", err)
	}
	return regs, nil
}

func (s *RegistrationService) Get(ctx context.Context, id string) (*models.Registration, error) {
	reg, err := s.store.FindRegistration(ctx, id)
	if err != nil {
		return nil, notFound("find registration", err)
	}
	return reg, nil
}

// UpdateStatus overwrites the status with any value of the enumeration.
func (s *RegistrationService) UpdateStatus(ctx context.Context, id, status string) (*models.Registration, error) {
	status = strings.ToLower(trim(status))
	if status == "" {
		return nil, missingField("status")
	}
	if !isRegistrationStatus(status) {
		return nil, &Error{Kind: KindInvalidStatus, Field: status}
	}
	if err := s.store.UpdateRegistrationStatus(ctx, id, status); err != nil {
		return nil, notFound("update registration status", err)
	}
	log.WithFields(log.Fields{"registration_id": id, "status": status}).Info("registration status updated")
	return s.Get(ctx, id)
}

func (s *RegistrationService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteRegistration(ctx, id); err != nil {
		return notFound("delete registration", err)
	}
	return nil
}

func isRegistrationStatus(status string) bool {
	switch status {
	case models.RegistrationPending, models.RegistrationAccepted, models.RegistrationRejected:
		return true
	}
	return false
}
