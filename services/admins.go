package services

import (
	"context"

	"academy_go/database"
	"academy_go/models"
	"academy_go/utils"

	log "github.com/sirupsen/logrus"
)

type AdminInput struct {
	FullName string `json:"full_name" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required" trim:"-"`
}

// AdminService provisions administrative principals.
type AdminService struct {
	store  database.Store
	hasher PasswordHasher
}

func NewAdminService(store database.Store, hasher PasswordHasher) *AdminService {
	return &AdminService{store: store, hasher: hasher}
}

func (s *AdminService) Create(ctx context.Context, in AdminInput) (*models.User, error) {
	return s.create(ctx, in, models.RoleAdmin)
}

func (s *AdminService) create(ctx context.Context, in AdminInput, role string) (*models.User, error) {
	if err := validateInput(&in); err != nil {
		return nil, err
	}
	email := utils.NormalizeEmail(in.Email)
	if err := checkEmail(email); err != nil {
		return nil, err
	}
	if err := checkPassword(in.Password); err != nil {
		return nil, err
	}
	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, upstream("hash password", err)
	}

	user := &models.User{FullName: in.FullName, Email: email, Password: digest, Role: role}
	err = atomically(ctx, s.store, func(tx database.Store) error {
		_, err := tx.FindUserByEmail(ctx, email)
		if err == nil {
			return &Error{Kind: KindEmailTaken, Field: email}
		}
		if !database.IsNotFound(err) {
			return upstream("find user by email", err)
		}
		if err := tx.CreateUser(ctx, user); err != nil {
			if database.IsDuplicate(err) {
				return &Error{Kind: KindEmailTaken, Field: email}
			}
			return upstream("create user", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"user_id": user.ID, "role": role}).Info("administrator created")
	return user, nil
}

func (s *AdminService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.store.ListUsers(ctx, models.RoleAdmin)
	if err != nil {
		return nil, upstream("list admins", err)
	}
	return users, nil
}

// Delete removes an admin. Superadmins cannot be deleted through this path.
func (s *AdminService) Delete(ctx context.Context, id string) error {
	err := atomically(ctx, s.store, func(tx database.Store) error {
		u, err := tx.FindUser(ctx, id)
		if err != nil {
			return notFound("find user", err)
		}
		if u.Role == models.RoleSuperadmin {
			return &Error{Kind: KindForbidden, Field: "superadmin cannot be deleted"}
		}
		if err := tx.DeleteUser(ctx, id); err != nil {
			return upstream("delete user", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.WithField("user_id", id).Info("administrator deleted")
	return nil
}

// EnsureSuperadmin creates the bootstrap superadmin when none exists yet.
// It reports whether an account was created.
func (s *AdminService) EnsureSuperadmin(ctx context.Context, email, password string) (bool, error) {
	existing, err := s.store.ListUsers(ctx, models.RoleSuperadmin)
	if err != nil {
		return false, upstream("list superadmins", err)
	}
	if len(existing) > 0 {
		return false, nil
	}
	if email == "" || password == "" {
		return false, missingField("superadmin credentials")
	}
	if _, err := s.create(ctx, AdminInput{FullName: "Super Admin", Email: email, Password: password}, models.RoleSuperadmin); err != nil {
		return false, err
	}
	return true, nil
}
