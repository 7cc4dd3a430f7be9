package database

import (
	"context"
	"errors"

	"academy_go/models"

	"gorm.io/gorm"
)

// GroupFilter narrows ListGroups. Empty fields are ignored.
type GroupFilter struct {
	GradeID   string
	TeacherID string
	Subject   string
}

// StudentFilter narrows ListStudents. Empty fields are ignored.
type StudentFilter struct {
	GradeID string
	GroupID string
}

// GradeStore persists grades and answers dependent-reference queries.
type GradeStore interface {
	CreateGrade(ctx context.Context, g *models.Grade) error
	FindGrade(ctx context.Context, id string) (*models.Grade, error)
	FindGradeByName(ctx context.Context, name string) (*models.Grade, error)
	ListGrades(ctx context.Context) ([]models.Grade, error)
	SaveGrade(ctx context.Context, g *models.Grade) error
	DeleteGrade(ctx context.Context, id string) error
	CountStudentsInGrade(ctx context.Context, gradeID string) (int64, error)
	CountGroupsInGrade(ctx context.Context, gradeID string) (int64, error)
	DetachProgramsFromGrade(ctx context.Context, gradeID string) error
}

// TeacherStore persists teachers and their gallery.
type TeacherStore interface {
	CreateTeacher(ctx context.Context, t *models.Teacher) error
	FindTeacher(ctx context.Context, id string) (*models.Teacher, error)
	FindTeacherByEmail(ctx context.Context, email string) (*models.Teacher, error)
	ListTeachers(ctx context.Context) ([]models.Teacher, error)
	SaveTeacher(ctx context.Context, t *models.Teacher) error
	DeleteTeacher(ctx context.Context, id string) error
	CountGroupsForTeacher(ctx context.Context, teacherID string) (int64, error)
	AddTeacherImage(ctx context.Context, img *models.TeacherImage) error
	FindTeacherImage(ctx context.Context, teacherID, imageID string) (*models.TeacherImage, error)
	DeleteTeacherImage(ctx context.Context, imageID string) error
}

// GroupStore persists groups.
type GroupStore interface {
	CreateGroup(ctx context.Context, g *models.Group) error
	FindGroup(ctx context.Context, id string) (*models.Group, error)
	ListGroups(ctx context.Context, f GroupFilter) ([]models.Group, error)
	SaveGroup(ctx context.Context, g *models.Group) error
	DeleteGroup(ctx context.Context, id string) error
}

// StudentStore persists students and the student-owned group set.
type StudentStore interface {
	CreateStudent(ctx context.Context, s *models.Student, groupIDs []string) error
	FindStudent(ctx context.Context, id string) (*models.Student, error)
	ListStudents(ctx context.Context, f StudentFilter) ([]models.Student, error)
	SaveStudent(ctx context.Context, s *models.Student) error
	DeleteStudent(ctx context.Context, id string) error
	AddEnrollment(ctx context.Context, studentID, groupID string) error
	RemoveEnrollment(ctx context.Context, studentID, groupID string) (bool, error)
}

// RegistrationStore persists public registrations.
type RegistrationStore interface {
	CreateRegistration(ctx context.Context, r *models.Registration) error
	FindRegistration(ctx context.Context, id string) (*models.Registration, error)
	ListRegistrations(ctx context.Context, status string) ([]models.Registration, error)
	UpdateRegistrationStatus(ctx context.Context, id, status string) error
	DeleteRegistration(ctx context.Context, id string) error
	CountRegistrations(ctx context.Context, status string) (int64, error)
}

// UserStore persists administrative principals.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	FindUser(ctx context.Context, id string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context, role string) ([]models.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// Store is the entity registry consumed by the services.
type Store interface {
	GradeStore
	TeacherStore
	GroupStore
	StudentStore
	RegistrationStore
	UserStore

	// Atomic runs fn against a store bound to one transaction.
	Atomic(ctx context.Context, fn func(tx Store) error) error
}

// IsDuplicate reports whether err is a unique or primary key violation.
// The connection must be opened with TranslateError enabled.
func IsDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// IsNotFound reports whether err means the looked up record does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
