package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"academy_go/database"
	"academy_go/models"
	"academy_go/storage"
	"academy_go/utils"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var testHasher = utils.BcryptHasher{Cost: bcrypt.MinCost}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// recordingNotifier captures broadcasts instead of pushing them to sockets.
type recordingNotifier struct {
	mu     sync.Mutex
	events []recordedEvent
}

type recordedEvent struct {
	name  string
	data  interface{}
	roles []string
}

func (n *recordingNotifier) BroadcastToRoles(event string, data interface{}, roles ...string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, recordedEvent{name: event, data: data, roles: roles})
	return 1
}

type fixture struct {
	ctx           context.Context
	db            *gorm.DB
	store         *database.Registry
	objects       *storage.MemoryStore
	notifier      *recordingNotifier
	grades        *GradeService
	groups        *GroupService
	teachers      *TeacherService
	students      *StudentService
	registrations *RegistrationService
	admins        *AdminService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	store := database.NewRegistry(db)
	objects := storage.NewMemoryStore()
	notifier := &recordingNotifier{}
	rules := UploadRules{MaxSize: 1 << 20, Extensions: []string{"jpg", "png"}}
	return &fixture{
		ctx:           context.Background(),
		db:            db,
		store:         store,
		objects:       objects,
		notifier:      notifier,
		grades:        NewGradeService(store),
		groups:        NewGroupService(store),
		teachers:      NewTeacherService(store, testHasher, objects, rules),
		students:      NewStudentService(store),
		registrations: NewRegistrationService(store, notifier),
		admins:        NewAdminService(store, testHasher),
	}
}

var errCollaborator = errors.New("collaborator unavailable")

// brokenObjects fails every upload and delete.
type brokenObjects struct{}

func (brokenObjects) Upload(context.Context, []byte, string, string) (*storage.Object, error) {
	return nil, errCollaborator
}

func (brokenObjects) Delete(context.Context, string) error { return errCollaborator }

type brokenHasher struct{ utils.BcryptHasher }

func (brokenHasher) Hash(string) (string, error) { return "", errCollaborator }

// imageRejectingStore fails gallery writes after the upload succeeded.
type imageRejectingStore struct {
	*database.Registry
}

func (imageRejectingStore) AddTeacherImage(context.Context, *models.TeacherImage) error {
	return errCollaborator
}

func (f *fixture) grade(t *testing.T, name string) *models.Grade {
	t.Helper()
	g, err := f.grades.Create(f.ctx, GradeInput{Name: name})
	if err != nil {
		t.Fatalf("create grade %q: %v", name, err)
	}
	return g
}

func (f *fixture) teacher(t *testing.T, email string, subjects ...string) *models.Teacher {
	t.Helper()
	tc, err := f.teachers.Create(f.ctx, TeacherInput{
		FullName:       "Teacher " + email,
		Email:          email,
		Password:       "secret123",
		SubjectsTaught: subjects,
	})
	if err != nil {
		t.Fatalf("create teacher %q: %v", email, err)
	}
	return tc
}

func (f *fixture) group(t *testing.T, name, teacherID, subject, gradeID string) *models.Group {
	t.Helper()
	g, err := f.groups.Create(f.ctx, GroupInput{
		Name:     name,
		Teacher:  teacherID,
		Subject:  subject,
		Schedule: Schedule{Day: "Monday", StartingTime: "09:00", EndingTime: "10:30"},
		Grade:    gradeID,
	})
	if err != nil {
		t.Fatalf("create group %q: %v", name, err)
	}
	return g
}

func assertKind(t *testing.T, err error, want Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", want)
	}
	if got := KindOf(err); got != want {
		t.Fatalf("expected %s error, got %v", want, err)
	}
	if !errors.Is(err, &Error{Kind: want}) {
		t.Fatalf("errors.Is does not match kind %s for %v", want, err)
	}
}
