package services

import (
	"context"

	"academy_go/database"
	"academy_go/models"
	"academy_go/storage"
	"academy_go/utils"

	log "github.com/sirupsen/logrus"
)

type TeacherInput struct {
	FullName       string   `json:"full_name" validate:"required"`
	Email          string   `json:"email" validate:"required"`
	Password       string   `json:"password" validate:"required" trim:"-"`
	SubjectsTaught []string `json:"subjects_taught"`
}

// TeacherUpdate carries optional changes. A nil SubjectsTaught keeps the current set.
type TeacherUpdate struct {
	FullName       *string  `json:"full_name"`
	Email          *string  `json:"email"`
	Password       *string  `json:"password" trim:"-"`
	SubjectsTaught []string `json:"subjects_taught"`
}

// FileUpload is an image received from a client.
type FileUpload struct {
	Filename string
	Data     []byte
}

// UploadRules bounds accepted uploads.
type UploadRules struct {
	MaxSize    int64
	Extensions []string
}

func (r UploadRules) Check(f FileUpload) error {
	if len(f.Data) == 0 {
		return &Error{Kind: KindInvalidFile, Field: "empty file"}
	}
	if r.MaxSize > 0 && int64(len(f.Data)) > r.MaxSize {
		return &Error{Kind: KindInvalidFile, Field: "file too large"}
	}
	if len(r.Extensions) > 0 && !utils.IsValidFileExtension(f.Filename, r.Extensions) {
		return &Error{Kind: KindInvalidFile, Field: "extension not allowed"}
	}
	return nil
}

const (
	teacherPhotoFolder   = "teachers/photos"
	teacherGalleryFolder = "teachers/gallery"
)

type TeacherService struct {
	store   database.Store
	hasher  PasswordHasher
	objects storage.ObjectStore
	rules   UploadRules
}

func NewTeacherService(store database.Store, hasher PasswordHasher, objects storage.ObjectStore, rules UploadRules) *TeacherService {
	return &TeacherService{store: store, hasher: hasher, objects: objects, rules: rules}
}

func (s *TeacherService) Create(ctx context.Context, in TeacherInput) (*models.Teacher, error) {
	if err := validateInput(&in); err != nil {
		return nil, err
	}
	email := utils.NormalizeEmail(in.Email)
	if err := checkEmail(email); err != nil {
		return nil, err
	}
	subjects, err := ParseSubjects(in.SubjectsTaught)
	if err != nil {
		return nil, err
	}
	if err := checkPassword(in.Password); err != nil {
		return nil, err
	}
	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, upstream("hash password", err)
	}

	teacher := &models.Teacher{
		FullName:       in.FullName,
		Email:          email,
		Password:       digest,
		SubjectsTaught: subjects,
	}
	err = atomically(ctx, s.store, func(tx database.Store) error {
		if err := ensureTeacherEmailFree(ctx, tx, email); err != nil {
			return err
		}
		if err := tx.CreateTeacher(ctx, teacher); err != nil {
			if database.IsDuplicate(err) {
				return &Error{Kind: KindEmailTaken, Field: email}
			}
			return upstream("create teacher", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"teacher_id": teacher.ID, "subjects": subjects}).Info("teacher created")
	return teacher, nil
}

func ensureTeacherEmailFree(ctx context.Context, st database.TeacherStore, email string) error {
	_, err := st.FindTeacherByEmail(ctx, email)
	if err == nil {
		return &Error{Kind: KindEmailTaken, Field: email}
	}
	if !database.IsNotFound(err) {
		return upstream("find teacher by email", err)
	}
	return nil
}

func (s *TeacherService) List(ctx context.Context) ([]models.Teacher, error) {
	teachers, err := s.store.ListTeachers(ctx)
	if err != nil {
		return nil, upstream("list teachers", err)
	}
	return teachers, nil
}

func (s *TeacherService) Get(ctx context.Context, id string) (*models.Teacher, error) {
	t, err := s.store.FindTeacher(ctx, id)
	if err != nil {
		return nil, notFound("find teacher", err)
	}
	return t, nil
}

// Update applies the supplied fields. Email uniqueness is only checked when the
// email actually changes.
func (s *TeacherService) Update(ctx context.Context, id string, in TeacherUpdate) (*models.Teacher, error) {
	var (
		subjects []string
		digest   string
		email    string
	)
	if in.SubjectsTaught != nil {
		parsed, err := ParseSubjects(in.SubjectsTaught)
		if err != nil {
			return nil, err
		}
		subjects = parsed
	}
	if in.Password != nil {
		if err := checkPassword(*in.Password); err != nil {
			return nil, err
		}
		hashed, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, upstream("hash password", err)
		}
		digest = hashed
	}
	if in.Email != nil {
		email = utils.NormalizeEmail(*in.Email)
		if email == "" {
			return nil, missingField("email")
		}
		if err := checkEmail(email); err != nil {
			return nil, err
		}
	}

	var teacher *models.Teacher
	err := atomically(ctx, s.store, func(tx database.Store) error {
		t, err := tx.FindTeacher(ctx, id)
		if err != nil {
			return notFound("find teacher", err)
		}
		if in.FullName != nil {
			name := trim(*in.FullName)
			if name == "" {
				return missingField("full_name")
			}
			t.FullName = name
		}
		if subjects != nil {
			t.SubjectsTaught = subjects
		}
		if digest != "" {
			t.Password = digest
		}
		if email != "" && email != t.Email {
			if err := ensureTeacherEmailFree(ctx, tx, email); err != nil {
				return err
			}
			t.Email = email
		}
		if err := tx.SaveTeacher(ctx, t); err != nil {
			if database.IsDuplicate(err) {
				return &Error{Kind: KindEmailTaken, Field: email}
			}
			return upstream("save teacher", err)
		}
		teacher = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.WithField("teacher_id", id).Info("teacher updated")
	return teacher, nil
}

// UpdateSelf is the teacher-facing update. The login email stays admin managed.
func (s *TeacherService) UpdateSelf(ctx context.Context, id string, in TeacherUpdate) (*models.Teacher, error) {
	in.Email = nil
	return s.Update(ctx, id, in)
}

// Delete refuses while groups still name the teacher, then drops stored images.
func (s *TeacherService) Delete(ctx context.Context, id string) error {
	var keys []string
	err := atomically(ctx, s.store, func(tx database.Store) error {
		t, err := tx.FindTeacher(ctx, id)
		if err != nil {
			return notFound("find teacher", err)
		}
		n, err := tx.CountGroupsForTeacher(ctx, id)
		if err != nil {
			return upstream("count teacher groups", err)
		}
		if n > 0 {
			return &Error{Kind: KindTeacherHasGroups, Field: id}
		}
		if t.PhotoKey != "" {
			keys = append(keys, t.PhotoKey)
		}
		for _, img := range t.Images {
			keys = append(keys, img.ObjectKey)
		}
		if err := tx.DeleteTeacher(ctx, id); err != nil {
			return upstream("delete teacher", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.discard(ctx, keys...)
	log.WithField("teacher_id", id).Info("teacher deleted")
	return nil
}

// ReplacePhoto uploads a new profile photo and removes the previous one.
func (s *TeacherService) ReplacePhoto(ctx context.Context, id string, f FileUpload) (*models.Teacher, error) {
	if err := s.rules.Check(f); err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	obj, err := s.objects.Upload(ctx, f.Data, teacherPhotoFolder, f.Filename)
	if err != nil {
		return nil, upstream("upload photo", err)
	}

	var (
		teacher *models.Teacher
		oldKey  string
	)
	err = atomically(ctx, s.store, func(tx database.Store) error {
		t, err := tx.FindTeacher(ctx, id)
		if err != nil {
			return notFound("find teacher", err)
		}
		oldKey = t.PhotoKey
		t.PhotoURL = obj.URL
		t.PhotoKey = obj.Key
		if err := tx.SaveTeacher(ctx, t); err != nil {
			return upstream("save teacher photo", err)
		}
		teacher = t
		return nil
	})
	if err != nil {
		s.discard(ctx, obj.Key)
		return nil, err
	}
	s.discard(ctx, oldKey)
	return teacher, nil
}

// AddGalleryImage appends an image at the end of the teacher's gallery.
func (s *TeacherService) AddGalleryImage(ctx context.Context, id string, f FileUpload) (*models.TeacherImage, error) {
	if err := s.rules.Check(f); err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	obj, err := s.objects.Upload(ctx, f.Data, teacherGalleryFolder, f.Filename)
	if err != nil {
		return nil, upstream("upload gallery image", err)
	}
	img := &models.TeacherImage{TeacherID: id, URL: obj.URL, ObjectKey: obj.Key}
	if err := s.store.AddTeacherImage(ctx, img); err != nil {
		s.discard(ctx, obj.Key)
		return nil, upstream("add teacher image", err)
	}
	return img, nil
}

func (s *TeacherService) RemoveGalleryImage(ctx context.Context, teacherID, imageID string) error {
	img, err := s.store.FindTeacherImage(ctx, teacherID, imageID)
	if err != nil {
		return notFound("find teacher image", err)
	}
	if err := s.store.DeleteTeacherImage(ctx, img.ID); err != nil {
		return upstream("delete teacher image", err)
	}
	s.discard(ctx, img.ObjectKey)
	return nil
}

// discard deletes stored objects whose records are gone. Failures only leak storage.
func (s *TeacherService) discard(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := s.objects.Delete(ctx, key); err != nil {
			log.WithError(err).WithField("key", key).Warn("failed to delete stored object")
		}
	}
}
