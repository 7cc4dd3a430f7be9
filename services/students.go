package services

import (
	"context"

	"academy_go/database"
	"academy_go/models"

	log "github.com/sirupsen/logrus"
)

// ParentInfo is the guardian contact attached to students and registrations.
type ParentInfo struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required"`
	Phone string `json:"phone"`
}

type StudentInput struct {
	FirstName string     `json:"first_name" validate:"required"`
	LastName  string     `json:"last_name" validate:"required"`
	Parent    ParentInfo `json:"parent"`
	Grade     string     `json:"grade" validate:"required"`
	Groups    []string   `json:"groups" validate:"required,min=1"`
	Teacher   string     `json:"teacher" validate:"required"`
}

// StudentUpdate changes identity and parent fields. Nil fields are kept.
type StudentUpdate struct {
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	ParentName  *string `json:"parent_name"`
	ParentEmail *string `json:"parent_email"`
	ParentPhone *string `json:"parent_phone"`
}

type EnrollmentInput struct {
	Group   string `json:"group" validate:"required"`
	Teacher string `json:"teacher" validate:"required"`
}

type StudentService struct {
	store database.Store
}

func NewStudentService(store database.Store) *StudentService {
	return &StudentService{store: store}
}

// Create resolves grade, then teacher, then every requested group, and requires
// each group to be led by the declared teacher.
func (s *StudentService) Create(ctx context.Context, in StudentInput) (*models.Student, error) {
	in.Groups = compact(in.Groups)
	if err := validateInput(&in); err != nil {
		return nil, err
	}
	if err := checkEmail(in.Parent.Email); err != nil {
		return nil, err
	}

	student := &models.Student{
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		ParentName:  in.Parent.Name,
		ParentEmail: in.Parent.Email,
		ParentPhone: in.Parent.Phone,
	}
	err := atomically(ctx, s.store, func(tx database.Store) error {
		grade, err := resolveGrade(ctx, tx, in.Grade)
		if err != nil {
			return err
		}
		teacher, err := resolveTeacher(ctx, tx, in.Teacher)
		if err != nil {
			return err
		}
		for _, gid := range in.Groups {
			group, err := resolveGroup(ctx, tx, gid)
			if err != nil {
				return err
			}
			if group.TeacherID != teacher.ID {
				return &Error{Kind: KindTeacherGroupMismatch, Field: gid}
			}
		}
		student.GradeID = grade.ID
		if err := tx.CreateStudent(ctx, student, in.Groups); err != nil {
			return upstream("create student", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"student_id": student.ID, "groups": len(in.Groups)}).Info("student created")
	return s.Get(ctx, student.ID)
}

func (s *StudentService) List(ctx context.Context, f database.StudentFilter) ([]models.Student, error) {
	students, err := s.store.ListStudents(ctx, f)
	if err != nil {
		return nil, upstream("list students", err)
	}
	return students, nil
}

func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	st, err := s.store.FindStudent(ctx, id)
	if err != nil {
		return nil, notFound("find student", err)
	}
	return st, nil
}

func (s *StudentService) Update(ctx context.Context, id string, in StudentUpdate) (*models.Student, error) {
	err := atomically(ctx, s.store, func(tx database.Store) error {
		st, err := tx.FindStudent(ctx, id)
		if err != nil {
			return notFound("find student", err)
		}
		for _, f := range []struct {
			name string
			val  *string
			dst  *string
		}{
			{"first_name", in.FirstName, &st.FirstName},
			{"last_name", in.LastName, &st.LastName},
			{"parent_name", in.ParentName, &st.ParentName},
			{"parent_email", in.ParentEmail, &st.ParentEmail},
		} {
			if f.val == nil {
				continue
			}
			v := trim(*f.val)
			if v == "" {
				return missingField(f.name)
			}
			*f.dst = v
		}
		if in.ParentEmail != nil {
			if err := checkEmail(st.ParentEmail); err != nil {
				return err
			}
		}
		if in.ParentPhone != nil {
			st.ParentPhone = trim(*in.ParentPhone)
		}
		if err := tx.SaveStudent(ctx, st); err != nil {
			return upstream("save student", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// AddGroup enrolls an existing student. The group must be led by the declared
// teacher, sit in the student's grade, and not already hold the student.
func (s *StudentService) AddGroup(ctx context.Context, studentID string, in EnrollmentInput) (*models.Student, error) {
	if err := validateInput(&in); err != nil {
		return nil, err
	}
	err := atomically(ctx, s.store, func(tx database.Store) error {
		student, err := tx.FindStudent(ctx, studentID)
		if err != nil {
			return notFound("find student", err)
		}
		group, err := resolveGroup(ctx, tx, in.Group)
		if err != nil {
			return err
		}
		teacher, err := resolveTeacher(ctx, tx, in.Teacher)
		if err != nil {
			return err
		}
		if group.TeacherID != teacher.ID {
			return &Error{Kind: KindTeacherGroupMismatch, Field: group.ID}
		}
		if group.GradeID == nil || *group.GradeID != student.GradeID {
			return &Error{Kind: KindGradeMismatch, Field: group.ID}
		}
		if student.HasGroup(group.ID) {
			return &Error{Kind: KindAlreadyEnrolled, Field: group.ID}
		}
		if err := tx.AddEnrollment(ctx, student.ID, group.ID); err != nil {
			if database.IsDuplicate(err) {
				return &Error{Kind: KindAlreadyEnrolled, Field: group.ID}
			}
			return upstream("add enrollment", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"student_id": studentID, "group_id": in.Group}).Info("student enrolled")
	return s.Get(ctx, studentID)
}

func (s *StudentService) RemoveGroup(ctx context.Context, studentID, groupID string) (*models.Student, error) {
	err := atomically(ctx, s.store, func(tx database.Store) error {
		if _, err := tx.FindStudent(ctx, studentID); err != nil {
			return notFound("find student", err)
		}
		removed, err := tx.RemoveEnrollment(ctx, studentID, groupID)
		if err != nil {
			return upstream("remove enrollment", err)
		}
		if !removed {
			return &Error{Kind: KindNotFound, Field: groupID}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, studentID)
}

func (s *StudentService) Delete(ctx context.Context, id string) error {
	err := atomically(ctx, s.store, func(tx database.Store) error {
		if _, err := tx.FindStudent(ctx, id); err != nil {
			return notFound("find student", err)
		}
		if err := tx.DeleteStudent(ctx, id); err != nil {
			return upstream("delete student", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.WithField("student_id", id).Info("student deleted")
	return nil
}
