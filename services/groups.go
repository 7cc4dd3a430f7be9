package services

import (
	"context"

	"academy_go/database"
	"academy_go/models"

	log "github.com/sirupsen/logrus"
)

// Schedule is a weekly slot. All three parts are always supplied together.
type Schedule struct {
	Day          string `json:"day" validate:"required"`
	StartingTime string `json:"starting_time" validate:"required"`
	EndingTime   string `json:"ending_time" validate:"required"`
}

type GroupInput struct {
	Name     string   `json:"name" validate:"required"`
	Teacher  string   `json:"teacher" validate:"required"`
	Subject  string   `json:"subject" validate:"required"`
	Schedule Schedule `json:"schedule"`
	Grade    string   `json:"grade"`
}

type GroupRename struct {
	Name string `json:"name" validate:"required"`
}

type GroupService struct {
	store database.Store
}

func NewGroupService(store database.Store) *GroupService {
	return &GroupService{store: store}
}

// Create checks, in order: required fields, the optional grade, the teacher,
// and that the teacher teaches the subject.
func (s *GroupService) Create(ctx context.Context, in GroupInput) (*models.Group, error) {
	if err := validateInput(&in); err != nil {
		return nil, err
	}
	subject := in.Subject
	if canonical, ok := CanonicalSubject(subject); ok {
		subject = canonical
	}

	group := &models.Group{
		Name:         in.Name,
		Subject:      subject,
		Day:          in.Schedule.Day,
		StartingTime: in.Schedule.StartingTime,
		EndingTime:   in.Schedule.EndingTime,
	}
	err := atomically(ctx, s.store, func(tx database.Store) error {
		if in.Grade != "" {
			grade, err := resolveGrade(ctx, tx, in.Grade)
			if err != nil {
				return err
			}
			group.GradeID = &grade.ID
		}
		teacher, err := resolveTeacher(ctx, tx, in.Teacher)
		if err != nil {
			return err
		}
		if !teacher.SubjectsTaught.Contains(subject) {
			return &Error{Kind: KindSubjectNotTaught, Field: subject}
		}
		group.TeacherID = teacher.ID
		if err := tx.CreateGroup(ctx, group); err != nil {
			return upstream("create group", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"group_id": group.ID, "teacher_id": group.TeacherID, "subject": group.Subject}).Info("group created")
	return group, nil
}

func (s *GroupService) List(ctx context.Context, f database.GroupFilter) ([]models.Group, error) {
	groups, err := s.store.ListGroups(ctx, f)
	if err != nil {
		return nil, upstream("list groups", err)
	}
	return groups, nil
}

// ListForTeacher derives a teacher's groups from group.teacher on every read.
func (s *GroupService) ListForTeacher(ctx context.Context, teacherID string) ([]models.Group, error) {
	return s.List(ctx, database.GroupFilter{TeacherID: teacherID})
}

func (s *GroupService) Get(ctx context.Context, id string) (*models.Group, error) {
	g, err := s.store.FindGroup(ctx, id)
	if err != nil {
		return nil, notFound("find group", err)
	}
	return g, nil
}

func (s *GroupService) Rename(ctx context.Context, id string, in GroupRename) (*models.Group, error) {
	if err := validateInput(&in); err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, func(g *models.Group) { g.Name = in.Name })
}

// UpdateSchedule replaces the whole schedule. Partial schedules are rejected.
func (s *GroupService) UpdateSchedule(ctx context.Context, id string, in Schedule) (*models.Group, error) {
	if err := validateInput(&in); err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, func(g *models.Group) {
		g.Day = in.Day
		g.StartingTime = in.StartingTime
		g.EndingTime = in.EndingTime
	})
}

func (s *GroupService) mutate(ctx context.Context, id string, apply func(*models.Group)) (*models.Group, error) {
	var group *models.Group
	err := atomically(ctx, s.store, func(tx database.Store) error {
		g, err := tx.FindGroup(ctx, id)
		if err != nil {
			return notFound("find group", err)
		}
		apply(g)
		if err := tx.SaveGroup(ctx, g); err != nil {
			return upstream("save group", err)
		}
		group = g
		return nil
	})
	return group, err
}

// Delete removes the group together with the enrollment rows that point at it.
// Registrations keep their opaque group reference.
func (s *GroupService) Delete(ctx context.Context, id string) error {
	err := atomically(ctx, s.store, func(tx database.Store) error {
		if _, err := tx.FindGroup(ctx, id); err != nil {
			return notFound("find group", err)
		}
		if err := tx.DeleteGroup(ctx, id); err != nil {
			return upstream("delete group", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.WithField("group_id", id).Info("group deleted")
	return nil
}
