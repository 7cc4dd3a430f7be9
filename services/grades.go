package services

import (
	"context"

	"academy_go/database"
	"academy_go/models"

	log "github.com/sirupsen/logrus"
)

type GradeInput struct {
	Name string `json:"name" validate:"required"`
}

type GradeService struct {
	store database.Store
}

func NewGradeService(store database.Store) *GradeService {
	return &GradeService{store: store}
}

func (s *GradeService) Create(ctx context.Context, in GradeInput) (*models.Grade, error) {
	if err := validateInput(&in); err != nil {
		return nil, err
	}
	grade := &models.Grade{Name: in.Name}
	err := atomically(ctx, s.store, func(tx database.Store) error {
		if err := ensureGradeNameFree(ctx, tx, in.Name, ""); err != nil {
			return err
		}
		if err := tx.CreateGrade(ctx, grade); err != nil {
			if database.IsDuplicate(err) {
				return &Error{Kind: KindConflict, Field: "name"}
			}
			return upstream("create grade", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"grade_id": grade.ID, "name": grade.Name}).Info("grade created")
	return grade, nil
}

func ensureGradeNameFree(ctx context.Context, st database.GradeStore, name, selfID string) error {
	existing, err := st.FindGradeByName(ctx, name)
	if err == nil && existing.ID != selfID {
		return &Error{Kind: KindConflict, Field: "name"}
	}
	if err != nil && !database.IsNotFound(err) {
		return upstream("find grade by name", err)
	}
	return nil
}

func (s *GradeService) List(ctx context.Context) ([]models.Grade, error) {
	grades, err := s.store.ListGrades(ctx)
	if err != nil {
		return nil, upstream("list grades", err)
	}
	return grades, nil
}

func (s *GradeService) Get(ctx context.Context, id string) (*models.Grade, error) {
	g, err := s.store.FindGrade(ctx, id)
	if err != nil {
		return nil, notFound("find grade", err)
	}
	return g, nil
}

func (s *GradeService) Rename(ctx context.Context, id string, in GradeInput) (*models.Grade, error) {
	if err := validateInput(&in); err != nil {
		return nil, err
	}
	var grade *models.Grade
	err := atomically(ctx, s.store, func(tx database.Store) error {
		g, err := tx.FindGrade(ctx, id)
		if err != nil {
			return notFound("find grade", err)
		}
		if err := ensureGradeNameFree(ctx, tx, in.Name, g.ID); err != nil {
			return err
		}
		g.Name = in.Name
		if err := tx.SaveGrade(ctx, g); err != nil {
			if database.IsDuplicate(err) {
				return &Error{Kind: KindConflict, Field: "name"}
			}
			return upstream("save grade", err)
		}
		grade = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	return grade, nil
}

// Delete removes a grade nobody references. Students are checked before groups;
// programs pointing at the grade are detached in the same transaction.
func (s *GradeService) Delete(ctx context.Context, id string) error {
	err := atomically(ctx, s.store, func(tx database.Store) error {
		if _, err := tx.FindGrade(ctx, id); err != nil {
			return notFound("find grade", err)
		}
		students, err := tx.CountStudentsInGrade(ctx, id)
		if err != nil {
			return upstream("count students in grade", err)
		}
		if students > 0 {
			return &Error{Kind: KindGradeInUse, Field: id}
		}
		groups, err := tx.CountGroupsInGrade(ctx, id)
		if err != nil {
			return upstream("count groups in grade", err)
		}
		if groups > 0 {
			return &Error{Kind: KindGradeHasGroups, Field: id}
		}
		if err := tx.DetachProgramsFromGrade(ctx, id); err != nil {
			return upstream("detach programs", err)
		}
		if err := tx.DeleteGrade(ctx, id); err != nil {
			return upstream("delete grade", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.WithField("grade_id", id).Info("grade deleted")
	return nil
}
