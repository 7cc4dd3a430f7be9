package database

import (
	"context"
	"time"

	"academy_go/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Registry is the gorm backed Store.
type Registry struct {
	db *gorm.DB
}

var _ Store = (*Registry)(nil)

// NewRegistry wraps an open gorm connection.
func NewRegistry(db *gorm.DB) *Registry {
	return &Registry{db: db}
}

func (r *Registry) conn(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

// Atomic runs fn inside a single database transaction.
func (r *Registry) Atomic(ctx context.Context, fn func(tx Store) error) error {
	return r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Registry{db: tx})
	})
}

// Grades

func (r *Registry) CreateGrade(ctx context.Context, g *models.Grade) error {
	return r.conn(ctx).Create(g).Error
}

func (r *Registry) FindGrade(ctx context.Context, id string) (*models.Grade, error) {
	var g models.Grade
	if err := r.conn(ctx).First(&g, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *Registry) FindGradeByName(ctx context.Context, name string) (*models.Grade, error) {
	var g models.Grade
	if err := r.conn(ctx).Where("name = ?", name).First(&g).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *Registry) ListGrades(ctx context.Context) ([]models.Grade, error) {
	var grades []models.Grade
	err := r.conn(ctx).Order("name").Find(&grades).Error
	return grades, err
}

func (r *Registry) SaveGrade(ctx context.Context, g *models.Grade) error {
	return r.conn(ctx).Save(g).Error
}

func (r *Registry) DeleteGrade(ctx context.Context, id string) error {
	return r.conn(ctx).Delete(&models.Grade{}, "id = ?", id).Error
}

func (r *Registry) CountStudentsInGrade(ctx context.Context, gradeID string) (int64, error) {
	var n int64
	err := r.conn(ctx).Model(&models.Student{}).Where("grade_id = ?", gradeID).Count(&n).Error
	return n, err
}

func (r *Registry) CountGroupsInGrade(ctx context.Context, gradeID string) (int64, error) {
	var n int64
	err := r.conn(ctx).Model(&models.Group{}).Where("grade_id = ?", gradeID).Count(&n).Error
	return n, err
}

func (r *Registry) DetachProgramsFromGrade(ctx context.Context, gradeID string) error {
	return r.conn(ctx).Model(&models.Program{}).Where("grade_id = ?", gradeID).Update("grade_id", nil).Error
}

// Teachers

func (r *Registry) CreateTeacher(ctx context.Context, t *models.Teacher) error {
	return r.conn(ctx).Omit(clause.Associations).Create(t).Error
}

func (r *Registry) FindTeacher(ctx context.Context, id string) (*models.Teacher, error) {
	var t models.Teacher
	err := r.conn(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		First(&t, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *Registry) FindTeacherByEmail(ctx context.Context, email string) (*models.Teacher, error) {
	var t models.Teacher
	if err := r.conn(ctx).Where("email = ?", email).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *Registry) ListTeachers(ctx context.Context) ([]models.Teacher, error) {
	var teachers []models.Teacher
	err := r.conn(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Order("full_name").Find(&teachers).Error
	return teachers, err
}

func (r *Registry) SaveTeacher(ctx context.Context, t *models.Teacher) error {
	return r.conn(ctx).Omit(clause.Associations).Save(t).Error
}

func (r *Registry) DeleteTeacher(ctx context.Context, id string) error {
	return r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("teacher_id = ?", id).Delete(&models.TeacherImage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Teacher{}, "id = ?", id).Error
	})
}

func (r *Registry) CountGroupsForTeacher(ctx context.Context, teacherID string) (int64, error) {
	var n int64
	err := r.conn(ctx).Model(&models.Group{}).Where("teacher_id = ?", teacherID).Count(&n).Error
	return n, err
}

func (r *Registry) AddTeacherImage(ctx context.Context, img *models.TeacherImage) error {
	return r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var last struct{ Max *int }
		if err := tx.Model(&models.TeacherImage{}).Select("MAX(position) AS max").
			Where("teacher_id = ?", img.TeacherID).Scan(&last).Error; err != nil {
			return err
		}
		img.Position = 0
		if last.Max != nil {
			img.Position = *last.Max + 1
		}
		return tx.Create(img).Error
	})
}

func (r *Registry) FindTeacherImage(ctx context.Context, teacherID, imageID string) (*models.TeacherImage, error) {
	var img models.TeacherImage
	if err := r.conn(ctx).Where("id = ? AND teacher_id = ?", imageID, teacherID).First(&img).Error; err != nil {
		return nil, err
	}
	return &img, nil
}

func (r *Registry) DeleteTeacherImage(ctx context.Context, imageID string) error {
	return r.conn(ctx).Delete(&models.TeacherImage{}, "id = ?", imageID).Error
}

// Groups

func (r *Registry) CreateGroup(ctx context.Context, g *models.Group) error {
	return r.conn(ctx).Omit(clause.Associations).Create(g).Error
}

func (r *Registry) FindGroup(ctx context.Context, id string) (*models.Group, error) {
	var g models.Group
	if err := r.conn(ctx).First(&g, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *Registry) ListGroups(ctx context.Context, f GroupFilter) ([]models.Group, error) {
	query := r.conn(ctx).Model(&models.Group{}).Preload("Teacher").Preload("Grade")
	if f.GradeID != "" {
		query = query.Where("grade_id = ?", f.GradeID)
	}
	if f.TeacherID != "" {
		query = query.Where("teacher_id = ?", f.TeacherID)
	}
	if f.Subject != "" {
		query = query.Where("subject = ?", f.Subject)
	}
	var groups []models.Group
	err := query.Order("name").Find(&groups).Error
	return groups, err
}

func (r *Registry) SaveGroup(ctx context.Context, g *models.Group) error {
	return r.conn(ctx).Omit(clause.Associations).Save(g).Error
}

// DeleteGroup removes the group and every enrollment row pointing at it.
func (r *Registry) DeleteGroup(ctx context.Context, id string) error {
	return r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", id).Delete(&models.StudentGroup{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Group{}, "id = ?", id).Error
	})
}

// Students

func (r *Registry) CreateStudent(ctx context.Context, s *models.Student, groupIDs []string) error {
	return r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(s).Error; err != nil {
			return err
		}
		for _, gid := range groupIDs {
			row := models.StudentGroup{StudentID: s.ID, GroupID: gid, CreatedAt: time.Now()}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Registry) FindStudent(ctx context.Context, id string) (*models.Student, error) {
	var s models.Student
	if err := r.conn(ctx).Preload("Groups").Preload("Grade").First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Registry) ListStudents(ctx context.Context, f StudentFilter) ([]models.Student, error) {
	query := r.conn(ctx).Model(&models.Student{}).Preload("Groups").Preload("Grade")
	if f.GradeID != "" {
		query = query.Where("grade_id = ?", f.GradeID)
	}
	if f.GroupID != "" {
		query = query.Where("id IN (?)", r.conn(ctx).Model(&models.StudentGroup{}).
			Select("student_id").Where("group_id = ?", f.GroupID))
	}
	var students []models.Student
	err := query.Order("last_name, first_name").Find(&students).Error
	return students, err
}

func (r *Registry) SaveStudent(ctx context.Context, s *models.Student) error {
	return r.conn(ctx).Omit(clause.Associations).Save(s).Error
}

func (r *Registry) DeleteStudent(ctx context.Context, id string) error {
	return r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("student_id = ?", id).Delete(&models.StudentGroup{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Student{}, "id = ?", id).Error
	})
}

// AddEnrollment inserts the join row. The composite primary key rejects a duplicate.
func (r *Registry) AddEnrollment(ctx context.Context, studentID, groupID string) error {
	row := models.StudentGroup{StudentID: studentID, GroupID: groupID, CreatedAt: time.Now()}
	return r.conn(ctx).Create(&row).Error
}

func (r *Registry) RemoveEnrollment(ctx context.Context, studentID, groupID string) (bool, error) {
	res := r.conn(ctx).Where("student_id = ? AND group_id = ?", studentID, groupID).Delete(&models.StudentGroup{})
	return res.RowsAffected > 0, res.Error
}

// Registrations

func (r *Registry) CreateRegistration(ctx context.Context, reg *models.Registration) error {
	return r.conn(ctx).Create(reg).Error
}

func (r *Registry) FindRegistration(ctx context.Context, id string) (*models.Registration, error) {
	var reg models.Registration
	if err := r.conn(ctx).First(&reg, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *Registry) ListRegistrations(ctx context.Context, status string) ([]models.Registration, error) {
	query := r.conn(ctx).Model(&models.Registration{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var regs []models.Registration
	err := query.Order("created_at DESC").Find(&regs).Error
	return regs, err
}

func (r *Registry) UpdateRegistrationStatus(ctx context.Context, id, status string) error {
	res := r.conn(ctx).Model(&models.Registration{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *Registry) DeleteRegistration(ctx context.Context, id string) error {
	res := r.conn(ctx).Delete(&models.Registration{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *Registry) CountRegistrations(ctx context.Context, status string) (int64, error) {
	var n int64
	query := r.conn(ctx).Model(&models.Registration{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Count(&n).Error
	return n, err
}

// Users

func (r *Registry) CreateUser(ctx context.Context, u *models.User) error {
	return r.conn(ctx).Create(u).Error
}

func (r *Registry) FindUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := r.conn(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Registry) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.conn(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Registry) ListUsers(ctx context.Context, role string) ([]models.User, error) {
	query := r.conn(ctx).Model(&models.User{})
	if role != "" {
		query = query.Where("role = ?", role)
	}
	var users []models.User
	err := query.Order("email").Find(&users).Error
	return users, err
}

func (r *Registry) DeleteUser(ctx context.Context, id string) error {
	return r.conn(ctx).Delete(&models.User{}, "id = ?", id).Error
}
