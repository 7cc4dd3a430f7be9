package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns an opaque identifier when none was set.
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// Principal roles
const (
	RoleSuperadmin = "superadmin"
	RoleAdmin      = "admin"
	RoleTeacher    = "teacher"
)

// Registration statuses
const (
	RegistrationPending  = "pending"
	RegistrationAccepted = "accepted"
	RegistrationRejected = "rejected"
)

// StringList is a JSON encoded list column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("unsupported type for StringList")
	}
	if len(raw) == 0 {
		*l = nil
		return nil
	}
	return json.Unmarshal(raw, (*[]string)(l))
}

// Contains reports whether s is in the list.
func (l StringList) Contains(s string) bool {
	for _, v := range l {
		if v == s {
			return true
		}
	}
	return false
}

// User is an administrative principal (superadmin or admin)
type User struct {
	BaseModel
	FullName string `json:"full_name" gorm:"size:200"`
	Email    string `json:"email" gorm:"size:255;not null;uniqueIndex"`
	Password string `json:"-" gorm:"size:255;not null"`
	Role     string `json:"role" gorm:"size:20;not null;default:'admin'"`
}

// Grade model
type Grade struct {
	BaseModel
	Name string `json:"name" gorm:"size:100;not null;uniqueIndex"`
}

// Teacher model. Teachers authenticate in their own namespace.
type Teacher struct {
	BaseModel
	FullName       string     `json:"full_name" gorm:"size:200;not null"`
	Email          string     `json:"email" gorm:"size:255;not null;uniqueIndex"`
	Password       string     `json:"-" gorm:"size:255;not null"`
	SubjectsTaught StringList `json:"subjects_taught" gorm:"type:text"`
	PhotoURL       string     `json:"photo_url,omitempty" gorm:"size:500"`
	PhotoKey       string     `json:"-" gorm:"size:500"`

	// Relationships
	Images []TeacherImage `json:"gallery_images,omitempty" gorm:"foreignKey:TeacherID"`
}

// TeacherImage is one entry of a teacher's ordered gallery
type TeacherImage struct {
	BaseModel
	TeacherID string `json:"teacher_id" gorm:"size:36;not null;index"`
	URL       string `json:"url" gorm:"size:500;not null"`
	ObjectKey string `json:"external_id" gorm:"size:500;not null"`
	Position  int    `json:"position"`
}

// Group is a class section led by one teacher for one subject
type Group struct {
	BaseModel
	Name         string  `json:"name" gorm:"size:150;not null"`
	TeacherID    string  `json:"teacher_id" gorm:"size:36;not null;index"`
	Subject      string  `json:"subject" gorm:"size:50;not null"`
	GradeID      *string `json:"grade_id" gorm:"size:36;index"`
	Day          string  `json:"day" gorm:"size:20;not null"`
	StartingTime string  `json:"starting_time" gorm:"size:10;not null"`
	EndingTime   string  `json:"ending_time" gorm:"size:10;not null"`

	// Relationships
	Teacher *Teacher `json:"teacher,omitempty" gorm:"foreignKey:TeacherID"`
	Grade   *Grade   `json:"grade,omitempty" gorm:"foreignKey:GradeID"`
}

// Student model. The student owns its group set.
type Student struct {
	BaseModel
	FirstName   string `json:"first_name" gorm:"size:100;not null"`
	LastName    string `json:"last_name" gorm:"size:100;not null"`
	ParentName  string `json:"parent_name" gorm:"size:200;not null"`
	ParentEmail string `json:"parent_email" gorm:"size:255;not null"`
	ParentPhone string `json:"parent_phone" gorm:"size:30"`
	GradeID     string `json:"grade_id" gorm:"size:36;not null;index"`

	// Relationships
	Grade  *Grade  `json:"grade,omitempty" gorm:"foreignKey:GradeID"`
	Groups []Group `json:"groups" gorm:"many2many:student_groups"`
}

// HasGroup reports whether the student is enrolled in groupID.
func (s *Student) HasGroup(groupID string) bool {
	for _, g := range s.Groups {
		if g.ID == groupID {
			return true
		}
	}
	return false
}

// StudentGroup is the join row behind Student.Groups
type StudentGroup struct {
	StudentID string    `gorm:"primaryKey;size:36"`
	GroupID   string    `gorm:"primaryKey;size:36;index"`
	CreatedAt time.Time `json:"created_at"`
}

// Registration is a public enrollment request awaiting admin review
type Registration struct {
	BaseModel
	StudentFirstName string `json:"student_first_name" gorm:"size:100;not null"`
	StudentLastName  string `json:"student_last_name" gorm:"size:100;not null"`
	StudentGrade     string `json:"student_grade" gorm:"size:100;not null"`
	ParentName       string `json:"parent_name" gorm:"size:200;not null"`
	ParentEmail      string `json:"parent_email" gorm:"size:255;not null"`
	ParentPhone      string `json:"parent_phone" gorm:"size:30"`
	GroupID          string `json:"group_id" gorm:"size:36;not null;index"`
	Status           string `json:"status" gorm:"size:20;not null;default:'pending';index"`
}

// Program describes an offered study program
type Program struct {
	BaseModel
	Title       string  `json:"title" gorm:"size:200;not null"`
	Description string  `json:"description" gorm:"type:text"`
	GradeID     *string `json:"grade_id" gorm:"size:36;index"`
	ImageURL    string  `json:"image_url,omitempty" gorm:"size:500"`
	ImageKey    string  `json:"-" gorm:"size:500"`
}

// Testimonial submitted by the public, shown once approved
type Testimonial struct {
	BaseModel
	AuthorName string `json:"author_name" gorm:"size:200;not null"`
	AuthorRole string `json:"author_role" gorm:"size:100"`
	Content    string `json:"content" gorm:"type:text;not null"`
	Approved   bool   `json:"approved" gorm:"default:false;index"`
}

// GalleryImage for the public gallery
type GalleryImage struct {
	BaseModel
	Caption   string `json:"caption" gorm:"size:255"`
	URL       string `json:"url" gorm:"size:500;not null"`
	ObjectKey string `json:"-" gorm:"size:500;not null"`
}

// Announcement model
type Announcement struct {
	BaseModel
	Title     string `json:"title" gorm:"size:255;not null"`
	Body      string `json:"body" gorm:"type:text;not null"`
	Published bool   `json:"published" gorm:"not null;index"`
}

// NewsletterSubscriber model
type NewsletterSubscriber struct {
	BaseModel
	Email string `json:"email" gorm:"size:255;not null;uniqueIndex"`
}
