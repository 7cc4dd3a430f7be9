package controllers

import (
	"academy_go/models"
	"academy_go/services"
	"academy_go/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type ProgramController struct {
	db      *gorm.DB
	objects storage.ObjectStore
	rules   services.UploadRules
}

func NewProgramController(db *gorm.DB, objects storage.ObjectStore, rules services.UploadRules) *ProgramController {
	return &ProgramController{db: db, objects: objects, rules: rules}
}

type programRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	GradeID     string `json:"grade_id"`
}

func (pc *ProgramController) gradeRef(c *fiber.Ctx, gradeID string) (*string, error) {
	if gradeID == "" {
		return nil, nil
	}
	var grade models.Grade
	if err := pc.db.WithContext(c.UserContext()).First(&grade, "id = ?", gradeID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &services.Error{Kind: services.KindUnknownGrade, Field: gradeID}
		}
		return nil, dbError("find grade", err)
	}
	return &grade.ID, nil
}

func (pc *ProgramController) CreateProgram(c *fiber.Ctx) error {
	var req programRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	if err := validateRequest(&req); err != nil {
		return respondError(c, err)
	}
	gradeID, err := pc.gradeRef(c, req.GradeID)
	if err != nil {
		return respondError(c, err)
	}
	program := models.Program{Title: req.Title, Description: req.Description, GradeID: gradeID}
	if err := pc.db.WithContext(c.UserContext()).Create(&program).Error; err != nil {
		return respondError(c, dbError("create program", err))
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Program created successfully",
		"program": program,
	})
}

// GetPrograms is public; ?grade_id= narrows the list
func (pc *ProgramController) GetPrograms(c *fiber.Ctx) error {
	query := pc.db.WithContext(c.UserContext()).Model(&models.Program{})
	if gradeID := c.Query("grade_id"); gradeID != "" {
		query = query.Where("grade_id = ?", gradeID)
	}
	var programs []models.Program
	if err := query.Order("title").Find(&programs).Error; err != nil {
		return respondError(c, dbError("list programs", err))
	}
	return c.JSON(fiber.Map{"programs": programs, "total": len(programs)})
}

func (pc *ProgramController) GetProgram(c *fiber.Ctx) error {
	var program models.Program
	if err := pc.db.WithContext(c.UserContext()).First(&program, "id = ?", c.Params("id")).Error; err != nil {
		return respondError(c, dbError("find program", err))
	}
	return c.JSON(fiber.Map{"program": program})
}

func (pc *ProgramController) UpdateProgram(c *fiber.Ctx) error {
	var req programRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	if err := validateRequest(&req); err != nil {
		return respondError(c, err)
	}
	var program models.Program
	if err := pc.db.WithContext(c.UserContext()).First(&program, "id = ?", c.Params("id")).Error; err != nil {
		return respondError(c, dbError("find program", err))
	}
	gradeID, err := pc.gradeRef(c, req.GradeID)
	if err != nil {
		return respondError(c, err)
	}
	program.Title = req.Title
	program.Description = req.Description
	program.GradeID = gradeID
	if err := pc.db.WithContext(c.UserContext()).Save(&program).Error; err != nil {
		return respondError(c, dbError("save program", err))
	}
	return c.JSON(fiber.Map{
		"message": "Program updated successfully",
		"program": program,
	})
}

// UploadImage replaces the program image from the multipart field "image"
func (pc *ProgramController) UploadImage(c *fiber.Ctx) error {
	var program models.Program
	if err := pc.db.WithContext(c.UserContext()).First(&program, "id = ?", c.Params("id")).Error; err != nil {
		return respondError(c, dbError("find program", err))
	}
	file, err := readUpload(c, "image")
	if err != nil {
		return respondError(c, err)
	}
	if err := pc.rules.Check(file); err != nil {
		return respondError(c, err)
	}
	obj, err := pc.objects.Upload(c.UserContext(), file.Data, "programs", file.Filename)
	if err != nil {
		logrus.WithError(err).Error("program image upload failed")
		return respondError(c, &services.Error{Kind: services.KindUpstreamFailure, Err: err})
	}
	oldKey := program.ImageKey
	program.ImageURL, program.ImageKey = obj.URL, obj.Key
	if err := pc.db.WithContext(c.UserContext()).Save(&program).Error; err != nil {
		pc.discard(c, obj.Key)
		return respondError(c, dbError("save program", err))
	}
	pc.discard(c, oldKey)
	return c.JSON(fiber.Map{
		"message": "Image uploaded successfully",
		"program": program,
	})
}

func (pc *ProgramController) DeleteProgram(c *fiber.Ctx) error {
	var program models.Program
	if err := pc.db.WithContext(c.UserContext()).First(&program, "id = ?", c.Params("id")).Error; err != nil {
		return respondError(c, dbError("find program", err))
	}
	if err := pc.db.WithContext(c.UserContext()).Delete(&program).Error; err != nil {
		return respondError(c, dbError("delete program", err))
	}
	pc.discard(c, program.ImageKey)
	return c.JSON(fiber.Map{"message": "Program deleted successfully"})
}

func (pc *ProgramController) discard(c *fiber.Ctx, key string) {
	if key == "" {
		return
	}
	if err := pc.objects.Delete(c.UserContext(), key); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("failed to delete stored object")
	}
}
