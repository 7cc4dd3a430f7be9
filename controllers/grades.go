package controllers

import (
	"academy_go/services"

	"github.com/gofiber/fiber/v2"
)

type GradeController struct {
	grades *services.GradeService
}

func NewGradeController(grades *services.GradeService) *GradeController {
	return &GradeController{grades: grades}
}

func (gc *GradeController) CreateGrade(c *fiber.Ctx) error {
	var req services.GradeInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	grade, err := gc.grades.Create(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Grade created successfully",
		"grade":   grade,
	})
}

func (gc *GradeController) GetGrades(c *fiber.Ctx) error {
	grades, err := gc.grades.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"grades": grades, "total": len(grades)})
}

func (gc *GradeController) GetGrade(c *fiber.Ctx) error {
	grade, err := gc.grades.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"grade": grade})
}

func (gc *GradeController) UpdateGrade(c *fiber.Ctx) error {
	var req services.GradeInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	grade, err := gc.grades.Rename(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Grade updated successfully",
		"grade":   grade,
	})
}

// DeleteGrade refuses while students or groups still reference the grade
func (gc *GradeController) DeleteGrade(c *fiber.Ctx) error {
	if err := gc.grades.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Grade deleted successfully"})
}
