package controllers

import (
	"academy_go/services"

	"github.com/gofiber/fiber/v2"
)

type TeacherController struct {
	teachers *services.TeacherService
}

func NewTeacherController(teachers *services.TeacherService) *TeacherController {
	return &TeacherController{teachers: teachers}
}

func (tc *TeacherController) CreateTeacher(c *fiber.Ctx) error {
	var req services.TeacherInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	teacher, err := tc.teachers.Create(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Teacher created successfully",
		"teacher": teacher,
	})
}

// GetTeachers is public; password digests never leave the model
func (tc *TeacherController) GetTeachers(c *fiber.Ctx) error {
	teachers, err := tc.teachers.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"teachers": teachers, "total": len(teachers)})
}

func (tc *TeacherController) GetTeacher(c *fiber.Ctx) error {
	teacher, err := tc.teachers.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"teacher": teacher})
}

func (tc *TeacherController) UpdateTeacher(c *fiber.Ctx) error {
	var req services.TeacherUpdate
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	teacher, err := tc.teachers.Update(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Teacher updated successfully",
		"teacher": teacher,
	})
}

func (tc *TeacherController) DeleteTeacher(c *fiber.Ctx) error {
	if err := tc.teachers.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Teacher deleted successfully"})
}

// Self-service endpoints for the authenticated teacher

func (tc *TeacherController) GetMe(c *fiber.Ctx) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return respondError(c, err)
	}
	teacher, err := tc.teachers.Get(c.UserContext(), p.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"teacher": teacher})
}

func (tc *TeacherController) UpdateMe(c *fiber.Ctx) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return respondError(c, err)
	}
	var req services.TeacherUpdate
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	teacher, err := tc.teachers.UpdateSelf(c.UserContext(), p.ID, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Profile updated successfully",
		"teacher": teacher,
	})
}

// UploadPhoto replaces the profile photo from the multipart field "photo"
func (tc *TeacherController) UploadPhoto(c *fiber.Ctx) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return respondError(c, err)
	}
	file, err := readUpload(c, "photo")
	if err != nil {
		return respondError(c, err)
	}
	teacher, err := tc.teachers.ReplacePhoto(c.UserContext(), p.ID, file)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Photo updated successfully",
		"teacher": teacher,
	})
}

// AddGalleryImage appends the multipart field "image" to the teacher's gallery
func (tc *TeacherController) AddGalleryImage(c *fiber.Ctx) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return respondError(c, err)
	}
	file, err := readUpload(c, "image")
	if err != nil {
		return respondError(c, err)
	}
	img, err := tc.teachers.AddGalleryImage(c.UserContext(), p.ID, file)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Image added successfully",
		"image":   img,
	})
}

func (tc *TeacherController) RemoveGalleryImage(c *fiber.Ctx) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := tc.teachers.RemoveGalleryImage(c.UserContext(), p.ID, c.Params("imageId")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Image removed successfully"})
}
