package controllers

import (
	"academy_go/database"
	"academy_go/services"

	"github.com/gofiber/fiber/v2"
)

type StudentController struct {
	students *services.StudentService
}

func NewStudentController(students *services.StudentService) *StudentController {
	return &StudentController{students: students}
}

// CreateStudent enrolls a new student into one or more groups
func (sc *StudentController) CreateStudent(c *fiber.Ctx) error {
	var req services.StudentInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	student, err := sc.students.Create(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Student created successfully",
		"student": student,
	})
}

// GetStudents lists students with optional grade_id and group_id filters
func (sc *StudentController) GetStudents(c *fiber.Ctx) error {
	students, err := sc.students.List(c.UserContext(), database.StudentFilter{
		GradeID: c.Query("grade_id"),
		GroupID: c.Query("group_id"),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"students": students, "total": len(students)})
}

func (sc *StudentController) GetStudent(c *fiber.Ctx) error {
	student, err := sc.students.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"student": student})
}

func (sc *StudentController) UpdateStudent(c *fiber.Ctx) error {
	var req services.StudentUpdate
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	student, err := sc.students.Update(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Student updated successfully",
		"student": student,
	})
}

// AddGroup enrolls an existing student into another group
func (sc *StudentController) AddGroup(c *fiber.Ctx) error {
	var req services.EnrollmentInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	student, err := sc.students.AddGroup(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Group added successfully",
		"student": student,
	})
}

func (sc *StudentController) RemoveGroup(c *fiber.Ctx) error {
	student, err := sc.students.RemoveGroup(c.UserContext(), c.Params("id"), c.Params("groupId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Group removed successfully",
		"student": student,
	})
}

func (sc *StudentController) DeleteStudent(c *fiber.Ctx) error {
	if err := sc.students.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Student deleted successfully"})
}
