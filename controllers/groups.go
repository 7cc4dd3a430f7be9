package controllers

import (
	"academy_go/database"
	"academy_go/services"

	"github.com/gofiber/fiber/v2"
)

type GroupController struct {
	groups *services.GroupService
}

func NewGroupController(groups *services.GroupService) *GroupController {
	return &GroupController{groups: groups}
}

// CreateGroup creates a new class group
func (gc *GroupController) CreateGroup(c *fiber.Ctx) error {
	var req services.GroupInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	group, err := gc.groups.Create(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Group created successfully",
		"group":   group,
	})
}

// GetGroups lists groups with optional grade_id, teacher_id and subject filters
func (gc *GroupController) GetGroups(c *fiber.Ctx) error {
	filter := database.GroupFilter{
		GradeID:   c.Query("grade_id"),
		TeacherID: c.Query("teacher_id"),
		Subject:   c.Query("subject"),
	}
	if canonical, ok := services.CanonicalSubject(filter.Subject); ok {
		filter.Subject = canonical
	}
	groups, err := gc.groups.List(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"groups": groups, "total": len(groups)})
}

func (gc *GroupController) GetGroup(c *fiber.Ctx) error {
	group, err := gc.groups.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"group": group})
}

// GetMyGroups lists the groups led by the authenticated teacher
func (gc *GroupController) GetMyGroups(c *fiber.Ctx) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return respondError(c, err)
	}
	groups, err := gc.groups.ListForTeacher(c.UserContext(), p.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"groups": groups, "total": len(groups)})
}

func (gc *GroupController) UpdateGroup(c *fiber.Ctx) error {
	var req services.GroupRename
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	group, err := gc.groups.Rename(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Group updated successfully",
		"group":   group,
	})
}

// UpdateSchedule replaces day, starting_time and ending_time together
func (gc *GroupController) UpdateSchedule(c *fiber.Ctx) error {
	var req services.Schedule
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	group, err := gc.groups.UpdateSchedule(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Schedule updated successfully",
		"group":   group,
	})
}

func (gc *GroupController) DeleteGroup(c *fiber.Ctx) error {
	if err := gc.groups.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Group deleted successfully"})
}
