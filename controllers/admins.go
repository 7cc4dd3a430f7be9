package controllers

import (
	"academy_go/services"

	"github.com/gofiber/fiber/v2"
)

type AdminController struct {
	admins *services.AdminService
}

func NewAdminController(admins *services.AdminService) *AdminController {
	return &AdminController{admins: admins}
}

// CreateAdmin provisions an admin account (superadmin only)
func (ac *AdminController) CreateAdmin(c *fiber.Ctx) error {
	var req services.AdminInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	user, err := ac.admins.Create(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Admin created successfully",
		"admin":   user,
	})
}

func (ac *AdminController) GetAdmins(c *fiber.Ctx) error {
	users, err := ac.admins.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"admins": users, "total": len(users)})
}

func (ac *AdminController) DeleteAdmin(c *fiber.Ctx) error {
	if err := ac.admins.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Admin deleted successfully"})
}
