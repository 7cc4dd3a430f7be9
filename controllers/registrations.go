package controllers

import (
	"fmt"
	"time"

	"academy_go/services"

	"github.com/gofiber/fiber/v2"
)

type RegistrationController struct {
	registrations *services.RegistrationService
}

func NewRegistrationController(registrations *services.RegistrationService) *RegistrationController {
	return &RegistrationController{registrations: registrations}
}

// CreateRegistration accepts a public enrollment request
func (rc *RegistrationController) CreateRegistration(c *fiber.Ctx) error {
	var req services.RegistrationInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	reg, err := rc.registrations.Create(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":      "Registration submitted successfully",
		"registration": reg,
	})
}

// GetRegistrations lists registrations, optionally filtered by ?status=
func (rc *RegistrationController) GetRegistrations(c *fiber.Ctx) error {
	regs, err := rc.registrations.List(c.UserContext(), c.Query("status"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"registrations": regs, "total": len(regs)})
}

func (rc *RegistrationController) GetRegistration(c *fiber.Ctx) error {
	reg, err := rc.registrations.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"registration": reg})
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (rc *RegistrationController) UpdateStatus(c *fiber.Ctx) error {
	var req updateStatusRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	reg, err := rc.registrations.UpdateStatus(c.UserContext(), c.Params("id"), req.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message":      "Registration status updated successfully",
		"registration": reg,
	})
}

func (rc *RegistrationController) DeleteRegistration(c *fiber.Ctx) error {
	if err := rc.registrations.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Registration deleted successfully"})
}

// ExportRegistrations downloads registrations as an xlsx workbook
func (rc *RegistrationController) ExportRegistrations(c *fiber.Ctx) error {
	buf, err := rc.registrations.Export(c.UserContext(), c.Query("status"))
	if err != nil {
		return respondError(c, err)
	}
	filename := fmt.Sprintf("registrations-%s.xlsx", time.Now().Format("20060102"))
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(buf.Bytes())
}
