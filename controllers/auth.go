package controllers

import (
	"academy_go/middleware"
	"academy_go/services"

	"github.com/gofiber/fiber/v2"
)

type AuthController struct {
	sessions *services.SessionService
}

func NewAuthController(sessions *services.SessionService) *AuthController {
	return &AuthController{sessions: sessions}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AdminLogin authenticates a superadmin or admin
func (ac *AuthController) AdminLogin(c *fiber.Ctx) error {
	return ac.login(c, services.NamespaceAdmin)
}

// TeacherLogin authenticates a teacher
func (ac *AuthController) TeacherLogin(c *fiber.Ctx) error {
	return ac.login(c, services.NamespaceTeacher)
}

func (ac *AuthController) login(c *fiber.Ctx, ns services.Namespace) error {
	var req LoginRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	session, err := ac.sessions.Issue(c.UserContext(), services.Credentials{
		Email:     req.Email,
		Password:  req.Password,
		Namespace: ns,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message":    "Login successful",
		"token":      session.Token,
		"expires_at": session.ExpiresAt,
		"principal":  session.Principal,
	})
}

// Logout revokes the presented token until it expires
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	if err := ac.sessions.Revoke(c.UserContext(), middleware.BearerToken(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

// GetProfile returns the record behind the current session
func (ac *AuthController) GetProfile(c *fiber.Ctx) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return respondError(c, err)
	}
	profile, err := ac.sessions.Profile(c.UserContext(), p)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"principal": p,
		"profile":   profile,
	})
}
