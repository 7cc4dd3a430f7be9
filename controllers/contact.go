package controllers

import (
	"fmt"
	"time"

	"academy_go/models"
	"academy_go/services"
	"academy_go/services/mail"
	"academy_go/services/websocket"
	"academy_go/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// ContactController relays the public contact form to the office inbox
// and to connected administrators.
type ContactController struct {
	mailer   mail.Mailer
	notifier services.Notifier
	inbox    string
}

func NewContactController(mailer mail.Mailer, notifier services.Notifier, inbox string) *ContactController {
	return &ContactController{mailer: mailer, notifier: notifier, inbox: inbox}
}

type contactRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required"`
	Phone   string `json:"phone"`
	Message string `json:"message" validate:"required"`
}

func (cc *ContactController) Submit(c *fiber.Ctx) error {
	var req contactRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	if err := validateRequest(&req); err != nil {
		return respondError(c, err)
	}
	if err := requireEmail(req.Email); err != nil {
		return respondError(c, err)
	}
	req.Message = utils.SanitizeString(req.Message)

	if cc.inbox != "" {
		msg := mail.Message{
			To:          []string{cc.inbox},
			Subject:     "New contact message from " + req.Name,
			TextContent: fmt.Sprintf("From: %s <%s>\nPhone: %s\n\n%s", req.Name, req.Email, req.Phone, req.Message),
			ReplyTo:     req.Email,
		}
		if err := cc.mailer.Send(c.UserContext(), msg); err != nil {
			logrus.WithError(err).Error("failed to relay contact message")
			return respondError(c, &services.Error{Kind: services.KindUpstreamFailure, Err: err})
		}
	}

	if cc.notifier != nil {
		cc.notifier.BroadcastToRoles(websocket.EventContactReceived, fiber.Map{
			"name":        req.Name,
			"email":       req.Email,
			"received_at": time.Now().UTC(),
		}, models.RoleSuperadmin, models.RoleAdmin)
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message": "Thank you, we will get back to you soon",
	})
}
