package controllers

import (
	"strings"

	"academy_go/database"
	"academy_go/models"
	"academy_go/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type NewsletterController struct {
	db *gorm.DB
}

func NewNewsletterController(db *gorm.DB) *NewsletterController {
	return &NewsletterController{db: db}
}

type subscribeRequest struct {
	Email string `json:"email" validate:"required"`
}

func (nc *NewsletterController) Subscribe(c *fiber.Ctx) error {
	var req subscribeRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	if err := validateRequest(&req); err != nil {
		return respondError(c, err)
	}
	email := strings.ToLower(req.Email)
	if err := requireEmail(email); err != nil {
		return respondError(c, err)
	}
	sub := models.NewsletterSubscriber{Email: email}
	if err := nc.db.WithContext(c.UserContext()).Create(&sub).Error; err != nil {
		if database.IsDuplicate(err) {
			return respondError(c, &services.Error{Kind: services.KindConflict, Field: email, Err: err})
		}
		return respondError(c, dbError("create subscriber", err))
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "Subscribed successfully",
		"subscriber": sub,
	})
}

func (nc *NewsletterController) GetSubscribers(c *fiber.Ctx) error {
	var subs []models.NewsletterSubscriber
	if err := nc.db.WithContext(c.UserContext()).Order("created_at DESC").Find(&subs).Error; err != nil {
		return respondError(c, dbError("list subscribers", err))
	}
	return c.JSON(fiber.Map{"subscribers": subs, "total": len(subs)})
}

func (nc *NewsletterController) DeleteSubscriber(c *fiber.Ctx) error {
	res := nc.db.WithContext(c.UserContext()).Delete(&models.NewsletterSubscriber{}, "id = ?", c.Params("id"))
	if res.Error != nil {
		return respondError(c, dbError("delete subscriber", res.Error))
	}
	if res.RowsAffected == 0 {
		return respondError(c, services.ErrNotFound)
	}
	return c.JSON(fiber.Map{"message": "Subscriber removed"})
}
