package controllers

import (
	"academy_go/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AnnouncementController struct {
	db *gorm.DB
}

func NewAnnouncementController(db *gorm.DB) *AnnouncementController {
	return &AnnouncementController{db: db}
}

type announcementRequest struct {
	Title     string `json:"title" validate:"required"`
	Body      string `json:"body" validate:"required"`
	Published *bool  `json:"published"`
}

// GetPublishedAnnouncements is the public listing
func (ac *AnnouncementController) GetPublishedAnnouncements(c *fiber.Ctx) error {
	var items []models.Announcement
	if err := ac.db.WithContext(c.UserContext()).Where("published = ?", true).
		Order("created_at DESC").Find(&items).Error; err != nil {
		return respondError(c, dbError("list announcements", err))
	}
	return c.JSON(fiber.Map{"announcements": items, "total": len(items)})
}

func (ac *AnnouncementController) CreateAnnouncement(c *fiber.Ctx) error {
	var req announcementRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	if err := validateRequest(&req); err != nil {
		return respondError(c, err)
	}
	a := models.Announcement{Title: req.Title, Body: req.Body, Published: true}
	if req.Published != nil {
		a.Published = *req.Published
	}
	if err := ac.db.WithContext(c.UserContext()).Create(&a).Error; err != nil {
		return respondError(c, dbError("create announcement", err))
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":      "Announcement created successfully",
		"announcement": a,
	})
}

func (ac *AnnouncementController) UpdateAnnouncement(c *fiber.Ctx) error {
	var req announcementRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	if err := validateRequest(&req); err != nil {
		return respondError(c, err)
	}
	var a models.Announcement
	if err := ac.db.WithContext(c.UserContext()).First(&a, "id = ?", c.Params("id")).Error; err != nil {
		return respondError(c, dbError("find announcement", err))
	}
	a.Title, a.Body = req.Title, req.Body
	if req.Published != nil {
		a.Published = *req.Published
	}
	if err := ac.db.WithContext(c.UserContext()).Save(&a).Error; err != nil {
		return respondError(c, dbError("save announcement", err))
	}
	return c.JSON(fiber.Map{
		"message":      "Announcement updated successfully",
		"announcement": a,
	})
}

func (ac *AnnouncementController) DeleteAnnouncement(c *fiber.Ctx) error {
	res := ac.db.WithContext(c.UserContext()).Delete(&models.Announcement{}, "id = ?", c.Params("id"))
	if res.Error != nil {
		return respondError(c, dbError("delete announcement", res.Error))
	}
	if res.RowsAffected == 0 {
		return respondError(c, dbError("delete announcement", gorm.ErrRecordNotFound))
	}
	return c.JSON(fiber.Map{"message": "Announcement deleted successfully"})
}
