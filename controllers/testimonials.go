package controllers

import (
	"academy_go/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type TestimonialController struct {
	db *gorm.DB
}

func NewTestimonialController(db *gorm.DB) *TestimonialController {
	return &TestimonialController{db: db}
}

type testimonialRequest struct {
	AuthorName string `json:"author_name" validate:"required"`
	AuthorRole string `json:"author_role"`
	Content    string `json:"content" validate:"required"`
}

// SubmitTestimonial stores a public testimonial awaiting approval
func (tc *TestimonialController) SubmitTestimonial(c *fiber.Ctx) error {
	var req testimonialRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	if err := validateRequest(&req); err != nil {
		return respondError(c, err)
	}
	t := models.Testimonial{AuthorName: req.AuthorName, AuthorRole: req.AuthorRole, Content: req.Content}
	if err := tc.db.WithContext(c.UserContext()).Create(&t).Error; err != nil {
		return respondError(c, dbError("create testimonial", err))
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":     "Thank you, your testimonial will appear once approved",
		"testimonial": t,
	})
}

// GetApprovedTestimonials is the public listing
func (tc *TestimonialController) GetApprovedTestimonials(c *fiber.Ctx) error {
	return tc.list(c, true)
}

// GetAllTestimonials includes unapproved entries (admin)
func (tc *TestimonialController) GetAllTestimonials(c *fiber.Ctx) error {
	return tc.list(c, false)
}

func (tc *TestimonialController) list(c *fiber.Ctx, approvedOnly bool) error {
	query := tc.db.WithContext(c.UserContext()).Model(&models.Testimonial{})
	if approvedOnly {
		query = query.Where("approved = ?", true)
	}
	var items []models.Testimonial
	if err := query.Order("created_at DESC").Find(&items).Error; err != nil {
		return respondError(c, dbError("list testimonials", err))
	}
	return c.JSON(fiber.Map{"testimonials": items, "total": len(items)})
}

func (tc *TestimonialController) ApproveTestimonial(c *fiber.Ctx) error {
	res := tc.db.WithContext(c.UserContext()).Model(&models.Testimonial{}).
		Where("id = ?", c.Params("id")).Update("approved", true)
	if res.Error != nil {
		return respondError(c, dbError("approve testimonial", res.Error))
	}
	if res.RowsAffected == 0 {
		return respondError(c, dbError("approve testimonial", gorm.ErrRecordNotFound))
	}
	return c.JSON(fiber.Map{"message": "Testimonial approved"})
}

func (tc *TestimonialController) DeleteTestimonial(c *fiber.Ctx) error {
	res := tc.db.WithContext(c.UserContext()).Delete(&models.Testimonial{}, "id = ?", c.Params("id"))
	if res.Error != nil {
		return respondError(c, dbError("delete testimonial", res.Error))
	}
	if res.RowsAffected == 0 {
		return respondError(c, dbError("delete testimonial", gorm.ErrRecordNotFound))
	}
	return c.JSON(fiber.Map{"message": "Testimonial deleted successfully"})
}
