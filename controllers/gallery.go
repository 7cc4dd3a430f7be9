package controllers

import (
	"academy_go/models"
	"academy_go/services"
	"academy_go/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type GalleryController struct {
	db      *gorm.DB
	objects storage.ObjectStore
	rules   services.UploadRules
}

func NewGalleryController(db *gorm.DB, objects storage.ObjectStore, rules services.UploadRules) *GalleryController {
	return &GalleryController{db: db, objects: objects, rules: rules}
}

func (gc *GalleryController) GetImages(c *fiber.Ctx) error {
	var images []models.GalleryImage
	if err := gc.db.WithContext(c.UserContext()).Order("created_at DESC").Find(&images).Error; err != nil {
		return respondError(c, dbError("list gallery", err))
	}
	return c.JSON(fiber.Map{"images": images, "total": len(images)})
}

// UploadImage stores the multipart field "image" with an optional "caption"
func (gc *GalleryController) UploadImage(c *fiber.Ctx) error {
	file, err := readUpload(c, "image")
	if err != nil {
		return respondError(c, err)
	}
	if err := gc.rules.Check(file); err != nil {
		return respondError(c, err)
	}
	obj, err := gc.objects.Upload(c.UserContext(), file.Data, "gallery", file.Filename)
	if err != nil {
		logrus.WithError(err).Error("gallery upload failed")
		return respondError(c, &services.Error{Kind: services.KindUpstreamFailure, Err: err})
	}
	img := models.GalleryImage{Caption: c.FormValue("caption"), URL: obj.URL, ObjectKey: obj.Key}
	if err := gc.db.WithContext(c.UserContext()).Create(&img).Error; err != nil {
		if delErr := gc.objects.Delete(c.UserContext(), obj.Key); delErr != nil {
			logrus.WithError(delErr).WithField("key", obj.Key).Warn("failed to delete stored object")
		}
		return respondError(c, dbError("create gallery image", err))
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Image uploaded successfully",
		"image":   img,
	})
}

func (gc *GalleryController) DeleteImage(c *fiber.Ctx) error {
	var img models.GalleryImage
	if err := gc.db.WithContext(c.UserContext()).First(&img, "id = ?", c.Params("id")).Error; err != nil {
		return respondError(c, dbError("find gallery image", err))
	}
	if err := gc.db.WithContext(c.UserContext()).Delete(&img).Error; err != nil {
		return respondError(c, dbError("delete gallery image", err))
	}
	if err := gc.objects.Delete(c.UserContext(), img.ObjectKey); err != nil {
		logrus.WithError(err).WithField("key", img.ObjectKey).Warn("failed to delete stored object")
	}
	return c.JSON(fiber.Map{"message": "Image deleted successfully"})
}
