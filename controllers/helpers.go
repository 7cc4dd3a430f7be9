package controllers

import (
	"io"

	"academy_go/database"
	"academy_go/middleware"
	"academy_go/services"
	"academy_go/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

var errInvalidBody = fiber.NewError(fiber.StatusBadRequest, "Invalid request body")

func respondError(c *fiber.Ctx, err error) error {
	return middleware.RespondError(c, err)
}

func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return errInvalidBody
	}
	return nil
}

// readUpload loads a multipart file field into memory.
func readUpload(c *fiber.Ctx, field string) (services.FileUpload, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return services.FileUpload{}, &services.Error{Kind: services.KindMissingField, Field: field}
	}
	src, err := fh.Open()
	if err != nil {
		return services.FileUpload{}, &services.Error{Kind: services.KindInvalidFile, Field: field, Err: err}
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return services.FileUpload{}, &services.Error{Kind: services.KindInvalidFile, Field: field, Err: err}
	}
	return services.FileUpload{Filename: fh.Filename, Data: data}, nil
}

// currentPrincipal never returns nil behind RequireCapability on a gated route.
func currentPrincipal(c *fiber.Ctx) (*services.Principal, error) {
	p := middleware.GetCurrentPrincipal(c)
	if p == nil {
		return nil, services.ErrUnauthenticated
	}
	return p, nil
}

// validateRequest trims the request and reports its first missing field.
func validateRequest(in interface{}) error {
	utils.TrimStrings(in)
	field, err := utils.FirstInvalidField(in)
	if err != nil {
		return err
	}
	if field != "" {
		return &services.Error{Kind: services.KindMissingField, Field: field}
	}
	return nil
}

func requireEmail(email string) error {
	if !utils.IsValidEmail(email) {
		return &services.Error{Kind: services.KindInvalidEmailFormat, Field: email}
	}
	return nil
}

// dbError converts a gorm error into the service taxonomy.
func dbError(op string, err error) error {
	if database.IsNotFound(err) {
		return services.ErrNotFound
	}
	if database.IsDuplicate(err) {
		return &services.Error{Kind: services.KindConflict, Err: err}
	}
	logrus.WithError(err).WithField("op", op).Error("upstream failure")
	return &services.Error{Kind: services.KindUpstreamFailure, Err: err}
}
