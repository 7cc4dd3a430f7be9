package middleware

import (
	"errors"

	"academy_go/services"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind services.Kind) int {
	switch kind {
	case services.KindUnauthenticated, services.KindMissingToken, services.KindMalformedToken,
		services.KindInvalidSignature, services.KindExpiredToken, services.KindRevokedToken,
		services.KindInvalidCredentials:
		return fiber.StatusUnauthorized
	case services.KindForbidden:
		return fiber.StatusForbidden
	case services.KindMissingField, services.KindInvalidEmailFormat, services.KindWeakPassword,
		services.KindInvalidSubjects, services.KindInvalidStatus, services.KindInvalidFile:
		return fiber.StatusBadRequest
	case services.KindUnknownGrade, services.KindUnknownTeacher, services.KindUnknownGroup,
		services.KindNotFound:
		return fiber.StatusNotFound
	case services.KindSubjectNotTaught, services.KindTeacherGroupMismatch, services.KindGradeMismatch:
		return fiber.StatusUnprocessableEntity
	case services.KindAlreadyEnrolled, services.KindGradeInUse, services.KindGradeHasGroups,
		services.KindTeacherHasGroups, services.KindEmailTaken, services.KindConflict:
		return fiber.StatusConflict
	case services.KindUpstreamFailure:
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}

// RespondError writes {"error": kind, "field": ...} with the mapped status.
// Foreign errors become a 500 and are logged here.
func RespondError(c *fiber.Ctx, err error) error {
	if fe, ok := err.(*fiber.Error); ok {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}

	kind := services.KindOf(err)
	if kind == "" {
		logrus.WithError(err).WithField("path", c.Path()).Error("unhandled error")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	body := fiber.Map{"error": string(kind)}
	var se *services.Error
	errors.As(err, &se)
	if se != nil && se.Field != "" && kind != services.KindUpstreamFailure {
		body["field"] = se.Field
	}
	if kind == services.KindUnauthenticated && se != nil && se.Err != nil {
		body["reason"] = string(services.KindOf(se.Err))
	}
	return c.Status(StatusFor(kind)).JSON(body)
}
