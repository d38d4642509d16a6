package errors

import (
	"errors"

	"github.com/Behyna/payment-services/esewagateway/internal/constants"
	"github.com/Behyna/payment-services/esewagateway/internal/service"
	"github.com/gofiber/fiber/v2"
)

func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var serviceErr service.Error
		if errors.As(err, &serviceErr) {
			return handleServiceError(c, serviceErr)
		}

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"ok":      false,
			"code":    constants.ErrCodeInternalError,
			"message": constants.GetErrorMessage(constants.ErrCodeInternalError),
		})
	}
}

func handleServiceError(c *fiber.Ctx, err service.Error) error {
	errorCode := err.Code

	status := constants.GetHTTPStatus(errorCode)
	if status == 500 && errorCode != constants.ErrCodeInternalError {
		errorCode = constants.ErrCodeOperationFailed
	}

	return c.Status(status).JSON(fiber.Map{
		"ok":      false,
		"code":    errorCode,
		"message": constants.GetErrorMessage(errorCode),
	})
}
