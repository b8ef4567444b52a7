package models

import "github.com/gofiber/fiber/v2"

// SuccessResponse is the envelope of every successful API response.
type SuccessResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data"`
}

// RespondWithData writes data inside the success envelope.
func RespondWithData(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(SuccessResponse{Status: "success", Data: data})
}

// RespondWithMessage writes data and a human-readable message inside the
// success envelope. data may be nil.
func RespondWithMessage(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(SuccessResponse{Status: "success", Message: message, Data: data})
}
