package utils

import "github.com/gofiber/fiber/v2"

func JSONSuccess(c *fiber.Ctx, status int, payload interface{}) error {
	return c.Status(status).JSON(fiber.Map{"status": "ok", "data": payload})
}

func JSONError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"status": "error", "message": msg})
}

// JSONServiceError renders a service *Error with its kind and mapped status.
func JSONServiceError(c *fiber.Ctx, err error) error {
	e := AsError(err)
	return c.Status(e.Status).JSON(fiber.Map{"status": "error", "code": e.Kind, "message": e.Message})
}
