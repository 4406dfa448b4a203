package handlers

import "github.com/gofiber/fiber/v2"

// InfoHandler serves the banner at GET /.
type InfoHandler struct {
	version  string
	database string
}

// NewInfoHandler constructs handler. database describes the active customer store.
func NewInfoHandler(version, database string) *InfoHandler {
	return &InfoHandler{version: version, database: database}
}

// Index handles GET /.
func (h *InfoHandler) Index(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message":  "VoltAI Backend is running!",
		"version":  h.version,
		"database": h.database,
	})
}
