package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// pagination reads page/per_page query params with sane bounds.
func pagination(c *fiber.Ctx) (page, perPage int) {
	page = queryInt(c, "page", 1)
	if page < 1 {
		page = 1
	}
	perPage = queryInt(c, "per_page", 20)
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return page, perPage
}

func queryInt(c *fiber.Ctx, key string, fallback int) int {
	val := c.Query(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}
