package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/parcelarea/internal/core/domain"
	"github.com/samirrijal/parcelarea/internal/core/usecases"
)

// RootHandler answers the service banner.
func RootHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"Hello": "World"})
	}
}

// parseBoundary decodes the request body and the shared query options.
func parseBoundary(c *fiber.Ctx) (domain.BoundaryInput, usecases.AnalyzeOptions, error) {
	var input domain.BoundaryInput
	if err := c.BodyParser(&input); err != nil {
		return input, usecases.AnalyzeOptions{}, fiber.NewError(fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}

	opts := usecases.AnalyzeOptions{
		Render:         c.QueryBool("render", true),
		StrictBearings: c.QueryBool("strict", false),
	}
	// the service rejects negative values; only the syntax is checked here
	if raw := c.Query("tolerance"); raw != "" {
		t, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return input, opts, fiber.NewError(fiber.StatusBadRequest, "tolerance must be a number")
		}
		opts.ToleranceM = &t
	}
	return input, opts, nil
}

// AreaHandler computes the area of a boundary and returns the full report.
// A failed render is reported in render_error with status 200.
func AreaHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, opts, err := parseBoundary(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		report, err := deps.Boundaries.Analyze(c.UserContext(), input, opts)
		if err != nil {
			return writeServiceError(c, err)
		}

		c.Set("Cache-Control", "no-store")
		return c.JSON(report)
	}
}

// PlotHandler returns the boundary plot as a PNG image.
func PlotHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, _, err := parseBoundary(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		png, err := deps.Boundaries.Plot(c.UserContext(), input)
		if err != nil {
			return writeServiceError(c, err)
		}

		c.Set(fiber.HeaderContentType, "image/png")
		return c.Send(png)
	}
}

// SubmitHandler queues a boundary for asynchronous processing. The result is
// published on the event bus under the returned ID.
func SubmitHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, opts, err := parseBoundary(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		id, err := deps.Boundaries.Submit(c.UserContext(), input, opts)
		if err != nil {
			return writeServiceError(c, err)
		}

		c.Location("/ws?boundary_id=" + id)
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"id":     id,
			"status": domain.StatusQueued,
		})
	}
}
