package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/jitenkr2030/onetap-repost/internal/adapters"
	"github.com/jitenkr2030/onetap-repost/internal/service"
	"github.com/jitenkr2030/onetap-repost/internal/transfer"
)

type JobHandler struct {
	s service.JobService
}

func NewJobHandler(service service.JobService) *JobHandler {
	return &JobHandler{s: service}
}

func (h *JobHandler) CreateJob(c *fiber.Ctx) error {
	var req transfer.JobCreation
	if err := c.BodyParser(&req); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unable to parse request body",
		})
	}

	job, err := h.s.Schedule(c.Context(), &req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(job)
}

func (h *JobHandler) ListJobs(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)

	jobs, err := h.s.List(c.Context(), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "unable to list jobs",
		})
	}

	return c.Status(fiber.StatusOK).JSON(jobs)
}

// CancelJob only takes effect while the job is still waiting; running and
// terminal jobs are reported as not cancellable.
func (h *JobHandler) CancelJob(c *fiber.Ctx) error {
	jobID := c.Query("id")
	if jobID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "id is required",
		})
	}

	cancelled, err := h.s.Cancel(c.Context(), jobID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "unable to cancel job",
		})
	}
	if !cancelled {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "job is not in a cancellable state",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *JobHandler) ListPosts(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)

	posts, err := h.s.ListPosts(c.Context(), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "unable to list posts",
		})
	}

	return c.Status(fiber.StatusOK).JSON(posts)
}

func (h *JobHandler) ListPlatforms(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"platforms": adapters.SupportedPlatforms(),
	})
}
