package job

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/mxppxm/english-tutor/internal/core/analyze"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler { return &Handler{service: s} }

// HandleCreate accepts the same body as the synchronous analyze endpoint and
// returns a job id immediately.
func (h *Handler) HandleCreate(c *fiber.Ctx) error {
	var req analyze.Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "请求体格式错误"})
	}
	if req.Text == "" && len(req.Sentences) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "缺少待分析的文本或句子数组"})
	}

	jobID, err := h.service.Enqueue(c.Context(), req)
	if err != nil {
		if errors.Is(err, analyze.ErrMissingAPIKey) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "缺少API密钥"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": analyze.UserFacingError(err)})
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"success": true,
		"jobId":   jobID,
		"status":  StatusPending,
	})
}

func (h *Handler) HandleGet(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	rec, err := h.service.Get(c.Context(), jobID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "任务不存在或已过期"})
	}
	return c.JSON(rec)
}
