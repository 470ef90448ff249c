package analyze

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/mxppxm/english-tutor/internal/logger"
	"github.com/mxppxm/english-tutor/internal/store"
	"github.com/mxppxm/english-tutor/internal/textproc"
)

type Handler struct {
	service *Service
	store   *store.Store
	log     *logger.Logger
}

func NewHandler(service *Service, st *store.Store) *Handler {
	return &Handler{service: service, store: st, log: logger.New("AnalyzeHandler")}
}

type errorResponse struct {
	Error string `json:"error"`
}

// HandleAnalyze is the analysis entry point. It accepts either {text} or
// {sentences}, rejects missing input or credentials with 400, and maps every
// downstream failure onto a categorized 500 message.
func (h *Handler) HandleAnalyze(c *fiber.Ctx) error {
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "请求体格式错误"})
	}

	if req.Text == "" && len(req.Sentences) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "缺少待分析的文本或句子数组"})
	}

	opts, err := h.service.ResolveOptions(req)
	if err != nil {
		if errors.Is(err, ErrMissingAPIKey) {
			return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: ErrMissingAPIKey.Error()})
		}
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: err.Error()})
	}

	var resp *Response
	if len(req.Sentences) > 0 {
		resp, err = h.service.AnalyzeSentences(c.Context(), req.Sentences, opts)
	} else {
		resp, err = h.service.AnalyzeText(c.Context(), req.Text, opts)
	}
	if err != nil {
		h.log.LogError("analysis failed", err)
		return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{Error: UserFacingError(err)})
	}

	h.saveHistory(resp)
	return c.JSON(resp)
}

// saveHistory is best-effort: a persistence failure is logged and swallowed
// so it never blocks delivering a finished analysis.
func (h *Handler) saveHistory(resp *Response) {
	if h.store == nil {
		return
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		h.log.LogWarnf("history record marshal failed: %v", err)
		return
	}
	if _, err := h.store.SaveHistory(resp.Title, resp.OriginalText, raw); err != nil {
		h.log.LogWarnf("history save failed: %v", err)
	}
}

type preprocessRequest struct {
	Text         string `json:"text"`
	MaxSentences int    `json:"maxSentences"`
}

// HandlePreprocess exposes segmentation and deduplication statistics so the
// client can warn about truncation before committing to an analysis.
func (h *Handler) HandlePreprocess(c *fiber.Ctx) error {
	var req preprocessRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "请求体格式错误"})
	}
	if req.Text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "缺少待处理的文本"})
	}
	if req.MaxSentences == 0 {
		req.MaxSentences = h.service.cfg.MaxSentences
	}
	return c.JSON(textproc.Preprocess(req.Text, req.MaxSentences))
}
