// Package ocr exposes image text extraction over the vision model.
package ocr

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/mxppxm/english-tutor/internal/config"
	"github.com/mxppxm/english-tutor/internal/llm"
	"github.com/mxppxm/english-tutor/internal/logger"
	"github.com/mxppxm/english-tutor/prompts"
)

// Gateway is the vision slice of the LLM client.
type Gateway interface {
	OCRImage(ctx context.Context, apiKey, image, instruction string) (string, error)
}

type Handler struct {
	gateway Gateway
	cfg     config.Config
	log     *logger.Logger
}

func NewHandler(cfg config.Config, gateway Gateway) *Handler {
	return &Handler{gateway: gateway, cfg: cfg, log: logger.New("OCR")}
}

type request struct {
	Image     string `json:"image"`
	Provider  string `json:"provider"`
	APIKey    string `json:"apiKey"`
	ModelName string `json:"modelName"`
}

type metadata struct {
	Provider   string `json:"provider"`
	Model      string `json:"model"`
	TextLength int    `json:"textLength"`
	HasContent bool   `json:"hasContent"`
}

type response struct {
	Success        bool     `json:"success"`
	ExtractedText  string   `json:"extractedText"`
	ProcessingTime int64    `json:"processingTime"`
	Timestamp      string   `json:"timestamp"`
	Metadata       metadata `json:"metadata"`
}

type errorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
}

func (h *Handler) HandleOCR(c *fiber.Ctx) error {
	var req request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "请求体格式错误"})
	}
	if req.Image == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "缺少图片数据"})
	}
	apiKey := req.APIKey
	if apiKey == "" {
		apiKey = h.cfg.DoubaoAPIKey
	}
	if apiKey == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "缺少API密钥"})
	}

	start := time.Now()
	text, err := h.gateway.OCRImage(c.Context(), apiKey, req.Image, prompts.OCRInstruction)
	if err != nil {
		h.log.LogError("image recognition failed", err)
		return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{
			Success:   false,
			Error:     userFacingOCRError(err),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}

	text = strings.TrimSpace(text)
	elapsed := time.Since(start)
	h.log.LogInfof("image recognized in %v (%d chars)", elapsed, len(text))

	return c.JSON(response{
		Success:        true,
		ExtractedText:  text,
		ProcessingTime: elapsed.Milliseconds(),
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
		Metadata: metadata{
			Provider:   string(llm.ProviderDoubao),
			Model:      "doubao-seed-1-6-vision-250815",
			TextLength: len(text),
			HasContent: len(text) > 0,
		},
	})
}

func userFacingOCRError(err error) string {
	var timeoutErr *llm.TimeoutError
	if errors.As(err, &timeoutErr) {
		return "图片识别超时，请尝试上传更小的图片"
	}

	status := 0
	var providerErr *llm.ProviderError
	if errors.As(err, &providerErr) {
		status = providerErr.StatusCode
	}

	lower := strings.ToLower(err.Error())
	switch {
	case status == 401 || status == 403 || strings.Contains(lower, "api key") || strings.Contains(lower, "api_key"):
		return "API密钥配置错误，请检查配置"
	case status == 429 || strings.Contains(lower, "rate limit") || strings.Contains(lower, "quota"):
		return "API请求频率限制或配额不足，请稍后重试"
	case strings.Contains(lower, "network"):
		return "网络连接错误，请检查网络连接"
	default:
		return "图片识别失败: " + err.Error()
	}
}
