// Package wordbook exposes the learner's word collection and mastered-word
// set over HTTP.
package wordbook

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/mxppxm/english-tutor/internal/logger"
	"github.com/mxppxm/english-tutor/internal/store"
)

type Handler struct {
	store *store.Store
	log   *logger.Logger
}

func NewHandler(st *store.Store) *Handler {
	return &Handler{store: st, log: logger.New("Wordbook")}
}

func (h *Handler) HandleAdd(c *fiber.Ctx) error {
	var w store.CollectedWord
	if err := c.BodyParser(&w); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "请求体格式错误"})
	}
	if strings.TrimSpace(w.Word) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "缺少单词"})
	}
	id, err := h.store.AddWord(w)
	if err != nil {
		h.log.LogError("adding word failed", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "收藏单词失败"})
	}
	return c.JSON(fiber.Map{"success": true, "id": id})
}

func (h *Handler) HandleList(c *fiber.Ctx) error {
	words, err := h.store.ListWords()
	if err != nil {
		h.log.LogError("listing words failed", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "获取生词本失败"})
	}
	return c.JSON(fiber.Map{"words": words, "count": len(words)})
}

func (h *Handler) HandleDelete(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "无效的记录ID"})
	}
	if err := h.store.DeleteWord(id); err != nil {
		h.log.LogError("deleting word failed", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "删除单词失败"})
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) HandleMaster(c *fiber.Ctx) error {
	word := c.Params("word")
	if strings.TrimSpace(word) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "缺少单词"})
	}
	if err := h.store.MasterWord(word); err != nil {
		h.log.LogError("marking word mastered failed", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "标记失败"})
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) HandleUnmaster(c *fiber.Ctx) error {
	word := c.Params("word")
	if strings.TrimSpace(word) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "缺少单词"})
	}
	if err := h.store.UnmasterWord(word); err != nil {
		h.log.LogError("unmarking word failed", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "取消标记失败"})
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) HandleListMastered(c *fiber.Ctx) error {
	words, err := h.store.ListMastered()
	if err != nil {
		h.log.LogError("listing mastered words failed", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "获取已掌握单词失败"})
	}
	return c.JSON(fiber.Map{"words": words, "count": len(words)})
}
