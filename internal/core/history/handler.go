// Package history exposes the saved-analysis store over HTTP.
package history

import (
	"database/sql"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/mxppxm/english-tutor/internal/logger"
	"github.com/mxppxm/english-tutor/internal/store"
)

type Handler struct {
	store *store.Store
	log   *logger.Logger
}

func NewHandler(st *store.Store) *Handler {
	return &Handler{store: st, log: logger.New("History")}
}

func (h *Handler) HandleList(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	pageSize := c.QueryInt("pageSize", 10)
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	records, err := h.store.ListHistory(pageSize, (page-1)*pageSize)
	if err != nil {
		h.log.LogError("listing history failed", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "获取历史记录失败"})
	}
	return c.JSON(fiber.Map{"records": records, "page": page, "pageSize": pageSize})
}

func (h *Handler) HandleGet(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "无效的记录ID"})
	}
	rec, err := h.store.GetHistory(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "记录不存在"})
		}
		h.log.LogError("loading history record failed", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "获取历史记录失败"})
	}
	return c.JSON(rec)
}

func (h *Handler) HandleDelete(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "无效的记录ID"})
	}
	if err := h.store.DeleteHistory(id); err != nil {
		h.log.LogError("deleting history record failed", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "删除历史记录失败"})
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) HandleClear(c *fiber.Ctx) error {
	if err := h.store.ClearHistory(); err != nil {
		h.log.LogError("clearing history failed", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "清空历史记录失败"})
	}
	return c.JSON(fiber.Map{"success": true})
}
