package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/cargolink/freight-backend/internal/repository"
	"github.com/cargolink/freight-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type ThreadHandler struct {
	svc service.MessagingService
}

func NewThreadHandler(svc service.MessagingService) *ThreadHandler {
	return &ThreadHandler{svc: svc}
}

type SendMessageRequest struct {
	Body        string   `json:"body"`
	Attachments []string `json:"attachments"`
}

func (h *ThreadHandler) List(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	views, err := h.svc.ListThreads(c.Request().Context(), uid)
	if err != nil {
		return storeError(c, err, "failed to fetch threads")
	}
	return c.JSON(http.StatusOK, views)
}

func (h *ThreadHandler) Get(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	threadID, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid thread id"))
	}
	view, err := h.svc.GetThread(c.Request().Context(), threadID, uid)
	if err != nil {
		if errors.Is(err, service.ErrThreadNotFound) {
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "thread not found"))
		}
		return storeError(c, err, "failed to fetch thread")
	}
	return c.JSON(http.StatusOK, view)
}

func (h *ThreadHandler) ListMessages(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	threadID, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid thread id"))
	}
	msgs, err := h.svc.ListMessages(c.Request().Context(), threadID, uid)
	if err != nil {
		if errors.Is(err, service.ErrThreadNotFound) {
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "thread not found"))
		}
		return storeError(c, err, "failed to fetch messages")
	}
	return c.JSON(http.StatusOK, msgs)
}

func (h *ThreadHandler) SendMessage(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	threadID, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid thread id"))
	}
	var req SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	msg, err := h.svc.SendMessage(c.Request().Context(), threadID, uid, req.Body, req.Attachments)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrThreadNotFound):
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "thread not found"))
		case errors.Is(err, service.ErrFirstMessageNotAllowed):
			return c.JSON(http.StatusForbidden, NewErrorResponse("first_message_not_allowed", "waiting for the other party to start the conversation"))
		case errors.Is(err, service.ErrEmptyMessage):
			return c.JSON(http.StatusBadRequest, NewErrorResponse("empty_message", "message body is required"))
		}
		return storeError(c, err, "failed to send message")
	}
	return c.JSON(http.StatusCreated, msg)
}

func (h *ThreadHandler) MarkRead(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	threadID, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid thread id"))
	}
	if err := h.svc.MarkRead(c.Request().Context(), threadID, uid); err != nil {
		if errors.Is(err, service.ErrThreadNotFound) {
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "thread not found"))
		}
		return storeError(c, err, "failed to mark read")
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func parseID(c echo.Context, param string) (uint64, error) {
	return strconv.ParseUint(c.Param(param), 10, 64)
}

// storeError maps persistence failures to a generic payload so callers see
// a single failure mode for store trouble.
func storeError(c echo.Context, err error, msg string) error {
	if errors.Is(err, repository.ErrDBNotReady) {
		return c.JSON(http.StatusServiceUnavailable, NewErrorResponse("store_unavailable", msg))
	}
	return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", msg))
}
