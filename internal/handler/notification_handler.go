package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/cargolink/freight-backend/internal/model"
	"github.com/cargolink/freight-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type NotificationHandler struct {
	svc service.NotificationService
}

func NewNotificationHandler(svc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

type NotificationResponse struct {
	ID        uint64  `json:"id"`
	Type      string  `json:"type"`
	Title     string  `json:"title"`
	Body      string  `json:"body"`
	ThreadID  *uint64 `json:"threadId,omitempty"`
	Read      bool    `json:"read"`
	CreatedAt string  `json:"createdAt"`
}

func toNotificationResponse(n model.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Body:      n.Body,
		ThreadID:  n.ThreadID,
		Read:      n.ReadAt != nil,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}
}

func (h *NotificationHandler) List(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	unreadOnly := c.QueryParam("unread_only") != "false"
	limit := 20
	if lStr := c.QueryParam("limit"); lStr != "" {
		if lParsed, err := strconv.Atoi(lStr); err == nil && lParsed > 0 {
			limit = lParsed
		}
	}
	list, unreadCount, err := h.svc.List(c.Request().Context(), uid, unreadOnly, limit)
	if err != nil {
		return storeError(c, err, "failed to fetch notifications")
	}
	resp := make([]NotificationResponse, 0, len(list))
	for _, n := range list {
		resp = append(resp, toNotificationResponse(n))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"notifications": resp,
		"unreadCount":   unreadCount,
	})
}

func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	if err := h.svc.MarkAllRead(c.Request().Context(), uid); err != nil {
		return storeError(c, err, "failed to mark notifications read")
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type PreferencesRequest struct {
	Master              *bool `json:"master"`
	LoadOfferEnabled    *bool `json:"loadOfferEnabled"`
	JobEnabled          *bool `json:"jobEnabled"`
	TruckBookingEnabled *bool `json:"truckBookingEnabled"`
	ResourceEnabled     *bool `json:"resourceEnabled"`
	TripEnabled         *bool `json:"tripEnabled"`
}

func (h *NotificationHandler) GetPreferences(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	p, err := h.svc.GetPreferences(c.Request().Context(), uid)
	if err != nil {
		return storeError(c, err, "failed to fetch preferences")
	}
	return c.JSON(http.StatusOK, toPreferencesResponse(p))
}

func (h *NotificationHandler) UpdatePreferences(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var req PreferencesRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	p, err := h.svc.GetPreferences(c.Request().Context(), uid)
	if err != nil {
		return storeError(c, err, "failed to fetch preferences")
	}
	applyFlag(&p.Master, req.Master)
	applyFlag(&p.LoadOfferEnabled, req.LoadOfferEnabled)
	applyFlag(&p.JobEnabled, req.JobEnabled)
	applyFlag(&p.TruckBookingEnabled, req.TruckBookingEnabled)
	applyFlag(&p.ResourceEnabled, req.ResourceEnabled)
	applyFlag(&p.TripEnabled, req.TripEnabled)
	if err := h.svc.UpdatePreferences(c.Request().Context(), p); err != nil {
		return storeError(c, err, "failed to update preferences")
	}
	return c.JSON(http.StatusOK, toPreferencesResponse(p))
}

func applyFlag(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func toPreferencesResponse(p *model.NotificationPreference) map[string]bool {
	return map[string]bool{
		"master":              p.Master,
		"loadOfferEnabled":    p.LoadOfferEnabled,
		"jobEnabled":          p.JobEnabled,
		"truckBookingEnabled": p.TruckBookingEnabled,
		"resourceEnabled":     p.ResourceEnabled,
		"tripEnabled":         p.TripEnabled,
	}
}
