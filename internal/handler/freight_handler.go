package handler

import (
	"errors"
	"net/http"

	"github.com/cargolink/freight-backend/internal/model"
	"github.com/cargolink/freight-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// FreightHandler exposes the workflow operations that open and resolve
// negotiations; the messaging endpoints live on ThreadHandler.
type FreightHandler struct {
	svc service.FreightService
}

func NewFreightHandler(svc service.FreightService) *FreightHandler {
	return &FreightHandler{svc: svc}
}

func (h *FreightHandler) uid(c echo.Context) (string, error) {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing uid")
	}
	return uid, nil
}

func (h *FreightHandler) workflowError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "not found"))
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", "not allowed"))
	}
	return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
}

type PostLoadRequest struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	CargoType   string `json:"cargoType"`
	WeightKg    int64  `json:"weightKg"`
	PickupDate  string `json:"pickupDate"`
}

func (h *FreightHandler) PostLoad(c echo.Context) error {
	uid, err := h.uid(c)
	if err != nil {
		return err
	}
	var req PostLoadRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	load := &model.Load{
		ShipperUID:  uid,
		Origin:      req.Origin,
		Destination: req.Destination,
		CargoType:   req.CargoType,
		WeightKg:    req.WeightKg,
		PickupDate:  req.PickupDate,
	}
	if err := h.svc.PostLoad(c.Request().Context(), load); err != nil {
		return h.workflowError(c, err)
	}
	return c.JSON(http.StatusCreated, load)
}

type PlaceOfferRequest struct {
	AmountCents int64 `json:"amountCents"`
}

func (h *FreightHandler) PlaceOffer(c echo.Context) error {
	uid, err := h.uid(c)
	if err != nil {
		return err
	}
	loadID, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid load id"))
	}
	var req PlaceOfferRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	offer, thread, err := h.svc.PlaceOffer(c.Request().Context(), loadID, uid, req.AmountCents)
	if err != nil {
		return h.workflowError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"offer": offer, "thread": thread})
}

func (h *FreightHandler) AcceptOffer(c echo.Context) error {
	uid, err := h.uid(c)
	if err != nil {
		return err
	}
	offerID, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid offer id"))
	}
	trip, thread, err := h.svc.AcceptOffer(c.Request().Context(), offerID, uid)
	if err != nil {
		return h.workflowError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"trip": trip, "thread": thread})
}

func (h *FreightHandler) WithdrawOffer(c echo.Context) error {
	uid, err := h.uid(c)
	if err != nil {
		return err
	}
	offerID, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid offer id"))
	}
	if err := h.svc.WithdrawOffer(c.Request().Context(), offerID, uid); err != nil {
		return h.workflowError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type PostJobRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	SalaryCents int64  `json:"salaryCents"`
}

func (h *FreightHandler) PostJob(c echo.Context) error {
	uid, err := h.uid(c)
	if err != nil {
		return err
	}
	var req PostJobRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	job := &model.Job{
		PosterUID:   uid,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		SalaryCents: req.SalaryCents,
	}
	if err := h.svc.PostJob(c.Request().Context(), job); err != nil {
		return h.workflowError(c, err)
	}
	return c.JSON(http.StatusCreated, job)
}

type ApplyRequest struct {
	Note string `json:"note"`
}

func (h *FreightHandler) ApplyToJob(c echo.Context) error {
	uid, err := h.uid(c)
	if err != nil {
		return err
	}
	jobID, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid job id"))
	}
	var req ApplyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	app, thread, err := h.svc.ApplyToJob(c.Request().Context(), jobID, uid, req.Note)
	if err != nil {
		return h.workflowError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"application": app, "thread": thread})
}

type ResolveRequest struct {
	Accept bool `json:"accept"`
}

func (h *FreightHandler) ResolveApplication(c echo.Context) error {
	uid, err := h.uid(c)
	if err != nil {
		return err
	}
	appID, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid application id"))
	}
	var req ResolveRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	if err := h.svc.ResolveApplication(c.Request().Context(), appID, uid, req.Accept); err != nil {
		return h.workflowError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type PostTruckRequest struct {
	Plate      string `json:"plate"`
	TruckType  string `json:"truckType"`
	CapacityKg int64  `json:"capacityKg"`
	BaseCity   string `json:"baseCity"`
}

func (h *FreightHandler) PostTruck(c echo.Context) error {
	uid, err := h.uid(c)
	if err != nil {
		return err
	}
	var req PostTruckRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	truck := &model.Truck{
		HaulerUID:  uid,
		Plate:      req.Plate,
		TruckType:  req.TruckType,
		CapacityKg: req.CapacityKg,
		BaseCity:   req.BaseCity,
	}
	if err := h.svc.PostTruck(c.Request().Context(), truck); err != nil {
		return h.workflowError(c, err)
	}
	return c.JSON(http.StatusCreated, truck)
}

type RequestBookingRequest struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

func (h *FreightHandler) RequestBooking(c echo.Context) error {
	uid, err := h.uid(c)
	if err != nil {
		return err
	}
	truckID, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid truck id"))
	}
	var req RequestBookingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	booking, thread, err := h.svc.RequestBooking(c.Request().Context(), truckID, uid, req.StartDate, req.EndDate)
	if err != nil {
		return h.workflowError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"booking": booking, "thread": thread})
}

func (h *FreightHandler) ResolveBooking(c echo.Context) error {
	uid, err := h.uid(c)
	if err != nil {
		return err
	}
	bookingID, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid booking id"))
	}
	var req ResolveRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	if err := h.svc.ResolveBooking(c.Request().Context(), bookingID, uid, req.Accept); err != nil {
		return h.workflowError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type PostListingRequest struct {
	Title     string `json:"title"`
	Category  string `json:"category"`
	RateCents int64  `json:"rateCents"`
	City      string `json:"city"`
}

func (h *FreightHandler) PostListing(c echo.Context) error {
	uid, err := h.uid(c)
	if err != nil {
		return err
	}
	var req PostListingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	listing := &model.ResourceListing{
		ListerUID: uid,
		Title:     req.Title,
		Category:  req.Category,
		RateCents: req.RateCents,
		City:      req.City,
	}
	if err := h.svc.PostListing(c.Request().Context(), listing); err != nil {
		return h.workflowError(c, err)
	}
	return c.JSON(http.StatusCreated, listing)
}

func (h *FreightHandler) ApplyToListing(c echo.Context) error {
	uid, err := h.uid(c)
	if err != nil {
		return err
	}
	listingID, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid listing id"))
	}
	var req ApplyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	app, thread, err := h.svc.ApplyToListing(c.Request().Context(), listingID, uid, req.Note)
	if err != nil {
		return h.workflowError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"application": app, "thread": thread})
}

func (h *FreightHandler) ResolveResourceApplication(c echo.Context) error {
	uid, err := h.uid(c)
	if err != nil {
		return err
	}
	appID, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid application id"))
	}
	var req ResolveRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	if err := h.svc.ResolveResourceApplication(c.Request().Context(), appID, uid, req.Accept); err != nil {
		return h.workflowError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *FreightHandler) CompleteTrip(c echo.Context) error {
	uid, err := h.uid(c)
	if err != nil {
		return err
	}
	tripID, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid trip id"))
	}
	if err := h.svc.CompleteTrip(c.Request().Context(), tripID, uid); err != nil {
		return h.workflowError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
