package service

import (
	"context"
	"errors"
	"strings"

	"github.com/cargolink/freight-backend/internal/model"
	"github.com/cargolink/freight-backend/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FreightService owns the business objects behind the five negotiation
// kinds. Its only contact with the messaging core is opening a thread when
// an object becomes negotiable and deactivating it on terminal resolution.
type FreightService interface {
	PostLoad(ctx context.Context, l *model.Load) error
	PlaceOffer(ctx context.Context, loadID uint64, haulerUID string, amountCents int64) (*model.LoadOffer, *model.Thread, error)
	AcceptOffer(ctx context.Context, offerID uint64, callerUID string) (*model.Trip, *model.Thread, error)
	WithdrawOffer(ctx context.Context, offerID uint64, callerUID string) error

	PostJob(ctx context.Context, j *model.Job) error
	ApplyToJob(ctx context.Context, jobID uint64, applicantUID, coverNote string) (*model.JobApplication, *model.Thread, error)
	ResolveApplication(ctx context.Context, appID uint64, callerUID string, hire bool) error

	PostTruck(ctx context.Context, t *model.Truck) error
	RequestBooking(ctx context.Context, truckID uint64, shipperUID, startDate, endDate string) (*model.TruckBooking, *model.Thread, error)
	ResolveBooking(ctx context.Context, bookingID uint64, callerUID string, confirm bool) error

	PostListing(ctx context.Context, l *model.ResourceListing) error
	ApplyToListing(ctx context.Context, listingID uint64, applicantUID, note string) (*model.ResourceApplication, *model.Thread, error)
	ResolveResourceApplication(ctx context.Context, appID uint64, callerUID string, accept bool) error

	CompleteTrip(ctx context.Context, tripID uint64, callerUID string) error
}

type freightService struct {
	repo      repository.FreightRepository
	messaging MessagingService
}

func NewFreightService(repo repository.FreightRepository, messaging MessagingService) FreightService {
	return &freightService{repo: repo, messaging: messaging}
}

func notFoundOr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *freightService) PostLoad(ctx context.Context, l *model.Load) error {
	if l.ShipperUID == "" {
		return errors.New("shipper is required")
	}
	if l.Origin == "" || l.Destination == "" {
		return errors.New("origin and destination are required")
	}
	return s.repo.CreateLoad(ctx, l)
}

func (s *freightService) PlaceOffer(ctx context.Context, loadID uint64, haulerUID string, amountCents int64) (*model.LoadOffer, *model.Thread, error) {
	load, err := s.repo.FindLoad(ctx, loadID)
	if err != nil {
		return nil, nil, notFoundOr(err)
	}
	if load.ShipperUID == haulerUID {
		return nil, nil, errors.New("cannot bid on your own load")
	}
	if amountCents <= 0 {
		return nil, nil, errors.New("amount must be positive")
	}
	offer := &model.LoadOffer{
		LoadID:      loadID,
		ShipperUID:  load.ShipperUID,
		HaulerUID:   haulerUID,
		AmountCents: amountCents,
		Status:      model.OfferStatusPending,
	}
	if err := s.repo.CreateOffer(ctx, offer); err != nil {
		return nil, nil, err
	}
	t, err := s.messaging.OpenThread(ctx, model.ThreadKindLoadOffer, offer.ID, load.ShipperUID, haulerUID)
	if err != nil {
		return nil, nil, err
	}
	return offer, t, nil
}

func (s *freightService) AcceptOffer(ctx context.Context, offerID uint64, callerUID string) (*model.Trip, *model.Thread, error) {
	offer, err := s.repo.FindOffer(ctx, offerID)
	if err != nil {
		return nil, nil, notFoundOr(err)
	}
	if offer.ShipperUID != callerUID {
		return nil, nil, ErrForbidden
	}
	if offer.Status != model.OfferStatusPending {
		return nil, nil, errors.New("offer is not pending")
	}
	if err := s.repo.UpdateOfferStatus(ctx, offerID, model.OfferStatusAccepted); err != nil {
		return nil, nil, err
	}
	if err := s.messaging.DeactivateThread(ctx, model.ThreadKindLoadOffer, offerID); err != nil {
		return nil, nil, err
	}
	trip := &model.Trip{
		OfferID:     offer.ID,
		LoadID:      offer.LoadID,
		ShipperUID:  offer.ShipperUID,
		HaulerUID:   offer.HaulerUID,
		Reference:   tripReference(),
		AmountCents: offer.AmountCents,
		Status:      model.TripStatusInProgress,
	}
	if err := s.repo.CreateTrip(ctx, trip); err != nil {
		return nil, nil, err
	}
	t, err := s.messaging.OpenThread(ctx, model.ThreadKindTrip, trip.ID, trip.ShipperUID, trip.HaulerUID)
	if err != nil {
		return nil, nil, err
	}
	return trip, t, nil
}

func tripReference() string {
	return "TRIP-" + strings.ToUpper(uuid.NewString()[:8])
}

func (s *freightService) WithdrawOffer(ctx context.Context, offerID uint64, callerUID string) error {
	offer, err := s.repo.FindOffer(ctx, offerID)
	if err != nil {
		return notFoundOr(err)
	}
	if offer.HaulerUID != callerUID {
		return ErrForbidden
	}
	if offer.Status != model.OfferStatusPending {
		return errors.New("offer is not pending")
	}
	if err := s.repo.UpdateOfferStatus(ctx, offerID, model.OfferStatusWithdrawn); err != nil {
		return err
	}
	return s.messaging.DeactivateThread(ctx, model.ThreadKindLoadOffer, offerID)
}

func (s *freightService) PostJob(ctx context.Context, j *model.Job) error {
	if j.PosterUID == "" {
		return errors.New("poster is required")
	}
	if j.Title == "" {
		return errors.New("title is required")
	}
	j.IsOpen = true
	return s.repo.CreateJob(ctx, j)
}

func (s *freightService) ApplyToJob(ctx context.Context, jobID uint64, applicantUID, coverNote string) (*model.JobApplication, *model.Thread, error) {
	job, err := s.repo.FindJob(ctx, jobID)
	if err != nil {
		return nil, nil, notFoundOr(err)
	}
	if !job.IsOpen {
		return nil, nil, errors.New("job is closed")
	}
	if job.PosterUID == applicantUID {
		return nil, nil, errors.New("cannot apply to your own job")
	}
	app := &model.JobApplication{
		JobID:        jobID,
		PosterUID:    job.PosterUID,
		ApplicantUID: applicantUID,
		CoverNote:    coverNote,
		Status:       model.ApplicationStatusPending,
	}
	if err := s.repo.CreateApplication(ctx, app); err != nil {
		return nil, nil, err
	}
	t, err := s.messaging.OpenThread(ctx, model.ThreadKindJob, app.ID, job.PosterUID, applicantUID)
	if err != nil {
		return nil, nil, err
	}
	return app, t, nil
}

func (s *freightService) ResolveApplication(ctx context.Context, appID uint64, callerUID string, hire bool) error {
	app, err := s.repo.FindApplication(ctx, appID)
	if err != nil {
		return notFoundOr(err)
	}
	if app.PosterUID != callerUID {
		return ErrForbidden
	}
	if app.Status != model.ApplicationStatusPending {
		return errors.New("application is not pending")
	}
	status := model.ApplicationStatusRejected
	if hire {
		status = model.ApplicationStatusHired
	}
	if err := s.repo.UpdateApplicationStatus(ctx, appID, status); err != nil {
		return err
	}
	return s.messaging.DeactivateThread(ctx, model.ThreadKindJob, appID)
}

func (s *freightService) PostTruck(ctx context.Context, t *model.Truck) error {
	if t.HaulerUID == "" {
		return errors.New("hauler is required")
	}
	if t.Plate == "" {
		return errors.New("plate is required")
	}
	return s.repo.CreateTruck(ctx, t)
}

func (s *freightService) RequestBooking(ctx context.Context, truckID uint64, shipperUID, startDate, endDate string) (*model.TruckBooking, *model.Thread, error) {
	truck, err := s.repo.FindTruck(ctx, truckID)
	if err != nil {
		return nil, nil, notFoundOr(err)
	}
	if truck.HaulerUID == shipperUID {
		return nil, nil, errors.New("cannot book your own truck")
	}
	booking := &model.TruckBooking{
		TruckID:    truckID,
		HaulerUID:  truck.HaulerUID,
		ShipperUID: shipperUID,
		StartDate:  startDate,
		EndDate:    endDate,
		Status:     model.BookingStatusRequested,
	}
	if err := s.repo.CreateBooking(ctx, booking); err != nil {
		return nil, nil, err
	}
	t, err := s.messaging.OpenThread(ctx, model.ThreadKindTruckBooking, booking.ID, truck.HaulerUID, shipperUID)
	if err != nil {
		return nil, nil, err
	}
	return booking, t, nil
}

func (s *freightService) ResolveBooking(ctx context.Context, bookingID uint64, callerUID string, confirm bool) error {
	booking, err := s.repo.FindBooking(ctx, bookingID)
	if err != nil {
		return notFoundOr(err)
	}
	if booking.HaulerUID != callerUID {
		return ErrForbidden
	}
	if booking.Status != model.BookingStatusRequested {
		return errors.New("booking is not pending")
	}
	status := model.BookingStatusDeclined
	if confirm {
		status = model.BookingStatusConfirmed
	}
	if err := s.repo.UpdateBookingStatus(ctx, bookingID, status); err != nil {
		return err
	}
	return s.messaging.DeactivateThread(ctx, model.ThreadKindTruckBooking, bookingID)
}

func (s *freightService) PostListing(ctx context.Context, l *model.ResourceListing) error {
	if l.ListerUID == "" {
		return errors.New("lister is required")
	}
	if l.Title == "" {
		return errors.New("title is required")
	}
	l.IsOpen = true
	return s.repo.CreateListing(ctx, l)
}

func (s *freightService) ApplyToListing(ctx context.Context, listingID uint64, applicantUID, note string) (*model.ResourceApplication, *model.Thread, error) {
	listing, err := s.repo.FindListing(ctx, listingID)
	if err != nil {
		return nil, nil, notFoundOr(err)
	}
	if !listing.IsOpen {
		return nil, nil, errors.New("listing is closed")
	}
	if listing.ListerUID == applicantUID {
		return nil, nil, errors.New("cannot apply to your own listing")
	}
	app := &model.ResourceApplication{
		ListingID:    listingID,
		ListerUID:    listing.ListerUID,
		ApplicantUID: applicantUID,
		Note:         note,
		Status:       model.ApplicationStatusPending,
	}
	if err := s.repo.CreateResourceApplication(ctx, app); err != nil {
		return nil, nil, err
	}
	t, err := s.messaging.OpenThread(ctx, model.ThreadKindResource, app.ID, listing.ListerUID, applicantUID)
	if err != nil {
		return nil, nil, err
	}
	return app, t, nil
}

func (s *freightService) ResolveResourceApplication(ctx context.Context, appID uint64, callerUID string, accept bool) error {
	app, err := s.repo.FindResourceApplication(ctx, appID)
	if err != nil {
		return notFoundOr(err)
	}
	if app.ListerUID != callerUID {
		return ErrForbidden
	}
	if app.Status != model.ApplicationStatusPending {
		return errors.New("application is not pending")
	}
	status := model.ApplicationStatusRejected
	if accept {
		status = model.ApplicationStatusHired
	}
	if err := s.repo.UpdateResourceApplicationStatus(ctx, appID, status); err != nil {
		return err
	}
	return s.messaging.DeactivateThread(ctx, model.ThreadKindResource, appID)
}

func (s *freightService) CompleteTrip(ctx context.Context, tripID uint64, callerUID string) error {
	trip, err := s.repo.FindTrip(ctx, tripID)
	if err != nil {
		return notFoundOr(err)
	}
	if trip.ShipperUID != callerUID && trip.HaulerUID != callerUID {
		return ErrForbidden
	}
	if trip.Status != model.TripStatusInProgress {
		return errors.New("trip is not in progress")
	}
	if err := s.repo.UpdateTripStatus(ctx, tripID, model.TripStatusCompleted); err != nil {
		return err
	}
	return s.messaging.DeactivateThread(ctx, model.ThreadKindTrip, tripID)
}
