package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cargolink/freight-backend/internal/model"
	"github.com/cargolink/freight-backend/internal/repository"
)

type freightFixture struct {
	svc       FreightService
	messaging MessagingService
	repo      repository.FreightRepository
}

func newFreightFixture(t *testing.T) *freightFixture {
	t.Helper()
	db := newTestDB(t)
	freight := repository.NewFreightRepository(db)
	threads := repository.NewThreadRepository(db)
	messaging := NewMessagingService(
		threads,
		NewPolicyRegistry(freight),
		&recordingFanout{}, &recordingDispatcher{},
		&stubDirectory{names: map[string]string{}},
	)
	return &freightFixture{
		svc:       NewFreightService(freight, messaging),
		messaging: messaging,
		repo:      freight,
	}
}

func placeDemoOffer(t *testing.T, fx *freightFixture) (*model.LoadOffer, *model.Thread) {
	t.Helper()
	ctx := context.Background()
	load := &model.Load{ShipperUID: "shipper-1", Origin: "Maputo", Destination: "Beira", CargoType: "grain"}
	if err := fx.svc.PostLoad(ctx, load); err != nil {
		t.Fatalf("post load: %v", err)
	}
	offer, th, err := fx.svc.PlaceOffer(ctx, load.ID, "hauler-1", 250_000)
	if err != nil {
		t.Fatalf("place offer: %v", err)
	}
	return offer, th
}

func TestPlaceOfferOpensThread(t *testing.T) {
	fx := newFreightFixture(t)
	ctx := context.Background()
	offer, th := placeDemoOffer(t, fx)

	if offer.Status != model.OfferStatusPending {
		t.Fatalf("status = %s, want pending", offer.Status)
	}
	if th.Kind != model.ThreadKindLoadOffer || th.OwnerID != offer.ID {
		t.Fatalf("thread not keyed to the offer: %+v", th)
	}

	// The shipper opens; the hauler waits.
	if _, err := fx.messaging.SendMessage(ctx, th.ID, "hauler-1", "hello", nil); !errors.Is(err, ErrFirstMessageNotAllowed) {
		t.Fatalf("hauler opened the offer thread: %v", err)
	}
	if _, err := fx.messaging.SendMessage(ctx, th.ID, "shipper-1", "hello", nil); err != nil {
		t.Fatalf("shipper send: %v", err)
	}

	// The thread view carries the load details.
	view, err := fx.messaging.GetThread(ctx, th.ID, "hauler-1")
	if err != nil {
		t.Fatalf("get thread: %v", err)
	}
	if view.Display["loadOrigin"] != "Maputo" || view.Display["loadDestination"] != "Beira" {
		t.Fatalf("display fields missing: %+v", view.Display)
	}
	if view.Role != RoleHauler {
		t.Fatalf("role = %q", view.Role)
	}
}

func TestPlaceOfferValidation(t *testing.T) {
	fx := newFreightFixture(t)
	ctx := context.Background()
	load := &model.Load{ShipperUID: "shipper-1", Origin: "A", Destination: "B"}
	if err := fx.svc.PostLoad(ctx, load); err != nil {
		t.Fatalf("post load: %v", err)
	}

	if _, _, err := fx.svc.PlaceOffer(ctx, load.ID, "shipper-1", 100); err == nil {
		t.Fatalf("self-bid accepted")
	}
	if _, _, err := fx.svc.PlaceOffer(ctx, load.ID, "hauler-1", 0); err == nil {
		t.Fatalf("zero amount accepted")
	}
	if _, _, err := fx.svc.PlaceOffer(ctx, 9999, "hauler-1", 100); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing load: got %v, want ErrNotFound", err)
	}
}

func TestAcceptOfferCreatesTripAndSwapsThreads(t *testing.T) {
	fx := newFreightFixture(t)
	ctx := context.Background()
	offer, offerThread := placeDemoOffer(t, fx)

	if _, _, err := fx.svc.AcceptOffer(ctx, offer.ID, "hauler-1"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-shipper accepted the offer: %v", err)
	}

	trip, tripThread, err := fx.svc.AcceptOffer(ctx, offer.ID, "shipper-1")
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if trip.Status != model.TripStatusInProgress || trip.AmountCents != offer.AmountCents {
		t.Fatalf("trip not derived from offer: %+v", trip)
	}
	if !strings.HasPrefix(trip.Reference, "TRIP-") {
		t.Fatalf("reference = %q", trip.Reference)
	}
	if tripThread.Kind != model.ThreadKindTrip || tripThread.OwnerID != trip.ID {
		t.Fatalf("trip thread not keyed to the trip: %+v", tripThread)
	}

	// The negotiation thread closes, the trip thread takes over.
	if _, err := fx.messaging.SendMessage(ctx, offerThread.ID, "shipper-1", "late", nil); !errors.Is(err, ErrThreadNotFound) {
		t.Fatalf("offer thread still writable after accept: %v", err)
	}
	if _, err := fx.messaging.SendMessage(ctx, tripThread.ID, "shipper-1", "see you at pickup", nil); err != nil {
		t.Fatalf("trip thread send: %v", err)
	}

	// A settled offer cannot be accepted again.
	if _, _, err := fx.svc.AcceptOffer(ctx, offer.ID, "shipper-1"); err == nil {
		t.Fatalf("double accept allowed")
	}
}

func TestWithdrawOfferClosesThread(t *testing.T) {
	fx := newFreightFixture(t)
	ctx := context.Background()
	offer, th := placeDemoOffer(t, fx)

	if err := fx.svc.WithdrawOffer(ctx, offer.ID, "shipper-1"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("shipper withdrew the hauler's offer: %v", err)
	}
	if err := fx.svc.WithdrawOffer(ctx, offer.ID, "hauler-1"); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	got, err := fx.repo.FindOffer(ctx, offer.ID)
	if err != nil {
		t.Fatalf("reload offer: %v", err)
	}
	if got.Status != model.OfferStatusWithdrawn {
		t.Fatalf("status = %s", got.Status)
	}
	if _, err := fx.messaging.SendMessage(ctx, th.ID, "shipper-1", "wait", nil); !errors.Is(err, ErrThreadNotFound) {
		t.Fatalf("withdrawn offer thread still writable: %v", err)
	}
}

func TestJobApplicationLifecycle(t *testing.T) {
	fx := newFreightFixture(t)
	ctx := context.Background()

	job := &model.Job{PosterUID: "poster-1", Title: "Long-haul driver", Location: "Nacala", SalaryCents: 4_500_000}
	if err := fx.svc.PostJob(ctx, job); err != nil {
		t.Fatalf("post job: %v", err)
	}
	if _, _, err := fx.svc.ApplyToJob(ctx, job.ID, "poster-1", "me"); err == nil {
		t.Fatalf("self-application accepted")
	}
	app, th, err := fx.svc.ApplyToJob(ctx, job.ID, "driver-1", "10 years experience")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if th.Kind != model.ThreadKindJob {
		t.Fatalf("thread kind = %s", th.Kind)
	}

	// Only the poster may open the conversation.
	if _, err := fx.messaging.SendMessage(ctx, th.ID, "driver-1", "hi", nil); !errors.Is(err, ErrFirstMessageNotAllowed) {
		t.Fatalf("applicant opened the thread: %v", err)
	}
	if _, err := fx.messaging.SendMessage(ctx, th.ID, "poster-1", "when can you start?", nil); err != nil {
		t.Fatalf("poster send: %v", err)
	}

	if err := fx.svc.ResolveApplication(ctx, app.ID, "driver-1", true); !errors.Is(err, ErrForbidden) {
		t.Fatalf("applicant resolved own application: %v", err)
	}
	if err := fx.svc.ResolveApplication(ctx, app.ID, "poster-1", true); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	got, _ := fx.repo.FindApplication(ctx, app.ID)
	if got.Status != model.ApplicationStatusHired {
		t.Fatalf("status = %s", got.Status)
	}
	if _, err := fx.messaging.SendMessage(ctx, th.ID, "poster-1", "welcome", nil); !errors.Is(err, ErrThreadNotFound) {
		t.Fatalf("resolved application thread still writable: %v", err)
	}
}

func TestBookingLifecycle(t *testing.T) {
	fx := newFreightFixture(t)
	ctx := context.Background()

	truck := &model.Truck{HaulerUID: "hauler-1", Plate: "MC-123-AB", TruckType: "flatbed"}
	if err := fx.svc.PostTruck(ctx, truck); err != nil {
		t.Fatalf("post truck: %v", err)
	}
	booking, th, err := fx.svc.RequestBooking(ctx, truck.ID, "shipper-1", "2026-09-10", "2026-09-12")
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	// The truck owner opens the booking conversation.
	if _, err := fx.messaging.SendMessage(ctx, th.ID, "shipper-1", "hi", nil); !errors.Is(err, ErrFirstMessageNotAllowed) {
		t.Fatalf("shipper opened the booking thread: %v", err)
	}
	if _, err := fx.messaging.SendMessage(ctx, th.ID, "hauler-1", "truck is free those days", nil); err != nil {
		t.Fatalf("hauler send: %v", err)
	}

	if err := fx.svc.ResolveBooking(ctx, booking.ID, "shipper-1", true); !errors.Is(err, ErrForbidden) {
		t.Fatalf("requester confirmed own booking: %v", err)
	}
	if err := fx.svc.ResolveBooking(ctx, booking.ID, "hauler-1", false); err != nil {
		t.Fatalf("decline: %v", err)
	}
	got, _ := fx.repo.FindBooking(ctx, booking.ID)
	if got.Status != model.BookingStatusDeclined {
		t.Fatalf("status = %s", got.Status)
	}
}

func TestResourceListingLifecycle(t *testing.T) {
	fx := newFreightFixture(t)
	ctx := context.Background()

	listing := &model.ResourceListing{ListerUID: "lister-1", Title: "Warehouse space", Category: "storage", RateCents: 90_000}
	if err := fx.svc.PostListing(ctx, listing); err != nil {
		t.Fatalf("post listing: %v", err)
	}
	app, th, err := fx.svc.ApplyToListing(ctx, listing.ID, "renter-1", "need 200sqm")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	if _, err := fx.messaging.SendMessage(ctx, th.ID, "renter-1", "hi", nil); !errors.Is(err, ErrFirstMessageNotAllowed) {
		t.Fatalf("applicant opened the listing thread: %v", err)
	}
	if _, err := fx.messaging.SendMessage(ctx, th.ID, "lister-1", "space is available", nil); err != nil {
		t.Fatalf("lister send: %v", err)
	}
	if err := fx.svc.ResolveResourceApplication(ctx, app.ID, "lister-1", true); err != nil {
		t.Fatalf("resolve: %v", err)
	}
}

func TestCompleteTrip(t *testing.T) {
	fx := newFreightFixture(t)
	ctx := context.Background()
	offer, _ := placeDemoOffer(t, fx)
	trip, tripThread, err := fx.svc.AcceptOffer(ctx, offer.ID, "shipper-1")
	if err != nil {
		t.Fatalf("accept: %v", err)
	}

	if err := fx.svc.CompleteTrip(ctx, trip.ID, "stranger"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("outsider completed the trip: %v", err)
	}
	// Either party may complete.
	if err := fx.svc.CompleteTrip(ctx, trip.ID, "hauler-1"); err != nil {
		t.Fatalf("complete: %v", err)
	}
	got, _ := fx.repo.FindTrip(ctx, trip.ID)
	if got.Status != model.TripStatusCompleted {
		t.Fatalf("status = %s", got.Status)
	}
	if _, err := fx.messaging.SendMessage(ctx, tripThread.ID, "shipper-1", "thanks", nil); !errors.Is(err, ErrThreadNotFound) {
		t.Fatalf("completed trip thread still writable: %v", err)
	}
	if err := fx.svc.CompleteTrip(ctx, trip.ID, "shipper-1"); err == nil {
		t.Fatalf("double completion allowed")
	}
}
