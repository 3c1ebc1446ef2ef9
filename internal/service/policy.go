package service

import (
	"context"

	"github.com/cargolink/freight-backend/internal/model"
	"github.com/cargolink/freight-backend/internal/repository"
)

// Role labels layered over the fixed party-A/party-B pair.
const (
	RoleShipper   = "shipper"
	RoleHauler    = "hauler"
	RoleJobPoster = "job_poster"
	RoleApplicant = "applicant"
	RoleLister    = "lister"
)

// Hydrator attaches read-only display fields from the owning business
// object. A failing hydrator degrades to an un-enriched thread.
type Hydrator func(ctx context.Context, ownerID uint64) (map[string]interface{}, error)

// DomainPolicy is the per-kind variation point of the messaging engine:
// what the two parties are called, which role may send the opening message,
// and how to enrich the thread for listing views.
type DomainPolicy struct {
	Kind       model.ThreadKind
	PartyARole string
	PartyBRole string
	OpenerRole string
	Hydrate    Hydrator
}

// RoleFor maps a participant uid to its domain role label.
func (p DomainPolicy) RoleFor(t *model.Thread, uid string) (string, bool) {
	switch uid {
	case "":
		return "", false
	case t.PartyAUID:
		return p.PartyARole, true
	case t.PartyBUID:
		return p.PartyBRole, true
	}
	return "", false
}

// MayOpen is the first-message gate, consulted only while the thread has no
// messages. The rule restricts by role, not by single winner, so two racing
// senders of the permitted role are both allowed.
func (p DomainPolicy) MayOpen(role string) bool {
	return role == p.OpenerRole
}

type PolicyRegistry map[model.ThreadKind]DomainPolicy

// NewPolicyRegistry wires the five negotiation kinds. Opener rules: the
// shipper opens load-offer and trip threads, the hauler opens truck-booking
// threads, and the publishing party opens job and resource threads.
func NewPolicyRegistry(freight repository.FreightRepository) PolicyRegistry {
	return PolicyRegistry{
		model.ThreadKindLoadOffer: {
			Kind:       model.ThreadKindLoadOffer,
			PartyARole: RoleShipper,
			PartyBRole: RoleHauler,
			OpenerRole: RoleShipper,
			Hydrate: func(ctx context.Context, ownerID uint64) (map[string]interface{}, error) {
				offer, err := freight.FindOffer(ctx, ownerID)
				if err != nil {
					return nil, err
				}
				load, err := freight.FindLoad(ctx, offer.LoadID)
				if err != nil {
					return nil, err
				}
				return map[string]interface{}{
					"loadOrigin":      load.Origin,
					"loadDestination": load.Destination,
					"cargoType":       load.CargoType,
					"amountCents":     offer.AmountCents,
					"offerStatus":     offer.Status,
				}, nil
			},
		},
		model.ThreadKindJob: {
			Kind:       model.ThreadKindJob,
			PartyARole: RoleJobPoster,
			PartyBRole: RoleApplicant,
			OpenerRole: RoleJobPoster,
			Hydrate: func(ctx context.Context, ownerID uint64) (map[string]interface{}, error) {
				app, err := freight.FindApplication(ctx, ownerID)
				if err != nil {
					return nil, err
				}
				job, err := freight.FindJob(ctx, app.JobID)
				if err != nil {
					return nil, err
				}
				return map[string]interface{}{
					"jobTitle":          job.Title,
					"jobLocation":       job.Location,
					"salaryCents":       job.SalaryCents,
					"applicationStatus": app.Status,
				}, nil
			},
		},
		model.ThreadKindTruckBooking: {
			Kind:       model.ThreadKindTruckBooking,
			PartyARole: RoleHauler,
			PartyBRole: RoleShipper,
			OpenerRole: RoleHauler,
			Hydrate: func(ctx context.Context, ownerID uint64) (map[string]interface{}, error) {
				booking, err := freight.FindBooking(ctx, ownerID)
				if err != nil {
					return nil, err
				}
				truck, err := freight.FindTruck(ctx, booking.TruckID)
				if err != nil {
					return nil, err
				}
				return map[string]interface{}{
					"truckPlate":    truck.Plate,
					"truckType":     truck.TruckType,
					"startDate":     booking.StartDate,
					"endDate":       booking.EndDate,
					"bookingStatus": booking.Status,
				}, nil
			},
		},
		model.ThreadKindResource: {
			Kind:       model.ThreadKindResource,
			PartyARole: RoleLister,
			PartyBRole: RoleApplicant,
			OpenerRole: RoleLister,
			Hydrate: func(ctx context.Context, ownerID uint64) (map[string]interface{}, error) {
				app, err := freight.FindResourceApplication(ctx, ownerID)
				if err != nil {
					return nil, err
				}
				listing, err := freight.FindListing(ctx, app.ListingID)
				if err != nil {
					return nil, err
				}
				return map[string]interface{}{
					"listingTitle":      listing.Title,
					"listingCategory":   listing.Category,
					"rateCents":         listing.RateCents,
					"applicationStatus": app.Status,
				}, nil
			},
		},
		model.ThreadKindTrip: {
			Kind:       model.ThreadKindTrip,
			PartyARole: RoleShipper,
			PartyBRole: RoleHauler,
			OpenerRole: RoleShipper,
			Hydrate: func(ctx context.Context, ownerID uint64) (map[string]interface{}, error) {
				trip, err := freight.FindTrip(ctx, ownerID)
				if err != nil {
					return nil, err
				}
				return map[string]interface{}{
					"reference":   trip.Reference,
					"amountCents": trip.AmountCents,
					"tripStatus":  trip.Status,
					"loadId":      trip.LoadID,
				}, nil
			},
		},
	}
}
