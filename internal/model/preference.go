package model

import "time"

// NotificationPreference holds a user's delivery switches. A missing row
// means everything is allowed; a present row requires Master plus the
// per-kind switch for delivery to happen.
type NotificationPreference struct {
	UID                 string    `gorm:"column:uid;primaryKey;size:128"`
	Master              bool      `gorm:"column:master;default:true"`
	LoadOfferEnabled    bool      `gorm:"column:load_offer_enabled;default:true"`
	JobEnabled          bool      `gorm:"column:job_enabled;default:true"`
	TruckBookingEnabled bool      `gorm:"column:truck_booking_enabled;default:true"`
	ResourceEnabled     bool      `gorm:"column:resource_enabled;default:true"`
	TripEnabled         bool      `gorm:"column:trip_enabled;default:true"`
	CreatedAt           time.Time `gorm:"autoCreateTime"`
	UpdatedAt           time.Time `gorm:"autoUpdateTime"`
}

func (NotificationPreference) TableName() string {
	return "notification_preferences"
}

// AllowsKind evaluates the master switch and the per-kind switch.
func (p *NotificationPreference) AllowsKind(kind ThreadKind) bool {
	if !p.Master {
		return false
	}
	switch kind {
	case ThreadKindLoadOffer:
		return p.LoadOfferEnabled
	case ThreadKindJob:
		return p.JobEnabled
	case ThreadKindTruckBooking:
		return p.TruckBookingEnabled
	case ThreadKindResource:
		return p.ResourceEnabled
	case ThreadKindTrip:
		return p.TripEnabled
	}
	return true
}
