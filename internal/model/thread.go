package model

import "time"

// ThreadKind selects the negotiation domain a thread belongs to.
type ThreadKind string

const (
	ThreadKindLoadOffer    ThreadKind = "load_offer"
	ThreadKindJob          ThreadKind = "job"
	ThreadKindTruckBooking ThreadKind = "truck_booking"
	ThreadKindResource     ThreadKind = "resource"
	ThreadKindTrip         ThreadKind = "trip"
)

// Thread is the two-party conversation attached to one business object,
// identified by (kind, owner_id). Read watermarks live on the thread itself;
// there is no separate receipts table.
type Thread struct {
	ID               uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Kind             ThreadKind `gorm:"column:kind;size:32;index:idx_kind_owner" json:"kind"`
	OwnerID          uint64     `gorm:"column:owner_id;index:idx_kind_owner" json:"ownerId"`
	PartyAUID        string     `gorm:"column:party_a_uid;size:128;index" json:"partyAUid"`
	PartyBUID        string     `gorm:"column:party_b_uid;size:128;index" json:"partyBUid"`
	IsActive         bool       `gorm:"column:is_active;default:true" json:"isActive"`
	FirstMessageSent bool       `gorm:"column:first_message_sent;default:false" json:"firstMessageSent"`
	PartyALastReadAt *time.Time `gorm:"column:party_a_last_read_at" json:"partyALastReadAt"`
	PartyBLastReadAt *time.Time `gorm:"column:party_b_last_read_at" json:"partyBLastReadAt"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Thread) TableName() string {
	return "threads"
}

// IsParty reports whether uid is one of the thread's two participants.
func (t *Thread) IsParty(uid string) bool {
	return uid != "" && (uid == t.PartyAUID || uid == t.PartyBUID)
}

// OtherParty returns the counterpart of uid, or "" when uid is not a party.
func (t *Thread) OtherParty(uid string) string {
	switch uid {
	case t.PartyAUID:
		return t.PartyBUID
	case t.PartyBUID:
		return t.PartyAUID
	}
	return ""
}

// LastReadFor returns the watermark of the given participant.
func (t *Thread) LastReadFor(uid string) *time.Time {
	if uid == t.PartyAUID {
		return t.PartyALastReadAt
	}
	if uid == t.PartyBUID {
		return t.PartyBLastReadAt
	}
	return nil
}
