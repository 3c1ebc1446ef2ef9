package model

import "time"

const (
	TripStatusInProgress = "IN_PROGRESS"
	TripStatusCompleted  = "COMPLETED"
)

// Trip is created when a load offer is accepted; it carries the coordination
// thread between shipper and hauler for the actual haul.
type Trip struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	OfferID     uint64    `gorm:"column:offer_id;uniqueIndex" json:"offerId"`
	LoadID      uint64    `gorm:"column:load_id;index" json:"loadId"`
	ShipperUID  string    `gorm:"column:shipper_uid;size:128;index" json:"shipperUid"`
	HaulerUID   string    `gorm:"column:hauler_uid;size:128;index" json:"haulerUid"`
	Reference   string    `gorm:"column:reference;size:64" json:"reference"`
	AmountCents int64     `gorm:"column:amount_cents" json:"amountCents"`
	Status      string    `gorm:"column:status;size:32;default:IN_PROGRESS" json:"status"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Trip) TableName() string {
	return "trips"
}
