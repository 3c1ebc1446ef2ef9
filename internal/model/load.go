package model

import "time"

type Load struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ShipperUID  string    `gorm:"column:shipper_uid;size:128;index" json:"shipperUid"`
	Origin      string    `gorm:"column:origin;size:255" json:"origin"`
	Destination string    `gorm:"column:destination;size:255" json:"destination"`
	CargoType   string    `gorm:"column:cargo_type;size:64" json:"cargoType"`
	WeightKg    int64     `gorm:"column:weight_kg" json:"weightKg"`
	PickupDate  string    `gorm:"column:pickup_date;size:32" json:"pickupDate"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Load) TableName() string {
	return "loads"
}

const (
	OfferStatusPending   = "PENDING"
	OfferStatusAccepted  = "ACCEPTED"
	OfferStatusWithdrawn = "WITHDRAWN"
	OfferStatusRejected  = "REJECTED"
)

// LoadOffer is a hauler's bid on a posted load. Each offer owns its own
// negotiation thread.
type LoadOffer struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	LoadID      uint64    `gorm:"column:load_id;index" json:"loadId"`
	ShipperUID  string    `gorm:"column:shipper_uid;size:128;index" json:"shipperUid"`
	HaulerUID   string    `gorm:"column:hauler_uid;size:128;index" json:"haulerUid"`
	AmountCents int64     `gorm:"column:amount_cents" json:"amountCents"`
	Status      string    `gorm:"column:status;size:32;default:PENDING" json:"status"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (LoadOffer) TableName() string {
	return "load_offers"
}
