package model

import "time"

type Truck struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	HaulerUID  string    `gorm:"column:hauler_uid;size:128;index" json:"haulerUid"`
	Plate      string    `gorm:"column:plate;size:32" json:"plate"`
	TruckType  string    `gorm:"column:truck_type;size:64" json:"truckType"`
	CapacityKg int64     `gorm:"column:capacity_kg" json:"capacityKg"`
	BaseCity   string    `gorm:"column:base_city;size:128" json:"baseCity"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Truck) TableName() string {
	return "trucks"
}

const (
	BookingStatusRequested = "REQUESTED"
	BookingStatusConfirmed = "CONFIRMED"
	BookingStatusDeclined  = "DECLINED"
	BookingStatusCanceled  = "CANCELED"
)

// TruckBooking is a shipper's request to book a posted truck.
type TruckBooking struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	TruckID    uint64    `gorm:"column:truck_id;index" json:"truckId"`
	HaulerUID  string    `gorm:"column:hauler_uid;size:128;index" json:"haulerUid"`
	ShipperUID string    `gorm:"column:shipper_uid;size:128;index" json:"shipperUid"`
	StartDate  string    `gorm:"column:start_date;size:32" json:"startDate"`
	EndDate    string    `gorm:"column:end_date;size:32" json:"endDate"`
	Status     string    `gorm:"column:status;size:32;default:REQUESTED" json:"status"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (TruckBooking) TableName() string {
	return "truck_bookings"
}
