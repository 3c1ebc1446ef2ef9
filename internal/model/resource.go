package model

import "time"

type ResourceListing struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ListerUID string    `gorm:"column:lister_uid;size:128;index" json:"listerUid"`
	Title     string    `gorm:"column:title;size:255" json:"title"`
	Category  string    `gorm:"column:category;size:64" json:"category"`
	RateCents int64     `gorm:"column:rate_cents" json:"rateCents"`
	City      string    `gorm:"column:city;size:128" json:"city"`
	IsOpen    bool      `gorm:"column:is_open;default:true" json:"isOpen"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (ResourceListing) TableName() string {
	return "resource_listings"
}

type ResourceApplication struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ListingID    uint64    `gorm:"column:listing_id;index" json:"listingId"`
	ListerUID    string    `gorm:"column:lister_uid;size:128;index" json:"listerUid"`
	ApplicantUID string    `gorm:"column:applicant_uid;size:128;index" json:"applicantUid"`
	Note         string    `gorm:"column:note;type:text" json:"note"`
	Status       string    `gorm:"column:status;size:32;default:PENDING" json:"status"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (ResourceApplication) TableName() string {
	return "resource_applications"
}
