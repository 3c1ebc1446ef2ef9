package model

import "time"

type Job struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	PosterUID   string    `gorm:"column:poster_uid;size:128;index" json:"posterUid"`
	Title       string    `gorm:"column:title;size:255" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Location    string    `gorm:"column:location;size:255" json:"location"`
	SalaryCents int64     `gorm:"column:salary_cents" json:"salaryCents"`
	IsOpen      bool      `gorm:"column:is_open;default:true" json:"isOpen"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Job) TableName() string {
	return "jobs"
}

const (
	ApplicationStatusPending  = "PENDING"
	ApplicationStatusHired    = "HIRED"
	ApplicationStatusRejected = "REJECTED"
)

type JobApplication struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	JobID        uint64    `gorm:"column:job_id;index" json:"jobId"`
	PosterUID    string    `gorm:"column:poster_uid;size:128;index" json:"posterUid"`
	ApplicantUID string    `gorm:"column:applicant_uid;size:128;index" json:"applicantUid"`
	CoverNote    string    `gorm:"column:cover_note;type:text" json:"coverNote"`
	Status       string    `gorm:"column:status;size:32;default:PENDING" json:"status"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (JobApplication) TableName() string {
	return "job_applications"
}
