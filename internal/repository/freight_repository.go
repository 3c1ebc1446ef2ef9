package repository

import (
	"context"

	"github.com/cargolink/freight-backend/internal/model"
	"gorm.io/gorm"
)

// FreightRepository persists the business objects whose lifecycle drives
// thread creation and deactivation.
type FreightRepository interface {
	CreateLoad(ctx context.Context, l *model.Load) error
	FindLoad(ctx context.Context, id uint64) (*model.Load, error)
	CreateOffer(ctx context.Context, o *model.LoadOffer) error
	FindOffer(ctx context.Context, id uint64) (*model.LoadOffer, error)
	UpdateOfferStatus(ctx context.Context, id uint64, status string) error

	CreateJob(ctx context.Context, j *model.Job) error
	FindJob(ctx context.Context, id uint64) (*model.Job, error)
	CreateApplication(ctx context.Context, a *model.JobApplication) error
	FindApplication(ctx context.Context, id uint64) (*model.JobApplication, error)
	UpdateApplicationStatus(ctx context.Context, id uint64, status string) error

	CreateTruck(ctx context.Context, t *model.Truck) error
	FindTruck(ctx context.Context, id uint64) (*model.Truck, error)
	CreateBooking(ctx context.Context, b *model.TruckBooking) error
	FindBooking(ctx context.Context, id uint64) (*model.TruckBooking, error)
	UpdateBookingStatus(ctx context.Context, id uint64, status string) error

	CreateListing(ctx context.Context, l *model.ResourceListing) error
	FindListing(ctx context.Context, id uint64) (*model.ResourceListing, error)
	CreateResourceApplication(ctx context.Context, a *model.ResourceApplication) error
	FindResourceApplication(ctx context.Context, id uint64) (*model.ResourceApplication, error)
	UpdateResourceApplicationStatus(ctx context.Context, id uint64, status string) error

	CreateTrip(ctx context.Context, t *model.Trip) error
	FindTrip(ctx context.Context, id uint64) (*model.Trip, error)
	UpdateTripStatus(ctx context.Context, id uint64, status string) error

	SetDB(db *gorm.DB)
}

type freightRepository struct {
	db *gorm.DB
}

func NewFreightRepository(db *gorm.DB) FreightRepository {
	return &freightRepository{db: db}
}

func (r *freightRepository) SetDB(db *gorm.DB) {
	r.db = db
}

func (r *freightRepository) create(ctx context.Context, v interface{}) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *freightRepository) find(ctx context.Context, dest interface{}, id uint64) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).First(dest, id).Error
}

func (r *freightRepository) setStatus(ctx context.Context, m interface{}, id uint64, status string) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Model(m).Where("id = ?", id).Update("status", status).Error
}

func (r *freightRepository) CreateLoad(ctx context.Context, l *model.Load) error {
	return r.create(ctx, l)
}

func (r *freightRepository) FindLoad(ctx context.Context, id uint64) (*model.Load, error) {
	var l model.Load
	if err := r.find(ctx, &l, id); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *freightRepository) CreateOffer(ctx context.Context, o *model.LoadOffer) error {
	return r.create(ctx, o)
}

func (r *freightRepository) FindOffer(ctx context.Context, id uint64) (*model.LoadOffer, error) {
	var o model.LoadOffer
	if err := r.find(ctx, &o, id); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *freightRepository) UpdateOfferStatus(ctx context.Context, id uint64, status string) error {
	return r.setStatus(ctx, &model.LoadOffer{}, id, status)
}

func (r *freightRepository) CreateJob(ctx context.Context, j *model.Job) error {
	return r.create(ctx, j)
}

func (r *freightRepository) FindJob(ctx context.Context, id uint64) (*model.Job, error) {
	var j model.Job
	if err := r.find(ctx, &j, id); err != nil {
		return nil, err
	}
	return &j, nil
}

func (r *freightRepository) CreateApplication(ctx context.Context, a *model.JobApplication) error {
	return r.create(ctx, a)
}

func (r *freightRepository) FindApplication(ctx context.Context, id uint64) (*model.JobApplication, error) {
	var a model.JobApplication
	if err := r.find(ctx, &a, id); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *freightRepository) UpdateApplicationStatus(ctx context.Context, id uint64, status string) error {
	return r.setStatus(ctx, &model.JobApplication{}, id, status)
}

func (r *freightRepository) CreateTruck(ctx context.Context, t *model.Truck) error {
	return r.create(ctx, t)
}

func (r *freightRepository) FindTruck(ctx context.Context, id uint64) (*model.Truck, error) {
	var t model.Truck
	if err := r.find(ctx, &t, id); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *freightRepository) CreateBooking(ctx context.Context, b *model.TruckBooking) error {
	return r.create(ctx, b)
}

func (r *freightRepository) FindBooking(ctx context.Context, id uint64) (*model.TruckBooking, error) {
	var b model.TruckBooking
	if err := r.find(ctx, &b, id); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *freightRepository) UpdateBookingStatus(ctx context.Context, id uint64, status string) error {
	return r.setStatus(ctx, &model.TruckBooking{}, id, status)
}

func (r *freightRepository) CreateListing(ctx context.Context, l *model.ResourceListing) error {
	return r.create(ctx, l)
}

func (r *freightRepository) FindListing(ctx context.Context, id uint64) (*model.ResourceListing, error) {
	var l model.ResourceListing
	if err := r.find(ctx, &l, id); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *freightRepository) CreateResourceApplication(ctx context.Context, a *model.ResourceApplication) error {
	return r.create(ctx, a)
}

func (r *freightRepository) FindResourceApplication(ctx context.Context, id uint64) (*model.ResourceApplication, error) {
	var a model.ResourceApplication
	if err := r.find(ctx, &a, id); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *freightRepository) UpdateResourceApplicationStatus(ctx context.Context, id uint64, status string) error {
	return r.setStatus(ctx, &model.ResourceApplication{}, id, status)
}

func (r *freightRepository) CreateTrip(ctx context.Context, t *model.Trip) error {
	return r.create(ctx, t)
}

func (r *freightRepository) FindTrip(ctx context.Context, id uint64) (*model.Trip, error) {
	var t model.Trip
	if err := r.find(ctx, &t, id); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *freightRepository) UpdateTripStatus(ctx context.Context, id uint64, status string) error {
	return r.setStatus(ctx, &model.Trip{}, id, status)
}
