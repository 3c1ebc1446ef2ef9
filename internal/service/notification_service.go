package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/cargolink/freight-backend/internal/model"
	"github.com/cargolink/freight-backend/internal/repository"
)

// Mailer delivers one plain-text mail. Implementations live in internal/mail.
type Mailer interface {
	Send(to, subject, body string) error
}

type NotificationService interface {
	Dispatcher

	List(ctx context.Context, userUID string, unreadOnly bool, limit int) ([]model.Notification, int64, error)
	MarkAllRead(ctx context.Context, userUID string) error
	GetPreferences(ctx context.Context, uid string) (*model.NotificationPreference, error)
	UpdatePreferences(ctx context.Context, p *model.NotificationPreference) error
}

type notificationService struct {
	repo      repository.NotificationRepository
	prefs     repository.PreferenceRepository
	directory UserDirectory
	mailer    Mailer
}

func NewNotificationService(repo repository.NotificationRepository, prefs repository.PreferenceRepository, directory UserDirectory, mailer Mailer) NotificationService {
	return &notificationService{repo: repo, prefs: prefs, directory: directory, mailer: mailer}
}

// withShortDeadline bounds the detached dispatch work so it can never hang
// around long after the send that triggered it.
func withShortDeadline() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

// DispatchMessage runs fully detached from the send path: it spawns its own
// goroutine with its own deadline, and every failure — preference lookup,
// contact resolution, delivery — is logged and swallowed.
func (s *notificationService) DispatchMessage(t *model.Thread, m *model.Message, recipientUID, senderName string) {
	if recipientUID == "" {
		return
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("notification dispatch panic: %v", r)
			}
		}()
		s.deliver(t, m, recipientUID, senderName)
	}()
}

// MarkThreadRead retires the recipient's in-app notifications for a thread
// they just opened. Best-effort, like dispatch.
func (s *notificationService) MarkThreadRead(recipientUID string, threadID uint64) {
	ctx, cancel := withShortDeadline()
	defer cancel()
	if err := s.repo.MarkByThread(ctx, recipientUID, threadID); err != nil {
		log.Printf("notification read sync for %s failed: %v", recipientUID, err)
	}
}

func (s *notificationService) deliver(t *model.Thread, m *model.Message, recipientUID, senderName string) {
	ctx, cancel := withShortDeadline()
	defer cancel()

	allowed, err := s.allowed(ctx, recipientUID, t.Kind)
	if err != nil {
		log.Printf("notification preference lookup for %s failed: %v", recipientUID, err)
		return
	}
	if !allowed {
		return
	}

	preview := preview(m.Body)
	threadID := t.ID
	n := &model.Notification{
		UserUID:  recipientUID,
		Type:     "message." + string(t.Kind),
		Title:    fmt.Sprintf("New message from %s", senderName),
		Body:     preview,
		ThreadID: &threadID,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		log.Printf("notification row for %s failed: %v", recipientUID, err)
	}

	contact, err := s.directory.ResolveContact(ctx, recipientUID)
	if err != nil {
		log.Printf("contact resolution for %s failed: %v", recipientUID, err)
		return
	}
	subject := fmt.Sprintf("New %s message from %s", kindLabel(t.Kind), senderName)
	body := fmt.Sprintf("%s wrote:\n\n%s\n\nOpen your cargolink inbox to reply.", senderName, preview)
	if err := s.mailer.Send(contact.Address, subject, body); err != nil {
		log.Printf("mail to %s failed: %v", recipientUID, err)
	}
}

// allowed checks the master switch and the per-kind switch; no preference
// row at all means everything is allowed.
func (s *notificationService) allowed(ctx context.Context, uid string, kind model.ThreadKind) (bool, error) {
	p, err := s.prefs.Find(ctx, uid)
	if err != nil {
		return false, err
	}
	if p == nil {
		return true, nil
	}
	return p.AllowsKind(kind), nil
}

func preview(body string) string {
	runes := []rune(body)
	if len(runes) <= 120 {
		return body
	}
	return string(runes[:120]) + "…"
}

func kindLabel(kind model.ThreadKind) string {
	switch kind {
	case model.ThreadKindLoadOffer:
		return "load offer"
	case model.ThreadKindJob:
		return "job application"
	case model.ThreadKindTruckBooking:
		return "truck booking"
	case model.ThreadKindResource:
		return "resource listing"
	case model.ThreadKindTrip:
		return "trip"
	}
	return string(kind)
}

func (s *notificationService) List(ctx context.Context, userUID string, unreadOnly bool, limit int) ([]model.Notification, int64, error) {
	if userUID == "" {
		return nil, 0, nil
	}
	list, err := s.repo.ListByUser(ctx, userUID, unreadOnly, limit)
	if err != nil {
		return nil, 0, err
	}
	cnt, err := s.repo.CountUnread(ctx, userUID)
	if err != nil {
		return list, 0, err
	}
	return list, cnt, nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userUID string) error {
	if userUID == "" {
		return nil
	}
	return s.repo.MarkAllRead(ctx, userUID)
}

func (s *notificationService) GetPreferences(ctx context.Context, uid string) (*model.NotificationPreference, error) {
	p, err := s.prefs.Find(ctx, uid)
	if err != nil {
		return nil, err
	}
	if p == nil {
		// Defaults mirror the absent-row semantics: everything on.
		return &model.NotificationPreference{
			UID:                 uid,
			Master:              true,
			LoadOfferEnabled:    true,
			JobEnabled:          true,
			TruckBookingEnabled: true,
			ResourceEnabled:     true,
			TripEnabled:         true,
		}, nil
	}
	return p, nil
}

func (s *notificationService) UpdatePreferences(ctx context.Context, p *model.NotificationPreference) error {
	if p.UID == "" {
		return ErrForbidden
	}
	return s.prefs.Upsert(ctx, p)
}
