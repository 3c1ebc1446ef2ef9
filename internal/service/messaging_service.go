package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cargolink/freight-backend/internal/model"
	"github.com/cargolink/freight-backend/internal/repository"
	"gorm.io/gorm"
)

// Fanout pushes an event to every live connection subscribed to the given
// rooms. Delivery is at-most-once and best-effort; the store stays the
// source of truth.
type Fanout interface {
	Publish(event string, payload interface{}, rooms ...string)
}

// Dispatcher is the notification side of the messaging engine: it notifies
// the non-sending party about a new message and retires those notifications
// once the recipient reads the thread. Failures are logged inside, never
// returned.
type Dispatcher interface {
	DispatchMessage(t *model.Thread, m *model.Message, recipientUID, senderName string)
	MarkThreadRead(recipientUID string, threadID uint64)
}

func ThreadRoom(threadID uint64) string {
	return fmt.Sprintf("thread:%d", threadID)
}

func UserRoom(uid string) string {
	return fmt.Sprintf("user:%s", uid)
}

const (
	EventMessageCreated    = "message.created"
	EventThreadListUpdated = "threadList.updated"
)

// ThreadView is a thread enriched for the caller: their role label, inbox
// metadata, and the kind-specific display fields.
type ThreadView struct {
	model.Thread
	Role          string                 `json:"role"`
	LastMessage   *string                `json:"lastMessage"`
	LastMessageAt *string                `json:"lastMessageAt"`
	UnreadCount   int64                  `json:"unreadCount"`
	Display       map[string]interface{} `json:"display,omitempty"`
}

// MessageView is a message plus the resolved display name of its sender.
type MessageView struct {
	model.Message
	SenderName string `json:"senderName"`
}

type MessagingService interface {
	// OpenThread is called by the workflow layer when a business object
	// enters a negotiation-eligible state. Idempotent per (kind, owner).
	OpenThread(ctx context.Context, kind model.ThreadKind, ownerID uint64, partyAUID, partyBUID string) (*model.Thread, error)
	// DeactivateThread is the terminal-state hook; a missing or already
	// inactive thread is a no-op.
	DeactivateThread(ctx context.Context, kind model.ThreadKind, ownerID uint64) error

	ListThreads(ctx context.Context, uid string) ([]ThreadView, error)
	GetThread(ctx context.Context, threadID uint64, uid string) (*ThreadView, error)
	// ListMessages advances the caller's read watermark before fetching.
	ListMessages(ctx context.Context, threadID uint64, uid string) ([]MessageView, error)
	SendMessage(ctx context.Context, threadID uint64, uid, body string, attachments []string) (*MessageView, error)
	MarkRead(ctx context.Context, threadID uint64, uid string) error

	// VerifyParticipant reports whether uid may subscribe to the thread's
	// realtime room.
	VerifyParticipant(ctx context.Context, threadID uint64, uid string) error
}

type messagingService struct {
	threads    repository.ThreadRepository
	policies   PolicyRegistry
	fanout     Fanout
	dispatcher Dispatcher
	directory  UserDirectory
}

func NewMessagingService(threads repository.ThreadRepository, policies PolicyRegistry, fanout Fanout, dispatcher Dispatcher, directory UserDirectory) MessagingService {
	return &messagingService{
		threads:    threads,
		policies:   policies,
		fanout:     fanout,
		dispatcher: dispatcher,
		directory:  directory,
	}
}

func (s *messagingService) OpenThread(ctx context.Context, kind model.ThreadKind, ownerID uint64, partyAUID, partyBUID string) (*model.Thread, error) {
	if _, ok := s.policies[kind]; !ok {
		return nil, fmt.Errorf("unknown thread kind %q", kind)
	}
	if partyAUID == "" || partyBUID == "" {
		return nil, errors.New("both parties are required")
	}
	if partyAUID == partyBUID {
		return nil, errors.New("thread parties must differ")
	}
	return s.threads.FindOrCreate(ctx, kind, ownerID, partyAUID, partyBUID)
}

func (s *messagingService) DeactivateThread(ctx context.Context, kind model.ThreadKind, ownerID uint64) error {
	t, err := s.threads.FindActiveByOwner(ctx, kind, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	return s.threads.Deactivate(ctx, t.ID)
}

// guard loads the thread and resolves the caller's role. Missing thread,
// non-party caller, and (when requireActive) inactive thread all collapse
// into ErrThreadNotFound.
func (s *messagingService) guard(ctx context.Context, threadID uint64, uid string, requireActive bool) (*model.Thread, DomainPolicy, string, error) {
	t, err := s.threads.FindByID(ctx, threadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, DomainPolicy{}, "", ErrThreadNotFound
		}
		return nil, DomainPolicy{}, "", err
	}
	policy, ok := s.policies[t.Kind]
	if !ok {
		return nil, DomainPolicy{}, "", ErrThreadNotFound
	}
	role, ok := policy.RoleFor(t, uid)
	if !ok {
		return nil, DomainPolicy{}, "", ErrThreadNotFound
	}
	if requireActive && !t.IsActive {
		return nil, DomainPolicy{}, "", ErrThreadNotFound
	}
	return t, policy, role, nil
}

func (s *messagingService) VerifyParticipant(ctx context.Context, threadID uint64, uid string) error {
	_, _, _, err := s.guard(ctx, threadID, uid, false)
	return err
}

func (s *messagingService) ListThreads(ctx context.Context, uid string) ([]ThreadView, error) {
	metas, err := s.threads.ListActiveByUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	views := make([]ThreadView, 0, len(metas))
	for _, m := range metas {
		views = append(views, s.toView(ctx, m, uid))
	}
	return views, nil
}

func (s *messagingService) GetThread(ctx context.Context, threadID uint64, uid string) (*ThreadView, error) {
	t, policy, role, err := s.guard(ctx, threadID, uid, false)
	if err != nil {
		return nil, err
	}
	cnt, err := s.threads.CountUnread(ctx, t, uid)
	if err != nil {
		return nil, err
	}
	v := ThreadView{Thread: *t, Role: role, UnreadCount: cnt}
	v.Display = s.hydrate(ctx, policy, t)
	return &v, nil
}

func (s *messagingService) ListMessages(ctx context.Context, threadID uint64, uid string) ([]MessageView, error) {
	t, _, _, err := s.guard(ctx, threadID, uid, false)
	if err != nil {
		return nil, err
	}
	// Watermark first: opening the thread counts as reading it even if the
	// fetch below fails and the client retries.
	if err := s.threads.MarkRead(ctx, t.ID, uid); err != nil {
		return nil, err
	}
	s.dispatcher.MarkThreadRead(uid, t.ID)
	msgs, err := s.threads.ListMessages(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	names := map[string]string{}
	views := make([]MessageView, 0, len(msgs))
	for _, m := range msgs {
		views = append(views, MessageView{Message: m, SenderName: s.senderName(ctx, names, m.SenderUID)})
	}
	return views, nil
}

func (s *messagingService) MarkRead(ctx context.Context, threadID uint64, uid string) error {
	t, _, _, err := s.guard(ctx, threadID, uid, false)
	if err != nil {
		return err
	}
	if err := s.threads.MarkRead(ctx, t.ID, uid); err != nil {
		return err
	}
	s.dispatcher.MarkThreadRead(uid, t.ID)
	return nil
}

func (s *messagingService) SendMessage(ctx context.Context, threadID uint64, uid, body string, attachments []string) (*MessageView, error) {
	t, policy, role, err := s.guard(ctx, threadID, uid, true)
	if err != nil {
		return nil, err
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyMessage
	}
	if !t.FirstMessageSent && !policy.MayOpen(role) {
		return nil, ErrFirstMessageNotAllowed
	}
	msg := &model.Message{
		ThreadID:   t.ID,
		SenderUID:  uid,
		SenderRole: role,
		Body:       body,
	}
	for i, ref := range attachments {
		msg.Attachments = append(msg.Attachments, model.MessageAttachment{Position: i, Ref: ref})
	}
	if err := s.threads.AppendMessage(ctx, msg); err != nil {
		return nil, err
	}

	view := &MessageView{Message: *msg, SenderName: s.senderName(ctx, map[string]string{}, uid)}
	s.broadcast(ctx, t, view)
	s.dispatcher.DispatchMessage(t, msg, t.OtherParty(uid), view.SenderName)
	return view, nil
}

// broadcast publishes the new message to the thread room and a refreshed
// inbox to each party's personal room. Two distinct events: a party with
// the thread open needs the message, a party with only the inbox open needs
// the recomputed list.
func (s *messagingService) broadcast(ctx context.Context, t *model.Thread, msg *MessageView) {
	s.fanout.Publish(EventMessageCreated, map[string]interface{}{
		"threadId": t.ID,
		"message":  msg,
	}, ThreadRoom(t.ID))

	for _, uid := range []string{t.PartyAUID, t.PartyBUID} {
		views, err := s.ListThreads(ctx, uid)
		if err != nil {
			log.Printf("thread list refresh for %s failed: %v", uid, err)
			continue
		}
		s.fanout.Publish(EventThreadListUpdated, map[string]interface{}{
			"threads": views,
		}, UserRoom(uid))
	}
}

func (s *messagingService) toView(ctx context.Context, m repository.ThreadWithMeta, uid string) ThreadView {
	v := ThreadView{Thread: m.Thread, UnreadCount: m.UnreadCount, LastMessage: m.LastMessage}
	if m.LastMessageAt != nil {
		formatted := m.LastMessageAt.UTC().Format(time.RFC3339)
		v.LastMessageAt = &formatted
	}
	policy, ok := s.policies[m.Thread.Kind]
	if !ok {
		return v
	}
	if role, ok := policy.RoleFor(&m.Thread, uid); ok {
		v.Role = role
	}
	v.Display = s.hydrate(ctx, policy, &m.Thread)
	return v
}

// hydrate never fails the request: an unreachable owning object just means
// an un-enriched thread.
func (s *messagingService) hydrate(ctx context.Context, policy DomainPolicy, t *model.Thread) map[string]interface{} {
	if policy.Hydrate == nil {
		return nil
	}
	fields, err := policy.Hydrate(ctx, t.OwnerID)
	if err != nil {
		log.Printf("hydrate %s/%d failed: %v", t.Kind, t.OwnerID, err)
		return nil
	}
	return fields
}

func (s *messagingService) senderName(ctx context.Context, cache map[string]string, uid string) string {
	if name, ok := cache[uid]; ok {
		return name
	}
	name := uid
	if s.directory != nil {
		if contact, err := s.directory.ResolveContact(ctx, uid); err == nil && contact.Name != "" {
			name = contact.Name
		}
	}
	cache[uid] = name
	return name
}
