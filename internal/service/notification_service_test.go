package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/cargolink/freight-backend/internal/model"
	"github.com/cargolink/freight-backend/internal/repository"
)

type recordingMailer struct {
	mu    sync.Mutex
	fail  bool
	sent  []string
	last  string
	lastB string
}

func (m *recordingMailer) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("smtp down")
	}
	m.sent = append(m.sent, to)
	m.last = subject
	m.lastB = body
	return nil
}

type notificationFixture struct {
	svc    *notificationService
	mailer *recordingMailer
	prefs  repository.PreferenceRepository
	notifs repository.NotificationRepository
}

func newNotificationFixture(t *testing.T) *notificationFixture {
	t.Helper()
	db := newTestDB(t)
	notifs := repository.NewNotificationRepository(db)
	prefs := repository.NewPreferenceRepository(db)
	mailer := &recordingMailer{}
	directory := &stubDirectory{names: map[string]string{"hauler-1": "Rodrigues Haulage"}}
	svc := NewNotificationService(notifs, prefs, directory, mailer).(*notificationService)
	return &notificationFixture{svc: svc, mailer: mailer, prefs: prefs, notifs: notifs}
}

func dispatchFixtures() (*model.Thread, *model.Message) {
	t := &model.Thread{ID: 42, Kind: model.ThreadKindLoadOffer, PartyAUID: "shipper-1", PartyBUID: "hauler-1", IsActive: true}
	m := &model.Message{ID: 7, ThreadID: 42, SenderUID: "shipper-1", Body: "can you do Tuesday?"}
	return t, m
}

func TestDeliverWritesRowAndSendsMail(t *testing.T) {
	fx := newNotificationFixture(t)
	th, msg := dispatchFixtures()

	fx.svc.deliver(th, msg, "hauler-1", "Acme Logistics")

	list, unread, err := fx.svc.List(context.Background(), "hauler-1", false, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || unread != 1 {
		t.Fatalf("got %d notifications (%d unread), want 1/1", len(list), unread)
	}
	n := list[0]
	if n.ThreadID == nil || *n.ThreadID != th.ID {
		t.Fatalf("notification not linked to thread: %+v", n)
	}
	if n.Type != "message.load_offer" {
		t.Fatalf("type = %q", n.Type)
	}
	if !strings.Contains(n.Title, "Acme Logistics") {
		t.Fatalf("title %q does not name the sender", n.Title)
	}

	if len(fx.mailer.sent) != 1 || fx.mailer.sent[0] != "hauler-1@example.com" {
		t.Fatalf("mail recipients: %v", fx.mailer.sent)
	}
	if !strings.Contains(fx.mailer.last, "load offer") {
		t.Fatalf("subject %q missing kind label", fx.mailer.last)
	}
	if !strings.Contains(fx.mailer.lastB, msg.Body) {
		t.Fatalf("body preview missing from mail")
	}
}

func TestDeliverRespectsPreferences(t *testing.T) {
	cases := []struct {
		name string
		pref model.NotificationPreference
		want int
	}{
		{
			name: "master off",
			pref: model.NotificationPreference{UID: "hauler-1", Master: false, LoadOfferEnabled: true},
			want: 0,
		},
		{
			name: "kind off",
			pref: model.NotificationPreference{UID: "hauler-1", Master: true, LoadOfferEnabled: false, TripEnabled: true},
			want: 0,
		},
		{
			name: "kind on",
			pref: model.NotificationPreference{UID: "hauler-1", Master: true, LoadOfferEnabled: true},
			want: 1,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fx := newNotificationFixture(t)
			if err := fx.prefs.Upsert(context.Background(), &tc.pref); err != nil {
				t.Fatalf("upsert prefs: %v", err)
			}
			th, msg := dispatchFixtures()
			fx.svc.deliver(th, msg, "hauler-1", "Acme Logistics")

			list, _, _ := fx.svc.List(context.Background(), "hauler-1", false, 10)
			if len(list) != tc.want {
				t.Fatalf("got %d notifications, want %d", len(list), tc.want)
			}
			if len(fx.mailer.sent) != tc.want {
				t.Fatalf("got %d mails, want %d", len(fx.mailer.sent), tc.want)
			}
		})
	}
}

func TestDeliverSurvivesFailures(t *testing.T) {
	fx := newNotificationFixture(t)
	th, msg := dispatchFixtures()

	// Unknown recipient: the in-app row still lands, no mail goes out.
	fx.svc.deliver(th, msg, "ghost", "Acme Logistics")
	list, _, _ := fx.svc.List(context.Background(), "ghost", false, 10)
	if len(list) != 1 {
		t.Fatalf("in-app notification lost on contact failure")
	}
	if len(fx.mailer.sent) != 0 {
		t.Fatalf("mail sent despite unresolved contact")
	}

	// A failing mailer must not bubble up.
	fx.mailer.fail = true
	fx.svc.deliver(th, msg, "hauler-1", "Acme Logistics")
	list, _, _ = fx.svc.List(context.Background(), "hauler-1", false, 10)
	if len(list) != 1 {
		t.Fatalf("in-app notification lost on mailer failure")
	}
}

func TestDeliverTruncatesLongBodies(t *testing.T) {
	fx := newNotificationFixture(t)
	th, msg := dispatchFixtures()
	msg.Body = strings.Repeat("x", 300)

	fx.svc.deliver(th, msg, "hauler-1", "Acme Logistics")

	list, _, _ := fx.svc.List(context.Background(), "hauler-1", false, 10)
	if len(list) != 1 {
		t.Fatalf("notification missing")
	}
	if got := []rune(list[0].Body); len(got) != 121 || got[120] != '…' {
		t.Fatalf("preview not truncated: %d runes", len(got))
	}
}

func TestMarkAllRead(t *testing.T) {
	fx := newNotificationFixture(t)
	th, msg := dispatchFixtures()
	ctx := context.Background()

	fx.svc.deliver(th, msg, "hauler-1", "Acme Logistics")
	fx.svc.deliver(th, msg, "hauler-1", "Acme Logistics")

	if _, unread, _ := fx.svc.List(ctx, "hauler-1", false, 10); unread != 2 {
		t.Fatalf("unread = %d, want 2", unread)
	}
	if err := fx.svc.MarkAllRead(ctx, "hauler-1"); err != nil {
		t.Fatalf("mark all read: %v", err)
	}
	all, unread, _ := fx.svc.List(ctx, "hauler-1", false, 10)
	if unread != 0 {
		t.Fatalf("unread after mark = %d, want 0", unread)
	}
	if len(all) != 2 {
		t.Fatalf("read notifications disappeared from history: %d", len(all))
	}
	onlyUnread, _, _ := fx.svc.List(ctx, "hauler-1", true, 10)
	if len(onlyUnread) != 0 {
		t.Fatalf("unread-only list returned %d after mark all read", len(onlyUnread))
	}
}

func TestMarkThreadReadRetiresThreadNotifications(t *testing.T) {
	fx := newNotificationFixture(t)
	th, msg := dispatchFixtures()
	ctx := context.Background()

	fx.svc.deliver(th, msg, "hauler-1", "Acme Logistics")
	other := &model.Thread{ID: 99, Kind: model.ThreadKindJob, PartyAUID: "p", PartyBUID: "hauler-1"}
	fx.svc.deliver(other, msg, "hauler-1", "Someone Else")

	fx.svc.MarkThreadRead("hauler-1", th.ID)

	_, unread, err := fx.svc.List(ctx, "hauler-1", false, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if unread != 1 {
		t.Fatalf("unread = %d, want only the other thread's notification", unread)
	}
}

func TestPreferenceDefaults(t *testing.T) {
	fx := newNotificationFixture(t)
	ctx := context.Background()

	p, err := fx.svc.GetPreferences(ctx, "hauler-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !p.Master || !p.LoadOfferEnabled || !p.TripEnabled {
		t.Fatalf("defaults should allow everything: %+v", p)
	}

	p.LoadOfferEnabled = false
	if err := fx.svc.UpdatePreferences(ctx, p); err != nil {
		t.Fatalf("update: %v", err)
	}
	again, _ := fx.svc.GetPreferences(ctx, "hauler-1")
	if again.LoadOfferEnabled {
		t.Fatalf("preference change not persisted")
	}
	if err := fx.svc.UpdatePreferences(ctx, &model.NotificationPreference{}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("empty uid accepted: %v", err)
	}
}
