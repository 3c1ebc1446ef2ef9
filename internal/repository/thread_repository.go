package repository

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/cargolink/freight-backend/internal/model"
	"gorm.io/gorm"
)

var ErrDBNotReady = errors.New("database not initialized")

// ThreadWithMeta is a thread annotated with the data the inbox view needs.
type ThreadWithMeta struct {
	Thread        model.Thread
	LastMessage   *string
	LastMessageAt *time.Time
	UnreadCount   int64
}

type ThreadRepository interface {
	FindOrCreate(ctx context.Context, kind model.ThreadKind, ownerID uint64, partyAUID, partyBUID string) (*model.Thread, error)
	FindByID(ctx context.Context, id uint64) (*model.Thread, error)
	FindActiveByOwner(ctx context.Context, kind model.ThreadKind, ownerID uint64) (*model.Thread, error)
	ListActiveByUser(ctx context.Context, uid string) ([]ThreadWithMeta, error)
	AppendMessage(ctx context.Context, msg *model.Message) error
	ListMessages(ctx context.Context, threadID uint64) ([]model.Message, error)
	MarkRead(ctx context.Context, threadID uint64, uid string) error
	Deactivate(ctx context.Context, threadID uint64) error
	CountUnread(ctx context.Context, t *model.Thread, uid string) (int64, error)
	SetDB(db *gorm.DB)
}

type threadRepository struct {
	db *gorm.DB
}

func NewThreadRepository(db *gorm.DB) ThreadRepository {
	return &threadRepository{db: db}
}

func (r *threadRepository) SetDB(db *gorm.DB) {
	r.db = db
}

func (r *threadRepository) FindOrCreate(ctx context.Context, kind model.ThreadKind, ownerID uint64, partyAUID, partyBUID string) (*model.Thread, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	t := model.Thread{Kind: kind, OwnerID: ownerID, PartyAUID: partyAUID, PartyBUID: partyBUID, IsActive: true}
	if err := r.db.WithContext(ctx).
		Where("kind = ? AND owner_id = ? AND is_active = ?", kind, ownerID, true).
		FirstOrCreate(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *threadRepository) FindByID(ctx context.Context, id uint64) (*model.Thread, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var t model.Thread
	if err := r.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *threadRepository) FindActiveByOwner(ctx context.Context, kind model.ThreadKind, ownerID uint64) (*model.Thread, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var t model.Thread
	if err := r.db.WithContext(ctx).
		Where("kind = ? AND owner_id = ? AND is_active = ?", kind, ownerID, true).
		First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// ListActiveByUser returns the caller's active threads, each with its last
// message and unread count, ordered by last-message time descending; threads
// with no messages order by their own updated_at instead.
func (r *threadRepository) ListActiveByUser(ctx context.Context, uid string) ([]ThreadWithMeta, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var threads []model.Thread
	if err := r.db.WithContext(ctx).
		Where("is_active = ? AND (party_a_uid = ? OR party_b_uid = ?)", true, uid, uid).
		Find(&threads).Error; err != nil {
		return nil, err
	}
	out := make([]ThreadWithMeta, 0, len(threads))
	for i := range threads {
		t := threads[i]
		meta := ThreadWithMeta{Thread: t}
		var last model.Message
		err := r.db.WithContext(ctx).
			Where("thread_id = ?", t.ID).
			Order("created_at DESC, id DESC").
			First(&last).Error
		if err == nil {
			meta.LastMessage = &last.Body
			at := last.CreatedAt
			meta.LastMessageAt = &at
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		cnt, err := r.CountUnread(ctx, &t, uid)
		if err != nil {
			return nil, err
		}
		meta.UnreadCount = cnt
		out = append(out, meta)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return recency(out[i]).After(recency(out[j]))
	})
	return out, nil
}

func recency(m ThreadWithMeta) time.Time {
	if m.LastMessageAt != nil {
		return *m.LastMessageAt
	}
	return m.Thread.UpdatedAt
}

// AppendMessage persists the message (with its attachments) and touches the
// owning thread in one transaction, so a stored message always comes with the
// thread's first_message_sent/updated_at reflecting it.
func (r *threadRepository) AppendMessage(ctx context.Context, msg *model.Message) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&model.Thread{}).
			Where("id = ?", msg.ThreadID).
			Updates(map[string]interface{}{
				"first_message_sent": true,
				"updated_at":         tx.NowFunc(),
			}).Error
	})
}

func (r *threadRepository) ListMessages(ctx context.Context, threadID uint64) ([]model.Message, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var msgs []model.Message
	if err := r.db.WithContext(ctx).
		Preload("Attachments", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("thread_id = ?", threadID).
		Order("created_at ASC, id ASC").
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

// MarkRead advances the caller's watermark. The column is picked by matching
// uid against the party columns in the WHERE clause, so a non-party uid is a
// no-op and the watermark only ever moves forward in wall-clock time.
func (r *threadRepository) MarkRead(ctx context.Context, threadID uint64, uid string) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	now := r.db.NowFunc()
	res := r.db.WithContext(ctx).Model(&model.Thread{}).
		Where("id = ? AND party_a_uid = ?", threadID, uid).
		Update("party_a_last_read_at", now)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.Thread{}).
		Where("id = ? AND party_b_uid = ?", threadID, uid).
		Update("party_b_last_read_at", now).Error
}

func (r *threadRepository) Deactivate(ctx context.Context, threadID uint64) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Model(&model.Thread{}).
		Where("id = ?", threadID).
		Update("is_active", false).Error
}

// CountUnread is the derived unread formula: messages from the other party
// newer than the caller's watermark (all of them when no watermark exists).
func (r *threadRepository) CountUnread(ctx context.Context, t *model.Thread, uid string) (int64, error) {
	if r.db == nil {
		return 0, ErrDBNotReady
	}
	q := r.db.WithContext(ctx).Model(&model.Message{}).
		Where("thread_id = ? AND sender_uid <> ?", t.ID, uid)
	if lastRead := t.LastReadFor(uid); lastRead != nil {
		q = q.Where("created_at > ?", *lastRead)
	}
	var cnt int64
	if err := q.Count(&cnt).Error; err != nil {
		return 0, err
	}
	return cnt, nil
}
