package model

import "time"

type Message struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ThreadID   uint64    `gorm:"column:thread_id;index" json:"threadId"`
	SenderUID  string    `gorm:"column:sender_uid;size:128;index" json:"senderUid"`
	SenderRole string    `gorm:"column:sender_role;size:32" json:"senderRole"`
	Body       string    `gorm:"type:text;not null" json:"body"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"createdAt"`

	Attachments []MessageAttachment `gorm:"foreignKey:MessageID" json:"attachments"`
}

func (Message) TableName() string {
	return "messages"
}

// MessageAttachment holds one opaque attachment reference in send order.
// The backend never interprets the ref beyond storing and returning it.
type MessageAttachment struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement" json:"-"`
	MessageID uint64 `gorm:"column:message_id;index" json:"-"`
	Position  int    `gorm:"column:position" json:"-"`
	Ref       string `gorm:"column:ref;size:512" json:"ref"`
}

func (MessageAttachment) TableName() string {
	return "message_attachments"
}
