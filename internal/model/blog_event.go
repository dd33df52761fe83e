package model

import "time"

const (
	BlogActionCreated = "created"
	BlogActionUpdated = "updated"
)

// BlogEvent records who changed which post. Events travel through the
// message queue and are persisted by the event worker.
type BlogEvent struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PostID     uint      `gorm:"not null;index" json:"post_id"`
	ActorID    uint      `gorm:"not null;index" json:"actor_id"`
	Action     string    `gorm:"size:16;not null" json:"action"`
	Title      string    `gorm:"size:256" json:"title"`
	OccurredAt time.Time `gorm:"not null" json:"occurred_at"`
	CreatedAt  time.Time `json:"created_at"`
}
