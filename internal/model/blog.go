package model

import "time"

// BlogPost is stored in the "blogs" table. CreatedAt is set once on insert
// and never rewritten by updates.
type BlogPost struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:256;not null;index" json:"title"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      *User     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	CreatedAt time.Time `gorm:"<-:create" json:"timestamp"`
}

func (BlogPost) TableName() string {
	return "blogs"
}
