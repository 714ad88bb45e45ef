package model

import "time"

// MoodEntry is one self-reported mood/stress check-in. Levels are 1..5.
type MoodEntry struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      int64     `gorm:"index:idx_mood_user;not null" json:"user_id"`
	MoodLevel   int       `gorm:"not null" json:"mood_level"`
	StressLevel int       `gorm:"not null" json:"stress_level"`
	Notes       string    `gorm:"type:text" json:"notes"`
	CreatedAt   time.Time `gorm:"index:idx_mood_created;autoCreateTime" json:"created_at"`
}

// Activity is a logged wellness activity with the mood felt while doing it.
type Activity struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"index:idx_activity_user;not null" json:"user_id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Hours     float64   `gorm:"type:decimal(4,2);not null" json:"hours"`
	Mood      int       `json:"mood"`
	Notes     string    `gorm:"type:text" json:"notes"`
	CreatedAt time.Time `gorm:"index:idx_activity_created;autoCreateTime" json:"created_at"`
}
