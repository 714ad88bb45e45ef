package model

import "time"

// ChallengeStatus is the derived state of a membership.
type ChallengeStatus string

const (
	ChallengeStatusActive    ChallengeStatus = "active"
	ChallengeStatusCompleted ChallengeStatus = "completed"
)

// Challenge is a catalog entry. Rows are immutable once created.
type Challenge struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Category    string `gorm:"size:50" json:"category"`
	TotalDays   int    `gorm:"not null" json:"total_days"`
	Reward      string `gorm:"size:255" json:"reward"`
}

// UserChallenge is a user's membership in one catalog challenge.
// At most one row exists per (user_id, challenge_id).
type UserChallenge struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      int64           `gorm:"uniqueIndex:idx_user_challenge;not null" json:"user_id"`
	ChallengeID int64           `gorm:"uniqueIndex:idx_user_challenge;not null" json:"challenge_id"`
	Progress    int             `gorm:"default:0" json:"progress"`
	Status      ChallengeStatus `gorm:"size:50;default:'active'" json:"status"`
	StartDate   time.Time       `json:"start_date"`
	EndDate     time.Time       `json:"end_date"`
}

// IsTerminal reports whether no further transition leaves this status.
func (s ChallengeStatus) IsTerminal() bool {
	return s == ChallengeStatusCompleted
}
