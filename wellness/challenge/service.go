package challenge

import (
	"context"
	"errors"
	"fmt"
	"time"

	dbadapter "github.com/kasuganosora/campuswellness/db"
	"github.com/kasuganosora/campuswellness/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Membership is a user's membership joined with its catalog entry.
type Membership struct {
	ID          int64                 `json:"id"`
	UserID      int64                 `json:"user_id"`
	ChallengeID int64                 `json:"challenge_id"`
	Progress    int                   `json:"progress"`
	Status      model.ChallengeStatus `json:"status"`
	StartDate   time.Time             `json:"start_date"`
	EndDate     time.Time             `json:"end_date"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Category    string                `json:"category"`
	TotalDays   int                   `json:"total_days"`
	Reward      string                `json:"reward"`
}

// Counts is the number of a user's memberships per status.
type Counts struct {
	Active    int64 `json:"active"`
	Completed int64 `json:"completed"`
}

const membershipColumns = "uc.id, uc.user_id, uc.challenge_id, uc.progress, uc.status, " +
	"uc.start_date, uc.end_date, c.title, c.description, c.category, c.total_days, c.reward"

// Service handles challenge membership operations.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now as the source of start_date.
func WithClock(now func() time.Time) Option {
	return func(svc *Service) { svc.now = now }
}

// NewService creates a new membership Service.
func NewService(db *gorm.DB, logger *zap.Logger, opts ...Option) *Service {
	svc := &Service{db: db, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func (svc *Service) memberships(ctx context.Context) *gorm.DB {
	return svc.db.WithContext(ctx).
		Table("user_challenges AS uc").
		Select(membershipColumns).
		Joins("JOIN challenges c ON c.id = uc.challenge_id")
}

// ListActive returns the user's active memberships with catalog fields.
func (svc *Service) ListActive(ctx context.Context, userID int64) ([]Membership, error) {
	out := []Membership{}
	err := svc.memberships(ctx).
		Where("uc.user_id = ? AND uc.status = ?", userID, model.ChallengeStatusActive).
		Order("uc.id ASC").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list active challenges: %w", err)
	}
	return out, nil
}

// ListForUser returns all of the user's memberships, active and completed.
func (svc *Service) ListForUser(ctx context.Context, userID int64) ([]Membership, error) {
	out := []Membership{}
	err := svc.memberships(ctx).
		Where("uc.user_id = ?", userID).
		Order("uc.id ASC").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list user challenges: %w", err)
	}
	return out, nil
}

// CountByStatus counts the user's memberships per status.
func (svc *Service) CountByStatus(ctx context.Context, userID int64) (Counts, error) {
	var rows []struct {
		Status model.ChallengeStatus
		N      int64
	}
	err := svc.db.WithContext(ctx).Model(&model.UserChallenge{}).
		Select("status, COUNT(*) AS n").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return Counts{}, fmt.Errorf("count user challenges: %w", err)
	}
	var c Counts
	for _, r := range rows {
		switch r.Status {
		case model.ChallengeStatusActive:
			c.Active = r.N
		case model.ChallengeStatusCompleted:
			c.Completed = r.N
		}
	}
	return c, nil
}

// Join creates the user's membership in a challenge. The insert is the only
// statement; a second membership for the same pair is rejected by the
// idx_user_challenge unique index and reported as ErrAlreadyJoined.
// The challenge id is not checked against the catalog.
func (svc *Service) Join(ctx context.Context, userID, challengeID int64) (*model.UserChallenge, error) {
	start := svc.now().UTC().Truncate(time.Millisecond)
	m := &model.UserChallenge{
		UserID:      userID,
		ChallengeID: challengeID,
		Progress:    0,
		Status:      model.ChallengeStatusActive,
		StartDate:   start,
		EndDate:     start.Add(JoinWindow),
	}
	if err := svc.db.WithContext(ctx).Create(m).Error; err != nil {
		if dbadapter.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyJoined, err.Error())
		}
		return nil, fmt.Errorf("join challenge: %w", err)
	}
	svc.logger.Info("challenge joined",
		zap.Int64("user_id", userID), zap.Int64("challenge_id", challengeID))
	return m, nil
}

// UpdateProgress sets the membership's progress to the given absolute value
// and recomputes its status against the challenge's total_days, all in one
// transaction. Repeating a call with the same value leaves the row unchanged.
func (svc *Service) UpdateProgress(ctx context.Context, userID, challengeID int64, progress int) (*model.UserChallenge, error) {
	if progress < 0 {
		return nil, ErrInvalidProgress
	}

	var out model.UserChallenge
	err := svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ch model.Challenge
		if err := tx.Select("id", "total_days").First(&ch, challengeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("load challenge: %w", err)
		}

		status := DeriveStatus(progress, ch.TotalDays)
		q := tx.Model(&model.UserChallenge{}).
			Where("user_id = ? AND challenge_id = ?", userID, challengeID)
		if !status.IsTerminal() {
			// completed memberships stay completed
			q = q.Where("status <> ?", model.ChallengeStatusCompleted)
		}
		res := q.Updates(map[string]interface{}{"progress": progress, "status": status})
		if res.Error != nil {
			return fmt.Errorf("update progress: %w", res.Error)
		}

		if err := tx.Where("user_id = ? AND challenge_id = ?", userID, challengeID).
			First(&out).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("reload membership: %w", err)
		}
		if res.RowsAffected == 0 && out.Status.IsTerminal() && !status.IsTerminal() {
			return ErrAlreadyCompleted
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	svc.logger.Info("challenge progress updated",
		zap.Int64("user_id", userID),
		zap.Int64("challenge_id", challengeID),
		zap.Int("progress", out.Progress),
		zap.String("status", string(out.Status)))
	return &out, nil
}
