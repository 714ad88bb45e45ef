package insights

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kasuganosora/campuswellness/model"
	"github.com/kasuganosora/campuswellness/wellness/challenge"
	"gorm.io/gorm"
)

// ErrInvalidPeriod is returned for a period other than 7, 30 or 90 days.
var ErrInvalidPeriod = errors.New("period must be 7, 30 or 90")

// DefaultPeriod is used when the caller does not choose one.
const DefaultPeriod = 7

// ValidPeriod reports whether days is a supported stats window.
func ValidPeriod(days int) bool {
	return days == 7 || days == 30 || days == 90
}

// ChallengeSource provides a user's membership data.
type ChallengeSource interface {
	CountByStatus(ctx context.Context, userID int64) (challenge.Counts, error)
	ListForUser(ctx context.Context, userID int64) ([]challenge.Membership, error)
}

// ChallengeInsights counts memberships by status.
type ChallengeInsights struct {
	Active    int64 `json:"active"`
	Completed int64 `json:"completed"`
}

// Stats is the payload of GET /api/stats.
type Stats struct {
	PeriodDays        int                `json:"period_days"`
	MoodInsights      *MoodInsights      `json:"mood_insights"`
	ActivityInsights  *ActivityInsights  `json:"activity_insights"`
	ChallengeInsights *ChallengeInsights `json:"challenge_insights"`
	Recommendations   []Recommendation   `json:"recommendations"`
}

// ActivitySummary is one row of GET /api/activities/summary.
type ActivitySummary struct {
	Name        string  `json:"name"`
	Frequency   int64   `json:"frequency"`
	AverageMood float64 `json:"average_mood"`
	TotalHours  float64 `json:"total_hours"`
}

// Service computes statistics from a user's tracking data.
type Service struct {
	db         *gorm.DB
	challenges ChallengeSource
	now        func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now as the reference point for periods.
func WithClock(now func() time.Time) Option {
	return func(svc *Service) { svc.now = now }
}

// NewService creates an insights Service.
func NewService(db *gorm.DB, challenges ChallengeSource, opts ...Option) *Service {
	svc := &Service{db: db, challenges: challenges, now: time.Now}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func (svc *Service) moodSince(ctx context.Context, userID int64, since time.Time) ([]model.MoodEntry, error) {
	var out []model.MoodEntry
	err := svc.db.WithContext(ctx).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Order("created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("load mood entries: %w", err)
	}
	return out, nil
}

func (svc *Service) activitiesSince(ctx context.Context, userID int64, since time.Time) ([]model.Activity, error) {
	var out []model.Activity
	err := svc.db.WithContext(ctx).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Order("created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("load activities: %w", err)
	}
	return out, nil
}

// Stats computes the insights for the last periodDays days.
func (svc *Service) Stats(ctx context.Context, userID int64, periodDays int) (*Stats, error) {
	if !ValidPeriod(periodDays) {
		return nil, ErrInvalidPeriod
	}
	since := svc.now().UTC().Add(-time.Duration(periodDays) * 24 * time.Hour)

	moods, err := svc.moodSince(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	acts, err := svc.activitiesSince(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	counts, err := svc.challenges.CountByStatus(ctx, userID)
	if err != nil {
		return nil, err
	}

	st := &Stats{
		PeriodDays:       periodDays,
		MoodInsights:     AnalyzeMood(moods),
		ActivityInsights: AnalyzeActivities(acts),
	}
	if counts.Active+counts.Completed > 0 {
		st.ChallengeInsights = &ChallengeInsights{Active: counts.Active, Completed: counts.Completed}
	}
	st.Recommendations = Recommend(periodDays, st.MoodInsights, st.ActivityInsights, st.ChallengeInsights)
	return st, nil
}

// WeeklyMood returns per-day average mood for the last seven days.
func (svc *Service) WeeklyMood(ctx context.Context, userID int64) ([]DailyMood, error) {
	moods, err := svc.moodSince(ctx, userID, svc.now().UTC().Add(-7*24*time.Hour))
	if err != nil {
		return nil, err
	}
	return WeeklyMood(moods), nil
}

// ActivitySummary groups all of the user's activities by name, most frequent first.
func (svc *Service) ActivitySummary(ctx context.Context, userID int64) ([]ActivitySummary, error) {
	out := []ActivitySummary{}
	err := svc.db.WithContext(ctx).Model(&model.Activity{}).
		Select("name, COUNT(*) AS frequency, AVG(mood) AS average_mood, SUM(hours) AS total_hours").
		Where("user_id = ?", userID).
		Group("name").
		Order("frequency DESC, name ASC").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("summarise activities: %w", err)
	}
	for i := range out {
		out[i].AverageMood = round2(out[i].AverageMood)
		out[i].TotalHours = round2(out[i].TotalHours)
	}
	return out, nil
}
