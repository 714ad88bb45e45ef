package model

import (
	"fmt"

	"gorm.io/gorm"
)

// DefaultChallenges is the starter catalog installed into an empty database.
var DefaultChallenges = []Challenge{
	{
		Title:       "7-Day Meditation Streak",
		Description: "Meditate for at least 10 minutes every day for 7 days",
		Category:    "Mental Health",
		TotalDays:   7,
		Reward:      "Meditation Master Badge",
	},
	{
		Title:       "Gratitude Journal",
		Description: "Write down 3 things you're grateful for each day this week",
		Category:    "Mental Health",
		TotalDays:   7,
		Reward:      "Gratitude Guru Badge",
	},
	{
		Title:       "Exercise Challenge",
		Description: "Complete 30 minutes of exercise for 5 days this week",
		Category:    "Physical Health",
		TotalDays:   5,
		Reward:      "Fitness Warrior Badge",
	},
}

// DefaultResources is the starter list of campus services.
var DefaultResources = []Resource{
	{
		Title:        "Campus Counseling Center",
		Description:  "Professional counseling services for students",
		Category:     "Mental Health",
		Contact:      "counseling@campus.edu",
		Location:     "Student Services Building, Room 101",
		Availability: "Mon-Fri, 9am-5pm",
		Link:         "https://campus.edu/counseling",
		Icon:         "heart",
	},
	{
		Title:        "Fitness Center",
		Description:  "State-of-the-art gym facilities",
		Category:     "Physical Health",
		Contact:      "fitness@campus.edu",
		Location:     "Recreation Center",
		Availability: "Mon-Sun, 6am-10pm",
		Link:         "https://campus.edu/fitness",
		Icon:         "dumbbell",
	},
	{
		Title:        "Student Health Services",
		Description:  "Medical care and health education",
		Category:     "Physical Health",
		Contact:      "health@campus.edu",
		Location:     "Health Center",
		Availability: "Mon-Fri, 8am-6pm",
		Link:         "https://campus.edu/health",
		Icon:         "stethoscope",
	},
}

// Seed installs the default catalog and resources. Each table is only
// seeded while it is still empty, so Seed is safe to call on every start.
func Seed(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := seedTable(tx, &Challenge{}, DefaultChallenges); err != nil {
			return fmt.Errorf("seed challenges: %w", err)
		}
		if err := seedTable(tx, &Resource{}, DefaultResources); err != nil {
			return fmt.Errorf("seed resources: %w", err)
		}
		return nil
	})
}

func seedTable[T any](tx *gorm.DB, table interface{}, rows []T) error {
	var n int64
	if err := tx.Model(table).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	// copy so callers never observe IDs assigned to the package-level slices
	batch := append([]T(nil), rows...)
	return tx.Create(&batch).Error
}
