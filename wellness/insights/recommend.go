package insights

// Recommendation is one rule-based suggestion shown with the stats.
type Recommendation struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Action      string `json:"action,omitempty"`
	ActionURL   string `json:"action_url,omitempty"`
}

const (
	highStress     = 3.5
	lowMood        = 2.5
	lowWeeklyHours = 3.0
)

// Recommend derives suggestions from the computed insights. Any section may be nil.
func Recommend(periodDays int, mood *MoodInsights, act *ActivityInsights, ch *ChallengeInsights) []Recommendation {
	var out []Recommendation

	if mood != nil && mood.AverageStress >= highStress {
		out = append(out, Recommendation{
			Title:       "Talk to someone",
			Description: "Your stress has been high lately. The campus counseling center offers free, confidential sessions.",
			Action:      "View counseling resources",
			ActionURL:   "/resources?category=Mental Health",
		})
	}
	if mood != nil && mood.AverageMood <= lowMood {
		out = append(out, Recommendation{
			Title:       "Try a gratitude practice",
			Description: "Writing down three good things each day can lift a low mood.",
			Action:      "Start the Gratitude Journal",
			ActionURL:   "/challenges",
		})
	}

	weeks := float64(periodDays) / 7
	if weeks < 1 {
		weeks = 1
	}
	if act == nil || act.TotalHours/weeks < lowWeeklyHours {
		out = append(out, Recommendation{
			Title:       "Move a little more",
			Description: "You logged little activity in this period. Short walks or a gym session count.",
			Action:      "Join the Exercise Challenge",
			ActionURL:   "/challenges",
		})
	}
	if ch == nil || ch.Active == 0 {
		out = append(out, Recommendation{
			Title:       "Join a challenge",
			Description: "Challenges help you build habits one day at a time.",
			Action:      "Browse challenges",
			ActionURL:   "/challenges",
		})
	}

	if len(out) == 0 {
		out = append(out, Recommendation{
			Title:       "Keep it up",
			Description: "Your recent check-ins look healthy.",
		})
	}
	return out
}
