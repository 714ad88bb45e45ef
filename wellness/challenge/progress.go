package challenge

import (
	"time"

	"github.com/kasuganosora/campuswellness/model"
)

// JoinWindow is the fixed span between start_date and end_date of every
// membership. It does not depend on the challenge's total_days.
const JoinWindow = 7 * 24 * time.Hour

// DeriveStatus returns completed iff progress has reached totalDays.
// A non-positive totalDays completes on any non-negative progress.
func DeriveStatus(progress, totalDays int) model.ChallengeStatus {
	if progress >= totalDays {
		return model.ChallengeStatusCompleted
	}
	return model.ChallengeStatusActive
}
