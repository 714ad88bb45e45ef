package insights

import (
	"math"
	"sort"
	"time"

	"github.com/kasuganosora/campuswellness/model"
)

// MoodInsights summarises mood entries over a period.
type MoodInsights struct {
	Entries        int     `json:"entries"`
	AverageMood    float64 `json:"average_mood"`
	AverageStress  float64 `json:"average_stress"`
	MoodTrend      float64 `json:"mood_trend"`
	StressTrend    float64 `json:"stress_trend"`
	MostCommonMood int     `json:"most_common_mood"`
	BestDay        string  `json:"best_day"`
}

// ActivityImpact is the average mood reported for one activity name.
type ActivityImpact struct {
	Name        string  `json:"name"`
	Count       int     `json:"count"`
	AverageMood float64 `json:"average_mood"`
}

// ActivityInsights summarises logged activities over a period.
type ActivityInsights struct {
	Entries          int              `json:"entries"`
	TotalHours       float64          `json:"total_hours"`
	ActivityTrend    float64          `json:"activity_trend"`
	MostActiveDay    string           `json:"most_active_day"`
	MostActiveHours  float64          `json:"most_active_hours"`
	BestMoodActivity string           `json:"best_mood_activity"`
	MoodBoost        float64          `json:"mood_boost"`
	Impact           []ActivityImpact `json:"impact"`
}

// DailyMood is the mean mood of one calendar day.
type DailyMood struct {
	Date        string  `json:"date"`
	AverageMood float64 `json:"average_mood"`
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var s float64
	for _, x := range xs {
		s += x
	}
	return s / float64(len(xs))
}

// halfTrend is mean(second half) minus mean(first half) of a
// chronologically ordered series. With fewer than two points it is 0.
func halfTrend(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	half := len(xs) / 2
	return mean(xs[half:]) - mean(xs[:half])
}

// AnalyzeMood computes mood insights. It returns nil for no entries.
func AnalyzeMood(entries []model.MoodEntry) *MoodInsights {
	if len(entries) == 0 {
		return nil
	}
	sorted := append([]model.MoodEntry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CreatedAt.Before(sorted[j].CreatedAt) })

	moods := make([]float64, len(sorted))
	stress := make([]float64, len(sorted))
	levelCount := make(map[int]int)
	var dayMoods [7][]float64
	for i, e := range sorted {
		moods[i] = float64(e.MoodLevel)
		stress[i] = float64(e.StressLevel)
		levelCount[e.MoodLevel]++
		wd := e.CreatedAt.UTC().Weekday()
		dayMoods[wd] = append(dayMoods[wd], float64(e.MoodLevel))
	}

	// ties go to the higher mood level
	common, commonN := 0, 0
	for level, n := range levelCount {
		if n > commonN || (n == commonN && level > common) {
			common, commonN = level, n
		}
	}

	// ties go to the earlier weekday, Sunday first
	bestDay, bestAvg := time.Weekday(-1), math.Inf(-1)
	for d := time.Sunday; d <= time.Saturday; d++ {
		if len(dayMoods[d]) == 0 {
			continue
		}
		if avg := mean(dayMoods[d]); avg > bestAvg {
			bestDay, bestAvg = d, avg
		}
	}

	return &MoodInsights{
		Entries:        len(sorted),
		AverageMood:    round2(mean(moods)),
		AverageStress:  round2(mean(stress)),
		MoodTrend:      round2(halfTrend(moods)),
		StressTrend:    round2(halfTrend(stress)),
		MostCommonMood: common,
		BestDay:        bestDay.String(),
	}
}

// AnalyzeActivities computes activity insights, including the naive mood
// correlation: MoodBoost is the best activity's average mood minus the
// average mood over all activities. It returns nil for no activities.
func AnalyzeActivities(acts []model.Activity) *ActivityInsights {
	if len(acts) == 0 {
		return nil
	}
	sorted := append([]model.Activity(nil), acts...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CreatedAt.Before(sorted[j].CreatedAt) })

	hours := make([]float64, len(sorted))
	moods := make([]float64, len(sorted))
	var dayHours [7]float64
	var total float64
	type agg struct {
		n       int
		moodSum int
	}
	byName := make(map[string]*agg)
	for i, a := range sorted {
		hours[i] = a.Hours
		moods[i] = float64(a.Mood)
		total += a.Hours
		dayHours[a.CreatedAt.UTC().Weekday()] += a.Hours
		g, ok := byName[a.Name]
		if !ok {
			g = &agg{}
			byName[a.Name] = g
		}
		g.n++
		g.moodSum += a.Mood
	}

	activeDay := time.Sunday
	for d := time.Monday; d <= time.Saturday; d++ {
		if dayHours[d] > dayHours[activeDay] {
			activeDay = d
		}
	}

	impact := make([]ActivityImpact, 0, len(byName))
	for name, g := range byName {
		impact = append(impact, ActivityImpact{
			Name:        name,
			Count:       g.n,
			AverageMood: float64(g.moodSum) / float64(g.n),
		})
	}
	// best mood first, then the more frequent, then by name
	sort.Slice(impact, func(i, j int) bool {
		if impact[i].AverageMood != impact[j].AverageMood {
			return impact[i].AverageMood > impact[j].AverageMood
		}
		if impact[i].Count != impact[j].Count {
			return impact[i].Count > impact[j].Count
		}
		return impact[i].Name < impact[j].Name
	})
	boost := impact[0].AverageMood - mean(moods)
	for i := range impact {
		impact[i].AverageMood = round2(impact[i].AverageMood)
	}

	return &ActivityInsights{
		Entries:          len(sorted),
		TotalHours:       round2(total),
		ActivityTrend:    round2(halfTrend(hours)),
		MostActiveDay:    activeDay.String(),
		MostActiveHours:  round2(dayHours[activeDay]),
		BestMoodActivity: impact[0].Name,
		MoodBoost:        round2(boost),
		Impact:           impact,
	}
}

// WeeklyMood groups entries by UTC calendar day, newest day first.
func WeeklyMood(entries []model.MoodEntry) []DailyMood {
	sums := make(map[string][]float64)
	for _, e := range entries {
		day := e.CreatedAt.UTC().Format(time.DateOnly)
		sums[day] = append(sums[day], float64(e.MoodLevel))
	}
	out := make([]DailyMood, 0, len(sums))
	for day, xs := range sums {
		out = append(out, DailyMood{Date: day, AverageMood: round2(mean(xs))})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}
