package insights

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/kasuganosora/campuswellness/wellness/challenge"
)

// Report is the downloadable summary of a user's wellness data.
type Report struct {
	GeneratedAt          time.Time              `json:"generated_at"`
	Username             string                 `json:"username"`
	PeriodDays           int                    `json:"period_days"`
	AverageMood          *float64               `json:"average_mood"`
	MostFrequentActivity string                 `json:"most_frequent_activity"`
	WeeklyMood           []DailyMood            `json:"weekly_mood"`
	Activities           []ActivitySummary      `json:"activities"`
	Challenges           []challenge.Membership `json:"challenges"`
	Recommendations      []Recommendation       `json:"recommendations"`
}

// FileName returns the download name for the given extension.
func (r *Report) FileName(ext string) string {
	return fmt.Sprintf("wellness-report-%s.%s", r.GeneratedAt.UTC().Format(time.DateOnly), ext)
}

// BuildReport assembles a report covering periodDays.
func (svc *Service) BuildReport(ctx context.Context, userID int64, username string, periodDays int) (*Report, error) {
	st, err := svc.Stats(ctx, userID, periodDays)
	if err != nil {
		return nil, err
	}
	weekly, err := svc.WeeklyMood(ctx, userID)
	if err != nil {
		return nil, err
	}
	summary, err := svc.ActivitySummary(ctx, userID)
	if err != nil {
		return nil, err
	}
	memberships, err := svc.challenges.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	r := &Report{
		GeneratedAt:          svc.now().UTC(),
		Username:             username,
		PeriodDays:           periodDays,
		MostFrequentActivity: "No activities",
		WeeklyMood:           weekly,
		Activities:           summary,
		Challenges:           memberships,
		Recommendations:      st.Recommendations,
	}
	if st.MoodInsights != nil {
		avg := st.MoodInsights.AverageMood
		r.AverageMood = &avg
	}
	if len(summary) > 0 {
		r.MostFrequentActivity = summary[0].Name
	}
	return r, nil
}

// RenderPDF writes the report as a single A4 document.
func RenderPDF(w io.Writer, r *Report) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Wellness Report", false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Wellness Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("%s - generated %s - last %d days",
		r.Username, r.GeneratedAt.Format("2006-01-02 15:04 MST"), r.PeriodDays))
	pdf.Ln(12)

	section := func(title string) {
		pdf.SetFont("Arial", "B", 13)
		pdf.Cell(0, 8, title)
		pdf.Ln(9)
		pdf.SetFont("Arial", "", 11)
	}
	line := func(format string, args ...interface{}) {
		pdf.Cell(0, 7, fmt.Sprintf(format, args...))
		pdf.Ln(6)
	}

	section("Summary")
	if r.AverageMood != nil {
		line("Average mood: %.1f", *r.AverageMood)
	} else {
		line("Average mood: no entries")
	}
	line("Most frequent activity: %s", r.MostFrequentActivity)
	pdf.Ln(4)

	section("Mood this week")
	if len(r.WeeklyMood) == 0 {
		line("  - No mood entries.")
	}
	for _, d := range r.WeeklyMood {
		line("  %s   %.2f", d.Date, d.AverageMood)
	}
	pdf.Ln(4)

	section("Activities")
	if len(r.Activities) == 0 {
		line("  - No activities logged.")
	} else {
		pdf.SetFont("Arial", "B", 10)
		for _, h := range []struct {
			w    float64
			text string
		}{{70, "Activity"}, {30, "Times"}, {35, "Avg mood"}, {35, "Hours"}} {
			pdf.CellFormat(h.w, 7, h.text, "B", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 10)
		for _, a := range r.Activities {
			pdf.CellFormat(70, 6, a.Name, "", 0, "L", false, 0, "")
			pdf.CellFormat(30, 6, fmt.Sprintf("%d", a.Frequency), "", 0, "L", false, 0, "")
			pdf.CellFormat(35, 6, fmt.Sprintf("%.2f", a.AverageMood), "", 0, "L", false, 0, "")
			pdf.CellFormat(35, 6, fmt.Sprintf("%.2f", a.TotalHours), "", 1, "L", false, 0, "")
		}
	}
	pdf.Ln(4)

	section("Challenges")
	if len(r.Challenges) == 0 {
		line("  - Not enrolled in any challenge.")
	}
	for _, c := range r.Challenges {
		mark := "[ ]"
		if c.Status.IsTerminal() {
			mark = "[x]"
		}
		line("  %s %s  %d/%d  %s", mark, c.Title, c.Progress, c.TotalDays, c.Status)
	}
	pdf.Ln(4)

	if len(r.Recommendations) > 0 {
		section("Recommendations")
		for _, rec := range r.Recommendations {
			pdf.MultiCell(0, 6, fmt.Sprintf("%s: %s", rec.Title, rec.Description), "", "", false)
		}
	}

	return pdf.Output(w)
}
