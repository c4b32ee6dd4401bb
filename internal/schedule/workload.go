package schedule

import (
	"time"

	"github.com/blackwell-systems/timewise/internal/model"
)

// HealthSignal carries optional mood/stress inputs from a health data
// source. Scores use a 1-10 scale where higher mood is better and higher
// reported stress is worse.
type HealthSignal struct {
	Mood           float64
	ReportedStress float64
}

// ComputeWorkload derives workload metrics from the upcoming seven days of
// events, the same window an optimization pass loads. The stress and
// burnout heuristics are monotonic: adding meetings or hours never lowers
// either score. Both clamp to [0, 10]. health may be nil.
func ComputeWorkload(events []model.CalendarEvent, prefs model.UserPreferences, now time.Time, health *HealthSignal) model.WorkloadAnalysis {
	windowEnd := now.AddDate(0, 0, 7)

	var totalHours float64
	days := make(map[string]bool)
	meetings := 0
	for _, ev := range events {
		if ev.End.Before(now) || ev.Start.After(windowEnd) {
			continue
		}
		totalHours += ev.Duration().Hours()
		days[ev.Start.Format("2006-01-02")] = true
		meetings++
	}

	density := 0.0
	if len(days) > 0 {
		density = float64(meetings) / float64(len(days))
	}

	workdayHours := workdayLength(prefs)
	meetingHoursPerDay := 0.0
	if len(days) > 0 {
		meetingHoursPerDay = totalHours / float64(len(days))
	}
	focusHours := workdayHours - meetingHoursPerDay
	if focusHours < 0 {
		focusHours = 0
	}

	// Stress rises with density and total hours; the health signal shifts it
	// either way but never below the load floor.
	stress := density*1.2 + totalHours/6.0
	if health != nil {
		stress += (health.ReportedStress - health.Mood) * 0.3
	}

	// Burnout rises with hours and density and with vanishing focus time.
	burnout := totalHours/5.0 + density + (workdayHours-focusHours)*0.5

	return model.WorkloadAnalysis{
		WeeklyHours:      totalHours,
		MeetingsPerDay:   density,
		StressLevel:      clampScore(stress),
		BurnoutRisk:      clampScore(burnout),
		FocusHoursPerDay: focusHours,
	}
}

// workdayLength returns the configured workday length in hours, defaulting
// to 8 when the preferences fail to parse.
func workdayLength(prefs model.UserPreferences) float64 {
	start, err := model.ParseClock(prefs.WorkdayStart)
	if err != nil {
		return 8
	}
	end, err := model.ParseClock(prefs.WorkdayEnd)
	if err != nil || end <= start {
		return 8
	}
	return float64(end-start) / 60.0
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}
