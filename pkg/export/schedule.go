package export

import (
	"sort"

	"github.com/smartbuddy/matching-api/internal/dto"
)

var scheduleHeaders = []string{"Day", "Time", "Partner 1", "Partner 2", "Duration (hours)"}

var dayOrder = map[string]int{
	"Monday":    1,
	"Tuesday":   2,
	"Wednesday": 3,
	"Thursday":  4,
	"Friday":    5,
	"Saturday":  6,
	"Sunday":    7,
}

type scheduleRow struct {
	Day           string
	Time          string
	PartnerA      string
	PartnerB      string
	DurationHours float64
}

// scheduleRows flattens the by-day summary into export rows, days in weekday
// order and sessions within a day in the summary's time order.
func scheduleRows(resp *dto.GroupScheduleResponse) []scheduleRow {
	days := make([]string, 0, len(resp.Schedule.ByDay))
	for day := range resp.Schedule.ByDay {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool {
		oi, ok := dayOrder[days[i]]
		if !ok {
			oi = 8
		}
		oj, ok := dayOrder[days[j]]
		if !ok {
			oj = 8
		}
		if oi != oj {
			return oi < oj
		}
		return days[i] < days[j]
	})

	rows := make([]scheduleRow, 0, resp.ScheduledSessions)
	for _, day := range days {
		for _, session := range resp.Schedule.ByDay[day] {
			rows = append(rows, scheduleRow{
				Day:           day,
				Time:          session.Time,
				PartnerA:      session.PartnerA.Username,
				PartnerB:      session.PartnerB.Username,
				DurationHours: session.DurationHours,
			})
		}
	}
	return rows
}
