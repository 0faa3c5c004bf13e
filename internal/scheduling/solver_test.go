package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartbuddy/matching-api/internal/models"
)

func TestNewSolverFillsDefaults(t *testing.T) {
	s := NewSolver(Constraints{MaxSessionsPerDay: 1})
	c := s.Constraints()
	assert.Equal(t, 1, c.MaxSessionsPerDay)
	assert.Equal(t, 6, c.MaxSessionsPerWeek)
	assert.Equal(t, 3, c.MaxPartnersPerStudent)
	assert.Equal(t, 2.0, c.SessionHours)
}

func TestCommonAvailability(t *testing.T) {
	s := NewSolver(DefaultConstraints())

	a := map[string][]string{
		"Monday":  {"Morning", "Evening"},
		"Tuesday": {"Afternoon"},
	}
	b := map[string][]string{
		"Monday": {"Evening", "Morning"},
		"Friday": {"Morning"},
	}

	common := s.CommonAvailability(a, b)
	assert.Len(t, common, 2)
	assert.Contains(t, common, models.ScheduleSlot{Day: "Monday", Time: "Morning"})
	assert.Contains(t, common, models.ScheduleSlot{Day: "Monday", Time: "Evening"})
}

func TestSolveScheduleNoCommonSlots(t *testing.T) {
	s := NewSolver(DefaultConstraints())

	availabilities := map[string]map[string][]string{
		"s1": {"Monday": {"Morning"}},
		"s2": {"Friday": {"Evening"}},
	}
	pairs := []models.CompatibilityPair{{StudentA: "s1", StudentB: "s2", Score: 95}}

	sessions := s.SolveSchedule(availabilities, pairs, 0)
	assert.Empty(t, sessions)
}

func TestSolveSchedulePrefersEarlierSlots(t *testing.T) {
	s := NewSolver(DefaultConstraints())

	availabilities := map[string]map[string][]string{
		"s1": {"Monday": {"Evening", "Morning"}, "Friday": {"Morning"}},
		"s2": {"Monday": {"Morning", "Evening"}, "Friday": {"Morning"}},
	}
	pairs := []models.CompatibilityPair{{StudentA: "s1", StudentB: "s2", Score: 90}}

	sessions := s.SolveSchedule(availabilities, pairs, 0)
	require.Len(t, sessions, 1)
	assert.Equal(t, models.ScheduleSlot{Day: "Monday", Time: "Morning"}, sessions[0].Slot)
	assert.Equal(t, 2.0, sessions[0].DurationHours)
}

func TestSolveScheduleOneSessionPerPair(t *testing.T) {
	s := NewSolver(DefaultConstraints())

	availabilities := map[string]map[string][]string{
		"s1": {"Monday": {"Morning", "Afternoon", "Evening"}},
		"s2": {"Monday": {"Morning", "Afternoon", "Evening"}},
	}
	pairs := []models.CompatibilityPair{{StudentA: "s1", StudentB: "s2", Score: 90}}

	sessions := s.SolveSchedule(availabilities, pairs, 0)
	assert.Len(t, sessions, 1)
}

func TestSolveScheduleHighScoreFirst(t *testing.T) {
	s := NewSolver(Constraints{MaxSessionsPerDay: 1, MaxSessionsPerWeek: 1, MaxPartnersPerStudent: 1, SessionHours: 2})

	// s1 can only hold one session; the higher-scoring pair must win it.
	availabilities := map[string]map[string][]string{
		"s1": {"Monday": {"Morning"}},
		"s2": {"Monday": {"Morning"}},
		"s3": {"Monday": {"Morning"}},
	}
	pairs := []models.CompatibilityPair{
		{StudentA: "s1", StudentB: "s2", Score: 60},
		{StudentA: "s1", StudentB: "s3", Score: 90},
	}

	sessions := s.SolveSchedule(availabilities, pairs, 0)
	require.Len(t, sessions, 1)
	assert.Equal(t, "s3", sessions[0].PartnerB)
}

func TestSolveScheduleDailyContention(t *testing.T) {
	s := NewSolver(DefaultConstraints())

	// Three pairs all involve s1 and share Monday; the daily limit of 2
	// leaves the weakest pair unscheduled.
	availabilities := map[string]map[string][]string{
		"s1": {"Monday": {"Morning", "Afternoon", "Evening"}},
		"s2": {"Monday": {"Morning"}},
		"s3": {"Monday": {"Morning", "Afternoon"}},
		"s4": {"Monday": {"Evening"}},
	}
	pairs := []models.CompatibilityPair{
		{StudentA: "s1", StudentB: "s2", Score: 90},
		{StudentA: "s1", StudentB: "s3", Score: 80},
		{StudentA: "s1", StudentB: "s4", Score: 70},
	}

	sessions := s.SolveSchedule(availabilities, pairs, 0)
	require.Len(t, sessions, 2)
	assert.Equal(t, "s2", sessions[0].PartnerB)
	assert.Equal(t, "s3", sessions[1].PartnerB)

	valid, violations := s.ValidateFullSchedule(sessions)
	assert.True(t, valid)
	assert.Empty(t, violations)
}

func TestSolveScheduleMaxSessions(t *testing.T) {
	s := NewSolver(DefaultConstraints())

	availabilities := map[string]map[string][]string{
		"s1": {"Monday": {"Morning"}},
		"s2": {"Monday": {"Morning"}},
		"s3": {"Tuesday": {"Morning"}},
		"s4": {"Tuesday": {"Morning"}},
	}
	pairs := []models.CompatibilityPair{
		{StudentA: "s1", StudentB: "s2", Score: 90},
		{StudentA: "s3", StudentB: "s4", Score: 80},
	}

	sessions := s.SolveSchedule(availabilities, pairs, 1)
	require.Len(t, sessions, 1)
	assert.Equal(t, "s1", sessions[0].PartnerA)
}

func TestSolveScheduleSkipsMissingAvailability(t *testing.T) {
	s := NewSolver(DefaultConstraints())

	availabilities := map[string]map[string][]string{
		"s1": {"Monday": {"Morning"}},
	}
	pairs := []models.CompatibilityPair{{StudentA: "s1", StudentB: "ghost", Score: 99}}

	assert.Empty(t, s.SolveSchedule(availabilities, pairs, 0))
}

func TestValidateFullScheduleViolations(t *testing.T) {
	s := NewSolver(Constraints{MaxSessionsPerDay: 1, MaxSessionsPerWeek: 2, MaxPartnersPerStudent: 2, SessionHours: 2})

	sessions := []models.StudySession{
		session("s1", "s2", "Monday", "Morning"),
		session("s1", "s3", "Monday", "Evening"),
		session("s1", "s4", "Tuesday", "Morning"),
	}

	valid, violations := s.ValidateFullSchedule(sessions)
	assert.False(t, valid)
	assert.Contains(t, violations, "student s1 has 2 sessions on Monday (max: 1)")
	assert.Contains(t, violations, "student s1 has 3 sessions per week (max: 2)")
	assert.Contains(t, violations, "student s1 has 3 different partners (max: 2)")
}

func TestValidateFullScheduleEmpty(t *testing.T) {
	s := NewSolver(DefaultConstraints())
	valid, violations := s.ValidateFullSchedule(nil)
	assert.True(t, valid)
	assert.Empty(t, violations)
}

func TestOptimizeScheduleMovesToPreferredSlot(t *testing.T) {
	s := NewSolver(DefaultConstraints())

	availabilities := map[string]map[string][]string{
		"s1": {"Monday": {"Morning"}, "Friday": {"Evening"}},
		"s2": {"Monday": {"Morning"}, "Friday": {"Evening"}},
	}
	schedule := []models.StudySession{session("s1", "s2", "Friday", "Evening")}

	optimized := s.OptimizeSchedule(schedule, availabilities)
	require.Len(t, optimized, 1)
	assert.Equal(t, models.ScheduleSlot{Day: "Monday", Time: "Morning"}, optimized[0].Slot)

	// The original schedule is untouched.
	assert.Equal(t, models.ScheduleSlot{Day: "Friday", Time: "Evening"}, schedule[0].Slot)
}

func TestOptimizeScheduleRespectsConstraints(t *testing.T) {
	s := NewSolver(Constraints{MaxSessionsPerDay: 1, MaxSessionsPerWeek: 6, MaxPartnersPerStudent: 3, SessionHours: 2})

	// Moving the Friday session to Monday would give s1 two Monday sessions.
	availabilities := map[string]map[string][]string{
		"s1": {"Monday": {"Morning", "Evening"}, "Friday": {"Evening"}},
		"s2": {"Monday": {"Morning"}},
		"s3": {"Monday": {"Evening"}, "Friday": {"Evening"}},
	}
	schedule := []models.StudySession{
		session("s1", "s2", "Monday", "Morning"),
		session("s1", "s3", "Friday", "Evening"),
	}

	optimized := s.OptimizeSchedule(schedule, availabilities)
	require.Len(t, optimized, 2)
	assert.Equal(t, models.ScheduleSlot{Day: "Monday", Time: "Morning"}, optimized[0].Slot)
	assert.Equal(t, models.ScheduleSlot{Day: "Friday", Time: "Evening"}, optimized[1].Slot)
}

func TestOptimizeScheduleIsIdempotent(t *testing.T) {
	s := NewSolver(DefaultConstraints())

	availabilities := map[string]map[string][]string{
		"s1": {"Monday": {"Morning", "Evening"}, "Wednesday": {"Afternoon"}},
		"s2": {"Monday": {"Morning", "Evening"}, "Wednesday": {"Afternoon"}},
		"s3": {"Monday": {"Evening"}, "Wednesday": {"Afternoon"}},
	}
	schedule := []models.StudySession{
		session("s1", "s2", "Wednesday", "Afternoon"),
		session("s1", "s3", "Monday", "Evening"),
	}

	once := s.OptimizeSchedule(schedule, availabilities)
	twice := s.OptimizeSchedule(once, availabilities)
	assert.Equal(t, once, twice)
}

func TestSlotOrdering(t *testing.T) {
	monMorning := models.ScheduleSlot{Day: "Monday", Time: "Morning"}
	monEvening := models.ScheduleSlot{Day: "Monday", Time: "Evening"}
	sunMorning := models.ScheduleSlot{Day: "Sunday", Time: "Morning"}
	oddball := models.ScheduleSlot{Day: "Someday", Time: "Noonish"}

	assert.True(t, rankLess(monMorning, monEvening))
	assert.True(t, rankLess(monEvening, sunMorning))
	assert.True(t, rankLess(sunMorning, oddball))
	assert.False(t, rankLess(oddball, monMorning))

	// Unknown labels share a rank; slotLess still orders them.
	other := models.ScheduleSlot{Day: "Anotherday", Time: "Noonish"}
	assert.False(t, rankLess(oddball, other))
	assert.False(t, rankLess(other, oddball))
	assert.True(t, slotLess(other, oddball))
}
