package scheduling

import (
	"fmt"
	"sort"

	"github.com/smartbuddy/matching-api/internal/models"
)

// Solver assigns compatible pairs to mutually available slots. The greedy
// pass (SolveSchedule) is a correct scheduler on its own; OptimizeSchedule
// is a separate bounded local-improvement pass over its output.
type Solver struct {
	constraints Constraints
}

// NewSolver builds a solver, filling non-positive constraint fields with the
// defaults.
func NewSolver(constraints Constraints) *Solver {
	defaults := DefaultConstraints()
	if constraints.MaxSessionsPerDay <= 0 {
		constraints.MaxSessionsPerDay = defaults.MaxSessionsPerDay
	}
	if constraints.MaxSessionsPerWeek <= 0 {
		constraints.MaxSessionsPerWeek = defaults.MaxSessionsPerWeek
	}
	if constraints.MaxPartnersPerStudent <= 0 {
		constraints.MaxPartnersPerStudent = defaults.MaxPartnersPerStudent
	}
	if constraints.SessionHours <= 0 {
		constraints.SessionHours = defaults.SessionHours
	}
	return &Solver{constraints: constraints}
}

// Constraints returns the active limits.
func (s *Solver) Constraints() Constraints {
	return s.constraints
}

// AvailableSlots flattens a day -> time-labels mapping into a slot set.
// Duplicate labels per day collapse under set semantics.
func (s *Solver) AvailableSlots(availability map[string][]string) map[models.ScheduleSlot]struct{} {
	slots := make(map[models.ScheduleSlot]struct{})
	for day, times := range availability {
		for _, t := range times {
			slots[models.ScheduleSlot{Day: day, Time: t}] = struct{}{}
		}
	}
	return slots
}

// CommonAvailability intersects both parties' flattened slot sets.
func (s *Solver) CommonAvailability(a, b map[string][]string) map[models.ScheduleSlot]struct{} {
	slotsA := s.AvailableSlots(a)
	slotsB := s.AvailableSlots(b)

	common := make(map[models.ScheduleSlot]struct{})
	for slot := range slotsA {
		if _, ok := slotsB[slot]; ok {
			common[slot] = struct{}{}
		}
	}
	return common
}

// SolveSchedule greedily commits at most one session per compatible pair.
// Pairs are processed in descending score order (ties keep input order) so
// higher-compatibility pairs claim slots and constraint budget first. Pairs
// with missing availability or no common slot are skipped silently. A
// non-positive maxSessions leaves the run unbounded.
func (s *Solver) SolveSchedule(availabilities map[string]map[string][]string, pairs []models.CompatibilityPair, maxSessions int) []models.StudySession {
	sorted := make([]models.CompatibilityPair, len(pairs))
	copy(sorted, pairs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	sessions := make([]models.StudySession, 0, len(sorted))
	for _, pair := range sorted {
		if maxSessions > 0 && len(sessions) >= maxSessions {
			break
		}

		availA, okA := availabilities[pair.StudentA]
		availB, okB := availabilities[pair.StudentB]
		if !okA || !okB {
			continue
		}

		common := s.CommonAvailability(availA, availB)
		if len(common) == 0 {
			continue
		}

		for _, slot := range orderedSlots(common) {
			candidate := models.StudySession{
				PartnerA:      pair.StudentA,
				PartnerB:      pair.StudentB,
				Slot:          slot,
				DurationHours: s.constraints.SessionHours,
			}
			if s.constraints.ValidateSession(candidate, sessions) {
				sessions = append(sessions, candidate)
				break
			}
		}
	}
	return sessions
}

// ValidateFullSchedule re-derives every per-student count independently of
// the incremental gate, so it can audit externally constructed schedules.
// One message is emitted per violated rule per student.
func (s *Solver) ValidateFullSchedule(sessions []models.StudySession) (bool, []string) {
	perStudent := map[string][]models.StudySession{}
	for _, session := range sessions {
		perStudent[session.PartnerA] = append(perStudent[session.PartnerA], session)
		perStudent[session.PartnerB] = append(perStudent[session.PartnerB], session)
	}

	studentIDs := make([]string, 0, len(perStudent))
	for id := range perStudent {
		studentIDs = append(studentIDs, id)
	}
	sort.Strings(studentIDs)

	var violations []string
	for _, id := range studentIDs {
		owned := perStudent[id]

		daily := map[string]int{}
		for _, session := range owned {
			daily[session.Slot.Day]++
		}
		days := make([]string, 0, len(daily))
		for day := range daily {
			days = append(days, day)
		}
		sort.Strings(days)
		for _, day := range days {
			if daily[day] > s.constraints.MaxSessionsPerDay {
				violations = append(violations, fmt.Sprintf("student %s has %d sessions on %s (max: %d)", id, daily[day], day, s.constraints.MaxSessionsPerDay))
			}
		}

		if len(owned) > s.constraints.MaxSessionsPerWeek {
			violations = append(violations, fmt.Sprintf("student %s has %d sessions per week (max: %d)", id, len(owned), s.constraints.MaxSessionsPerWeek))
		}

		partners := map[string]struct{}{}
		for _, session := range owned {
			partners[session.PartnerOf(id)] = struct{}{}
		}
		if len(partners) > s.constraints.MaxPartnersPerStudent {
			violations = append(violations, fmt.Sprintf("student %s has %d different partners (max: %d)", id, len(partners), s.constraints.MaxPartnersPerStudent))
		}
	}

	return len(violations) == 0, violations
}

// OptimizeSchedule tries to move each committed session, in order, to a
// strictly preferred slot that still validates against the rest of the
// schedule. Earlier moves are visible to later checks; the pass accepts
// greedy local improvement only and never worsens feasibility.
func (s *Solver) OptimizeSchedule(schedule []models.StudySession, availabilities map[string]map[string][]string) []models.StudySession {
	optimized := make([]models.StudySession, len(schedule))
	copy(optimized, schedule)

	for i := range optimized {
		current := optimized[i]
		common := s.CommonAvailability(availabilities[current.PartnerA], availabilities[current.PartnerB])

		var better []models.ScheduleSlot
		for slot := range common {
			if rankLess(slot, current.Slot) {
				better = append(better, slot)
			}
		}
		if len(better) == 0 {
			continue
		}
		sort.Slice(better, func(a, b int) bool { return slotLess(better[a], better[b]) })

		rest := make([]models.StudySession, 0, len(optimized)-1)
		rest = append(rest, optimized[:i]...)
		rest = append(rest, optimized[i+1:]...)

		for _, slot := range better {
			moved := current
			moved.Slot = slot
			if s.constraints.ValidateSession(moved, rest) {
				optimized[i] = moved
				break
			}
		}
	}
	return optimized
}

// Slot preference: earlier weekday first, then earlier time of day.
// Unrecognized labels sort after the known vocabulary.
var dayRank = map[string]int{
	"Monday":    1,
	"Tuesday":   2,
	"Wednesday": 3,
	"Thursday":  4,
	"Friday":    5,
	"Saturday":  6,
	"Sunday":    7,
}

var timeRank = map[string]int{
	"Morning":   1,
	"Afternoon": 2,
	"Evening":   3,
}

func slotRank(slot models.ScheduleSlot) (int, int) {
	day, ok := dayRank[slot.Day]
	if !ok {
		day = 8
	}
	t, ok := timeRank[slot.Time]
	if !ok {
		t = 4
	}
	return day, t
}

// rankLess is the strict preference ordering used by the optimizer.
func rankLess(a, b models.ScheduleSlot) bool {
	dayA, timeA := slotRank(a)
	dayB, timeB := slotRank(b)
	if dayA != dayB {
		return dayA < dayB
	}
	return timeA < timeB
}

// slotLess breaks preference ties by label so map iteration order never
// leaks into results.
func slotLess(a, b models.ScheduleSlot) bool {
	dayA, timeA := slotRank(a)
	dayB, timeB := slotRank(b)
	if dayA != dayB {
		return dayA < dayB
	}
	if timeA != timeB {
		return timeA < timeB
	}
	if a.Day != b.Day {
		return a.Day < b.Day
	}
	return a.Time < b.Time
}

func orderedSlots(slots map[models.ScheduleSlot]struct{}) []models.ScheduleSlot {
	ordered := make([]models.ScheduleSlot, 0, len(slots))
	for slot := range slots {
		ordered = append(ordered, slot)
	}
	sort.Slice(ordered, func(i, j int) bool { return slotLess(ordered[i], ordered[j]) })
	return ordered
}
