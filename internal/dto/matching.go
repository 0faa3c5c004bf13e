package dto

import "github.com/smartbuddy/matching-api/internal/models"

// MatchQuery asks for ranked partners for one student. Profiles must include
// the target student; the caller supplies the candidate pool as plain data.
type MatchQuery struct {
	StudentID         string                  `json:"studentId" validate:"required"`
	Profiles          []models.StudentProfile `json:"profiles" validate:"required,min=1"`
	MinScore          float64                 `json:"minScore" validate:"omitempty,min=0,max=100"`
	MaxResults        int                     `json:"maxResults" validate:"omitempty,min=1"`
	IncludeScheduling bool                    `json:"includeScheduling"`
}

// SessionProposal is one feasible session slot for a matched pair.
type SessionProposal struct {
	Day           string  `json:"day"`
	Time          string  `json:"time"`
	DurationHours float64 `json:"durationHours"`
}

// SchedulingAnalysis summarises session feasibility across the found matches.
type SchedulingAnalysis struct {
	Feasible              bool                         `json:"schedulingFeasible"`
	TotalSessionsPossible int                          `json:"totalSessionsPossible"`
	PartnersWithSessions  int                          `json:"partnersWithSessions"`
	ConstraintViolations  []string                     `json:"constraintViolations"`
	ProposedSessions      map[string][]SessionProposal `json:"proposedSessions"`
}

// MatchResult is the payload for a match query.
type MatchResult struct {
	StudentID          string                      `json:"studentId"`
	StudentUsername    string                      `json:"studentUsername"`
	TotalCandidates    int                         `json:"totalPotentialPartners"`
	MatchesFound       int                         `json:"matchesFound"`
	Matches            []models.CompatibilityScore `json:"matches"`
	SchedulingAnalysis *SchedulingAnalysis         `json:"schedulingAnalysis,omitempty"`
}

// GroupScheduleRequest builds a schedule for a whole study group.
type GroupScheduleRequest struct {
	Profiles []models.StudentProfile `json:"profiles" validate:"required,min=2"`
	Optimize bool                    `json:"optimize"`
}

// PartnerRef identifies one participant of a scheduled session.
type PartnerRef struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// ScheduledSessionView renders a committed session inside the by-day summary.
type ScheduledSessionView struct {
	Time          string     `json:"time"`
	PartnerA      PartnerRef `json:"partner1"`
	PartnerB      PartnerRef `json:"partner2"`
	DurationHours float64    `json:"durationHours"`
}

// ScheduleStatistics aggregates a produced schedule.
type ScheduleStatistics struct {
	TotalSessions        int            `json:"totalSessions"`
	TotalStudyHours      float64        `json:"totalStudyHours"`
	DaysWithSessions     int            `json:"daysWithSessions"`
	StudentSessionCounts map[string]int `json:"studentSessionCounts"`
}

// ScheduleSummary groups sessions by day with in-day time ordering.
type ScheduleSummary struct {
	ByDay      map[string][]ScheduledSessionView `json:"byDay"`
	Statistics ScheduleStatistics                `json:"statistics"`
}

// GroupScheduleResponse is the payload for a group scheduling run.
type GroupScheduleResponse struct {
	ScheduleID           string          `json:"scheduleId"`
	StudentIDs           []string        `json:"studentIds"`
	TotalStudents        int             `json:"totalStudents"`
	TotalPossiblePairs   int             `json:"totalPossiblePairs"`
	ScheduledSessions    int             `json:"scheduledSessions"`
	ScheduleValid        bool            `json:"scheduleValid"`
	ConstraintViolations []string        `json:"constraintViolations"`
	Schedule             ScheduleSummary `json:"schedule"`
	OptimizationApplied  bool            `json:"optimizationApplied"`

	// Sessions carries the raw committed sessions for exporters; the
	// serialized summary above is what API callers consume.
	Sessions []models.StudySession `json:"-"`
}

// MatrixRequest asks for the pairwise compatibility matrix of a group.
type MatrixRequest struct {
	Profiles []models.StudentProfile `json:"profiles" validate:"required,min=2"`
}

// MatrixCell is one detailed entry of the compatibility matrix.
type MatrixCell struct {
	TotalScore float64                    `json:"totalScore"`
	Note       string                     `json:"note,omitempty"`
	Detail     *models.CompatibilityScore `json:"detail,omitempty"`
}

// MatrixSummary carries aggregate statistics over all ordered non-self pairs.
type MatrixSummary struct {
	TotalPairs           int     `json:"totalPairs"`
	AverageCompatibility float64 `json:"averageCompatibility"`
	HighestCompatibility float64 `json:"highestCompatibility"`
	LowestCompatibility  float64 `json:"lowestCompatibility"`
	PairsAbove70         int     `json:"pairsAbove70"`
	PairsAbove80         int     `json:"pairsAbove80"`
	PairsAbove90         int     `json:"pairsAbove90"`
}

// MatrixResponse is the payload for a compatibility-matrix request.
type MatrixResponse struct {
	StudentCount      int                              `json:"studentCount"`
	Matrix            map[string]map[string]float64    `json:"compatibilityMatrix"`
	DetailedScores    map[string]map[string]MatrixCell `json:"detailedScores"`
	SummaryStatistics MatrixSummary                    `json:"summaryStatistics"`
}
