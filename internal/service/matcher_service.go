package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/smartbuddy/matching-api/internal/dto"
	"github.com/smartbuddy/matching-api/internal/matching"
	"github.com/smartbuddy/matching-api/internal/models"
	"github.com/smartbuddy/matching-api/internal/repository"
	"github.com/smartbuddy/matching-api/internal/scheduling"
	appErrors "github.com/smartbuddy/matching-api/pkg/errors"
)

// MatcherDefaults fills omitted query parameters.
type MatcherDefaults struct {
	MinScore    float64
	MaxResults  int
	MaxSessions int
	CacheTTL    time.Duration
}

// MatcherService composes the compatibility engine and the solver into the
// three external operations. All computation is synchronous and in-memory;
// the caller supplies every profile involved.
type MatcherService struct {
	engine    *matching.CompatibilityEngine
	solver    *scheduling.Solver
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	defaults  MatcherDefaults
}

// NewMatcherService wires matcher dependencies.
func NewMatcherService(
	engine *matching.CompatibilityEngine,
	solver *scheduling.Solver,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	defaults MatcherDefaults,
) *MatcherService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaults.MinScore <= 0 {
		defaults.MinScore = 50
	}
	if defaults.MaxResults <= 0 {
		defaults.MaxResults = 10
	}
	if defaults.MaxSessions <= 0 {
		defaults.MaxSessions = 20
	}
	return &MatcherService{
		engine:    engine,
		solver:    solver,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		defaults:  defaults,
	}
}

// FindMatchesForStudent ranks candidate partners for one student and
// optionally attaches a scheduling feasibility analysis.
func (s *MatcherService) FindMatchesForStudent(ctx context.Context, req dto.MatchQuery) (*dto.MatchResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid match query payload")
	}

	var student *models.StudentProfile
	byID := make(map[string]models.StudentProfile, len(req.Profiles))
	for i := range req.Profiles {
		byID[req.Profiles[i].ID] = req.Profiles[i]
		if req.Profiles[i].ID == req.StudentID {
			student = &req.Profiles[i]
		}
	}
	if student == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("student %s not found among supplied profiles", req.StudentID))
	}

	minScore := req.MinScore
	if minScore <= 0 {
		minScore = s.defaults.MinScore
	}
	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = s.defaults.MaxResults
	}

	start := time.Now()
	matches := s.engine.FindMatches(*student, req.Profiles, minScore, maxResults)
	s.metrics.RecordMatchQuery(time.Since(start), len(matches))
	s.metrics.RecordScores(len(req.Profiles) - 1)

	result := &dto.MatchResult{
		StudentID:       student.ID,
		StudentUsername: student.Username,
		TotalCandidates: len(req.Profiles) - 1,
		MatchesFound:    len(matches),
		Matches:         matches,
	}

	if req.IncludeScheduling && len(matches) > 0 {
		result.SchedulingAnalysis = s.analyzeScheduling(*student, byID, matches)
	}

	s.logger.Debug("match query served",
		zap.String("student_id", student.ID),
		zap.Int("candidates", result.TotalCandidates),
		zap.Int("matches", len(matches)),
	)
	return result, nil
}

func (s *MatcherService) analyzeScheduling(student models.StudentProfile, profiles map[string]models.StudentProfile, matches []models.CompatibilityScore) *dto.SchedulingAnalysis {
	availabilities := map[string]map[string][]string{
		student.ID: student.Availability,
	}
	pairs := make([]models.CompatibilityPair, 0, len(matches))
	for _, match := range matches {
		if partner, ok := profiles[match.PartnerID]; ok {
			availabilities[partner.ID] = partner.Availability
		}
		pairs = append(pairs, models.CompatibilityPair{StudentA: student.ID, StudentB: match.PartnerID, Score: match.TotalScore})
	}

	start := time.Now()
	sessions := s.solver.SolveSchedule(availabilities, pairs, len(matches))
	s.metrics.RecordSolve(time.Since(start), len(sessions))

	feasible, violations := s.solver.ValidateFullSchedule(sessions)
	if violations == nil {
		violations = []string{}
	}

	proposed := map[string][]dto.SessionProposal{}
	for _, session := range sessions {
		partnerID := session.PartnerOf(student.ID)
		proposed[partnerID] = append(proposed[partnerID], dto.SessionProposal{
			Day:           session.Slot.Day,
			Time:          session.Slot.Time,
			DurationHours: session.DurationHours,
		})
	}

	return &dto.SchedulingAnalysis{
		Feasible:              feasible,
		TotalSessionsPossible: len(sessions),
		PartnersWithSessions:  len(proposed),
		ConstraintViolations:  violations,
		ProposedSessions:      proposed,
	}
}

// CreateStudyGroupSchedule scores every pair in the group, solves the
// session schedule, optionally optimizes it, and returns the summary.
func (s *MatcherService) CreateStudyGroupSchedule(ctx context.Context, req dto.GroupScheduleRequest) (*dto.GroupScheduleResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "at least 2 profiles are required for group scheduling")
	}

	availabilities := make(map[string]map[string][]string, len(req.Profiles))
	studentIDs := make([]string, 0, len(req.Profiles))
	for _, profile := range req.Profiles {
		availabilities[profile.ID] = profile.Availability
		studentIDs = append(studentIDs, profile.ID)
	}

	pairs := make([]models.CompatibilityPair, 0, len(req.Profiles)*(len(req.Profiles)-1)/2)
	for i := range req.Profiles {
		for j := i + 1; j < len(req.Profiles); j++ {
			score := s.engine.Score(req.Profiles[i], req.Profiles[j])
			pairs = append(pairs, models.CompatibilityPair{
				StudentA: req.Profiles[i].ID,
				StudentB: req.Profiles[j].ID,
				Score:    score.TotalScore,
			})
		}
	}
	s.metrics.RecordScores(len(pairs))

	start := time.Now()
	schedule := s.solver.SolveSchedule(availabilities, pairs, s.defaults.MaxSessions)
	if req.Optimize && len(schedule) > 0 {
		schedule = s.solver.OptimizeSchedule(schedule, availabilities)
	}
	s.metrics.RecordSolve(time.Since(start), len(schedule))

	valid, violations := s.solver.ValidateFullSchedule(schedule)
	if violations == nil {
		violations = []string{}
	}

	// A committed run supersedes any cached matrix for the same roster.
	if s.cache.Enabled() {
		_ = s.cache.Invalidate(ctx, repository.MatrixKey(studentIDs))
	}

	resp := &dto.GroupScheduleResponse{
		ScheduleID:           uuid.NewString(),
		StudentIDs:           studentIDs,
		TotalStudents:        len(req.Profiles),
		TotalPossiblePairs:   len(pairs),
		ScheduledSessions:    len(schedule),
		ScheduleValid:        valid,
		ConstraintViolations: violations,
		Schedule:             buildScheduleSummary(schedule, req.Profiles),
		OptimizationApplied:  req.Optimize,
		Sessions:             schedule,
	}

	s.logger.Debug("group schedule created",
		zap.String("schedule_id", resp.ScheduleID),
		zap.Int("students", resp.TotalStudents),
		zap.Int("sessions", resp.ScheduledSessions),
		zap.Bool("valid", valid),
	)
	return resp, nil
}

// GetCompatibilityMatrix computes the pairwise score matrix for a group,
// consulting the cache when enabled.
func (s *MatcherService) GetCompatibilityMatrix(ctx context.Context, req dto.MatrixRequest) (*dto.MatrixResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "at least 2 profiles are required for compatibility analysis")
	}

	ids := make([]string, 0, len(req.Profiles))
	for _, profile := range req.Profiles {
		ids = append(ids, profile.ID)
	}
	cacheKey := repository.MatrixKey(ids)

	if s.cache.Enabled() {
		var cached dto.MatrixResponse
		if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
			return &cached, nil
		}
	}

	matrix := make(map[string]map[string]float64, len(req.Profiles))
	detailed := make(map[string]map[string]dto.MatrixCell, len(req.Profiles))
	var allScores []float64

	for _, p1 := range req.Profiles {
		rowKey := matrixKey(p1)
		matrix[rowKey] = make(map[string]float64, len(req.Profiles))
		detailed[rowKey] = make(map[string]dto.MatrixCell, len(req.Profiles))

		for _, p2 := range req.Profiles {
			colKey := matrixKey(p2)
			if p1.ID == p2.ID {
				matrix[rowKey][colKey] = 100
				detailed[rowKey][colKey] = dto.MatrixCell{TotalScore: 100, Note: "self-match"}
				continue
			}
			score := s.engine.Score(p1, p2)
			rounded := roundTwo(score.TotalScore)
			matrix[rowKey][colKey] = rounded
			detail := score
			detailed[rowKey][colKey] = dto.MatrixCell{TotalScore: rounded, Detail: &detail}
			allScores = append(allScores, rounded)
		}
	}
	s.metrics.RecordScores(len(allScores))

	resp := &dto.MatrixResponse{
		StudentCount:      len(req.Profiles),
		Matrix:            matrix,
		DetailedScores:    detailed,
		SummaryStatistics: summarizeScores(allScores),
	}

	if s.cache.Enabled() {
		_ = s.cache.Set(ctx, cacheKey, resp, s.defaults.CacheTTL)
	}
	return resp, nil
}

func summarizeScores(scores []float64) dto.MatrixSummary {
	summary := dto.MatrixSummary{TotalPairs: len(scores)}
	if len(scores) == 0 {
		return summary
	}

	sum := 0.0
	summary.HighestCompatibility = scores[0]
	summary.LowestCompatibility = scores[0]
	for _, score := range scores {
		sum += score
		if score > summary.HighestCompatibility {
			summary.HighestCompatibility = score
		}
		if score < summary.LowestCompatibility {
			summary.LowestCompatibility = score
		}
		if score >= 70 {
			summary.PairsAbove70++
		}
		if score >= 80 {
			summary.PairsAbove80++
		}
		if score >= 90 {
			summary.PairsAbove90++
		}
	}
	summary.AverageCompatibility = roundTwo(sum / float64(len(scores)))
	return summary
}

// buildScheduleSummary groups sessions by day, orders each day by time of
// day, and aggregates totals.
func buildScheduleSummary(sessions []models.StudySession, profiles []models.StudentProfile) dto.ScheduleSummary {
	usernames := make(map[string]string, len(profiles))
	for _, profile := range profiles {
		usernames[profile.ID] = profile.Username
	}

	byDay := map[string][]dto.ScheduledSessionView{}
	totalHours := 0.0
	sessionCounts := map[string]int{}
	for _, session := range sessions {
		byDay[session.Slot.Day] = append(byDay[session.Slot.Day], dto.ScheduledSessionView{
			Time:          session.Slot.Time,
			PartnerA:      dto.PartnerRef{ID: session.PartnerA, Username: displayName(usernames, session.PartnerA)},
			PartnerB:      dto.PartnerRef{ID: session.PartnerB, Username: displayName(usernames, session.PartnerB)},
			DurationHours: session.DurationHours,
		})
		totalHours += session.DurationHours
		sessionCounts[displayName(usernames, session.PartnerA)]++
		sessionCounts[displayName(usernames, session.PartnerB)]++
	}

	timeOrder := map[string]int{"Morning": 1, "Afternoon": 2, "Evening": 3}
	for day := range byDay {
		views := byDay[day]
		sort.SliceStable(views, func(i, j int) bool {
			oi, ok := timeOrder[views[i].Time]
			if !ok {
				oi = 4
			}
			oj, ok := timeOrder[views[j].Time]
			if !ok {
				oj = 4
			}
			return oi < oj
		})
		byDay[day] = views
	}

	return dto.ScheduleSummary{
		ByDay: byDay,
		Statistics: dto.ScheduleStatistics{
			TotalSessions:        len(sessions),
			TotalStudyHours:      totalHours,
			DaysWithSessions:     len(byDay),
			StudentSessionCounts: sessionCounts,
		},
	}
}

func displayName(usernames map[string]string, studentID string) string {
	if name, ok := usernames[studentID]; ok && name != "" {
		return name
	}
	return fmt.Sprintf("Student %s", studentID)
}

func matrixKey(profile models.StudentProfile) string {
	return fmt.Sprintf("%s_%s", profile.ID, profile.Username)
}

func roundTwo(value float64) float64 {
	return math.Round(value*100) / 100
}
