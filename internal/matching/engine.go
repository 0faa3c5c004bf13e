package matching

import (
	"sort"
	"strings"

	"github.com/smartbuddy/matching-api/internal/models"
	appErrors "github.com/smartbuddy/matching-api/pkg/errors"
)

// Recognized attribute labels. Profiles are free text; only these values
// carry special scoring rules, everything else falls through to the default
// branch of each scorer.
const (
	personalityIntrovert = "INTROVERT"
	personalityExtrovert = "EXTROVERT"
	personalityAmbivert  = "AMBIVERT"

	styleGroup      = "GROUP"
	styleIndividual = "INDIVIDUAL"
	styleMixed      = "MIXED"

	envQuiet         = "QUIET"
	envCollaborative = "COLLABORATIVE"
	envMixed         = "MIXED"
)

// Weights holds the relative importance of each compatibility component.
type Weights struct {
	Personality      float64
	StudyPreferences float64
	AcademicGoals    float64
	Availability     float64
}

// DefaultWeights weighs all four components equally.
func DefaultWeights() Weights {
	return Weights{Personality: 0.25, StudyPreferences: 0.25, AcademicGoals: 0.25, Availability: 0.25}
}

// CompatibilityEngine scores profile pairs across personality, study
// preferences, academic goals and availability.
type CompatibilityEngine struct {
	weights Weights
}

// NewCompatibilityEngine rescales the provided weights to sum to exactly 1.0.
// A non-positive weight sum is a configuration error.
func NewCompatibilityEngine(w Weights) (*CompatibilityEngine, error) {
	sum := w.Personality + w.StudyPreferences + w.AcademicGoals + w.Availability
	if sum <= 0 {
		return nil, appErrors.Clone(appErrors.ErrInvalidWeights, "component weights must sum to a positive value")
	}
	return &CompatibilityEngine{weights: Weights{
		Personality:      w.Personality / sum,
		StudyPreferences: w.StudyPreferences / sum,
		AcademicGoals:    w.AcademicGoals / sum,
		Availability:     w.Availability / sum,
	}}, nil
}

// Weights returns the normalized weights.
func (e *CompatibilityEngine) Weights() Weights {
	return e.weights
}

// PersonalityScore rates personality fit. Identical types score 100, an
// ambivert on either side adapts well (85), the introvert/extrovert pairing
// can complement (70), anything else lands on the 60 floor.
func (e *CompatibilityEngine) PersonalityScore(a, b models.StudentProfile) float64 {
	p1 := upperLabel(a.PersonalityType)
	p2 := upperLabel(b.PersonalityType)

	switch {
	case p1 == p2:
		return 100
	case p1 == personalityAmbivert || p2 == personalityAmbivert:
		return 85
	case unorderedMatch(p1, p2, personalityIntrovert, personalityExtrovert):
		return 70
	default:
		return 60
	}
}

// StudyPreferencesScore averages the study-style and environment sub-scores.
func (e *CompatibilityEngine) StudyPreferencesScore(a, b models.StudentProfile) float64 {
	style := studyStyleScore(a.StudyStyle, b.StudyStyle)
	environment := environmentScore(a.PreferredEnvironment, b.PreferredEnvironment)
	return (style + environment) / 2
}

func studyStyleScore(s1, s2 string) float64 {
	a := upperLabel(s1)
	b := upperLabel(s2)

	switch {
	case a == b:
		return 100
	case a == styleMixed || b == styleMixed:
		return 85
	case unorderedMatch(a, b, styleGroup, styleIndividual):
		return 60
	default:
		return 70
	}
}

func environmentScore(e1, e2 string) float64 {
	a := upperLabel(e1)
	b := upperLabel(e2)

	switch {
	case a == b:
		return 100
	case a == envMixed || b == envMixed:
		return 85
	case unorderedMatch(a, b, envQuiet, envCollaborative):
		return 65
	default:
		return 70
	}
}

// AcademicGoalsScore maps the Jaccard similarity of the two focus-area sets
// onto [30,100]. Missing areas on either side yield the neutral score 50.
func (e *CompatibilityEngine) AcademicGoalsScore(a, b models.StudentProfile) float64 {
	areas1 := focusAreaSet(a.AcademicFocusAreas)
	areas2 := focusAreaSet(b.AcademicFocusAreas)

	if len(areas1) == 0 || len(areas2) == 0 {
		return 50
	}

	intersection := 0
	for area := range areas1 {
		if _, ok := areas2[area]; ok {
			intersection++
		}
	}
	union := len(areas1) + len(areas2) - intersection
	if union == 0 {
		return 50
	}

	jaccard := float64(intersection) / float64(union)
	return 30 + 70*jaccard
}

// AvailabilityScore rates overlap against the first student's total slot
// count, so the score is intentionally asymmetric. It also returns every
// shared (day, time) pair.
func (e *CompatibilityEngine) AvailabilityScore(a, b models.StudentProfile) (float64, []models.ScheduleSlot) {
	totalSlots := a.TotalAvailabilitySlots()
	if totalSlots == 0 {
		return 0, nil
	}

	shared := sharedSlots(a.Availability, b.Availability)
	if len(shared) == 0 {
		return 0, nil
	}

	overlapPct := float64(len(shared)) / float64(totalSlots) * 100
	bonus := float64(len(shared)) * 3
	if bonus > 20 {
		bonus = 20
	}

	score := overlapPct + bonus
	if score > 100 {
		score = 100
	}
	return score, shared
}

// sharedSlots intersects the two availability maps day by day. Days are
// visited in sorted order so the result is reproducible.
func sharedSlots(a, b map[string][]string) []models.ScheduleSlot {
	days := make([]string, 0, len(a))
	for day := range a {
		if _, ok := b[day]; ok {
			days = append(days, day)
		}
	}
	sort.Strings(days)

	var shared []models.ScheduleSlot
	for _, day := range days {
		other := make(map[string]struct{}, len(b[day]))
		for _, slot := range b[day] {
			other[slot] = struct{}{}
		}
		seen := make(map[string]struct{})
		for _, slot := range a[day] {
			if _, ok := other[slot]; !ok {
				continue
			}
			if _, dup := seen[slot]; dup {
				continue
			}
			seen[slot] = struct{}{}
			shared = append(shared, models.ScheduleSlot{Day: day, Time: slot})
		}
	}
	return shared
}

// Score computes the full weighted breakdown for one candidate partner.
func (e *CompatibilityEngine) Score(student, partner models.StudentProfile) models.CompatibilityScore {
	personality := e.PersonalityScore(student, partner)
	preferences := e.StudyPreferencesScore(student, partner)
	academic := e.AcademicGoalsScore(student, partner)
	availability, shared := e.AvailabilityScore(student, partner)

	total := personality*e.weights.Personality +
		preferences*e.weights.StudyPreferences +
		academic*e.weights.AcademicGoals +
		availability*e.weights.Availability

	return models.CompatibilityScore{
		PartnerID:             partner.ID,
		PartnerUsername:       partner.Username,
		TotalScore:            total,
		PersonalityScore:      personality,
		StudyPreferencesScore: preferences,
		AcademicGoalsScore:    academic,
		AvailabilityScore:     availability,
		SharedTimeSlots:       shared,
	}
}

// FindMatches scores the student against every candidate, drops self-matches
// and anything under minScore, and returns the best results in descending
// score order. Ties keep input order. A non-positive maxResults means no
// truncation.
func (e *CompatibilityEngine) FindMatches(student models.StudentProfile, candidates []models.StudentProfile, minScore float64, maxResults int) []models.CompatibilityScore {
	matches := make([]models.CompatibilityScore, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.ID == student.ID {
			continue
		}
		score := e.Score(student, candidate)
		if score.TotalScore >= minScore {
			matches = append(matches, score)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].TotalScore > matches[j].TotalScore
	})

	if maxResults > 0 && len(matches) > maxResults {
		matches = matches[:maxResults]
	}
	return matches
}

func upperLabel(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

func unorderedMatch(a, b, x, y string) bool {
	return (a == x && b == y) || (a == y && b == x)
}

func focusAreaSet(areas []string) map[string]struct{} {
	set := make(map[string]struct{}, len(areas))
	for _, area := range areas {
		normalized := upperLabel(area)
		if normalized == "" {
			continue
		}
		set[normalized] = struct{}{}
	}
	return set
}
