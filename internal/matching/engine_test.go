package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartbuddy/matching-api/internal/models"
	appErrors "github.com/smartbuddy/matching-api/pkg/errors"
)

func newEngine(t *testing.T) *CompatibilityEngine {
	t.Helper()
	engine, err := NewCompatibilityEngine(DefaultWeights())
	require.NoError(t, err)
	return engine
}

func profileFixture(id string) models.StudentProfile {
	return models.StudentProfile{
		ID:                   id,
		Username:             "user-" + id,
		PersonalityType:      "introvert",
		StudyStyle:           "group",
		PreferredEnvironment: "quiet",
		AcademicFocusAreas:   []string{"Computer Science", "Mathematics"},
		Availability: map[string][]string{
			"Monday":    {"Morning", "Evening"},
			"Wednesday": {"Afternoon"},
		},
	}
}

func TestNewCompatibilityEngineNormalizesWeights(t *testing.T) {
	engine, err := NewCompatibilityEngine(Weights{Personality: 2, StudyPreferences: 2, AcademicGoals: 2, Availability: 2})
	require.NoError(t, err)

	w := engine.Weights()
	assert.InDelta(t, 0.25, w.Personality, 1e-9)
	assert.InDelta(t, 0.25, w.StudyPreferences, 1e-9)
	assert.InDelta(t, 0.25, w.AcademicGoals, 1e-9)
	assert.InDelta(t, 0.25, w.Availability, 1e-9)
	assert.InDelta(t, 1.0, w.Personality+w.StudyPreferences+w.AcademicGoals+w.Availability, 1e-9)
}

func TestNewCompatibilityEngineRejectsNonPositiveSum(t *testing.T) {
	for _, w := range []Weights{{}, {Personality: -1, Availability: 1}} {
		_, err := NewCompatibilityEngine(w)
		require.Error(t, err)
		appErr := appErrors.FromError(err)
		assert.Equal(t, appErrors.ErrInvalidWeights.Code, appErr.Code)
	}
}

func TestPersonalityScore(t *testing.T) {
	engine := newEngine(t)

	cases := []struct {
		a, b     string
		expected float64
	}{
		{"introvert", "introvert", 100},
		{"INTROVERT", "introvert", 100},
		{"ambivert", "introvert", 85},
		{"extrovert", "ambivert", 85},
		{"introvert", "extrovert", 70},
		{"extrovert", "introvert", 70},
		{"introvert", "unknown", 60},
		{"", "introvert", 60},
	}

	for _, tc := range cases {
		a := models.StudentProfile{PersonalityType: tc.a}
		b := models.StudentProfile{PersonalityType: tc.b}
		assert.Equal(t, tc.expected, engine.PersonalityScore(a, b), "%s vs %s", tc.a, tc.b)
	}
}

func TestStudyPreferencesScore(t *testing.T) {
	engine := newEngine(t)

	// Identical style and environment.
	a := models.StudentProfile{StudyStyle: "group", PreferredEnvironment: "quiet"}
	assert.Equal(t, 100.0, engine.StudyPreferencesScore(a, a))

	// mixed adapts on both axes.
	b := models.StudentProfile{StudyStyle: "mixed", PreferredEnvironment: "mixed"}
	assert.Equal(t, 85.0, engine.StudyPreferencesScore(a, b))

	// group/individual clashes harder (60) than quiet/collaborative (65).
	c := models.StudentProfile{StudyStyle: "individual", PreferredEnvironment: "collaborative"}
	assert.Equal(t, 62.5, engine.StudyPreferencesScore(a, c))
}

func TestAcademicGoalsScore(t *testing.T) {
	engine := newEngine(t)

	a := models.StudentProfile{AcademicFocusAreas: []string{"CS", "MATH"}}
	b := models.StudentProfile{AcademicFocusAreas: []string{"cs", "physics"}}
	// Jaccard 1/3 mapped onto [30,100].
	assert.InDelta(t, 30+70.0/3, engine.AcademicGoalsScore(a, b), 1e-9)

	// Identical sets reach the top of the range.
	assert.InDelta(t, 100, engine.AcademicGoalsScore(a, a), 1e-9)

	// Disjoint sets hit the floor.
	c := models.StudentProfile{AcademicFocusAreas: []string{"ART"}}
	assert.InDelta(t, 30, engine.AcademicGoalsScore(a, c), 1e-9)

	// Missing areas on either side are neutral, not penalized.
	empty := models.StudentProfile{}
	assert.Equal(t, 50.0, engine.AcademicGoalsScore(a, empty))
	assert.Equal(t, 50.0, engine.AcademicGoalsScore(empty, a))
	assert.Equal(t, 50.0, engine.AcademicGoalsScore(empty, empty))
}

func TestAvailabilityScoreIsAsymmetric(t *testing.T) {
	engine := newEngine(t)

	a := models.StudentProfile{Availability: map[string][]string{
		"Monday":  {"Morning", "Afternoon", "Evening"},
		"Tuesday": {"Morning", "Afternoon"},
	}}
	b := models.StudentProfile{Availability: map[string][]string{
		"Monday": {"Morning", "Afternoon"},
	}}

	// A has 5 slots, 2 shared: 40% overlap + 6 bonus.
	scoreAB, sharedAB := engine.AvailabilityScore(a, b)
	assert.InDelta(t, 46, scoreAB, 1e-9)
	assert.Equal(t, []models.ScheduleSlot{
		{Day: "Monday", Time: "Morning"},
		{Day: "Monday", Time: "Afternoon"},
	}, sharedAB)

	// B has only those 2 slots: full overlap caps the score at 100.
	scoreBA, sharedBA := engine.AvailabilityScore(b, a)
	assert.Equal(t, 100.0, scoreBA)
	assert.NotEqual(t, scoreAB, scoreBA)
	assert.ElementsMatch(t, sharedAB, sharedBA)
}

func TestAvailabilityScoreCapsAtHundred(t *testing.T) {
	engine := newEngine(t)

	a := models.StudentProfile{Availability: map[string][]string{"Monday": {"Morning", "Evening"}}}
	score, shared := engine.AvailabilityScore(a, a)
	assert.Equal(t, 100.0, score)
	assert.Len(t, shared, 2)
}

func TestAvailabilityScoreEmpty(t *testing.T) {
	engine := newEngine(t)

	withSlots := models.StudentProfile{Availability: map[string][]string{"Monday": {"Morning"}}}
	none := models.StudentProfile{Availability: map[string][]string{}}

	score, shared := engine.AvailabilityScore(none, withSlots)
	assert.Zero(t, score)
	assert.Nil(t, shared)

	score, shared = engine.AvailabilityScore(withSlots, none)
	assert.Zero(t, score)
	assert.Nil(t, shared)
}

func TestSharedSlotsDeterministicAndDeduplicated(t *testing.T) {
	a := map[string][]string{
		"Wednesday": {"Morning", "Morning", "Evening"},
		"Monday":    {"Afternoon"},
	}
	b := map[string][]string{
		"Monday":    {"Afternoon"},
		"Wednesday": {"Evening", "Morning"},
	}

	for i := 0; i < 10; i++ {
		shared := sharedSlots(a, b)
		assert.Equal(t, []models.ScheduleSlot{
			{Day: "Monday", Time: "Afternoon"},
			{Day: "Wednesday", Time: "Morning"},
			{Day: "Wednesday", Time: "Evening"},
		}, shared)
	}
}

func TestScoreIdenticalProfiles(t *testing.T) {
	engine := newEngine(t)

	a := profileFixture("s1")
	b := profileFixture("s2")

	score := engine.Score(a, b)
	assert.Equal(t, "s2", score.PartnerID)
	assert.Equal(t, "user-s2", score.PartnerUsername)
	assert.Equal(t, 100.0, score.PersonalityScore)
	assert.Equal(t, 100.0, score.StudyPreferencesScore)
	assert.InDelta(t, 100, score.AcademicGoalsScore, 1e-9)
	assert.Equal(t, 100.0, score.AvailabilityScore)
	assert.InDelta(t, 100, score.TotalScore, 1e-9)
	assert.Greater(t, score.TotalScore, 90.0)
}

func TestScoreWeightedSum(t *testing.T) {
	engine, err := NewCompatibilityEngine(Weights{Personality: 1})
	require.NoError(t, err)

	a := models.StudentProfile{ID: "s1", PersonalityType: "introvert"}
	b := models.StudentProfile{ID: "s2", PersonalityType: "extrovert"}

	score := engine.Score(a, b)
	assert.InDelta(t, 70, score.TotalScore, 1e-9)
}

func TestFindMatchesExcludesSelf(t *testing.T) {
	engine := newEngine(t)

	student := profileFixture("s1")
	candidates := []models.StudentProfile{student, profileFixture("s2"), profileFixture("s3")}

	matches := engine.FindMatches(student, candidates, 0, 0)
	require.Len(t, matches, 2)
	for _, match := range matches {
		assert.NotEqual(t, student.ID, match.PartnerID)
	}
}

func TestFindMatchesFiltersAndOrders(t *testing.T) {
	engine := newEngine(t)

	student := profileFixture("s1")

	strong := profileFixture("s2")
	weak := models.StudentProfile{
		ID:                   "s3",
		Username:             "user-s3",
		PersonalityType:      "extrovert",
		StudyStyle:           "individual",
		PreferredEnvironment: "collaborative",
		AcademicFocusAreas:   []string{"Art"},
		Availability:         map[string][]string{"Sunday": {"Evening"}},
	}

	matches := engine.FindMatches(student, []models.StudentProfile{weak, strong}, 0, 0)
	require.Len(t, matches, 2)
	assert.Equal(t, "s2", matches[0].PartnerID)
	assert.Equal(t, "s3", matches[1].PartnerID)
	assert.GreaterOrEqual(t, matches[0].TotalScore, matches[1].TotalScore)

	filtered := engine.FindMatches(student, []models.StudentProfile{weak, strong}, 90, 0)
	require.Len(t, filtered, 1)
	assert.Equal(t, "s2", filtered[0].PartnerID)

	truncated := engine.FindMatches(student, []models.StudentProfile{weak, strong}, 0, 1)
	require.Len(t, truncated, 1)
	assert.Equal(t, "s2", truncated[0].PartnerID)
}
