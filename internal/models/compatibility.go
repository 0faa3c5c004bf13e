package models

// CompatibilityScore is the immutable result of comparing two profiles.
// Component scores are in [0,100]; TotalScore is the weighted sum using the
// engine's normalized weights. SharedTimeSlots lists every (day, time) pair
// both students have available.
type CompatibilityScore struct {
	PartnerID             string         `json:"partner_id"`
	PartnerUsername       string         `json:"partner_username"`
	TotalScore            float64        `json:"total_score"`
	PersonalityScore      float64        `json:"personality_score"`
	StudyPreferencesScore float64        `json:"study_preferences_score"`
	AcademicGoalsScore    float64        `json:"academic_goals_score"`
	AvailabilityScore     float64        `json:"availability_score"`
	SharedTimeSlots       []ScheduleSlot `json:"shared_time_slots"`
}

// CompatibilityPair feeds the solver: an unordered student pair with its
// total compatibility score.
type CompatibilityPair struct {
	StudentA string  `json:"student_a"`
	StudentB string  `json:"student_b"`
	Score    float64 `json:"score"`
}
