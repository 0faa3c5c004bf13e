package models

import "github.com/jmoiron/sqlx/types"

// StoredProfile mirrors the raw student record as the caller persists it.
// Historically the focus-area and availability columns accumulated mixed
// encodings (JSON arrays, JSON objects, bare strings), so both are carried
// as opaque JSON text and only interpreted by the normalizer.
type StoredProfile struct {
	ID                   string         `db:"id" json:"id"`
	Username             string         `db:"username" json:"username"`
	Email                string         `db:"email" json:"email"`
	PersonalityTraits    string         `db:"personality_traits" json:"personality_traits"`
	StudyStyle           string         `db:"study_style" json:"study_style"`
	PreferredEnvironment string         `db:"preferred_environment" json:"preferred_environment"`
	AcademicFocusAreas   types.JSONText `db:"academic_focus_areas" json:"academic_focus_areas"`
	Availability         types.JSONText `db:"availability" json:"availability"`
}

// StudentProfile is the canonical in-memory profile used for matching.
// AcademicFocusAreas is always a deduplicated list of non-empty labels and
// Availability is never nil; a day absent from the map means no availability
// that day.
type StudentProfile struct {
	ID                   string              `json:"id"`
	Username             string              `json:"username"`
	Email                string              `json:"email"`
	PersonalityType      string              `json:"personality_type"`
	StudyStyle           string              `json:"study_style"`
	PreferredEnvironment string              `json:"preferred_environment"`
	AcademicFocusAreas   []string            `json:"academic_focus_areas"`
	Availability         map[string][]string `json:"availability"`
}

// TotalAvailabilitySlots counts every time-slot entry across all days.
func (p StudentProfile) TotalAvailabilitySlots() int {
	total := 0
	for _, slots := range p.Availability {
		total += len(slots)
	}
	return total
}
