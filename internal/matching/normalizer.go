package matching

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx/types"

	"github.com/smartbuddy/matching-api/internal/models"
)

// NormalizeProfile coerces a raw stored record into a canonical profile.
// Malformed stored data never produces an error: each field degrades to an
// empty or neutral value through its own fallback ladder.
func NormalizeProfile(rec models.StoredProfile) models.StudentProfile {
	return models.StudentProfile{
		ID:                   rec.ID,
		Username:             rec.Username,
		Email:                rec.Email,
		PersonalityType:      parsePersonality(rec.PersonalityTraits),
		StudyStyle:           rec.StudyStyle,
		PreferredEnvironment: rec.PreferredEnvironment,
		AcademicFocusAreas:   parseFocusAreas(rec.AcademicFocusAreas),
		Availability:         parseAvailability(rec.Availability),
	}
}

// NormalizeProfiles maps a batch of stored records.
func NormalizeProfiles(records []models.StoredProfile) []models.StudentProfile {
	profiles := make([]models.StudentProfile, 0, len(records))
	for _, rec := range records {
		profiles = append(profiles, NormalizeProfile(rec))
	}
	return profiles
}

// parseFocusAreas resolves the mixed encodings seen in the stored column:
// JSON array, JSON scalar, or a bare label. The result is deduplicated and
// free of empty strings.
func parseFocusAreas(raw types.JSONText) []string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return []string{}
	}

	var value any
	if err := json.Unmarshal([]byte(trimmed), &value); err != nil {
		// Not JSON at all: the whole string is a single label.
		return dedupeLabels([]string{trimmed})
	}

	switch v := value.(type) {
	case []any:
		labels := make([]string, 0, len(v))
		for _, item := range v {
			if item == nil {
				continue
			}
			labels = append(labels, fmt.Sprint(item))
		}
		return dedupeLabels(labels)
	case string:
		return dedupeLabels([]string{v})
	case nil:
		return []string{}
	default:
		return dedupeLabels([]string{fmt.Sprint(v)})
	}
}

// parsePersonality extracts the personality label. A JSON object with a
// "type" key yields that key's value; a JSON-encoded string is unquoted;
// anything else is used as-is.
func parsePersonality(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	var value any
	if err := json.Unmarshal([]byte(trimmed), &value); err != nil {
		return trimmed
	}

	switch v := value.(type) {
	case map[string]any:
		if t, ok := v["type"]; ok {
			return fmt.Sprint(t)
		}
		return trimmed
	case string:
		return v
	default:
		return trimmed
	}
}

// parseAvailability decodes the stored day -> time-slot mapping. Unparsable
// payloads collapse to an empty map, never nil.
func parseAvailability(raw types.JSONText) map[string][]string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return map[string][]string{}
	}

	availability := map[string][]string{}
	if err := json.Unmarshal([]byte(trimmed), &availability); err != nil {
		return map[string][]string{}
	}
	for day, slots := range availability {
		if slots == nil {
			availability[day] = []string{}
		}
	}
	return availability
}

func dedupeLabels(labels []string) []string {
	seen := make(map[string]struct{}, len(labels))
	result := make([]string, 0, len(labels))
	for _, label := range labels {
		trimmed := strings.TrimSpace(label)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	return result
}
