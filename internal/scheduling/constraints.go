package scheduling

import "github.com/smartbuddy/matching-api/internal/models"

// Constraints bounds per-student session load and partner diversity for one
// scheduling run. Immutable once solving starts.
type Constraints struct {
	MaxSessionsPerDay     int
	MaxSessionsPerWeek    int
	MaxPartnersPerStudent int
	SessionHours          float64
}

// DefaultConstraints returns the standard limits: at most 2 sessions per day
// and 6 per week per student, 3 distinct partners, 2-hour sessions.
func DefaultConstraints() Constraints {
	return Constraints{
		MaxSessionsPerDay:     2,
		MaxSessionsPerWeek:    6,
		MaxPartnersPerStudent: 3,
		SessionHours:          2,
	}
}

// ValidateSession reports whether the candidate session can be added to the
// accumulated schedule without breaching any limit. The three checks are
// independent; a single violation rejects the candidate. The function is a
// pure function of (candidate, existing).
func (c Constraints) ValidateSession(candidate models.StudySession, existing []models.StudySession) bool {
	aSameDay, bSameDay := 0, 0
	aWeekly, bWeekly := 0, 0
	aPartners := map[string]struct{}{}
	bPartners := map[string]struct{}{}

	for _, session := range existing {
		involvesA := session.Involves(candidate.PartnerA)
		involvesB := session.Involves(candidate.PartnerB)

		if session.Slot.Day == candidate.Slot.Day {
			if involvesA {
				aSameDay++
			}
			if involvesB {
				bSameDay++
			}
		}
		if involvesA {
			aWeekly++
			aPartners[session.PartnerOf(candidate.PartnerA)] = struct{}{}
		}
		if involvesB {
			bWeekly++
			bPartners[session.PartnerOf(candidate.PartnerB)] = struct{}{}
		}
	}

	if aSameDay >= c.MaxSessionsPerDay || bSameDay >= c.MaxSessionsPerDay {
		return false
	}
	if aWeekly >= c.MaxSessionsPerWeek || bWeekly >= c.MaxSessionsPerWeek {
		return false
	}

	// The candidate's partner counts toward the diversity limit even when
	// the pairing already exists; session counts are not deduplicated here.
	aPartners[candidate.PartnerB] = struct{}{}
	bPartners[candidate.PartnerA] = struct{}{}
	if len(aPartners) > c.MaxPartnersPerStudent || len(bPartners) > c.MaxPartnersPerStudent {
		return false
	}

	return true
}
