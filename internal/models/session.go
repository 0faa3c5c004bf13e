package models

import "fmt"

// ScheduleSlot identifies a concrete weekly slot. Equality is by value so
// the struct can be used directly as a set key.
type ScheduleSlot struct {
	Day  string `json:"day"`
	Time string `json:"time"`
}

func (s ScheduleSlot) String() string {
	return fmt.Sprintf("%s %s", s.Day, s.Time)
}

// StudySession is a committed pairing on a concrete slot.
type StudySession struct {
	PartnerA      string       `json:"partner_a"`
	PartnerB      string       `json:"partner_b"`
	Slot          ScheduleSlot `json:"slot"`
	DurationHours float64      `json:"duration_hours"`
}

// Involves reports whether the student occupies either seat of the session.
func (s StudySession) Involves(studentID string) bool {
	return s.PartnerA == studentID || s.PartnerB == studentID
}

// PartnerOf returns the other participant, or "" when the student is not in
// the session.
func (s StudySession) PartnerOf(studentID string) string {
	switch studentID {
	case s.PartnerA:
		return s.PartnerB
	case s.PartnerB:
		return s.PartnerA
	}
	return ""
}
