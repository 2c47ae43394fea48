// Package membership resolves whether a household member belongs to the household on a given
// day. Presence is always relative to an interview date and is derived from the member's
// status-history log; there is no stored "current status".
package membership

import (
	"math"
	"time"

	"diaries-qc/internal/dates"
	"diaries-qc/internal/models"
)

// AdultAge age from which a member counts as an adult
const AdultAge = 18

// IsPresent reports whether a member with the given status history was in the household on asOf.
//
// Any exit dated on or before asOf makes the member absent. Otherwise the earliest join decides;
// a member without any join record has been present since before recorded history.
func IsPresent(history []models.StatusEvent, asOf time.Time) bool {
	var earliestJoin *time.Time
	for i := range history {
		ev := history[i]
		switch ev.Type {
		case models.StatusExited:
			if dates.OnOrBefore(ev.EffectiveDate, asOf) {
				return false
			}
		case models.StatusJoined:
			if earliestJoin == nil || ev.EffectiveDate.Before(*earliestJoin) {
				d := ev.EffectiveDate
				earliestJoin = &d
			}
		}
	}
	if earliestJoin == nil {
		return true
	}
	return dates.OnOrBefore(*earliestJoin, asOf)
}

// Age whole years between birthdate and asOf, as floor(days/365.25).
// ok is false when the birthdate is unknown.
func Age(birthdate *time.Time, asOf time.Time) (age int, ok bool) {
	if birthdate == nil {
		return 0, false
	}
	days := dates.DaysBetween(*birthdate, asOf)
	return int(math.Floor(float64(days) / 365.25)), true
}

// IsAdult true when the member is at least AdultAge on asOf; unknown birthdates are not adults
func IsAdult(birthdate *time.Time, asOf time.Time) bool {
	age, ok := Age(birthdate, asOf)
	return ok && age >= AdultAge
}
