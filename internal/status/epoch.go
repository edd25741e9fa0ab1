package status

import "time"

// NotRun is the epoch offset reported for a session that has no usable time,
// either because it has not finished or because the platform stored a
// placeholder date before 1970.
const NotRun int64 = -1

var epoch = time.Unix(0, 0).UTC()

// ToEpochOffset returns the whole seconds elapsed between the Unix epoch and
// t, or NotRun when t is nil or earlier than the epoch.
func ToEpochOffset(t *time.Time) int64 {
	if t == nil || t.Before(epoch) {
		return NotRun
	}
	return t.Unix()
}
