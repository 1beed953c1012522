package model

import "time"

// Millis converts t to milliseconds since the Unix epoch.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}

// Time converts milliseconds since the Unix epoch to a time.Time.
func Time(ms int64) time.Time {
	return time.UnixMilli(ms)
}

// Seconds converts milliseconds to whole seconds, rounding towards negative infinity.
func Seconds(ms int64) int64 {
	s := ms / 1000
	if ms%1000 < 0 {
		s--
	}
	return s
}
