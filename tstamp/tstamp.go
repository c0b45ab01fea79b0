// Package tstamp converts between the server's native timestamp epoch
// (nanoseconds since 2001-01-01T00:00:00Z, the Cocoa/CFAbsoluteTime
// reference date) and Unix time.
package tstamp

// epochOffsetSeconds is the number of seconds between the Unix epoch
// (1970-01-01) and the server's reference date (2001-01-01).
const epochOffsetSeconds = 978_307_200

const nanosPerSecond = 1_000_000_000

// ToUnix converts a server-native nanosecond timestamp to Unix seconds.
func ToUnix(nanos int64) int64 {
	return nanos/nanosPerSecond + epochOffsetSeconds
}

// FromUnix converts Unix seconds to a server-native nanosecond
// timestamp.
func FromUnix(sec int64) int64 {
	return (sec - epochOffsetSeconds) * nanosPerSecond
}
