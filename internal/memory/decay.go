// Package memory implements the retrieval-and-ranking pipeline that decides
// which prior messages are worth injecting into the model prompt: topic
// cleanup, recency decay, multi-signal ranking under fixed budgets, and
// rendering of the final knowledge-context block.
package memory

import "time"

// Recency decay weights. The step boundaries are whole days of age,
// computed against UTC.
const (
	decayFresh = 1.0 // age <= 3 days
	decayWeek  = 0.7 // 3 < age <= 7 days
	decayMonth = 0.4 // 7 < age <= 30 days
	decayStale = 0.0 // age > 30 days
)

// RecencyDecay maps the age of a timestamp to a multiplicative weight in
// [0.0, 1.0]. The decay is a deliberately coarse step function rather than
// an exponential curve: predictable boundaries make ranking behaviour easy
// to reason about and to test.
//
// Age is measured in whole elapsed days (floor of the duration) between now
// and ts, both normalised to UTC. A timestamp from the future counts as age
// zero.
func RecencyDecay(ts, now time.Time) float64 {
	age := now.UTC().Sub(ts.UTC())
	if age < 0 {
		age = 0
	}
	days := int(age.Hours() / 24)

	switch {
	case days <= 3:
		return decayFresh
	case days <= 7:
		return decayWeek
	case days <= 30:
		return decayMonth
	default:
		return decayStale
	}
}
