package domain

import "time"

// HourKey canonically identifies one calendar hour as Unix seconds truncated
// to the hour. Equality is timezone-independent once computed.
type HourKey int64

// KeyFor truncates t to the hour on the absolute timeline and returns its key.
func KeyFor(t time.Time) HourKey {
	return HourKey(t.Truncate(time.Hour).Unix())
}

// Entry pairs a sample with the series timestamp it was reported for. The
// timestamp is what gets displayed: for zones whose UTC offset is not a whole
// hour (India, Nepal, Iran) it differs from the truncated key instant, which
// would otherwise render ":30" or ":15" labels for the service's :00 hours.
type Entry struct {
	At     time.Time
	Sample Sample
}

// HourIndex maps hour keys to that hour's entry. Built once per fetch and
// immutable afterward; a missing key means "no data for that hour".
type HourIndex map[HourKey]Entry

// BuildIndex constructs the lookup from the raw parallel series. On a
// duplicate key (possible across a DST transition) the later entry wins.
func BuildIndex(series RawSeries) HourIndex {
	idx := make(HourIndex, len(series.Times))
	for i, t := range series.Times {
		idx[KeyFor(t)] = Entry{
			At: t,
			Sample: Sample{
				Temp:   series.Temp[i],
				Wind:   series.Wind[i],
				Precip: series.Precip[i],
			},
		}
	}
	return idx
}

// Lookup returns the entry stored for key. Absence is an expected outcome,
// not a failure.
func (idx HourIndex) Lookup(key HourKey) (Entry, bool) {
	e, ok := idx[key]
	return e, ok
}
