package domain

import "time"

// DefaultHorizonHours is the fixed schedule horizon: seven days of hours.
const DefaultHorizonHours = 168

// Label layouts for day groups and hour rows, rendered in the series' zone.
const (
	dateLabelLayout = "Mon 02/01"
	hourLabelLayout = "15:04"
)

// HourRecord is one row of the comparison schedule: the hour's values paired
// with the same hour yesterday and their exact differences. Records are never
// mutated after construction.
type HourRecord struct {
	Hour      time.Time `json:"hour"`
	DateLabel string    `json:"dateLabel"`
	HourLabel string    `json:"hourLabel"`
	StartsDay bool      `json:"startsDay"`
	Today     Sample    `json:"today"`
	Yesterday Sample    `json:"yesterday"`
	Delta     Sample    `json:"delta"`
}

// ScheduleStart rounds now up to the next full hour. An instant already on an
// hour boundary is returned unchanged, so the schedule never begins with a
// partially elapsed hour.
func ScheduleStart(now time.Time) time.Time {
	start := now.Truncate(time.Hour)
	if !start.Equal(now) {
		start = start.Add(time.Hour)
	}
	return start
}

// BuildSchedule produces the ordered comparison schedule: up to horizon
// records walking hour by hour from ScheduleStart(now), each paired with the
// sample 24 hours earlier. Hours absent from the index count toward the
// horizon but produce no record; the number of such gaps is returned
// alongside the records.
//
// Deltas are today − yesterday, computed only when both sides are present,
// and stored unrounded. Day-group labels are rendered in zone (nil means UTC).
func BuildSchedule(index HourIndex, now time.Time, horizon int, zone *time.Location) ([]HourRecord, int) {
	if zone == nil {
		zone = time.UTC
	}

	start := ScheduleStart(now)
	records := make([]HourRecord, 0, horizon)
	dropped := 0
	prevDate := ""

	for offset := 0; offset < horizon; offset++ {
		hour := start.Add(time.Duration(offset) * time.Hour)
		today, ok := index.Lookup(KeyFor(hour))
		if !ok {
			dropped++
			continue
		}
		yesterday, _ := index.Lookup(KeyFor(hour.Add(-24 * time.Hour)))

		// Display the entry's own timestamp rather than the walked instant:
		// in half-hour-offset zones the two differ by the fractional offset.
		local := today.At.In(zone)
		dateLabel := local.Format(dateLabelLayout)

		records = append(records, HourRecord{
			Hour:      local,
			DateLabel: dateLabel,
			HourLabel: local.Format(hourLabelLayout),
			StartsDay: dateLabel != prevDate,
			Today:     today.Sample,
			Yesterday: yesterday.Sample,
			Delta: Sample{
				Temp:   sub(today.Sample.Temp, yesterday.Sample.Temp),
				Wind:   sub(today.Sample.Wind, yesterday.Sample.Wind),
				Precip: sub(today.Sample.Precip, yesterday.Sample.Precip),
			},
		})
		prevDate = dateLabel
	}

	return records, dropped
}

// sub returns a−b when both operands are present, nil otherwise. Zero is a
// valid, non-nil delta.
func sub(a, b *float64) *float64 {
	if a == nil || b == nil {
		return nil
	}
	d := *a - *b
	return &d
}
