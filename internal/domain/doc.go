// Package domain implements the hour-alignment and delta-computation core of
// the warmer/colder comparison service.
//
// # Data Source
//
// Hourly weather data comes from the Open-Meteo forecast API
// (https://api.open-meteo.com/v1/forecast), requested with past_days=1 and up
// to seven forecast days so every forecast hour has a same-hour-yesterday
// counterpart inside the fetched window. The response carries parallel hourly
// arrays (time, temperature_2m, windspeed_10m, precipitation); individual
// values may be JSON null, which is preserved as "no data for that hour".
//
// # Hour Keys
//
// An HourKey identifies one calendar hour as Unix seconds truncated to the
// hour. Keys are derived exclusively from the timestamps the forecast service
// returned, parsed in the UTC offset the service reported. Two timestamps
// denote the same hour iff their keys are equal, regardless of the zone a
// caller happens to run in. Duplicate keys can occur across a DST transition;
// the later series entry overwrites the earlier one, which is a defined
// tie-break rather than an error.
//
// # Schedule Construction
//
// BuildSchedule walks forward from "now" rounded up to the next full hour for
// a fixed horizon (default 168 hours). Each produced record pairs the hour's
// values with the values 24 hours earlier and carries exact, unrounded deltas.
// Hours absent from the index still count toward the horizon but produce no
// record; the count of such gaps is returned so callers can surface it.
// Rounding happens only at format time.
//
// # Verdicts
//
// Temperature verdicts use a ±0.5 °C band: above it "Warmer", below it
// "Colder", inside it "About the same". A missing delta yields no text.
// Wind verdicts bucket the signed km/h delta into seven phrases with
// boundaries at −18, −8, −2, 2, 8 and 18:
//
//	≤ −18        much less wind
//	(−18, −8]    less wind
//	(−8, −2]     slightly less wind
//	[−2, 2)      about the same wind
//	[2, 8)       slightly more wind
//	[8, 18)      more wind
//	≥ 18         much more wind
//
// All classification functions are pure and total.
package domain
