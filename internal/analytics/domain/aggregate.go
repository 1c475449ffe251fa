package analytics

import (
	"sort"
	"time"

	ingest "msb-report/internal/ingest/domain"
)

// AggregationMode selects how a day's energy figure is derived.
type AggregationMode string

const (
	// ModeAuto picks energy-register mode when any sample carries a register
	// reading, power-mean mode otherwise.
	ModeAuto AggregationMode = "auto"
	// ModePowerMean averages instantaneous power over the day.
	ModePowerMean AggregationMode = "power_mean"
	// ModeEnergyRegister differences the first and last register reading of the day.
	ModeEnergyRegister AggregationMode = "energy_register"
)

// IsValid checks the mode is one of the supported values.
func (m AggregationMode) IsValid() bool {
	switch m {
	case ModeAuto, ModePowerMean, ModeEnergyRegister:
		return true
	default:
		return false
	}
}

// DailyAggregate is the per-day statistic for one source. Power figures are
// computed over samples with a present power value; EnergyKWh is set only in
// energy-register mode.
type DailyAggregate struct {
	Day time.Time

	MeanPowerKW float64
	MaxPowerKW  float64
	SumPowerKW  float64
	SampleCount int

	EnergyKWh *float64
}

// ModeFor reports the mode auto-selection would pick for the samples.
func ModeFor(samples []ingest.Sample) AggregationMode {
	for _, s := range samples {
		if s.EnergyWh != nil {
			return ModeEnergyRegister
		}
	}
	return ModePowerMean
}

type dayBucket struct {
	powerSum   float64
	powerMax   float64
	powerCount int

	firstEnergyAt time.Time
	firstEnergy   float64
	lastEnergyAt  time.Time
	lastEnergy    float64
	energyCount   int
}

// AggregateDaily groups samples by calendar day (naive local time, no zone
// conversion) and computes the per-day statistics. Days without a single
// valid sample for the active mode are excluded, never emitted as zero: a
// register delta needs at least two readings, and a non-positive delta marks
// a register reset or ordering error, not consumption.
func AggregateDaily(samples []ingest.Sample, mode AggregationMode) ([]DailyAggregate, error) {
	if !mode.IsValid() {
		return nil, ErrInvalidAggregationMode
	}
	if mode == ModeAuto {
		mode = ModeFor(samples)
	}

	buckets := make(map[time.Time]*dayBucket)
	for _, s := range samples {
		day := truncateToDay(s.Timestamp)
		bucket, ok := buckets[day]
		if !ok {
			bucket = &dayBucket{}
			buckets[day] = bucket
		}
		if s.PowerW != nil {
			value := *s.PowerW
			bucket.powerSum += value
			if bucket.powerCount == 0 || value > bucket.powerMax {
				bucket.powerMax = value
			}
			bucket.powerCount++
		}
		if s.EnergyWh != nil {
			at, value := s.Timestamp, *s.EnergyWh
			if bucket.energyCount == 0 || at.Before(bucket.firstEnergyAt) {
				bucket.firstEnergyAt, bucket.firstEnergy = at, value
			}
			if bucket.energyCount == 0 || !at.Before(bucket.lastEnergyAt) {
				bucket.lastEnergyAt, bucket.lastEnergy = at, value
			}
			bucket.energyCount++
		}
	}

	days := make([]time.Time, 0, len(buckets))
	for day := range buckets {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	aggregates := make([]DailyAggregate, 0, len(days))
	for _, day := range days {
		bucket := buckets[day]

		aggregate := DailyAggregate{Day: day, SampleCount: bucket.powerCount}
		if bucket.powerCount > 0 {
			aggregate.MeanPowerKW = bucket.powerSum / float64(bucket.powerCount) / 1000
			aggregate.MaxPowerKW = bucket.powerMax / 1000
			aggregate.SumPowerKW = bucket.powerSum / 1000
		}

		switch mode {
		case ModePowerMean:
			if bucket.powerCount == 0 {
				continue
			}
		case ModeEnergyRegister:
			if bucket.energyCount < 2 {
				continue
			}
			delta := (bucket.lastEnergy - bucket.firstEnergy) / 1000
			if delta <= 0 {
				continue
			}
			aggregate.EnergyKWh = &delta
		}
		aggregates = append(aggregates, aggregate)
	}
	return aggregates, nil
}

// HourlyAggregate is the hour-of-day load-profile statistic across all days.
type HourlyAggregate struct {
	Hour int

	MeanPowerKW float64
	MaxPowerKW  float64
	SampleCount int
}

// AggregateHourly groups samples by hour of day over the whole input; hours
// with no valid power sample are excluded.
func AggregateHourly(samples []ingest.Sample) []HourlyAggregate {
	sums := make(map[int]float64)
	maxes := make(map[int]float64)
	counts := make(map[int]int)
	for _, s := range samples {
		if s.PowerW == nil {
			continue
		}
		hour := s.Timestamp.Hour()
		value := *s.PowerW
		if counts[hour] == 0 || value > maxes[hour] {
			maxes[hour] = value
		}
		sums[hour] += value
		counts[hour]++
	}

	var profile []HourlyAggregate
	for hour := 0; hour < 24; hour++ {
		count := counts[hour]
		if count == 0 {
			continue
		}
		profile = append(profile, HourlyAggregate{
			Hour:        hour,
			MeanPowerKW: sums[hour] / float64(count) / 1000,
			MaxPowerKW:  maxes[hour] / 1000,
			SampleCount: count,
		})
	}
	return profile
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
