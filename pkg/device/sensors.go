package device

import (
	"time"

	"github.com/valyala/fastrand"
)

// Simulator produces plausible vital-sign readings when no physical
// sensor frontend is attached. Values drift around healthy baselines
// with a little jitter per reading.
type Simulator struct {
	rng  fastrand.RNG
	tick uint64

	heartRate   float64
	spo2        float64
	temperature float64
}

// NewSimulator seeds a simulator at healthy resting baselines.
func NewSimulator(seed uint32) *Simulator {
	s := &Simulator{
		heartRate:   72,
		spo2:        97,
		temperature: 36.8,
	}
	s.rng.Seed(seed)
	return s
}

// jitter returns a value in [-scale, scale).
func (s *Simulator) jitter(scale float64) float64 {
	return (float64(s.rng.Uint32n(2000))/1000 - 1) * scale
}

// drift nudges v toward base and adds jitter, clamped to [lo, hi].
func (s *Simulator) drift(v, base, step, scale, lo, hi float64) float64 {
	if v < base {
		v += step
	} else if v > base {
		v -= step
	}
	v += s.jitter(scale)
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	return v
}

// Next returns the next simulated sample, cycling through the vital
// channels in a fixed order.
func (s *Simulator) Next() RawSample {
	s.tick++
	sample := RawSample{Quality: 90 + uint8(s.rng.Uint32n(10)), At: time.Now()}
	switch s.tick % 4 {
	case 0:
		s.heartRate = s.drift(s.heartRate, 72, 0.2, 1.5, 45, 180)
		sample.Kind, sample.Value = VitalHeartRate, s.heartRate
	case 1:
		s.spo2 = s.drift(s.spo2, 97, 0.1, 0.5, 85, 100)
		sample.Kind, sample.Value = VitalSpO2, s.spo2
	case 2:
		s.temperature = s.drift(s.temperature, 36.8, 0.01, 0.05, 34, 41)
		sample.Kind, sample.Value = VitalTemperature, s.temperature
	default:
		sample.Kind, sample.Value = VitalMotion, float64(s.rng.Uint32n(100))
	}
	return sample
}
