package core

import "sync/atomic"

// DurationSensor is the external 8-bit input that determines Task_C's
// execution duration. It is sampled immediately before the variable task's
// skip decision and again when the job actually runs.
type DurationSensor interface {
	Read() uint8
}

// SensorScale maps a raw sensor value to an execution duration.
//
// Predicted is the worst-case figure used by the skip check; the duration a
// job actually consumes is Predicted minus the fixed Margin, clamped at zero.
// The margin keeps the prediction conservative: a job admitted by the check
// finishes slightly earlier than predicted.
type SensorScale struct {
	Max    Micros // duration at sensor value 255 (scaled as value*Max/256)
	Margin Micros
}

// DefaultSensorScale matches the reference hardware: 0..255 maps onto
// 0..8000us with a 10us margin.
func DefaultSensorScale() SensorScale {
	return SensorScale{Max: 8_000, Margin: 10}
}

// Predicted returns the worst-case duration for a raw sensor value.
func (s SensorScale) Predicted(value uint8) Micros {
	return Micros(value) * s.Max / 256
}

// Duration returns the duration a job with this sensor value actually runs.
func (s SensorScale) Duration(value uint8) Micros {
	d := s.Predicted(value) - s.Margin
	if d < 0 {
		return 0
	}
	return d
}

// =============================================================================
// Sensor implementations
// =============================================================================

// StaticSensor holds a settable value. This is the deterministic stand-in
// used by tests and the demo binaries.
type StaticSensor struct {
	value atomic.Uint32
}

// NewStaticSensor returns a sensor fixed at value until Set is called.
func NewStaticSensor(value uint8) *StaticSensor {
	s := &StaticSensor{}
	s.value.Store(uint32(value))
	return s
}

// Read returns the current value.
func (s *StaticSensor) Read() uint8 {
	return uint8(s.value.Load())
}

// Set changes the value returned by subsequent reads.
func (s *StaticSensor) Set(value uint8) {
	s.value.Store(uint32(value))
}

// SwitchSensor composes eight independent binary inputs into one 8-bit value,
// MSB first, the way the reference board wires its switch bank.
type SwitchSensor struct {
	Inputs [8]func() bool
}

// Read samples all eight inputs. Nil inputs read as zero bits.
func (s *SwitchSensor) Read() uint8 {
	var value uint8
	for i, input := range s.Inputs {
		if input != nil && input() {
			value |= 1 << (7 - i)
		}
	}
	return value
}
