package core

import "testing"

// TestSensorScale_Mapping tests the 8-bit value to duration mapping
// Main test items:
// 1. Predicted duration is value*max/256
// 2. Actual duration subtracts the margin, clamped at zero
// 3. Extremes: 0 maps to zero, 255 maps just under max
func TestSensorScale_Mapping(t *testing.T) {
	scale := DefaultSensorScale()

	if got := scale.Predicted(0); got != 0 {
		t.Errorf("Predicted(0) = %d, want 0", got)
	}
	if got := scale.Duration(0); got != 0 {
		t.Errorf("Duration(0) = %d, want 0 (clamped)", got)
	}

	if got := scale.Predicted(255); got != 7_968 {
		t.Errorf("Predicted(255) = %d, want 7968", got)
	}
	if got := scale.Duration(255); got != 7_958 {
		t.Errorf("Duration(255) = %d, want 7958", got)
	}

	// Mid-range: 64/256 of 8ms.
	if got := scale.Predicted(64); got != 2_000 {
		t.Errorf("Predicted(64) = %d, want 2000", got)
	}
	if got := scale.Duration(64); got != 1_990 {
		t.Errorf("Duration(64) = %d, want 1990", got)
	}
}

// TestStaticSensor tests the settable stand-in sensor
func TestStaticSensor(t *testing.T) {
	s := NewStaticSensor(200)
	if got := s.Read(); got != 200 {
		t.Errorf("Read = %d, want 200", got)
	}

	s.Set(7)
	if got := s.Read(); got != 7 {
		t.Errorf("Read after Set = %d, want 7", got)
	}
}

// TestSwitchSensor tests the eight-input composition
// Main test items:
// 1. Inputs compose MSB first
// 2. Nil inputs read as zero bits
func TestSwitchSensor(t *testing.T) {
	high := func() bool { return true }
	low := func() bool { return false }

	s := &SwitchSensor{Inputs: [8]func() bool{high, low, low, low, low, low, low, high}}
	if got := s.Read(); got != 0b1000_0001 {
		t.Errorf("Read = %#08b, want 0b10000001", got)
	}

	all := &SwitchSensor{Inputs: [8]func() bool{high, high, high, high, high, high, high, high}}
	if got := all.Read(); got != 255 {
		t.Errorf("Read = %d, want 255", got)
	}

	var empty SwitchSensor
	if got := empty.Read(); got != 0 {
		t.Errorf("Read with nil inputs = %d, want 0", got)
	}
}
