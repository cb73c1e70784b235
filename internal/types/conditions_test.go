package types

import (
	"testing"
	"time"
)

func TestIntensityLabel(t *testing.T) {
	tests := []struct {
		mm   float64
		want string
	}{
		{5.0, "heavy"},
		{2.5, "heavy"},
		{2.49, "moderate"},
		{1.0, "moderate"},
		{0.99, "light"},
		{0.01, "light"},
		{0, "possible"},
		{-1, "possible"},
	}

	for _, tt := range tests {
		if got := IntensityLabel(tt.mm); got != tt.want {
			t.Errorf("IntensityLabel(%v) = %q, want %q", tt.mm, got, tt.want)
		}
	}
}

func TestConditionSample_OnsetFirstRainWins(t *testing.T) {
	base := time.Date(2026, 10, 18, 14, 0, 0, 0, time.UTC)
	sample := &ConditionSample{
		NearTermEvents: []NearTermEvent{
			{Time: base, Intensity: 0},
			{Time: base.Add(time.Minute), Intensity: 0.3, IsRain: true},
			{Time: base.Add(2 * time.Minute), Intensity: 3.0, IsRain: true},
		},
	}

	onset := sample.Onset()
	if onset == nil {
		t.Fatal("expected an onset")
	}
	if !onset.Time.Equal(base.Add(time.Minute)) || onset.Intensity != 0.3 {
		t.Errorf("onset = %+v", onset)
	}
}

func TestConditionSample_NoOnset(t *testing.T) {
	var nilSample *ConditionSample
	if nilSample.Onset() != nil {
		t.Error("nil sample should have no onset")
	}
	if (&ConditionSample{}).Onset() != nil {
		t.Error("empty sample should have no onset")
	}
}

func TestRainOnsetKey_UsesOnsetZone(t *testing.T) {
	chicago, err := time.LoadLocation("America/Chicago")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	onset := RainOnset{Time: time.Date(2026, 10, 18, 15, 4, 0, 0, chicago)}
	if got := onset.Key(); got != "2026-10-18T15:04:00-05:00" {
		t.Errorf("Key() = %q", got)
	}
}

func TestColdTier_SeverityAndPriority(t *testing.T) {
	tests := []struct {
		tier   ColdTier
		severe bool
		prio   Priority
	}{
		{ColdTier{Threshold: 15}, false, PriorityNormal},
		{ColdTier{Threshold: 1}, false, PriorityNormal},
		{ColdTier{Threshold: 0}, true, PriorityEmergency},
		{ColdTier{Threshold: -10}, true, PriorityEmergency},
		{ColdTier{Threshold: 5, Priority: PriorityEmergency}, false, PriorityEmergency},
	}

	for _, tt := range tests {
		if tt.tier.Severe() != tt.severe {
			t.Errorf("tier %d Severe() = %v", tt.tier.Threshold, tt.tier.Severe())
		}
		if tt.tier.EffectivePriority() != tt.prio {
			t.Errorf("tier %d EffectivePriority() = %v", tt.tier.Threshold, tt.tier.EffectivePriority())
		}
	}
}

func TestUnitsTemperatureSymbol(t *testing.T) {
	if UnitsMetric.TemperatureSymbol() != "°C" || UnitsImperial.TemperatureSymbol() != "°F" || UnitsStandard.TemperatureSymbol() != "K" {
		t.Error("unexpected temperature symbols")
	}
}
