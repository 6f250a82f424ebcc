package observability

import (
	"testing"

	"pgregory.net/rapid"
)

// =============================================================================
// Property 7: Low Confidence Threshold Monotonicity
// =============================================================================

// Feature: pattern metrics, Property 7: Low Confidence Threshold Monotonicity
// *For any* recorded observations, raising MinRecentConfidence SHALL never
// remove a confidence_low alert that a lower threshold raised.
//
// **Validates: Alert threshold consistency**
func TestProperty7_LowConfidenceThresholdMonotonicity(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		log := NewMemoryPatternLog()
		for _, o := range genObservations(rt, 1, 40) {
			log.Record(o)
		}

		low := rapid.Float64Range(0, 0.5).Draw(rt, "lowThreshold")
		high := rapid.Float64Range(low, 1).Draw(rt, "highThreshold")

		base := AlertThresholds{MaxVolatility: 10, MinConfidenceTrend: -10, MinSamples: 1}
		lowCfg, highCfg := base, base
		lowCfg.MinRecentConfidence = low
		highCfg.MinRecentConfidence = high

		alertsLow, err := NewAlertEngine(log, nil, lowCfg).Evaluate()
		if err != nil {
			rt.Fatalf("evaluating low threshold alerts: %v", err)
		}
		alertsHigh, err := NewAlertEngine(log, nil, highCfg).Evaluate()
		if err != nil {
			rt.Fatalf("evaluating high threshold alerts: %v", err)
		}

		if countAlertsByCondition(alertsLow, "confidence_low") > countAlertsByCondition(alertsHigh, "confidence_low") {
			rt.Errorf("threshold %.3f raised confidence_low but %.3f did not", low, high)
		}
	})
}

// =============================================================================
// Property 8: Volatility Threshold Monotonicity
// =============================================================================

// Feature: pattern metrics, Property 8: Volatility Threshold Monotonicity
// *For any* recorded observations, increasing MaxVolatility SHALL produce
// fewer or equal confidence_volatile alerts.
//
// **Validates: Alert threshold consistency**
func TestProperty8_VolatilityThresholdMonotonicity(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		log := NewMemoryPatternLog()
		for _, o := range genObservations(rt, 1, 40) {
			log.Record(o)
		}

		low := rapid.Float64Range(0, 0.5).Draw(rt, "lowThreshold")
		high := rapid.Float64Range(low, 1).Draw(rt, "highThreshold")

		base := AlertThresholds{MinRecentConfidence: 0, MinConfidenceTrend: -10, MinSamples: 1}
		lowCfg, highCfg := base, base
		lowCfg.MaxVolatility = low
		highCfg.MaxVolatility = high

		alertsLow, err := NewAlertEngine(log, nil, lowCfg).Evaluate()
		if err != nil {
			rt.Fatalf("evaluating low threshold alerts: %v", err)
		}
		alertsHigh, err := NewAlertEngine(log, nil, highCfg).Evaluate()
		if err != nil {
			rt.Fatalf("evaluating high threshold alerts: %v", err)
		}

		if countAlertsByCondition(alertsHigh, "confidence_volatile") > countAlertsByCondition(alertsLow, "confidence_volatile") {
			rt.Errorf("higher volatility threshold %.3f produced more alerts than %.3f", high, low)
		}
	})
}
