// Package domain implements the crop stress assessment pipeline: feature
// engineering, rule-based validation of classifier output, severity scoring,
// and explanation synthesis. Everything in this package is a pure function
// over immutable values; the only ambient input is the package clock, which
// supplies the evaluation instant for days-after-sowing.
//
// # Input Conventions
//
// Crop types:
//
//	wheat, rice, maize, cotton — matched case-insensitively. Unrecognized
//	crops are not an error: they resolve to growth stage "unknown" and fall
//	outside every critical-stage set. An empty crop type defaults to wheat.
//
// Sowing dates:
//
//	"YYYY-MM-DD" or RFC 3339. The only failing input in the pipeline; an
//	unparseable date surfaces ErrInvalidSowingDate to the caller.
//
// Seasons:
//
//	monsoon/kharif → 0, winter/rabi → 1, summer/zaid → 2. Unrecognized
//	seasons encode to 0 (the monsoon baseline) by design, and an empty
//	season defaults to monsoon.
//
// Soil types:
//
//	Lowercased with spaces mapped to underscores before lookup in the water
//	retention table (clay 0.45 … sandy 0.15). Unknown soils take the 0.30
//	mid-range default; an empty soil type defaults to loam.
//
// # Feature Normalization
//
// Raw weather observations are rescaled linearly against fixed domain ranges
// and clamped to [0,1]:
//
//	avg temp          15–45 °C
//	rainfall          0–100 mm
//	7-day rainfall    0–200 mm
//	consecutive dry   0–14 days
//	temp deviation    −10–+10 °C
//
// The three stress indicators are fixed-weight blends of those normalized
// features (see computeIndicators). The weights are contractual constants
// carried over from the original heuristics, not tuning targets.
//
// # Validation Rules
//
// The rule validator applies an ordered guard chain per predicted stress
// type; the first matching guard wins and tags the result with its reason
// (high_dry_period, extreme_heat, good_drainage, ...). A classifier
// confidence below 0.45 short-circuits everything to no_stress. When the
// classifier reports no stress but any indicator exceeds 0.8, the rules
// override it back to the corresponding stress type at confidence 0.75.
//
// # Severity
//
// Severity derives from validated confidence (≥0.80 high, ≥0.60 medium,
// else low) with one-level escalations for critical growth stages, sandy
// soil under moisture stress, and summer heat stress. no_stress is always
// severity "none". Colors: green, yellow, amber, red.
package domain
