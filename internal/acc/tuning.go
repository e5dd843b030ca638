package acc

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidTuning = errors.New("acc: invalid tuning")

// Tuning holds the gains, limits and margins of the decision function.
type Tuning struct {
	Kp float64 `yaml:"kp" json:"kp"`
	Kd float64 `yaml:"kd" json:"kd"`

	MaxAcceleration float64 `yaml:"max_acceleration" json:"max_acceleration"`
	MaxDeceleration float64 `yaml:"max_deceleration" json:"max_deceleration"`

	// ReactionTime scales ego speed into the critical distance, seconds.
	ReactionTime    float64 `yaml:"reaction_time" json:"reaction_time"`
	CriticalMargin  float64 `yaml:"critical_margin" json:"critical_margin"`
	SafeMarginExtra float64 `yaml:"safe_margin_extra" json:"safe_margin_extra"`

	// MinVelocity is the speed below which braking commands are dropped.
	MinVelocity        float64 `yaml:"min_velocity" json:"min_velocity"`
	ClosingRateGain    float64 `yaml:"closing_rate_gain" json:"closing_rate_gain"`
	CatchUpBoost       float64 `yaml:"catch_up_boost" json:"catch_up_boost"`
	CatchUpRatio       float64 `yaml:"catch_up_ratio" json:"catch_up_ratio"`
	OvershootTolerance float64 `yaml:"overshoot_tolerance" json:"overshoot_tolerance"`
}

const (
	DefaultKp                 = 1.5
	DefaultKd                 = 0.3
	DefaultMaxAcceleration    = 10.0
	DefaultMaxDeceleration    = -10.0
	DefaultReactionTime       = 1.5
	DefaultCriticalMargin     = 18.0
	DefaultSafeMarginExtra    = 10.0
	DefaultMinVelocity        = 0.5
	DefaultClosingRateGain    = 0.1
	DefaultCatchUpBoost       = 5.0
	DefaultCatchUpRatio       = 1.5
	DefaultOvershootTolerance = 0.1
)

func DefaultTuning() Tuning {
	return Tuning{
		Kp:                 DefaultKp,
		Kd:                 DefaultKd,
		MaxAcceleration:    DefaultMaxAcceleration,
		MaxDeceleration:    DefaultMaxDeceleration,
		ReactionTime:       DefaultReactionTime,
		CriticalMargin:     DefaultCriticalMargin,
		SafeMarginExtra:    DefaultSafeMarginExtra,
		MinVelocity:        DefaultMinVelocity,
		ClosingRateGain:    DefaultClosingRateGain,
		CatchUpBoost:       DefaultCatchUpBoost,
		CatchUpRatio:       DefaultCatchUpRatio,
		OvershootTolerance: DefaultOvershootTolerance,
	}
}

// Validate rejects tunings the decision function cannot honour.
func (t Tuning) Validate() error {
	fields := map[string]float64{
		"kp":                  t.Kp,
		"kd":                  t.Kd,
		"max_acceleration":    t.MaxAcceleration,
		"max_deceleration":    t.MaxDeceleration,
		"reaction_time":       t.ReactionTime,
		"critical_margin":     t.CriticalMargin,
		"safe_margin_extra":   t.SafeMarginExtra,
		"min_velocity":        t.MinVelocity,
		"closing_rate_gain":   t.ClosingRateGain,
		"catch_up_boost":      t.CatchUpBoost,
		"catch_up_ratio":      t.CatchUpRatio,
		"overshoot_tolerance": t.OvershootTolerance,
	}
	for name, v := range fields {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidTuning, name)
		}
	}

	if t.MaxDeceleration >= 0 {
		return fmt.Errorf("%w: max_deceleration must be negative, got %g", ErrInvalidTuning, t.MaxDeceleration)
	}
	if t.MaxAcceleration <= 0 {
		return fmt.Errorf("%w: max_acceleration must be positive, got %g", ErrInvalidTuning, t.MaxAcceleration)
	}
	if t.ReactionTime < 0 || t.CriticalMargin < 0 || t.SafeMarginExtra < 0 {
		return fmt.Errorf("%w: distance margins must be non-negative", ErrInvalidTuning)
	}
	if t.MinVelocity < 0 || t.OvershootTolerance < 0 {
		return fmt.Errorf("%w: min_velocity and overshoot_tolerance must be non-negative", ErrInvalidTuning)
	}
	return nil
}

// Params flattens the tunable gains, keyed the way grid searches name them.
func (t Tuning) Params() map[string]float64 {
	return map[string]float64{
		"kp":                t.Kp,
		"kd":                t.Kd,
		"reaction_time":     t.ReactionTime,
		"critical_margin":   t.CriticalMargin,
		"safe_margin_extra": t.SafeMarginExtra,
		"catch_up_boost":    t.CatchUpBoost,
	}
}

// WithParam returns a copy of t with one named parameter replaced.
func (t Tuning) WithParam(name string, value float64) (Tuning, error) {
	switch name {
	case "kp":
		t.Kp = value
	case "kd":
		t.Kd = value
	case "reaction_time":
		t.ReactionTime = value
	case "critical_margin":
		t.CriticalMargin = value
	case "safe_margin_extra":
		t.SafeMarginExtra = value
	case "catch_up_boost":
		t.CatchUpBoost = value
	default:
		return t, fmt.Errorf("%w: unknown parameter %q", ErrInvalidTuning, name)
	}
	return t, nil
}
