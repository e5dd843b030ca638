package acc

// Zone classifies the gap relative to the speed-dependent distance envelope.
type Zone int

const (
	ZoneNoLead Zone = iota
	ZoneCritical
	ZoneCaution
	ZoneClear
)

func (z Zone) String() string {
	switch z {
	case ZoneNoLead:
		return "no-lead"
	case ZoneCritical:
		return "critical"
	case ZoneCaution:
		return "caution"
	case ZoneClear:
		return "clear"
	default:
		return "unknown"
	}
}

// Boundaries returns the critical and safe distances for the given ego speed.
// Both grow with speed and are recomputed every tick.
func Boundaries(egoVelocity float64, t Tuning) (critical, safe float64) {
	critical = t.CriticalMargin + t.ReactionTime*egoVelocity
	safe = critical + t.SafeMarginExtra
	return critical, safe
}

// Classify places a gap into a zone given precomputed boundaries.
func Classify(gap Gap, critical, safe float64) Zone {
	d, ok := gap.Distance()
	switch {
	case !ok || d <= 0:
		return ZoneNoLead
	case d < critical:
		return ZoneCritical
	case d < safe:
		return ZoneCaution
	default:
		return ZoneClear
	}
}

// ZoneOf classifies an observation with the given tuning.
func ZoneOf(obs Observation, t Tuning) Zone {
	critical, safe := Boundaries(obs.EgoVelocity, t)
	return Classify(obs.Lead, critical, safe)
}
