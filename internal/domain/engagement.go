package domain

// EngagementLevel is the three-band classification of a predicted like count.
type EngagementLevel int

const (
	LowEngagement EngagementLevel = iota
	MediumEngagement
	HighEngagement
)

const (
	mediumThreshold = 10
	highThreshold   = 100
)

// Label maps a predicted like count to its engagement band. Each band includes its lower bound.
func Label(likes int) EngagementLevel {
	switch {
	case likes < mediumThreshold:
		return LowEngagement
	case likes < highThreshold:
		return MediumEngagement
	default:
		return HighEngagement
	}
}

func (l EngagementLevel) String() string {
	switch l {
	case LowEngagement:
		return "Low engagement"
	case MediumEngagement:
		return "Medium engagement"
	case HighEngagement:
		return "High engagement"
	default:
		return "Unknown engagement"
	}
}
