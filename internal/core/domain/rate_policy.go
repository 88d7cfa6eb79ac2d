package domain

// RatePolicy maps an account holder's age to a daily transaction cap.
type RatePolicy struct {
	MinorDailyLimit int
	AdultDailyLimit int
	AdultAge        int
}

// DefaultRatePolicy returns 20/day for minors and 500/day for adults.
func DefaultRatePolicy() RatePolicy {
	return RatePolicy{
		MinorDailyLimit: 20,
		AdultDailyLimit: 500,
		AdultAge:        18,
	}
}

// LimitFor returns the cap that applies to a holder of the given age.
func (p RatePolicy) LimitFor(age int) int {
	if age < p.AdultAge {
		return p.MinorDailyLimit
	}
	return p.AdultDailyLimit
}
