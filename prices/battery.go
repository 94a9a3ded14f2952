package prices

// Breakeven is the price below which charging a battery is
// net-economical after round-trip losses. A non-positive efficiency
// means no loss adjustment, i.e. breakeven equals the mean.
func Breakeven(mean, efficiencyPercent float64) float64 {
	if efficiencyPercent <= 0 {
		return mean
	}
	return mean * efficiencyPercent / 100
}

func Economical(currentPrice, breakeven float64) bool {
	return currentPrice <= breakeven
}

// EffectiveCost is the cost per usable kWh accounting for round-trip
// loss: what a kWh drawn back out of the battery actually cost to
// store.
func EffectiveCost(currentPrice, efficiencyPercent float64) float64 {
	if efficiencyPercent <= 0 {
		return currentPrice
	}
	return currentPrice / (efficiencyPercent / 100)
}

// Savings contrasts the effective charging cost against a reference
// price, typically the day's mean. Positive means charging now is
// cheaper than the reference.
func Savings(reference, effectiveCost float64) float64 {
	return reference - effectiveCost
}
