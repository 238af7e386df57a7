package dto

// TierStats reports the live counter and ceiling for one rate limit tier.
type TierStats struct {
	Tier    string `json:"tier"`
	Count   int64  `json:"count"`
	Ceiling int64  `json:"ceiling"`
}

// RateLimitStats is the admin view of one client identity across all tiers.
// Missing counters default to zero.
type RateLimitStats struct {
	Identity string      `json:"identity"`
	General  []TierStats `json:"general"`
	Login    []TierStats `json:"login"`
}
