package model

// PoolSummary describes the candidate pool built for one booking.
// Distance figures cover known distances only and are zero when none are known.
type PoolSummary struct {
	Size     int     `json:"size"`
	Unknown  int     `json:"unknown"`
	MinKm    float64 `json:"min_km"`
	MedianKm float64 `json:"median_km"`
	MeanKm   float64 `json:"mean_km"`
	MaxKm    float64 `json:"max_km"`
}
