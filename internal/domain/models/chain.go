package models

// ChainMetric is one blockchain's aggregate locked value. Dominance is
// this chain's share of the filtered cohort's total, in percent.
type ChainMetric struct {
	Name         string  `json:"name"`
	TVL          float64 `json:"tvl"`
	TVLChange24h float64 `json:"tvlChange24h"`
	Protocols    int     `json:"protocols"`
	Dominance    float64 `json:"dominance"`
}

// TVLTrend counts chains with rising vs falling locked value.
type TVLTrend struct {
	Increasing int `json:"increasing"`
	Decreasing int `json:"decreasing"`
}
