package models

// MarketAsset is one tradable asset's market state as of the last fetch.
// Instances are immutable; a refresh produces a new slice.
type MarketAsset struct {
	ID                string  `json:"id"`
	Symbol            string  `json:"symbol"`
	Name              string  `json:"name"`
	Price             float64 `json:"current_price"`
	MarketCap         float64 `json:"market_cap"`
	Rank              int     `json:"market_cap_rank"`
	Volume            float64 `json:"total_volume"`
	Change24h         float64 `json:"price_change_percentage_24h"`
	Change7d          float64 `json:"price_change_percentage_7d"`
	CirculatingSupply float64 `json:"circulating_supply"`
	ATH               float64 `json:"ath"`
	ATHChangePct      float64 `json:"ath_change_percentage"`
	Image             string  `json:"image,omitempty"`
}

// VolumeEntry is one row of the volume view: the asset list re-sorted by
// trading volume. VolumeChange carries the 24h price change percentage as
// a stand-in for a true volume delta; the upstream does not provide one.
type VolumeEntry struct {
	Symbol       string  `json:"symbol"`
	Volume       float64 `json:"volume"`
	VolumeChange float64 `json:"volumeChange"`
}

// MarketMovers holds the top gainers and losers by 24h change.
type MarketMovers struct {
	Gainers []MarketAsset `json:"gainers"`
	Losers  []MarketAsset `json:"losers"`
}

// GlobalMarket holds market-wide aggregates.
type GlobalMarket struct {
	BTCDominance   float64 `json:"btc_dominance"`
	TotalMarketCap float64 `json:"total_market_cap"`
}
