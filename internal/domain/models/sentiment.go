package models

// SentimentReading is one aggregate market-mood snapshot, value in [0,100].
type SentimentReading struct {
	Value          int    `json:"value"`
	Classification string `json:"classification"`
	Timestamp      int64  `json:"timestamp"` // unix milliseconds
	LastUpdate     string `json:"lastUpdate"`
}
