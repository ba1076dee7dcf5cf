package models

// NewsSentiment is the keyword-derived tone of a headline.
type NewsSentiment string

const (
	NewsPositive NewsSentiment = "positive"
	NewsNegative NewsSentiment = "negative"
	NewsNeutral  NewsSentiment = "neutral"
)

// NewsItem is one ingested headline with its classified sentiment.
type NewsItem struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	URL         string        `json:"url"`
	Source      string        `json:"source"`
	PublishedAt int64         `json:"publishedAt"` // unix milliseconds
	Sentiment   NewsSentiment `json:"sentiment"`
}
