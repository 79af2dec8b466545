package routing

// DefaultTable returns a scorer preloaded with the phrase tables of the
// default specialist set. Phrases are matched as substrings, so short tokens
// like "seo" are kept distinctive enough not to fire on unrelated text.
func DefaultTable() *KeywordScorer {
	s := NewKeywordScorer()
	s.Register("automation",
		"zapier", "webhook", "ghl", "gohighlevel", "automation", "automate",
		"workflow", "api integration", "trigger", "make.com",
	)
	s.Register("trading",
		"rsi", "macd", "btc", "bitcoin", "crypto", "trading", "candlestick",
		"support level", "resistance level", "chart pattern", "stock market",
	)
	s.Register("marketing",
		"marketing", "campaign", "ad spend", "facebook ads", "google ads",
		"funnel", "conversion rate", "audience targeting", "brand awareness",
	)
	s.Register("content",
		"blog post", "content calendar", "caption", "copywriting",
		"video script", "newsletter", "social media post",
	)
	s.Register("crm",
		"crm", "lead nurturing", "follow-up sequence", "contact record",
		"deal stage", "sales pipeline",
	)
	return s
}
