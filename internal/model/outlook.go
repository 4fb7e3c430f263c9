package model

// FactorScore is one factor's contribution to a technical outlook.
type FactorScore struct {
	Name       string  `json:"name"`
	RawScore   float64 `json:"raw_score"`
	Weight     float64 `json:"weight"`
	Weighted   float64 `json:"weighted"`
	Commentary string  `json:"commentary"`
}

// Outlook condenses the latest indicator readings into a single score.
// Positive scores lean oversold, negative scores lean overbought.
type Outlook struct {
	Factors    []FactorScore `json:"factors"`
	TotalScore float64       `json:"total_score"`
	Label      string        `json:"label"`
	Warning    string        `json:"warning,omitempty"`
}
