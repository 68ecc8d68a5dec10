package models

// Requests for insight HTTP endpoints. Defined in domain for consistency and reuse.

type HistogramRequest struct {
	Window string `query:"window" json:"window" default:"day" validate:"oneof=day week month"`
}

type MatchesRequest struct {
	From  string `query:"from" json:"from"`
	To    string `query:"to" json:"to"`
	Limit int    `query:"limit" json:"limit" default:"500" validate:"gte=1,lte=10000"`
}

type RecordMatchRequest struct {
	ChosenNumber  int   `json:"chosen_number" validate:"required,gte=1,lte=9"`
	MatchedNumber int   `json:"matched_number" validate:"required,gte=1,lte=9"`
	Timestamp     int64 `json:"timestamp"` // unix seconds; zero means "now"
}

type FocusRequest struct {
	Number int `json:"number" validate:"required,gte=1,lte=9"`
}
