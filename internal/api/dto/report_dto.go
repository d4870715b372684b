package dto

// DailySeriesResponse is a fixed-length per-day count series, oldest first.
type DailySeriesResponse struct {
	Status string `json:"status"`
	Days   int    `json:"days"`
	Series []int  `json:"series"`
}
