package domain

// Bill is the result of pricing a monthly usage figure.
type Bill struct {
	Usage   float64
	Amount  float64
	Rate    float64
	Message string
}

// AnomalyReport describes how the latest reading compares to the usage history.
type AnomalyReport struct {
	IsAnomaly        bool
	AverageUsage     float64
	LatestUsage      float64
	PercentageChange float64
	Message          string
}
