package domain

// Scorecard is the content evaluation of one answer, produced by the
// external content service and stored on the Turn by value.
type Scorecard struct {
	Technical      int    `json:"technical_accuracy"`
	Clarity        int    `json:"clarity"`
	Depth          int    `json:"depth"`
	Completeness   int    `json:"completeness"`
	PositiveNote   string `json:"positive_note"`
	ImprovementTip string `json:"improvement_tip"`
}

// AverageScore returns the mean of the four score dimensions.
func (s Scorecard) AverageScore() float64 {
	return float64(s.Technical+s.Clarity+s.Depth+s.Completeness) / 4
}
