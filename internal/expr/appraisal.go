package expr

// Appraisal is the engine's verdict for one package: the assigned risk
// band, every expression's individual outcome, and the points accounting
// behind the score.
type Appraisal struct {
	Risk              Risk
	Outcomes          []Outcome
	AvailablePoints   uint32
	AwardedPoints     uint32
	Score             float64
}
