package expr

// Outcome is the result of evaluating one expression against one crate's
// metric set.
type Outcome struct {
	Name        string
	Description string
	Disposition Disposition
}
