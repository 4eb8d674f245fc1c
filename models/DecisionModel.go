package models

// DecisionType is the discrete outcome of a swipe
type DecisionType string

// Decision is emitted once per card when its exit animation completes
type Decision struct {
	Type      DecisionType `json:"type"`
	SubjectID string       `json:"subjectId"`
}

// Valid reports whether t is one of the known decision types
func (t DecisionType) Valid() bool {
	return t == DecisionLike || t == DecisionDislike
}
