package domain

// ExtractedTension is a conflicting pair inside one extraction batch. Indices
// point into the combined statement list (core, then overused, then emerging)
// so ids can be resolved without post-hoc text matching.
type ExtractedTension struct {
	BeliefAIndex int    `json:"belief_a_index"`
	BeliefBIndex int    `json:"belief_b_index"`
	BeliefAText  string `json:"belief_a_text"`
	BeliefBText  string `json:"belief_b_text"`
	Summary      string `json:"summary"`
}

// ExtractionResult is the structured output of one belief-extraction call.
type ExtractionResult struct {
	CoreBeliefs    []string           `json:"core_beliefs"`
	OverusedAngles []string           `json:"overused_angles"`
	EmergingThesis string             `json:"emerging_thesis"`
	Tensions       []ExtractedTension `json:"tensions"`
}

// Normalize replaces nil slices with empty ones so callers always see a
// well-formed result object.
func (r *ExtractionResult) Normalize() {
	if r.CoreBeliefs == nil {
		r.CoreBeliefs = []string{}
	}
	if r.OverusedAngles == nil {
		r.OverusedAngles = []string{}
	}
	if r.Tensions == nil {
		r.Tensions = []ExtractedTension{}
	}
}

// Empty reports whether the extraction produced nothing usable.
func (r *ExtractionResult) Empty() bool {
	return len(r.CoreBeliefs) == 0 && len(r.OverusedAngles) == 0 && r.EmergingThesis == ""
}

// Statements returns the combined statement list in index order: core
// beliefs, overused angles, then the emerging thesis if present. Tension
// indices refer to this ordering.
func (r *ExtractionResult) Statements() []string {
	out := make([]string, 0, len(r.CoreBeliefs)+len(r.OverusedAngles)+1)
	out = append(out, r.CoreBeliefs...)
	out = append(out, r.OverusedAngles...)
	if r.EmergingThesis != "" {
		out = append(out, r.EmergingThesis)
	}
	return out
}

// TypeForIndex returns the belief type of the statement at index i in the
// combined list produced by Statements.
func (r *ExtractionResult) TypeForIndex(i int) BeliefType {
	if i < len(r.CoreBeliefs) {
		return BeliefTypeCore
	}
	if i < len(r.CoreBeliefs)+len(r.OverusedAngles) {
		return BeliefTypeOverused
	}
	return BeliefTypeEmerging
}
