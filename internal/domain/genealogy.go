package domain

import "github.com/google/uuid"

// BeliefSummary is the minimal belief view sent to the model when proposing
// a genealogy. Index is the position in the batch, used in the proposal.
type BeliefSummary struct {
	Index     int        `json:"index"`
	Statement string     `json:"statement"`
	Type      BeliefType `json:"type"`
}

// ProposedLink is a child→parent assignment by batch index.
type ProposedLink struct {
	ChildIndex  int `json:"child_index"`
	ParentIndex int `json:"parent_index"`
}

// GenealogyProposal is the model's raw judgment: which beliefs are roots and
// how the rest attach. The builder owns the shape guarantee; a proposal may
// contain cycles, dangling indices, or unassigned beliefs and must be
// repaired before anything is persisted.
type GenealogyProposal struct {
	RootIndexes []int          `json:"root_indexes"`
	Links       []ProposedLink `json:"links"`
}

// GenealogyLink is a repaired, persistable child→parent edge.
type GenealogyLink struct {
	ChildID  uuid.UUID `json:"child_id"`
	ParentID uuid.UUID `json:"parent_id"`
}

// GenealogyResult covers every belief in the input set exactly once: each id
// is either in RootIDs or the child of exactly one link.
type GenealogyResult struct {
	RootIDs []uuid.UUID     `json:"root_ids"`
	Links   []GenealogyLink `json:"links"`
}
