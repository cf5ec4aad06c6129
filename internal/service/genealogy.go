package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/voicestack/beliefgraph/internal/domain"
	"github.com/voicestack/beliefgraph/internal/store"
	"go.uber.org/zap"
)

var ErrRebuildInProgress = errors.New("genealogy rebuild already in progress for this user")

// GenealogyService organizes a user's beliefs into a forest: roots have no
// parent and every other belief traces to exactly one root. The model
// proposes the structure; this service owns the shape guarantee and repairs
// cycles, dangling parents, and unassigned beliefs before anything is
// written.
type GenealogyService struct {
	beliefs   domain.BeliefStore
	llmClient domain.LLMClient
	traces    *TraceRecorder
	logger    *zap.Logger
}

func NewGenealogyService(beliefs domain.BeliefStore, llmClient domain.LLMClient, traces *TraceRecorder, logger *zap.Logger) *GenealogyService {
	return &GenealogyService{beliefs: beliefs, llmClient: llmClient, traces: traces, logger: logger}
}

// Rebuild recomputes the genealogy for all of a user's beliefs and overwrites
// the stored links. Each link write is independently idempotent, so an
// interrupted run leaves a valid partial genealogy and a re-run repairs it.
func (s *GenealogyService) Rebuild(ctx context.Context, userID uuid.UUID) (*domain.GenealogyResult, error) {
	all, err := s.beliefs.ListByUser(ctx, userID, domain.BeliefFilter{})
	if err != nil {
		return nil, fmt.Errorf("list beliefs: %w", err)
	}

	result := &domain.GenealogyResult{RootIDs: []uuid.UUID{}, Links: []domain.GenealogyLink{}}
	if len(all) == 0 {
		return result, nil
	}

	summaries := make([]domain.BeliefSummary, len(all))
	for i, b := range all {
		summaries[i] = domain.BeliefSummary{Index: i, Statement: b.Statement, Type: b.Type}
	}

	gwCtx := context.WithoutCancel(ctx)
	start := time.Now()
	proposal, err := s.llmClient.ProposeGenealogy(gwCtx, summaries)
	latency := time.Since(start)

	if err != nil {
		s.traces.Record(gwCtx, userID, domain.TraceBuildGenealogy,
			map[string]any{"beliefs": len(all)},
			map[string]any{"error": err.Error()},
			s.llmClient.ModelID(), latency)
		return nil, fmt.Errorf("propose genealogy: %w", err)
	}

	isRoot, parent := repairProposal(len(all), proposal)

	release, err := s.beliefs.AcquireRebuildLock(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrLockHeld) {
			return nil, ErrRebuildInProgress
		}
		return nil, fmt.Errorf("acquire rebuild lock: %w", err)
	}
	defer release()

	var writeErrs []error
	for i := range all {
		if !isRoot[i] {
			continue
		}
		if err := s.beliefs.UpdateParent(ctx, all[i].ID, nil, domain.BeliefTypeRoot); err != nil {
			writeErrs = append(writeErrs, fmt.Errorf("root %s: %w", all[i].ID, err))
			continue
		}
		result.RootIDs = append(result.RootIDs, all[i].ID)
	}
	for i := range all {
		if isRoot[i] {
			continue
		}
		p := parent[i]
		typ := childType(all[i].Type, isRoot[p])
		if err := s.beliefs.UpdateParent(ctx, all[i].ID, &all[p].ID, typ); err != nil {
			writeErrs = append(writeErrs, fmt.Errorf("link %s: %w", all[i].ID, err))
			continue
		}
		result.Links = append(result.Links, domain.GenealogyLink{ChildID: all[i].ID, ParentID: all[p].ID})
	}

	s.traces.Record(gwCtx, userID, domain.TraceBuildGenealogy,
		map[string]any{"beliefs": len(all)},
		map[string]any{"roots": len(result.RootIDs), "links": len(result.Links), "write_errors": len(writeErrs)},
		s.llmClient.ModelID(), latency)

	if len(writeErrs) > 0 {
		// Already-written links remain valid; the caller can re-run.
		return result, fmt.Errorf("genealogy persisted partially: %w", errors.Join(writeErrs...))
	}

	s.logger.Info("genealogy rebuilt",
		zap.String("user_id", userID.String()),
		zap.Int("roots", len(result.RootIDs)),
		zap.Int("links", len(result.Links)))

	return result, nil
}

// repairProposal enforces the shape guarantee on a raw model proposal for n
// beliefs: every index is either a root or carries exactly one in-set parent,
// and every parent chain terminates. Broken genealogies are repaired by
// demoting the offending belief to root, never propagated.
func repairProposal(n int, p *domain.GenealogyProposal) (isRoot []bool, parent []int) {
	parent = make([]int, n)
	for i := range parent {
		parent[i] = -1
	}
	isRoot = make([]bool, n)

	for _, ri := range p.RootIndexes {
		if ri >= 0 && ri < n {
			isRoot[ri] = true
		}
	}

	for _, l := range p.Links {
		ci, pi := l.ChildIndex, l.ParentIndex
		if ci < 0 || ci >= n || isRoot[ci] || parent[ci] != -1 {
			// unknown child, root status wins, or first link wins
			continue
		}
		if pi < 0 || pi >= n || pi == ci {
			// dangling parent: conservative repair is root status
			isRoot[ci] = true
			continue
		}
		parent[ci] = pi
	}

	// A belief the model left without a parent or root status becomes its
	// own root rather than staying unlinked.
	for i := 0; i < n; i++ {
		if !isRoot[i] && parent[i] == -1 {
			isRoot[i] = true
		}
	}

	// Break cycles: walking up from any belief must reach a root. The first
	// belief revisited on the current walk is demoted.
	state := make([]int, n) // 0 unvisited, 1 on current walk, 2 settled
	for i := 0; i < n; i++ {
		if state[i] != 0 {
			continue
		}
		var path []int
		j := i
		for {
			if isRoot[j] || state[j] == 2 {
				break
			}
			if state[j] == 1 {
				isRoot[j] = true
				parent[j] = -1
				break
			}
			state[j] = 1
			path = append(path, j)
			j = parent[j]
		}
		for _, k := range path {
			state[k] = 2
		}
	}

	return isRoot, parent
}

// childType decides the genealogy role written with a link. Direct children
// of roots are pillars; deeper beliefs keep their extraction type, except
// that a root/pillar role from an earlier run is never downgraded back to an
// extraction type.
func childType(current domain.BeliefType, parentIsRoot bool) domain.BeliefType {
	if parentIsRoot {
		return domain.BeliefTypePillar
	}
	if current == domain.BeliefTypeRoot || current == domain.BeliefTypePillar {
		return domain.BeliefTypePillar
	}
	return current
}
