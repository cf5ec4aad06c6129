package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voicestack/beliefgraph/internal/domain"
	"github.com/voicestack/beliefgraph/internal/llm"
	"go.uber.org/zap"
)

func setupGenealogyTest() (*GenealogyService, *mockBeliefStore, *mockTraceStore, *llm.MockClient, uuid.UUID) {
	beliefStore := newMockBeliefStore()
	traceStore := newMockTraceStore()
	llmClient := llm.NewMockClient()
	logger := zap.NewNop()

	svc := NewGenealogyService(beliefStore, llmClient, NewTraceRecorder(traceStore, logger), logger)
	return svc, beliefStore, traceStore, llmClient, uuid.New()
}

func seedBeliefs(t *testing.T, s *mockBeliefStore, userID uuid.UUID, statements ...string) []*domain.Belief {
	t.Helper()
	beliefs := make([]*domain.Belief, len(statements))
	for i, stmt := range statements {
		beliefs[i] = &domain.Belief{
			UserID:    userID,
			Statement: stmt,
			Type:      domain.BeliefTypeCore,
		}
	}
	require.NoError(t, s.Insert(context.Background(), beliefs))
	return beliefs
}

func TestGenealogyService_Rebuild(t *testing.T) {
	svc, beliefStore, traceStore, llmClient, userID := setupGenealogyTest()
	seeded := seedBeliefs(t, beliefStore, userID, "Quality over quantity", "Edit ruthlessly", "Cut the first paragraph")

	llmClient.ProposeGenealogyResponse = &domain.GenealogyProposal{
		RootIndexes: []int{0},
		Links: []domain.ProposedLink{
			{ChildIndex: 1, ParentIndex: 0},
			{ChildIndex: 2, ParentIndex: 1},
		},
	}

	result, err := svc.Rebuild(context.Background(), userID)
	require.NoError(t, err)

	require.Len(t, result.RootIDs, 1)
	assert.Equal(t, seeded[0].ID, result.RootIDs[0])
	require.Len(t, result.Links, 2)
	assert.Equal(t, domain.GenealogyLink{ChildID: seeded[1].ID, ParentID: seeded[0].ID}, result.Links[0])
	assert.Equal(t, domain.GenealogyLink{ChildID: seeded[2].ID, ParentID: seeded[1].ID}, result.Links[1])

	assert.Equal(t, domain.BeliefTypeRoot, seeded[0].Type)
	assert.Nil(t, seeded[0].ParentID)
	assert.Equal(t, domain.BeliefTypePillar, seeded[1].Type, "direct child of root becomes pillar")
	assert.Equal(t, domain.BeliefTypeCore, seeded[2].Type, "deeper belief keeps its extraction type")

	require.Len(t, traceStore.traces, 1)
	assert.Equal(t, domain.TraceBuildGenealogy, traceStore.traces[0].Action)
}

func TestGenealogyService_Rebuild_Idempotent(t *testing.T) {
	svc, beliefStore, _, llmClient, userID := setupGenealogyTest()
	seeded := seedBeliefs(t, beliefStore, userID, "a", "b", "c")

	llmClient.ProposeGenealogyResponse = &domain.GenealogyProposal{
		RootIndexes: []int{0},
		Links: []domain.ProposedLink{
			{ChildIndex: 1, ParentIndex: 0},
			{ChildIndex: 2, ParentIndex: 1},
		},
	}

	first, err := svc.Rebuild(context.Background(), userID)
	require.NoError(t, err)
	second, err := svc.Rebuild(context.Background(), userID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, domain.BeliefTypeRoot, seeded[0].Type)
	assert.Equal(t, domain.BeliefTypePillar, seeded[1].Type)
}

func TestGenealogyService_Rebuild_EmptySet(t *testing.T) {
	svc, _, _, llmClient, userID := setupGenealogyTest()

	result, err := svc.Rebuild(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, result.RootIDs)
	assert.Empty(t, result.Links)
	assert.Empty(t, llmClient.ProposeGenealogyCalls, "empty belief set must not cost a gateway call")
}

func TestGenealogyService_Rebuild_LockHeld(t *testing.T) {
	svc, beliefStore, _, llmClient, userID := setupGenealogyTest()
	seedBeliefs(t, beliefStore, userID, "a")
	llmClient.ProposeGenealogyResponse = &domain.GenealogyProposal{RootIndexes: []int{0}}
	beliefStore.lockHeld = true

	_, err := svc.Rebuild(context.Background(), userID)
	assert.ErrorIs(t, err, ErrRebuildInProgress)
}

func TestGenealogyService_Rebuild_GatewayFailure(t *testing.T) {
	svc, beliefStore, traceStore, llmClient, userID := setupGenealogyTest()
	seeded := seedBeliefs(t, beliefStore, userID, "a", "b")
	llmClient.ProposeGenealogyError = domain.ErrGatewayUnavailable

	_, err := svc.Rebuild(context.Background(), userID)
	assert.ErrorIs(t, err, domain.ErrGatewayUnavailable)
	assert.Equal(t, domain.BeliefTypeCore, seeded[0].Type, "nothing written on failure")
	require.Len(t, traceStore.traces, 1, "failures are traced")
}

func TestGenealogyService_Rebuild_PartialWrite(t *testing.T) {
	svc, beliefStore, _, llmClient, userID := setupGenealogyTest()
	seedBeliefs(t, beliefStore, userID, "a", "b")
	llmClient.ProposeGenealogyResponse = &domain.GenealogyProposal{
		RootIndexes: []int{0},
		Links:       []domain.ProposedLink{{ChildIndex: 1, ParentIndex: 0}},
	}
	beliefStore.updateParentErr = errors.New("connection reset")

	result, err := svc.Rebuild(context.Background(), userID)
	require.Error(t, err)
	require.NotNil(t, result, "partial result is returned alongside the error")
	assert.Empty(t, result.RootIDs)
	assert.Empty(t, result.Links)
}

func TestRepairProposal(t *testing.T) {
	tests := []struct {
		name       string
		n          int
		proposal   domain.GenealogyProposal
		wantRoots  []int
		wantParent map[int]int
	}{
		{
			name: "clean chain",
			n:    3,
			proposal: domain.GenealogyProposal{
				RootIndexes: []int{0},
				Links:       []domain.ProposedLink{{ChildIndex: 1, ParentIndex: 0}, {ChildIndex: 2, ParentIndex: 1}},
			},
			wantRoots:  []int{0},
			wantParent: map[int]int{1: 0, 2: 1},
		},
		{
			name: "two node cycle broken",
			n:    2,
			proposal: domain.GenealogyProposal{
				Links: []domain.ProposedLink{{ChildIndex: 0, ParentIndex: 1}, {ChildIndex: 1, ParentIndex: 0}},
			},
			wantRoots:  []int{0},
			wantParent: map[int]int{1: 0},
		},
		{
			name: "dangling parent demotes child to root",
			n:    2,
			proposal: domain.GenealogyProposal{
				RootIndexes: []int{0},
				Links:       []domain.ProposedLink{{ChildIndex: 1, ParentIndex: 99}},
			},
			wantRoots:  []int{0, 1},
			wantParent: map[int]int{},
		},
		{
			name: "self parent demotes child to root",
			n:    1,
			proposal: domain.GenealogyProposal{
				Links: []domain.ProposedLink{{ChildIndex: 0, ParentIndex: 0}},
			},
			wantRoots:  []int{0},
			wantParent: map[int]int{},
		},
		{
			name: "first link wins on duplicate child",
			n:    3,
			proposal: domain.GenealogyProposal{
				RootIndexes: []int{0, 2},
				Links:       []domain.ProposedLink{{ChildIndex: 1, ParentIndex: 0}, {ChildIndex: 1, ParentIndex: 2}},
			},
			wantRoots:  []int{0, 2},
			wantParent: map[int]int{1: 0},
		},
		{
			name: "unassigned belief becomes its own root",
			n:    2,
			proposal: domain.GenealogyProposal{
				RootIndexes: []int{0},
			},
			wantRoots:  []int{0, 1},
			wantParent: map[int]int{},
		},
		{
			name: "root status wins over a link",
			n:    2,
			proposal: domain.GenealogyProposal{
				RootIndexes: []int{0, 1},
				Links:       []domain.ProposedLink{{ChildIndex: 1, ParentIndex: 0}},
			},
			wantRoots:  []int{0, 1},
			wantParent: map[int]int{},
		},
		{
			name: "out of range root index ignored",
			n:    1,
			proposal: domain.GenealogyProposal{
				RootIndexes: []int{-1, 5},
			},
			wantRoots:  []int{0},
			wantParent: map[int]int{},
		},
		{
			name: "three node cycle broken once",
			n:    3,
			proposal: domain.GenealogyProposal{
				Links: []domain.ProposedLink{
					{ChildIndex: 0, ParentIndex: 1},
					{ChildIndex: 1, ParentIndex: 2},
					{ChildIndex: 2, ParentIndex: 0},
				},
			},
			wantRoots:  []int{0},
			wantParent: map[int]int{1: 2, 2: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.proposal
			isRoot, parent := repairProposal(tt.n, &p)

			var gotRoots []int
			gotParent := map[int]int{}
			for i := 0; i < tt.n; i++ {
				if isRoot[i] {
					gotRoots = append(gotRoots, i)
				} else {
					gotParent[i] = parent[i]
				}
			}
			assert.Equal(t, tt.wantRoots, gotRoots)
			assert.Equal(t, tt.wantParent, gotParent)

			// Shape guarantee: every chain terminates at a root within n steps.
			for i := 0; i < tt.n; i++ {
				j := i
				for steps := 0; !isRoot[j]; steps++ {
					require.Less(t, steps, tt.n, "chain from %d does not terminate", i)
					j = parent[j]
				}
			}
		})
	}
}

func TestChildType(t *testing.T) {
	assert.Equal(t, domain.BeliefTypePillar, childType(domain.BeliefTypeCore, true))
	assert.Equal(t, domain.BeliefTypePillar, childType(domain.BeliefTypeRoot, false), "former root is never downgraded to an extraction type")
	assert.Equal(t, domain.BeliefTypePillar, childType(domain.BeliefTypePillar, false))
	assert.Equal(t, domain.BeliefTypeEmerging, childType(domain.BeliefTypeEmerging, false))
	assert.Equal(t, domain.BeliefTypeOverused, childType(domain.BeliefTypeOverused, false))
}
