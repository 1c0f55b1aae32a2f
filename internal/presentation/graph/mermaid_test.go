package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dunehq/dune/internal/presentation/graph"
	"github.com/dunehq/dune/pkg/domain"
)

func TestGenerateMermaid_DefaultGraph(t *testing.T) {
	out := graph.GenerateMermaid(domain.DefaultGraph(), domain.NodeProbe)

	assert.Contains(t, out, "graph TD")
	assert.Contains(t, out, `probe(("probe"))`)
	assert.Contains(t, out, `persuade["persuade"]`)
	assert.Contains(t, out, "probe --> persuade")
	assert.Contains(t, out, "persuade --> decision")
	assert.Contains(t, out, "decision --> done")
	assert.Contains(t, out, `done((("done")))`)
}

func TestGenerateMermaid_SinkNodeFlowsToTerminal(t *testing.T) {
	nodes := []domain.Node{{ID: "only"}}
	out := graph.GenerateMermaid(nodes, "only")
	assert.Contains(t, out, "only --> done")
	assert.Contains(t, out, `done((("done")))`)
}

func TestGenerateMermaid_SanitizesIDs(t *testing.T) {
	nodes := []domain.Node{
		{ID: "stage.one", Transitions: []domain.Transition{{ToNodeID: domain.StateDone}}},
	}
	out := graph.GenerateMermaid(nodes, "stage.one")
	assert.Contains(t, out, `stage_one(("stage.one"))`)
	assert.NotContains(t, out, "stage.one((")
}
