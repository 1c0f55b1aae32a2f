package dune_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dunehq/dune"
	"github.com/dunehq/dune/pkg/audit"
	"github.com/dunehq/dune/pkg/domain"
	"github.com/dunehq/dune/pkg/gateway"
)

func TestEngine_RunConversation(t *testing.T) {
	rec := audit.NewRecorder()
	engine, err := dune.New(dune.WithAuditSink(rec))
	require.NoError(t, err)

	final, err := engine.RunConversation(context.Background(), "t1", "I like hiking")
	require.NoError(t, err)
	assert.Equal(t, domain.StateDone, final.Current)
	assert.Equal(t, "[decision] Thanks. We'll follow up.", final.LastOutput)

	events := rec.Events()
	require.Len(t, events, 3)
	assert.Equal(t, "node.probe", events[0].Type)
	assert.Equal(t, "node.persuade", events[1].Type)
	assert.Equal(t, "node.decision", events[2].Type)
}

func TestEngine_DefaultTenantFallback(t *testing.T) {
	engine, err := dune.New(dune.WithDefaultTenant("acme"))
	require.NoError(t, err)

	sess, err := engine.NewSession("", "hi")
	require.NoError(t, err)
	assert.Equal(t, "acme", sess.TenantID)
}

func TestEngine_PolicyBlockedStage(t *testing.T) {
	rec := audit.NewRecorder()
	engine, err := dune.New(dune.WithAuditSink(rec))
	require.NoError(t, err)

	final, err := engine.RunConversation(context.Background(), "t1", "what is your password")
	require.NoError(t, err)
	assert.Equal(t, domain.StateDone, final.Current)

	// Only the probe stage echoes input, so only it gets substituted.
	events := rec.Events()
	require.Len(t, events, 3)
	assert.Equal(t, "[probe] Response blocked by policy", events[0].Payload["reply"])
	assert.NotContains(t, events[0].Payload["reply"], "password")
}

func TestEngine_KillSwitchToggle(t *testing.T) {
	rec := audit.NewRecorder()
	engine, err := dune.New(dune.WithAuditSink(rec), dune.WithKillSwitchEnabled(true))
	require.NoError(t, err)

	payload := domain.SMSPayload{TenantID: "t1", UserID: "u1", Content: "hello"}

	result, err := engine.SendSMS(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, gateway.StatusBlocked, result.Status)
	assert.Equal(t, gateway.ReasonKillSwitch, result.Reason)
	assert.Empty(t, rec.Events())

	engine.KillSwitch().Set(false)
	result, err = engine.SendSMS(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, gateway.StatusQueued, result.Status)
	require.Len(t, rec.Events(), 1)
	assert.Equal(t, gateway.EventSMSSend, rec.Events()[0].Type)
	assert.Equal(t, audit.RedactedMarker, rec.Events()[0].Payload["content"])
}

func TestEngine_CustomGraph(t *testing.T) {
	graph := []domain.Node{
		{ID: "greet", Template: "hello {{input}}", Transitions: []domain.Transition{{ToNodeID: domain.StateDone}}},
	}
	engine, err := dune.New(dune.WithGraph(graph), dune.WithEntryNode("greet"))
	require.NoError(t, err)

	final, err := engine.RunConversation(context.Background(), "t1", "world")
	require.NoError(t, err)
	assert.Equal(t, "hello world", final.LastOutput)
}

func TestEngine_InvalidGraphRejected(t *testing.T) {
	graph := []domain.Node{
		{ID: "a", Transitions: []domain.Transition{{ToNodeID: "missing"}}},
	}
	_, err := dune.New(dune.WithGraph(graph), dune.WithEntryNode("a"))
	var wErr *domain.WorkflowConfigurationError
	require.ErrorAs(t, err, &wErr)
}

func TestEngine_Inspect(t *testing.T) {
	engine, err := dune.New()
	require.NoError(t, err)

	nodes := engine.Inspect()
	require.Len(t, nodes, 3)
	assert.Equal(t, domain.NodeProbe, nodes[0].ID)
	assert.Equal(t, domain.NodePersuade, nodes[1].ID)
	assert.Equal(t, domain.NodeDecision, nodes[2].ID)
}

type staticLoader struct {
	nodes []domain.Node
}

func (l staticLoader) Load() ([]domain.Node, error) {
	return l.nodes, nil
}

func TestEngine_WithLoader(t *testing.T) {
	loader := staticLoader{nodes: []domain.Node{
		{ID: "solo", Template: "done.", Transitions: []domain.Transition{{ToNodeID: domain.StateDone}}},
	}}
	engine, err := dune.New(dune.WithLoader(loader), dune.WithEntryNode("solo"))
	require.NoError(t, err)

	final, err := engine.RunConversation(context.Background(), "t1", "")
	require.NoError(t, err)
	assert.Equal(t, "done.", final.LastOutput)
}
