package file_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dunehq/dune/pkg/adapters/file"
	"github.com/dunehq/dune/pkg/domain"
)

func writeGraph(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoader_Load(t *testing.T) {
	path := writeGraph(t, `
nodes:
  - id: probe
    template: "[probe] Hi: {{input}}"
    transitions:
      - to: decision
  - id: decision
    template: "[decision] Done."
    blocked: "[decision] Unavailable."
    transitions:
      - to: done
`)

	nodes, err := file.NewLoader(path).Load()
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, "probe", nodes[0].ID)
	assert.Equal(t, "decision", nodes[0].Transitions[0].ToNodeID)
	assert.Equal(t, "[decision] Unavailable.", nodes[1].Blocked)
	assert.Equal(t, domain.StateDone, nodes[1].Transitions[0].ToNodeID)
}

func TestLoader_MissingFile(t *testing.T) {
	_, err := file.NewLoader(filepath.Join(t.TempDir(), "absent.yaml")).Load()
	assert.Error(t, err)
}

func TestLoader_InvalidYAML(t *testing.T) {
	path := writeGraph(t, "nodes: [unclosed")
	_, err := file.NewLoader(path).Load()
	assert.Error(t, err)
}

func TestLoader_EmptyGraph(t *testing.T) {
	path := writeGraph(t, "nodes: []")
	_, err := file.NewLoader(path).Load()
	var wErr *domain.WorkflowConfigurationError
	require.ErrorAs(t, err, &wErr)
}
