// Package file provides a YAML-backed GraphLoader, so conversation
// topologies can be declared in a file without touching handler code.
package file

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dunehq/dune/pkg/domain"
	"github.com/dunehq/dune/pkg/ports"
)

// Loader implements ports.GraphLoader over a YAML graph definition.
//
// Expected shape:
//
//	nodes:
//	  - id: probe
//	    template: "[probe] Hi: {{input}}"
//	    transitions:
//	      - to: persuade
type Loader struct {
	path string
}

var _ ports.GraphLoader = (*Loader)(nil)

type graphFile struct {
	Nodes []domain.Node `yaml:"nodes"`
}

// NewLoader creates a loader for the given file path. The file is read on
// every Load, not cached; the runtime validates the topology.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load parses the graph definition.
func (l *Loader) Load() ([]domain.Node, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read graph %s: %w", l.path, err)
	}

	var gf graphFile
	if err := yaml.Unmarshal(data, &gf); err != nil {
		return nil, fmt.Errorf("parse graph %s: %w", l.path, err)
	}
	if len(gf.Nodes) == 0 {
		return nil, &domain.WorkflowConfigurationError{Reason: "graph file declares no nodes: " + l.path}
	}
	return gf.Nodes, nil
}
