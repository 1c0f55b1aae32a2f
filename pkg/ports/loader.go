package ports

import "github.com/dunehq/dune/pkg/domain"

// GraphLoader defines how the engine retrieves the conversation graph.
// This allows the storage layer (file, memory) to be decoupled from the
// runtime.
type GraphLoader interface {
	// Load returns the full set of node definitions. The runtime
	// validates the topology; loaders only parse and hand it over.
	Load() ([]domain.Node, error)
}
