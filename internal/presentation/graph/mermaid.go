// Package graph renders the conversation topology for humans.
package graph

import (
	"fmt"
	"strings"

	"github.com/dunehq/dune/pkg/domain"
)

// GenerateMermaid produces a Mermaid flowchart (graph TD) from the
// conversation nodes. The entry node is drawn as a circle, dialogue stages
// as rectangles, and the terminal marker as a double circle.
func GenerateMermaid(nodes []domain.Node, entryNodeID string) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	terminalReferenced := false
	for _, node := range nodes {
		safeID := sanitizeMermaidID(node.ID)

		opener, closer := "[", "]"
		if node.ID == entryNodeID {
			opener, closer = "((", "))"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, node.ID, closer))

		for _, t := range node.Transitions {
			if t.ToNodeID == domain.StateDone {
				terminalReferenced = true
			}
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", safeID, sanitizeMermaidID(t.ToNodeID)))
		}
		if len(node.Transitions) == 0 {
			terminalReferenced = true
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", safeID, sanitizeMermaidID(domain.StateDone)))
		}
	}

	if terminalReferenced {
		sb.WriteString(fmt.Sprintf("    %s(((\"%s\")))\n", sanitizeMermaidID(domain.StateDone), domain.StateDone))
	}
	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
