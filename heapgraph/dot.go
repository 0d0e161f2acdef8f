package heapgraph

import (
	"fmt"
	"io"
	"sort"
)

// WriteDOT renders the snapshot as Graphviz DOT, the format
// cmd/gcctl dump writes to stdout or a file. Nodes and lines are
// emitted in ID order so the output is stable across runs of the same
// heap state, which matters for diffing two dumps.
func (s *Snapshot) WriteDOT(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "digraph heap {"); err != nil {
		return err
	}

	nodeIDs := make([]int64, 0, len(s.Labels))
	for id := range s.Labels {
		nodeIDs = append(nodeIDs, id)
	}
	sort.Slice(nodeIDs, func(i, j int) bool { return nodeIDs[i] < nodeIDs[j] })
	for _, id := range nodeIDs {
		if _, err := fmt.Fprintf(w, "  n%d [label=%q];\n", id, s.Labels[id]); err != nil {
			return err
		}
	}

	type dotLine struct{ from, to, id int64 }
	var dotLines []dotLine
	nodes := s.G.Nodes()
	for nodes.Next() {
		from := nodes.Node()
		to := s.G.From(from.ID())
		for to.Next() {
			lines := s.G.Lines(from.ID(), to.Node().ID())
			for lines.Next() {
				dotLines = append(dotLines, dotLine{from.ID(), to.Node().ID(), lines.Line().ID()})
			}
		}
	}
	sort.Slice(dotLines, func(i, j int) bool { return dotLines[i].id < dotLines[j].id })
	for _, l := range dotLines {
		if err := s.writeLine(w, l.from, l.to, l.id); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintln(w, "}")
	return err
}

func (s *Snapshot) writeLine(w io.Writer, fromID, toID, lineID int64) error {
	_, err := fmt.Fprintf(w, "  n%d -> n%d [label=%q];\n", fromID, toID, s.Lines[lineID])
	return err
}
