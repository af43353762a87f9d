package topology

import (
	"encoding/json"
	"io"
)

// AnalysisNode is a node entry of the topology analysis export.
type AnalysisNode struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Hostname string `json:"hostname"`
}

// AnalysisLink is a link entry of the topology analysis export.
type AnalysisLink struct {
	Source    string `json:"source"`
	Target    string `json:"target"`
	Bandwidth int    `json:"bandwidth"`
}

// Analysis is the topology_analysis.json document.
type Analysis struct {
	Nodes  []AnalysisNode `json:"nodes"`
	Links  []AnalysisLink `json:"links"`
	Issues []Issue        `json:"issues"`
}

// Analysis builds the export document for the snapshot.
func (s *Snapshot) Analysis() Analysis {
	a := Analysis{
		Nodes:  make([]AnalysisNode, 0, len(s.Nodes)),
		Links:  make([]AnalysisLink, 0, len(s.Links)),
		Issues: s.FilterIssues("", ""),
	}
	for _, n := range s.Nodes {
		a.Nodes = append(a.Nodes, AnalysisNode{ID: n.ID, Type: n.Type, Hostname: n.Hostname})
	}
	for _, l := range s.Links {
		a.Links = append(a.Links, AnalysisLink{Source: l.Source, Target: l.Target, Bandwidth: l.Bandwidth})
	}
	return a
}

// WriteAnalysis encodes the export as indented JSON.
func (s *Snapshot) WriteAnalysis(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s.Analysis())
}
