package topology

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed snapshot.yaml
var defaultSnapshot []byte

// Default returns a copy of the compiled-in snapshot.
func Default() *Snapshot {
	s, err := Parse(defaultSnapshot)
	if err != nil {
		panic(fmt.Sprintf("embedded snapshot: %v", err))
	}
	return s
}

// Load reads a snapshot YAML file from disk.
func Load(path string) (*Snapshot, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return Parse(b)
}

// Parse decodes a snapshot document.
func Parse(b []byte) (*Snapshot, error) {
	var s Snapshot
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	if s.Simulation.TotalReceived > s.Simulation.TotalSent {
		return nil, fmt.Errorf("parse snapshot: received packets (%d) exceed sent packets (%d)",
			s.Simulation.TotalReceived, s.Simulation.TotalSent)
	}
	if s.Simulation.TotalSent < 0 || s.Simulation.TotalReceived < 0 {
		return nil, fmt.Errorf("parse snapshot: negative packet counters")
	}
	return &s, nil
}

func (n Node) clone() Node {
	n.Interfaces = append([]Interface(nil), n.Interfaces...)
	n.VLANs = append([]VLAN(nil), n.VLANs...)
	return n
}

// Node looks up a device by ID.
func (s *Snapshot) Node(id string) (Node, bool) {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n.clone(), true
		}
	}
	return Node{}, false
}

// DeviceStats returns a copy of the per-device counters.
func (s *Snapshot) DeviceStats() map[string]DeviceStat {
	out := make(map[string]DeviceStat, len(s.Simulation.DeviceStats))
	for id, st := range s.Simulation.DeviceStats {
		out[id] = st
	}
	return out
}

// DeviceIDs returns the IDs of all devices with counters, sorted.
func (s *Snapshot) DeviceIDs() []string {
	ids := make([]string, 0, len(s.Simulation.DeviceStats))
	for id := range s.Simulation.DeviceStats {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// FilterDevices matches search case-insensitively against name and hostname
// and deviceType exactly. Empty filters match everything.
func (s *Snapshot) FilterDevices(search, deviceType string) []Node {
	search = strings.ToLower(search)
	out := []Node{}
	for _, n := range s.Nodes {
		if search != "" &&
			!strings.Contains(strings.ToLower(n.Name), search) &&
			!strings.Contains(strings.ToLower(n.Hostname), search) {
			continue
		}
		if deviceType != "" && n.Type != deviceType {
			continue
		}
		out = append(out, n.clone())
	}
	return out
}

// FilterIssues returns issues matching severity and issueType. Empty filters match everything.
func (s *Snapshot) FilterIssues(severity, issueType string) []Issue {
	out := []Issue{}
	for _, is := range s.Issues {
		if severity != "" && is.Severity != severity {
			continue
		}
		if issueType != "" && is.Type != issueType {
			continue
		}
		is.AffectedDevices = append([]string(nil), is.AffectedDevices...)
		out = append(out, is)
	}
	return out
}

// SeverityCounts counts issues per severity.
func (s *Snapshot) SeverityCounts() map[string]int {
	counts := make(map[string]int)
	for _, is := range s.Issues {
		counts[is.Severity]++
	}
	return counts
}

// LinkID names a link by its endpoints, e.g. "R1-R2".
func LinkID(l Link) string {
	return l.Source + "-" + l.Target
}

// FindLink looks up a link by its LinkID.
func (s *Snapshot) FindLink(id string) (Link, bool) {
	for _, l := range s.Links {
		if LinkID(l) == id {
			return l, true
		}
	}
	return Link{}, false
}

var configFiles = map[string]string{
	"R1":  "768153cc.cfg",
	"R2":  "5fa9eba6.cfg",
	"SW1": "40f2daf0.cfg",
}

// ConfigFileName returns the stored configuration file for a device.
func ConfigFileName(deviceID string) string {
	if f, ok := configFiles[deviceID]; ok {
		return f
	}
	return "8e9d8e94.txt"
}
