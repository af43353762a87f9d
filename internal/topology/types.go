// Static network topology snapshot types
package topology

// Summary holds the headline numbers of a snapshot.
type Summary struct {
	TotalNodes     int `yaml:"total_nodes" json:"total_nodes"`
	TotalLinks     int `yaml:"total_links" json:"total_links"`
	TotalVLANs     int `yaml:"total_vlans" json:"total_vlans"`
	TotalIssues    int `yaml:"total_issues" json:"total_issues"`
	TopologyHealth int `yaml:"topology_health" json:"topology_health"`
}

// Interface is a configured device interface.
type Interface struct {
	Name   string `yaml:"name" json:"name"`
	IP     string `yaml:"ip" json:"ip"`
	Subnet string `yaml:"subnet" json:"subnet"`
	MTU    int    `yaml:"mtu" json:"mtu"`
	Status string `yaml:"status" json:"status"`
	VLAN   int    `yaml:"vlan,omitempty" json:"vlan,omitempty"`
}

// VLAN is a VLAN defined on a switch.
type VLAN struct {
	ID          int    `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
}

// Node is a router or switch in the snapshot.
type Node struct {
	ID              string      `yaml:"id" json:"id"`
	Name            string      `yaml:"name" json:"name"`
	Type            string      `yaml:"type" json:"type"`
	Hostname        string      `yaml:"hostname" json:"hostname"`
	Interfaces      []Interface `yaml:"interfaces" json:"interfaces"`
	VLANs           []VLAN      `yaml:"vlans" json:"vlans"`
	RoutingProtocol string      `yaml:"routing_protocol" json:"routing_protocol"`
	Gateway         string      `yaml:"gateway" json:"gateway"`
}

// Link connects two device interfaces.
type Link struct {
	Source          string `yaml:"source" json:"source"`
	Target          string `yaml:"target" json:"target"`
	SourceInterface string `yaml:"source_interface" json:"source_interface"`
	TargetInterface string `yaml:"target_interface" json:"target_interface"`
	Bandwidth       int    `yaml:"bandwidth" json:"bandwidth"`
	MTU             int    `yaml:"mtu" json:"mtu"`
	Status          string `yaml:"status" json:"status"`
}

// Issue is a pre-computed validation finding.
type Issue struct {
	ID              int      `yaml:"id" json:"id"`
	Type            string   `yaml:"type" json:"type"`
	Severity        string   `yaml:"severity" json:"severity"`
	Title           string   `yaml:"title" json:"title"`
	Message         string   `yaml:"message" json:"message"`
	Recommendation  string   `yaml:"recommendation" json:"recommendation"`
	AffectedDevices []string `yaml:"affected_devices" json:"affected_devices"`
}

// Recommendation is an optimization suggestion.
type Recommendation struct {
	Type           string `yaml:"type" json:"type"`
	Title          string `yaml:"title" json:"title"`
	Description    string `yaml:"description" json:"description"`
	Recommendation string `yaml:"recommendation" json:"recommendation"`
	Priority       string `yaml:"priority" json:"priority"`
}

// DeviceStat holds per-device traffic counters.
type DeviceStat struct {
	PacketsSent      int64 `yaml:"packets_sent" json:"packets_sent"`
	PacketsReceived  int64 `yaml:"packets_received" json:"packets_received"`
	ARPTableSize     int   `yaml:"arp_table_size" json:"arp_table_size"`
	RoutingTableSize int   `yaml:"routing_table_size" json:"routing_table_size"`
}

// SimulationStats are the counters collected with the snapshot.
type SimulationStats struct {
	Running       bool                  `yaml:"running" json:"running"`
	Duration      int                   `yaml:"duration" json:"duration"`
	TotalSent     int64                 `yaml:"total_packets_sent" json:"total_packets_sent"`
	TotalReceived int64                 `yaml:"total_packets_received" json:"total_packets_received"`
	TotalDropped  int64                 `yaml:"total_packets_dropped" json:"total_packets_dropped"`
	DeviceStats   map[string]DeviceStat `yaml:"device_stats" json:"device_stats"`
}

// Snapshot is the complete, read-only network data set.
type Snapshot struct {
	Summary         Summary          `yaml:"summary" json:"network_summary"`
	Nodes           []Node           `yaml:"nodes" json:"nodes"`
	Links           []Link           `yaml:"links" json:"links"`
	Issues          []Issue          `yaml:"validation_issues" json:"validation_issues"`
	Simulation      SimulationStats  `yaml:"simulation_stats" json:"simulation_stats"`
	Recommendations []Recommendation `yaml:"optimization_recommendations" json:"optimization_recommendations"`
}

// Device types.
const (
	TypeRouter = "router"
	TypeSwitch = "switch"
)

// Link and interface states.
const (
	StatusUp   = "up"
	StatusDown = "down"
)

// Issue severities.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)
