// Package render holds the HTML partials of the dashboard.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"sort"
	"strings"

	"netsim-dashboard/internal/topology"
)

//go:embed templates/*.tmpl
var content embed.FS

// Renderer executes the embedded partials. It is safe for concurrent use.
type Renderer struct {
	tpl           *template.Template
	configBaseURL string
}

// New parses the partials. configBaseURL prefixes device configuration file links.
func New(configBaseURL string) (*Renderer, error) {
	tpl, err := template.New("partials").Funcs(template.FuncMap{
		"statusClass": statusClass,
	}).ParseFS(content, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse partials: %w", err)
	}
	return &Renderer{tpl: tpl, configBaseURL: strings.TrimRight(configBaseURL, "/")}, nil
}

// DeviceStatCard pairs a device ID with its counters.
type DeviceStatCard struct {
	ID   string
	Stat topology.DeviceStat
}

type deviceDetails struct {
	Node      topology.Node
	ConfigURL string
}

// ConfigURL returns the download link of a device's configuration file.
func (r *Renderer) ConfigURL(deviceID string) string {
	return r.configBaseURL + "/" + topology.ConfigFileName(deviceID)
}

// DeviceRows renders one configuration table row per node.
func (r *Renderer) DeviceRows(w io.Writer, nodes []topology.Node) error {
	return r.tpl.ExecuteTemplate(w, "device_rows", nodes)
}

// DeviceDetails renders the device modal body.
func (r *Renderer) DeviceDetails(w io.Writer, n topology.Node) error {
	return r.tpl.ExecuteTemplate(w, "device_details", deviceDetails{Node: n, ConfigURL: r.ConfigURL(n.ID)})
}

// NodeOverlay renders the topology node overlay.
func (r *Renderer) NodeOverlay(w io.Writer, n topology.Node) error {
	return r.tpl.ExecuteTemplate(w, "node_overlay", n)
}

// IssueCards renders validation issues.
func (r *Renderer) IssueCards(w io.Writer, issues []topology.Issue) error {
	return r.tpl.ExecuteTemplate(w, "issue_cards", issues)
}

// RecommendationCards renders optimization recommendations.
func (r *Renderer) RecommendationCards(w io.Writer, recs []topology.Recommendation) error {
	return r.tpl.ExecuteTemplate(w, "recommendation_cards", recs)
}

// DeviceStatCards renders per-device counters ordered by device ID.
func (r *Renderer) DeviceStatCards(w io.Writer, stats map[string]topology.DeviceStat) error {
	cards := make([]DeviceStatCard, 0, len(stats))
	for id, st := range stats {
		cards = append(cards, DeviceStatCard{ID: id, Stat: st})
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].ID < cards[j].ID })
	return r.tpl.ExecuteTemplate(w, "device_stat_cards", cards)
}

// StatusIndicator renders the running/stopped indicator.
func (r *Renderer) StatusIndicator(w io.Writer, running bool) error {
	return r.tpl.ExecuteTemplate(w, "status_indicator", running)
}

// HTML renders a partial into a string for embedding in a page.
func HTML(fn func(io.Writer) error) (template.HTML, error) {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

func statusClass(status string) string {
	if status == topology.StatusUp {
		return "success"
	}
	return "error"
}
