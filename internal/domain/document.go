package domain

import (
	"sort"
	"strings"
)

// RootZone is the reserved zone key addressing Document.Content.
const RootZone = "root"

// Props is the opaque key-value bag carried by a node. The engine never
// inspects prop semantics beyond the "id" key.
type Props map[string]any

// Node is one placed component instance.
type Node struct {
	Type  string `json:"type"`
	Props Props  `json:"props"`
}

// ID returns the node's "id" prop, or "" if it has none.
func (n Node) ID() string {
	if n.Props == nil {
		return ""
	}
	id, _ := n.Props["id"].(string)
	return id
}

// RootData holds page-level props (title, description, ...).
type RootData struct {
	Props Props `json:"props"`
}

// Document is the persisted page tree: root content plus every registered
// nested zone.
type Document struct {
	Content []Node            `json:"content"`
	Zones   map[string][]Node `json:"zones"`
	Root    RootData          `json:"root"`
}

// NewDocument returns an empty document with initialised collections.
func NewDocument() Document {
	return Document{
		Content: []Node{},
		Zones:   map[string][]Node{},
		Root:    RootData{Props: Props{}},
	}
}

// Zone returns the node sequence stored under key. RootZone resolves to
// Content.
func (d Document) Zone(key string) ([]Node, bool) {
	if key == RootZone {
		return d.Content, true
	}
	nodes, ok := d.Zones[key]
	return nodes, ok
}

// ZoneKeys returns every nested zone key in sorted order.
func (d Document) ZoneKeys() []string {
	keys := make([]string, 0, len(d.Zones))
	for k := range d.Zones {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NodeCount returns the number of nodes across Content and all zones.
func (d Document) NodeCount() int {
	n := len(d.Content)
	for _, nodes := range d.Zones {
		n += len(nodes)
	}
	return n
}

// ZoneKey builds the key of a nested zone owned by node ownerID.
func ZoneKey(ownerID, zoneName string) string {
	return ownerID + ":" + zoneName
}

// SplitZoneKey splits a nested zone key into owner id and zone name.
// ok is false for RootZone and for keys without a separator.
func SplitZoneKey(key string) (ownerID, zoneName string, ok bool) {
	if key == RootZone {
		return "", "", false
	}
	i := strings.LastIndex(key, ":")
	if i <= 0 {
		return "", "", false
	}
	return key[:i], key[i+1:], true
}

// ItemSelector addresses a node by zone and index.
type ItemSelector struct {
	Zone  string `json:"zone"`
	Index int    `json:"index"`
}

// UIState is editor UI state. It is opaque to the engine and shallow-merged.
type UIState map[string]any

// State is the full editor state of which the Document is one field.
type State struct {
	Data Document `json:"data"`
	UI   UIState  `json:"ui"`
}
