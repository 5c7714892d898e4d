package editor

import (
	"sort"
	"strings"

	"github.com/tiendc/go-deepcopy"

	"sitebuilder/internal/domain"
)

// zoneSet is a copy-on-write view of a document in which the root content is
// just another zone under domain.RootZone. Mutations replace whole sequences,
// so the document it was built from is never touched.
type zoneSet struct {
	zones map[string][]domain.Node
	root  domain.RootData
	taken map[string]bool // ids in use, built on the first newID
}

func zonesOf(doc domain.Document) *zoneSet {
	zones := make(map[string][]domain.Node, len(doc.Zones)+1)
	for k, v := range doc.Zones {
		zones[k] = v
	}
	content := doc.Content
	if content == nil {
		content = []domain.Node{}
	}
	zones[domain.RootZone] = content
	return &zoneSet{zones: zones, root: doc.Root}
}

func (z *zoneSet) get(key string) ([]domain.Node, bool) {
	nodes, ok := z.zones[key]
	return nodes, ok
}

func (z *zoneSet) set(key string, nodes []domain.Node) {
	z.zones[key] = nodes
}

// ensure creates an empty zone under key if it does not exist yet.
func (z *zoneSet) ensure(key string) []domain.Node {
	nodes, ok := z.zones[key]
	if !ok {
		nodes = []domain.Node{}
		z.zones[key] = nodes
	}
	return nodes
}

// newID draws ids from gen until one is not used by any node in the set.
// Generators never see ids that arrive with explicit props.
func (z *zoneSet) newID(gen IDGenerator, componentType string) string {
	if z.taken == nil {
		z.taken = make(map[string]bool)
		for _, nodes := range z.zones {
			for _, n := range nodes {
				z.taken[n.ID()] = true
			}
		}
	}
	id := gen.NewID(componentType)
	for z.taken[id] {
		id = gen.NewID(componentType)
	}
	z.taken[id] = true
	return id
}

func (z *zoneSet) delete(key string) {
	if key == domain.RootZone {
		return
	}
	delete(z.zones, key)
}

func (z *zoneSet) document() domain.Document {
	doc := domain.Document{
		Content: z.zones[domain.RootZone],
		Zones:   make(map[string][]domain.Node, len(z.zones)-1),
		Root:    z.root,
	}
	for k, v := range z.zones {
		if k == domain.RootZone {
			continue
		}
		doc.Zones[k] = v
	}
	return doc
}

// related returns the keys of zones owned by node id, sorted.
func (z *zoneSet) related(id string) []string {
	if id == "" {
		return nil
	}
	prefix := id + ":"
	var keys []string
	for k := range z.zones {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// removeRelated deletes every zone owned by id and, recursively, the zones
// owned by nodes inside them.
func (z *zoneSet) removeRelated(id string, seen map[string]bool) {
	if seen[id] {
		return
	}
	seen[id] = true
	for _, key := range z.related(id) {
		for _, child := range z.zones[key] {
			z.removeRelated(child.ID(), seen)
		}
		z.delete(key)
	}
}

// copyRelated copies the zones owned by oldID in src to zones owned by newID
// in dst. Every copied node gets a fresh id and its own zones are copied the
// same way. src and dst may be the same set.
func copyRelated(src, dst *zoneSet, oldID, newID string, ids IDGenerator, seen map[string]bool) {
	if seen[oldID] {
		return
	}
	seen[oldID] = true
	for _, key := range src.related(oldID) {
		_, zoneName, ok := domain.SplitZoneKey(key)
		if !ok {
			continue
		}
		children := src.zones[key]
		clones := make([]domain.Node, 0, len(children))
		for _, child := range children {
			clone := cloneNode(child)
			childID := dst.newID(ids, child.Type)
			clone.Props["id"] = childID
			copyRelated(src, dst, child.ID(), childID, ids, seen)
			clones = append(clones, clone)
		}
		dst.set(domain.ZoneKey(newID, zoneName), clones)
	}
}

// cloneNode returns a deep copy of n with a non-nil Props map.
func cloneNode(n domain.Node) domain.Node {
	var out domain.Node
	if err := deepcopy.Copy(&out, &n); err != nil {
		out = domain.Node{Type: n.Type, Props: make(domain.Props, len(n.Props))}
		for k, v := range n.Props {
			out.Props[k] = v
		}
	}
	if out.Props == nil {
		out.Props = domain.Props{}
	}
	return out
}

// SetupZone returns doc with an empty zone under key, or doc unchanged if the
// zone already exists.
func SetupZone(doc domain.Document, key string) domain.Document {
	if _, ok := doc.Zone(key); ok {
		return doc
	}
	z := zonesOf(doc)
	z.ensure(key)
	return z.document()
}

// RelatedZones returns the keys of the zones directly owned by node id.
func RelatedZones(doc domain.Document, id string) []string {
	return zonesOf(doc).related(id)
}

// DuplicateRelatedZones copies every zone owned by node to the same zone name
// under newID, regenerating the ids of all copied descendants. The original
// zones are left as they are. Regenerated ids never collide with ids already
// in doc.
func DuplicateRelatedZones(doc domain.Document, node domain.Node, newID string, ids IDGenerator) domain.Document {
	z := zonesOf(doc)
	copyRelated(z, z, node.ID(), newID, ids, map[string]bool{})
	return z.document()
}

// RemoveRelatedZones deletes every zone owned by node id and, transitively,
// the zones owned by its descendants.
func RemoveRelatedZones(doc domain.Document, id string) domain.Document {
	z := zonesOf(doc)
	z.removeRelated(id, map[string]bool{})
	return z.document()
}
