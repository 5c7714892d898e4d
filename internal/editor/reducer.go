package editor

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"sitebuilder/internal/domain"
)

// Reducer applies actions to editor state. It owns the id generator and the
// zone cache of one editing session; everything else it needs arrives with
// each call, so a reduction depends only on its inputs and the generator.
type Reducer struct {
	ids    IDGenerator
	cache  ZoneCache
	logger *zap.Logger
}

// ReducerOption configures a Reducer.
type ReducerOption func(*Reducer)

func WithIDGenerator(ids IDGenerator) ReducerOption {
	return func(r *Reducer) { r.ids = ids }
}

func WithZoneCache(cache ZoneCache) ReducerOption {
	return func(r *Reducer) { r.cache = cache }
}

func WithLogger(logger *zap.Logger) ReducerOption {
	return func(r *Reducer) { r.logger = logger }
}

// NewReducer creates a Reducer. Without options it uses UUID ids, a fresh
// in-memory zone cache and a no-op logger.
func NewReducer(opts ...ReducerOption) *Reducer {
	r := &Reducer{
		ids:    UUIDGenerator{},
		cache:  NewMemoryZoneCache(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reduce applies action to state and returns the next state. On error the
// returned state is the input state.
func (r *Reducer) Reduce(state domain.State, action domain.Action, cfg domain.Config) (domain.State, error) {
	if action == nil {
		return state, fmt.Errorf("reduce: %w: nil action", ErrInvalidAction)
	}
	start := time.Now()
	next, err := r.reduce(state, action, cfg)
	observeReduce(action.ActionType(), time.Since(start), err)
	if err != nil {
		return state, fmt.Errorf("reduce %s: %w", action.ActionType(), err)
	}
	r.logger.Debug("action applied",
		zap.String("action", action.ActionType()),
		zap.Int("nodes", next.Data.NodeCount()),
		zap.Int("zones", len(next.Data.Zones)),
	)
	return next, nil
}

func (r *Reducer) reduce(state domain.State, action domain.Action, cfg domain.Config) (domain.State, error) {
	switch a := action.(type) {
	case domain.SetAction:
		return r.set(state, a), nil
	case domain.SetUIAction:
		state.UI = mergeUI(state.UI, a.UI, a.Fn)
		return state, nil
	}
	data, err := r.ReduceData(state.Data, action, cfg)
	if err != nil {
		return state, err
	}
	state.Data = data
	return state, nil
}

// ReduceData applies a document action. Set and SetUI leave the document
// unchanged.
func (r *Reducer) ReduceData(doc domain.Document, action domain.Action, cfg domain.Config) (domain.Document, error) {
	switch a := action.(type) {
	case domain.InsertAction:
		return r.insert(doc, a, cfg)
	case domain.MoveAction:
		return r.move(doc, a)
	case domain.ReorderAction:
		return r.reorder(doc, a)
	case domain.ReplaceAction:
		return r.replace(doc, a)
	case domain.RemoveAction:
		return r.remove(doc, a)
	case domain.DuplicateAction:
		return r.duplicate(doc, a)
	case domain.RegisterZoneAction:
		return r.registerZone(doc, a)
	case domain.UnregisterZoneAction:
		return r.unregisterZone(doc, a)
	case domain.SetDataAction:
		return setData(doc, a), nil
	case domain.LoadLayoutAction:
		return r.loadLayout(doc, a)
	case domain.UpdateAction:
		return update(doc, a)
	case domain.SetAction, domain.SetUIAction:
		return doc, nil
	default:
		return doc, fmt.Errorf("%w: %T", ErrUnknownAction, action)
	}
}

func requireZone(key string) error {
	if key == "" {
		return fmt.Errorf("%w: zone is required", ErrInvalidAction)
	}
	return nil
}

func existingZone(z *zoneSet, key string) ([]domain.Node, error) {
	if err := requireZone(key); err != nil {
		return nil, err
	}
	nodes, ok := z.get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrZoneNotFound, key)
	}
	return nodes, nil
}

func (r *Reducer) insert(doc domain.Document, a domain.InsertAction, cfg domain.Config) (domain.Document, error) {
	if err := requireZone(a.DestinationZone); err != nil {
		return doc, err
	}
	if a.ComponentType == "" {
		return doc, fmt.Errorf("%w: componentType is required", ErrInvalidAction)
	}

	props := cfg.DefaultProps(a.ComponentType)
	for k, v := range a.Props {
		props[k] = v
	}
	z := zonesOf(doc)
	id := a.ID
	if id == "" {
		id, _ = a.Props["id"].(string)
	}
	if id == "" {
		id = z.newID(r.ids, a.ComponentType)
	}
	props["id"] = id

	nodes, err := Insert(z.ensure(a.DestinationZone), a.DestinationIndex, domain.Node{Type: a.ComponentType, Props: props})
	if err != nil {
		return doc, err
	}
	z.set(a.DestinationZone, nodes)
	return z.document(), nil
}

func (r *Reducer) move(doc domain.Document, a domain.MoveAction) (domain.Document, error) {
	if a.SourceZone == a.DestinationZone {
		return r.reorder(doc, domain.ReorderAction{
			SourceIndex:      a.SourceIndex,
			DestinationIndex: a.DestinationIndex,
			DestinationZone:  a.DestinationZone,
		})
	}
	if err := requireZone(a.DestinationZone); err != nil {
		return doc, err
	}

	z := zonesOf(doc)
	source, err := existingZone(z, a.SourceZone)
	if err != nil {
		return doc, err
	}
	if a.SourceIndex < 0 || a.SourceIndex >= len(source) {
		return doc, fmt.Errorf("move from %s[%d]: %w", a.SourceZone, a.SourceIndex, ErrIndexOutOfRange)
	}
	item := source[a.SourceIndex]

	rest, err := Remove(source, a.SourceIndex)
	if err != nil {
		return doc, err
	}
	placed, err := Insert(z.ensure(a.DestinationZone), a.DestinationIndex, item)
	if err != nil {
		return doc, err
	}
	z.set(a.SourceZone, rest)
	z.set(a.DestinationZone, placed)
	return z.document(), nil
}

func (r *Reducer) reorder(doc domain.Document, a domain.ReorderAction) (domain.Document, error) {
	z := zonesOf(doc)
	nodes, err := existingZone(z, a.DestinationZone)
	if err != nil {
		return doc, err
	}
	reordered, err := Reorder(nodes, a.SourceIndex, a.DestinationIndex)
	if err != nil {
		return doc, err
	}
	z.set(a.DestinationZone, reordered)
	return z.document(), nil
}

func (r *Reducer) replace(doc domain.Document, a domain.ReplaceAction) (domain.Document, error) {
	z := zonesOf(doc)
	nodes, err := existingZone(z, a.DestinationZone)
	if err != nil {
		return doc, err
	}
	replaced, err := Replace(nodes, a.DestinationIndex, a.Data)
	if err != nil {
		return doc, err
	}
	z.set(a.DestinationZone, replaced)
	return z.document(), nil
}

func (r *Reducer) remove(doc domain.Document, a domain.RemoveAction) (domain.Document, error) {
	z := zonesOf(doc)
	nodes, err := existingZone(z, a.Zone)
	if err != nil {
		return doc, err
	}
	if a.Index < 0 || a.Index >= len(nodes) {
		return doc, fmt.Errorf("remove %s[%d]: %w", a.Zone, a.Index, ErrIndexOutOfRange)
	}
	item := nodes[a.Index]

	rest, err := Remove(nodes, a.Index)
	if err != nil {
		return doc, err
	}
	z.set(a.Zone, rest)
	return RemoveRelatedZones(z.document(), item.ID()), nil
}

func (r *Reducer) duplicate(doc domain.Document, a domain.DuplicateAction) (domain.Document, error) {
	z := zonesOf(doc)
	nodes, err := existingZone(z, a.SourceZone)
	if err != nil {
		return doc, err
	}
	if a.SourceIndex < 0 || a.SourceIndex >= len(nodes) {
		return doc, fmt.Errorf("duplicate %s[%d]: %w", a.SourceZone, a.SourceIndex, ErrIndexOutOfRange)
	}
	item := nodes[a.SourceIndex]

	newID := z.newID(r.ids, item.Type)
	clone := cloneNode(item)
	clone.Props["id"] = newID

	withClone, err := Insert(nodes, a.SourceIndex+1, clone)
	if err != nil {
		return doc, err
	}
	z.set(a.SourceZone, withClone)
	return DuplicateRelatedZones(z.document(), item, newID, r.ids), nil
}

func (r *Reducer) registerZone(doc domain.Document, a domain.RegisterZoneAction) (domain.Document, error) {
	if err := requireZone(a.Zone); err != nil {
		return doc, err
	}
	if a.Zone == domain.RootZone {
		return doc, nil
	}
	cached, ok := r.cache.Load(a.Zone)
	observeZoneCache(ok)
	if !ok {
		return SetupZone(doc, a.Zone), nil
	}
	z := zonesOf(doc)
	z.set(a.Zone, cached)
	return z.document(), nil
}

func (r *Reducer) unregisterZone(doc domain.Document, a domain.UnregisterZoneAction) (domain.Document, error) {
	if err := requireZone(a.Zone); err != nil {
		return doc, err
	}
	if a.Zone == domain.RootZone {
		return doc, nil
	}
	nodes, ok := doc.Zones[a.Zone]
	if !ok {
		return doc, nil
	}
	if err := r.cache.Store(a.Zone, nodes); err != nil {
		return doc, fmt.Errorf("unregister zone %s: %w", a.Zone, err)
	}
	z := zonesOf(doc)
	z.delete(a.Zone)
	return z.document(), nil
}

func setData(doc domain.Document, a domain.SetDataAction) domain.Document {
	patch := a.Data
	if a.Fn != nil {
		patch = a.Fn(doc)
	}
	if patch.Content != nil {
		doc.Content = patch.Content
	}
	if patch.Zones != nil {
		doc.Zones = patch.Zones
	}
	if patch.Root != nil {
		doc.Root = *patch.Root
	}
	return doc
}

func (r *Reducer) loadLayout(doc domain.Document, a domain.LoadLayoutAction) (domain.Document, error) {
	if a.Content == nil || a.Destination == nil {
		doc.Content = a.Content
		if doc.Content == nil {
			doc.Content = []domain.Node{}
		}
		doc.Zones = a.Zones
		if doc.Zones == nil {
			doc.Zones = map[string][]domain.Node{}
		}
		return doc, nil
	}

	dest := *a.Destination
	if dest < 0 {
		return doc, fmt.Errorf("load layout at %d: %w", dest, ErrIndexOutOfRange)
	}
	if dest > len(doc.Content) {
		dest = len(doc.Content)
	}

	z := zonesOf(doc)
	layout := zonesOf(domain.Document{Content: a.Content, Zones: a.Zones})
	seen := map[string]bool{}
	imported := make([]domain.Node, 0, len(a.Content))
	for _, node := range a.Content {
		clone := cloneNode(node)
		newID := z.newID(r.ids, node.Type)
		clone.Props["id"] = newID
		copyRelated(layout, z, node.ID(), newID, r.ids, seen)
		imported = append(imported, clone)
	}

	root, _ := z.get(domain.RootZone)
	content := make([]domain.Node, 0, len(root)+len(imported))
	content = append(content, root[:dest]...)
	content = append(content, imported...)
	content = append(content, root[dest:]...)
	z.set(domain.RootZone, content)
	return z.document(), nil
}

func update(doc domain.Document, a domain.UpdateAction) (domain.Document, error) {
	if a.ID == "" {
		return doc, fmt.Errorf("%w: id is required", ErrInvalidAction)
	}
	z := zonesOf(doc)
	keys := make([]string, 0, len(z.zones))
	for k := range z.zones {
		if k != domain.RootZone {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	keys = append([]string{domain.RootZone}, keys...)

	for _, key := range keys {
		nodes := z.zones[key]
		for i, n := range nodes {
			if n.ID() != a.ID {
				continue
			}
			props := make(domain.Props, len(n.Props)+len(a.Props))
			for k, v := range n.Props {
				props[k] = v
			}
			for k, v := range a.Props {
				props[k] = v
			}
			props["id"] = a.ID
			replaced, err := Replace(nodes, i, domain.Node{Type: n.Type, Props: props})
			if err != nil {
				return doc, err
			}
			z.set(key, replaced)
			return z.document(), nil
		}
	}
	return doc, fmt.Errorf("update %q: %w", a.ID, ErrNodeNotFound)
}

func (r *Reducer) set(state domain.State, a domain.SetAction) domain.State {
	patch := a.State
	if a.Fn != nil {
		patch = a.Fn(state)
	}
	if patch.Data != nil {
		state.Data = domain.Normalize(*patch.Data)
	}
	if patch.UI != nil {
		state.UI = mergeUI(state.UI, patch.UI, nil)
	}
	return state
}

func mergeUI(current, partial domain.UIState, fn func(domain.UIState) domain.UIState) domain.UIState {
	if fn != nil {
		partial = fn(current)
	}
	out := make(domain.UIState, len(current)+len(partial))
	for k, v := range current {
		out[k] = v
	}
	for k, v := range partial {
		out[k] = v
	}
	return out
}
