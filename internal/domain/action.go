package domain

// Action type tags, as they appear in the "type" field of encoded actions.
const (
	ActionInsert         = "insert"
	ActionMove           = "move"
	ActionReorder        = "reorder"
	ActionReplace        = "replace"
	ActionRemove         = "remove"
	ActionDuplicate      = "duplicate"
	ActionRegisterZone   = "registerZone"
	ActionUnregisterZone = "unregisterZone"
	ActionSetData        = "setData"
	ActionLoadLayout     = "loadLayout"
	ActionUpdate         = "update"
	ActionSet            = "set"
	ActionSetUI          = "setUi"
)

// Action is one requested edit. The set of implementations is closed: only
// the types in this file satisfy it.
type Action interface {
	ActionType() string
	ShouldRecordHistory() bool
	action()
}

// HistoryFlag is embedded by every action to carry the recordHistory flag.
type HistoryFlag struct {
	RecordHistory bool `json:"recordHistory,omitempty"`
}

func (h HistoryFlag) ShouldRecordHistory() bool { return h.RecordHistory }

// InsertAction places a new component built from the registry defaults.
type InsertAction struct {
	HistoryFlag
	ComponentType    string `json:"componentType"`
	DestinationIndex int    `json:"destinationIndex"`
	DestinationZone  string `json:"destinationZone"`
	ID               string `json:"id,omitempty"`
	Props            Props  `json:"props,omitempty"`
}

// MoveAction transfers a node between (or within) zones.
type MoveAction struct {
	HistoryFlag
	SourceIndex      int    `json:"sourceIndex"`
	SourceZone       string `json:"sourceZone"`
	DestinationIndex int    `json:"destinationIndex"`
	DestinationZone  string `json:"destinationZone"`
}

// ReorderAction moves a node within a single zone.
type ReorderAction struct {
	HistoryFlag
	SourceIndex      int    `json:"sourceIndex"`
	DestinationIndex int    `json:"destinationIndex"`
	DestinationZone  string `json:"destinationZone"`
}

// ReplaceAction overwrites the node at an index verbatim.
type ReplaceAction struct {
	HistoryFlag
	DestinationIndex int    `json:"destinationIndex"`
	DestinationZone  string `json:"destinationZone"`
	Data             Node   `json:"data"`
}

// RemoveAction deletes a node and every zone it owns.
type RemoveAction struct {
	HistoryFlag
	Index int    `json:"index"`
	Zone  string `json:"zone"`
}

// DuplicateAction clones a node (and its zones) right after the original.
type DuplicateAction struct {
	HistoryFlag
	SourceIndex int    `json:"sourceIndex"`
	SourceZone  string `json:"sourceZone"`
}

// RegisterZoneAction ensures a zone exists, restoring cached contents.
type RegisterZoneAction struct {
	HistoryFlag
	Zone string `json:"zone"`
}

// UnregisterZoneAction evicts a zone into the zone cache.
type UnregisterZoneAction struct {
	HistoryFlag
	Zone string `json:"zone"`
}

// DocumentPatch is a partial Document. Nil fields are left untouched.
type DocumentPatch struct {
	Content []Node            `json:"content,omitempty"`
	Zones   map[string][]Node `json:"zones,omitempty"`
	Root    *RootData         `json:"root,omitempty"`
}

// SetDataAction merges a partial Document. Fn, when set, computes the
// patch from the current Document and takes precedence over Data.
type SetDataAction struct {
	HistoryFlag
	Data DocumentPatch                `json:"data"`
	Fn   func(Document) DocumentPatch `json:"-"`
}

// LoadLayoutAction bulk-loads a layout. With Destination set the content is
// spliced into the root at that index, otherwise Content and Zones replace
// the document's.
type LoadLayoutAction struct {
	HistoryFlag
	Content     []Node            `json:"content"`
	Zones       map[string][]Node `json:"zones,omitempty"`
	Destination *int              `json:"destination,omitempty"`
}

// UpdateAction shallow-merges props into the node with the given id.
type UpdateAction struct {
	HistoryFlag
	ID    string `json:"id"`
	Props Props  `json:"props"`
}

// StatePatch is a partial State: Data replaces, UI shallow-merges.
type StatePatch struct {
	Data *Document `json:"data,omitempty"`
	UI   UIState   `json:"ui,omitempty"`
}

// SetAction merges a partial State.
type SetAction struct {
	HistoryFlag
	State StatePatch             `json:"state"`
	Fn    func(State) StatePatch `json:"-"`
}

// SetUIAction shallow-merges UI state.
type SetUIAction struct {
	HistoryFlag
	UI UIState               `json:"ui"`
	Fn func(UIState) UIState `json:"-"`
}

func (InsertAction) ActionType() string         { return ActionInsert }
func (MoveAction) ActionType() string           { return ActionMove }
func (ReorderAction) ActionType() string        { return ActionReorder }
func (ReplaceAction) ActionType() string        { return ActionReplace }
func (RemoveAction) ActionType() string         { return ActionRemove }
func (DuplicateAction) ActionType() string      { return ActionDuplicate }
func (RegisterZoneAction) ActionType() string   { return ActionRegisterZone }
func (UnregisterZoneAction) ActionType() string { return ActionUnregisterZone }
func (SetDataAction) ActionType() string        { return ActionSetData }
func (LoadLayoutAction) ActionType() string     { return ActionLoadLayout }
func (UpdateAction) ActionType() string         { return ActionUpdate }
func (SetAction) ActionType() string            { return ActionSet }
func (SetUIAction) ActionType() string          { return ActionSetUI }

func (InsertAction) action()         {}
func (MoveAction) action()           {}
func (ReorderAction) action()        {}
func (ReplaceAction) action()        {}
func (RemoveAction) action()         {}
func (DuplicateAction) action()      {}
func (RegisterZoneAction) action()   {}
func (UnregisterZoneAction) action() {}
func (SetDataAction) action()        {}
func (LoadLayoutAction) action()     {}
func (UpdateAction) action()         {}
func (SetAction) action()            {}
func (SetUIAction) action()          {}
