package domain

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// ErrUnknownActionType is returned when an encoded action carries a type tag
// outside the action union.
var ErrUnknownActionType = errors.New("unknown action type")

// MarshalDocument encodes a document, emitting empty collections instead of null.
func MarshalDocument(doc Document) ([]byte, error) {
	return json.Marshal(Normalize(doc))
}

// UnmarshalDocument decodes a document and normalises missing collections.
func UnmarshalDocument(data []byte) (Document, error) {
	var doc Document
	if len(data) == 0 {
		return NewDocument(), nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("decode document: %w", err)
	}
	return Normalize(doc), nil
}

// Normalize fills nil Content, Zones, zone slices and root props with empty
// values so encoded documents never contain null collections.
func Normalize(doc Document) Document {
	if doc.Content == nil {
		doc.Content = []Node{}
	}
	zones := make(map[string][]Node, len(doc.Zones))
	for k, nodes := range doc.Zones {
		if nodes == nil {
			nodes = []Node{}
		}
		zones[k] = nodes
	}
	doc.Zones = zones
	if doc.Root.Props == nil {
		doc.Root.Props = Props{}
	}
	return doc
}

type actionEnvelope struct {
	Type string `json:"type"`
}

// DecodeAction decodes one JSON-encoded action, dispatching on its "type" tag.
// Function-valued fields (SetDataAction.Fn etc.) cannot be carried in JSON.
func DecodeAction(data []byte) (Action, error) {
	var env actionEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode action: %w", err)
	}

	var (
		a   Action
		err error
	)
	switch env.Type {
	case ActionInsert:
		a, err = decodeAs[InsertAction](data)
	case ActionMove:
		a, err = decodeAs[MoveAction](data)
	case ActionReorder:
		a, err = decodeAs[ReorderAction](data)
	case ActionReplace:
		a, err = decodeAs[ReplaceAction](data)
	case ActionRemove:
		a, err = decodeAs[RemoveAction](data)
	case ActionDuplicate:
		a, err = decodeAs[DuplicateAction](data)
	case ActionRegisterZone:
		a, err = decodeAs[RegisterZoneAction](data)
	case ActionUnregisterZone:
		a, err = decodeAs[UnregisterZoneAction](data)
	case ActionSetData:
		a, err = decodeAs[SetDataAction](data)
	case ActionLoadLayout:
		a, err = decodeAs[LoadLayoutAction](data)
	case ActionUpdate:
		a, err = decodeAs[UpdateAction](data)
	case ActionSet:
		a, err = decodeAs[SetAction](data)
	case ActionSetUI:
		a, err = decodeAs[SetUIAction](data)
	default:
		return nil, fmt.Errorf("decode action: %w: %q", ErrUnknownActionType, env.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s action: %w", env.Type, err)
	}
	return a, nil
}

func decodeAs[T Action](data []byte) (Action, error) {
	var a T
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, err
	}
	return a, nil
}

// EncodeAction encodes an action with its "type" tag.
func EncodeAction(a Action) ([]byte, error) {
	body, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("encode action: %w", err)
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("encode action: %w", err)
	}
	tag, _ := json.Marshal(a.ActionType())
	fields["type"] = tag
	return json.Marshal(fields)
}
