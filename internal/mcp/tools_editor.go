package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"sitebuilder/internal/domain"
	"sitebuilder/internal/editor"
)

func (s *Server) registerEditorTools() {
	pageIDParam := mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)"))
	recordParam := mcp.WithBoolean("recordHistory", mcp.Description("Record an undo checkpoint (default true)"))

	// ── get_document ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("get_document",
		mcp.WithDescription("Get the current document of a page: root content, nested zones and root props"),
		pageIDParam,
	), s.handleGetDocument)

	// ── insert_component ───────────────────────────────
	s.mcp.AddTool(mcp.NewTool("insert_component",
		mcp.WithDescription("Insert a new component built from its registry defaults. Zone keys are \"root\" or \"<ownerId>:<zoneName>\"."),
		mcp.WithString("componentType", mcp.Description("Component type, see list_components"), mcp.Required()),
		mcp.WithString("zone", mcp.Description("Destination zone (default root)")),
		mcp.WithNumber("index", mcp.Description("Destination index (default: append)")),
		mcp.WithObject("props", mcp.Description("Props overriding the defaults (optional)")),
		pageIDParam, recordParam,
	), s.handleInsertComponent)

	// ── move_component ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("move_component",
		mcp.WithDescription("Move a component to another zone or position"),
		mcp.WithString("sourceZone", mcp.Description("Zone holding the component"), mcp.Required()),
		mcp.WithNumber("sourceIndex", mcp.Description("Index of the component in its zone"), mcp.Required()),
		mcp.WithString("destinationZone", mcp.Description("Target zone"), mcp.Required()),
		mcp.WithNumber("destinationIndex", mcp.Description("Index in the target zone"), mcp.Required()),
		pageIDParam, recordParam,
	), s.handleMoveComponent)

	// ── reorder_component ──────────────────────────────
	s.mcp.AddTool(mcp.NewTool("reorder_component",
		mcp.WithDescription("Move a component within its zone"),
		mcp.WithString("zone", mcp.Description("Zone holding the component"), mcp.Required()),
		mcp.WithNumber("sourceIndex", mcp.Description("Current index"), mcp.Required()),
		mcp.WithNumber("destinationIndex", mcp.Description("New index"), mcp.Required()),
		pageIDParam, recordParam,
	), s.handleReorderComponent)

	// ── duplicate_component ────────────────────────────
	s.mcp.AddTool(mcp.NewTool("duplicate_component",
		mcp.WithDescription("Duplicate a component, with everything nested inside it, right after the original"),
		mcp.WithString("zone", mcp.Description("Zone holding the component"), mcp.Required()),
		mcp.WithNumber("index", mcp.Description("Index of the component"), mcp.Required()),
		pageIDParam, recordParam,
	), s.handleDuplicateComponent)

	// ── remove_component (destructive) ─────────────────
	s.mcp.AddTool(mcp.NewTool("remove_component",
		mcp.WithDescription("🛑 DESTRUCTIVE: Remove a component and every zone nested inside it. Undo restores it."),
		mcp.WithString("zone", mcp.Description("Zone holding the component"), mcp.Required()),
		mcp.WithNumber("index", mcp.Description("Index of the component"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
		pageIDParam, recordParam,
	), s.handleRemoveComponent)

	// ── update_component ───────────────────────────────
	s.mcp.AddTool(mcp.NewTool("update_component",
		mcp.WithDescription("Merge props into the component with the given id. The id itself cannot change."),
		mcp.WithString("id", mcp.Description("Component id"), mcp.Required()),
		mcp.WithObject("props", mcp.Description("Props to merge"), mcp.Required()),
		pageIDParam, recordParam,
	), s.handleUpdateComponent)

	// ── replace_component ──────────────────────────────
	s.mcp.AddTool(mcp.NewTool("replace_component",
		mcp.WithDescription("Overwrite the component at a position with the given node {type, props}"),
		mcp.WithString("zone", mcp.Description("Zone holding the component"), mcp.Required()),
		mcp.WithNumber("index", mcp.Description("Index of the component"), mcp.Required()),
		mcp.WithObject("node", mcp.Description("Replacement node {type, props}"), mcp.Required()),
		pageIDParam, recordParam,
	), s.handleReplaceComponent)

	// ── load_layout ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("load_layout",
		mcp.WithDescription("Load a layout. With destination set its content is spliced into the root zone with fresh ids, otherwise it replaces the page's content and zones."),
		mcp.WithArray("content", mcp.Description("Root nodes [{type, props}, ...]"), mcp.Required()),
		mcp.WithObject("zones", mcp.Description("Nested zones keyed \"<ownerId>:<zoneName>\" (optional)")),
		mcp.WithNumber("destination", mcp.Description("Root index to splice at (optional)")),
		pageIDParam, recordParam,
	), s.handleLoadLayout)

	// ── dispatch_action ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("dispatch_action",
		mcp.WithDescription("Dispatch a raw editor action, e.g. {\"type\":\"registerZone\",\"zone\":\"Card-1:body\"}"),
		mcp.WithObject("action", mcp.Description("Action with its \"type\" tag"), mcp.Required()),
		pageIDParam,
	), s.handleDispatchAction)

	// ── undo / redo ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("undo",
		mcp.WithDescription("Undo the last recorded change on a page"),
		pageIDParam,
	), s.handleUndo)
	s.mcp.AddTool(mcp.NewTool("redo",
		mcp.WithDescription("Redo the last undone change on a page"),
		pageIDParam,
	), s.handleRedo)

	// ── save_page ──────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("save_page",
		mcp.WithDescription("Save the page's document"),
		pageIDParam,
	), s.handleSavePage)
}

// editResult is returned by every tool that changes a document.
type editResult struct {
	PageID   string          `json:"pageId"`
	Node     *domain.Node    `json:"node,omitempty"`
	Zones    []string        `json:"zones,omitempty"` // zones owned by Node
	Document domain.Document `json:"document"`
}

func nodeResult(pageID string, doc domain.Document, zone string, index int) editResult {
	res := editResult{PageID: pageID, Document: doc}
	if nodes, ok := doc.Zone(zone); ok && index >= 0 && index < len(nodes) {
		res.Node = &nodes[index]
		res.Zones = editor.RelatedZones(doc, res.Node.ID())
	}
	return res
}

func (s *Server) dispatch(ctx context.Context, pageID string, action domain.Action) (*mcp.CallToolResult, error) {
	doc, err := s.editor.Dispatch(ctx, pageID, action)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", action.ActionType(), err)
	}
	return jsonResult(editResult{PageID: pageID, Document: doc})
}

func historyFlag(req mcp.CallToolRequest) domain.HistoryFlag {
	return domain.HistoryFlag{RecordHistory: req.GetBool("recordHistory", true)}
}

// ── Handlers ───────────────────────────────────────────────

func (s *Server) handleGetDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := s.resolvePageID(req.GetArguments())
	if err != nil {
		return nil, err
	}
	state, err := s.sites.GetPageState(pageID)
	if err != nil {
		return nil, err
	}
	return jsonResult(state)
}

func (s *Server) handleInsertComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.insertComponent(ctx, req, req.GetString("componentType", ""))
}

func (s *Server) insertComponent(ctx context.Context, req mcp.CallToolRequest, componentType string) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	pageID, err := s.resolvePageID(args)
	if err != nil {
		return nil, err
	}
	if componentType == "" {
		return nil, fmt.Errorf("componentType is required")
	}
	zone := req.GetString("zone", domain.RootZone)

	var index int
	if _, ok := args["index"]; ok {
		if index, err = intArg(args, "index"); err != nil {
			return nil, err
		}
	} else {
		state, err := s.editor.Open(ctx, pageID)
		if err != nil {
			return nil, err
		}
		nodes, _ := state.Document.Zone(zone)
		index = len(nodes)
	}

	action := domain.InsertAction{
		HistoryFlag:      historyFlag(req),
		ComponentType:    componentType,
		DestinationIndex: index,
		DestinationZone:  zone,
	}
	if _, ok := args["props"]; ok {
		if err := decodeArg(args, "props", &action.Props); err != nil {
			return nil, err
		}
	}

	doc, err := s.editor.Dispatch(ctx, pageID, action)
	if err != nil {
		return nil, fmt.Errorf("insert: %w", err)
	}
	return jsonResult(nodeResult(pageID, doc, zone, index))
}

func (s *Server) handleMoveComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	pageID, err := s.resolvePageID(args)
	if err != nil {
		return nil, err
	}
	from, err := intArg(args, "sourceIndex")
	if err != nil {
		return nil, err
	}
	to, err := intArg(args, "destinationIndex")
	if err != nil {
		return nil, err
	}
	return s.dispatch(ctx, pageID, domain.MoveAction{
		HistoryFlag:      historyFlag(req),
		SourceIndex:      from,
		SourceZone:       req.GetString("sourceZone", ""),
		DestinationIndex: to,
		DestinationZone:  req.GetString("destinationZone", ""),
	})
}

func (s *Server) handleReorderComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	pageID, err := s.resolvePageID(args)
	if err != nil {
		return nil, err
	}
	from, err := intArg(args, "sourceIndex")
	if err != nil {
		return nil, err
	}
	to, err := intArg(args, "destinationIndex")
	if err != nil {
		return nil, err
	}
	return s.dispatch(ctx, pageID, domain.ReorderAction{
		HistoryFlag:      historyFlag(req),
		SourceIndex:      from,
		DestinationIndex: to,
		DestinationZone:  req.GetString("zone", ""),
	})
}

func (s *Server) handleDuplicateComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	pageID, err := s.resolvePageID(args)
	if err != nil {
		return nil, err
	}
	index, err := intArg(args, "index")
	if err != nil {
		return nil, err
	}
	zone := req.GetString("zone", "")
	doc, err := s.editor.Dispatch(ctx, pageID, domain.DuplicateAction{
		HistoryFlag: historyFlag(req),
		SourceIndex: index,
		SourceZone:  zone,
	})
	if err != nil {
		return nil, fmt.Errorf("duplicate: %w", err)
	}
	return jsonResult(nodeResult(pageID, doc, zone, index+1))
}

func (s *Server) handleRemoveComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	pageID, err := s.resolvePageID(args)
	if err != nil {
		return nil, err
	}
	index, err := intArg(args, "index")
	if err != nil {
		return nil, err
	}
	return s.dispatch(ctx, pageID, domain.RemoveAction{
		HistoryFlag: historyFlag(req),
		Index:       index,
		Zone:        req.GetString("zone", ""),
	})
}

func (s *Server) handleUpdateComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	pageID, err := s.resolvePageID(args)
	if err != nil {
		return nil, err
	}
	action := domain.UpdateAction{HistoryFlag: historyFlag(req), ID: req.GetString("id", "")}
	if action.ID == "" {
		return nil, fmt.Errorf("id is required")
	}
	if err := decodeArg(args, "props", &action.Props); err != nil {
		return nil, err
	}
	return s.dispatch(ctx, pageID, action)
}

func (s *Server) handleReplaceComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	pageID, err := s.resolvePageID(args)
	if err != nil {
		return nil, err
	}
	index, err := intArg(args, "index")
	if err != nil {
		return nil, err
	}
	action := domain.ReplaceAction{
		HistoryFlag:      historyFlag(req),
		DestinationIndex: index,
		DestinationZone:  req.GetString("zone", ""),
	}
	if err := decodeArg(args, "node", &action.Data); err != nil {
		return nil, err
	}
	return s.dispatch(ctx, pageID, action)
}

func (s *Server) handleLoadLayout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	pageID, err := s.resolvePageID(args)
	if err != nil {
		return nil, err
	}
	action := domain.LoadLayoutAction{HistoryFlag: historyFlag(req)}
	if err := decodeArg(args, "content", &action.Content); err != nil {
		return nil, err
	}
	if _, ok := args["zones"]; ok {
		if err := decodeArg(args, "zones", &action.Zones); err != nil {
			return nil, err
		}
	}
	if _, ok := args["destination"]; ok {
		dest, err := intArg(args, "destination")
		if err != nil {
			return nil, err
		}
		action.Destination = &dest
	}
	return s.dispatch(ctx, pageID, action)
}

func (s *Server) handleDispatchAction(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	pageID, err := s.resolvePageID(args)
	if err != nil {
		return nil, err
	}
	raw, err := rawArg(args, "action")
	if err != nil {
		return nil, err
	}
	action, err := domain.DecodeAction(raw)
	if err != nil {
		return nil, err
	}
	return s.dispatch(ctx, pageID, action)
}

func (s *Server) handleUndo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := s.resolvePageID(req.GetArguments())
	if err != nil {
		return nil, err
	}
	doc, err := s.editor.Undo(ctx, pageID)
	if err != nil {
		return nil, err
	}
	return jsonResult(editResult{PageID: pageID, Document: doc})
}

func (s *Server) handleRedo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := s.resolvePageID(req.GetArguments())
	if err != nil {
		return nil, err
	}
	doc, err := s.editor.Redo(ctx, pageID)
	if err != nil {
		return nil, err
	}
	return jsonResult(editResult{PageID: pageID, Document: doc})
}

func (s *Server) handleSavePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := s.resolvePageID(req.GetArguments())
	if err != nil {
		return nil, err
	}
	if err := s.editor.Save(ctx, pageID); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Page %s saved", pageID)), nil
}
