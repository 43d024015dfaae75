package agent

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	ai "github.com/spetersoncode/steward"
	"github.com/spetersoncode/steward/content"
	"github.com/spetersoncode/steward/event"
	"github.com/spetersoncode/steward/pad"
	"github.com/spetersoncode/steward/router"
)

const (
	routerIcon        = "router"
	thinkingRationale = "Thinking about what to do next..."
	directRationale   = "Explicitly calling tool based on heuristics."
)

// StreamStep asks the router model for the next step and carries it out.
//
// A non-nil tools replaces the context's tool set and resets usage
// counters. The returned step is a DefaultStep when the router picks no
// tool, an ErrorStep when the router call fails, and otherwise the
// ToolCallStep with the tool's return value. Errors are fatal: an
// unknown tool id, a routed tool that is unavailable, a failing tool
// handler or a cancelled turn.
func (c *Context) StreamStep(ctx context.Context, tools []ai.ToolID) (ai.Step, error) {
	candidates := c.pads.WithInstruction()

	if tools != nil {
		set := make(map[string]*Tool, len(tools))
		for _, id := range tools {
			t, err := c.registry.Require(id)
			if err != nil {
				return nil, err
			}
			set[t.Name()] = t
		}
		c.tools = set
		c.uses = make(map[string]int)
	}

	available := c.AvailableTools()
	defs := make([]router.Definition, 0, len(available))
	for _, name := range slices.Sorted(maps.Keys(available)) {
		defs = append(defs, available[name].Definition())
	}
	systemPrompt := router.Prompt(defs, candidates)

	placeholder := c.tree.Root().NewChild()
	step := &ai.ToolCallStep{
		ToolID: ai.RouterToolID,
		Args: map[string]any{
			"pads":            candidates,
			"available_tools": slices.Sorted(maps.Keys(available)),
		},
		Rationale: thinkingRationale,
	}
	placeholder.SetStep(step)
	placeholder.SetTag(content.RenderTag{ToolID: ai.RouterToolID, Icon: routerIcon})
	if err := c.emit(event.Event{Type: event.StepAttached, NodeID: placeholder.ID(), Step: step}); err != nil {
		return nil, err
	}

	var reply strings.Builder
	for chunk, err := range c.StreamChunks(ctx, ChunkRequest{
		Slot:             ai.SlotRouter,
		SystemPrompt:     systemPrompt,
		SkipObserveFiles: true,
	}) {
		if err != nil {
			return nil, err
		}
		if chunk.IsError() {
			if err := c.AppendChunk(c.tree.Root(), chunk); err != nil {
				return nil, err
			}
			return &ai.ErrorStep{Message: chunk.Message}, nil
		}
		reply.WriteString(chunk.Text)
	}
	c.logger.Debug("router reply", "system_prompt", systemPrompt, "input", c.input, "reply", reply.String())

	decision := router.Parse(reply.String())
	selected, invalid := decision.SelectPads(candidates)
	if len(invalid) > 0 {
		c.logger.Warn("router selected unknown pads", "pad_ids", invalid)
	}

	titles := make([]string, len(selected))
	for i, p := range selected {
		titles[i] = p.Title
		c.AddPadIDs(p.ID)
	}
	step.Rationale = fmt.Sprintf("Selected pads: %s, using tool: %s because of %s",
		strings.Join(titles, ", "), orNone(decision.Tool), orNone(decision.Rationale))
	logSelected(c, selected)

	if decision.NoTool() {
		return ai.DefaultStep{}, nil
	}

	tool, ok := c.tools[decision.Tool]
	if !ok {
		return nil, fmt.Errorf("%w: router picked %q", ErrToolNotFound, decision.Tool)
	}
	routed := &ai.ToolCallStep{
		ToolID:    tool.ID,
		Args:      argsFromRouter(decision.Args),
		Rationale: decision.Rationale,
	}
	ret, err := c.dispatch(ctx, tool, routed, true)
	if err != nil {
		return nil, err
	}
	routed.ReturnValue = ret
	return routed, nil
}

// CallTool runs a registered tool directly, bypassing the router and the
// tool's use limit. The call still counts as a use.
func (c *Context) CallTool(ctx context.Context, id ai.ToolID, args Args) (any, error) {
	tool, err := c.registry.Require(id)
	if err != nil {
		return nil, err
	}
	step := &ai.ToolCallStep{ToolID: id, Args: args, Rationale: directRationale}
	ret, err := c.dispatch(ctx, tool, step, false)
	if err != nil {
		return nil, err
	}
	step.ReturnValue = ret
	return ret, nil
}

func (c *Context) dispatch(ctx context.Context, tool *Tool, step *ai.ToolCallStep, checkAvailable bool) (any, error) {
	node := c.tree.Root().NewChild()
	if err := c.emit(event.Event{Type: event.NodeAdded, NodeID: node.ID(), ToolID: tool.ID}); err != nil {
		return nil, err
	}

	name := tool.Name()
	if checkAvailable {
		if _, ok := c.AvailableTools()[name]; !ok {
			return nil, fmt.Errorf("%w: tool %s is not available or already used", ErrToolUnavailable, name)
		}
	}
	c.Observe("OK, I'm using this tool: "+name, nil)
	c.uses[name]++

	node.SetStep(step)
	if err := c.emit(event.Event{Type: event.StepAttached, NodeID: node.ID(), Step: step, ToolID: tool.ID}); err != nil {
		return nil, err
	}

	ret, err := c.runHandler(ctx, tool, node, Args(step.Args))
	if err != nil {
		return nil, err
	}

	c.Observe("OK I'm done using the tool: "+name, nil)
	msg := ""
	if ret != nil {
		msg = fmt.Sprintf("%+v", ret)
		c.Observe("Here is the result of using the tool:", nil)
		c.Observe(msg, nil)
	}
	if err := c.emit(event.Event{Type: event.ToolFinished, NodeID: node.ID(), ToolID: tool.ID, Message: msg}); err != nil {
		return nil, err
	}
	return ret, nil
}

func (c *Context) runHandler(ctx context.Context, tool *Tool, node *content.Node, args Args) (any, error) {
	if args == nil {
		args = Args{}
	}

	c.running = append(c.running, running{node: node, tool: tool})
	defer func() { c.running = c.running[:len(c.running)-1] }()

	ret, err := tool.Handler(ctx, c, node, args)
	if err != nil {
		return nil, fmt.Errorf("tool %s: %w", tool.ID, err)
	}
	return ret, nil
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "None"
	}
	return s
}

func logSelected(c *Context, pads []pad.Pad) {
	if len(pads) == 0 {
		return
	}
	ids := make([]string, len(pads))
	for i, p := range pads {
		ids[i] = p.ID
	}
	c.logger.Info("router selected pads", "pad_ids", ids)
}
