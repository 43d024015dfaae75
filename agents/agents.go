// Package agents provides the built-in agents a user can pick with an
// @mention: the default coding agent, web search, a reasoning model and a
// plain chat agent.
package agents

import (
	"context"
	"strings"

	ai "github.com/spetersoncode/steward"
	"github.com/spetersoncode/steward/agent"
	"github.com/spetersoncode/steward/tool"
)

// Agent names.
const (
	NameDefault  = agent.DefaultAgentName
	NameSearch   = "search"
	NameReasoner = "reasoner"
	NameVanilla  = "vanilla"
)

// RegisterAll registers every built-in agent. The tools they depend on must
// be registered in the tool registry the agents were created with.
func RegisterAll(r *agent.Agents) {
	r.Register(NameDefault, "Searches and edits the codebase", Default, tool.SearchCodebase, tool.EditCodebase)
	r.Register(NameSearch, "Searches the web", Search, tool.WebSearch)
	r.Register(NameReasoner, "Answers with the reasoning model", Reasoner)
	r.Register(NameVanilla, "Talks to the model directly, without tools", Vanilla)
}

// Default answers coding requests. Hashtags and attached files pick the
// path directly; otherwise the router decides between searching the
// codebase, editing it and answering.
func Default(ctx context.Context, ac *agent.Context) error {
	systemPrompt := ac.DefaultSystemPrompt()
	answer := func() error {
		return ac.StreamToContent(ctx, agent.ContentRequest{SystemPrompt: &systemPrompt})
	}
	edit := func() error {
		_, err := ac.CallTool(ctx, tool.EditCodebase, agent.Args{"query": ac.Input()})
		return err
	}

	switch {
	case ac.HasHashtag(agent.HashtagCodebaseAll):
		return answer()
	case ac.HasHashtag(agent.HashtagCodebase):
		query := strings.TrimSpace(strings.ReplaceAll(ac.Input(), agent.HashtagCodebase, ""))
		if _, err := ac.CallTool(ctx, tool.SearchCodebase, agent.Args{"query": query}); err != nil {
			return err
		}
		return edit()
	case len(ac.FilePaths()) > 0:
		return edit()
	case len(ac.History()) > 0:
		return answer()
	}

	tools := []ai.ToolID{tool.SearchCodebase, tool.EditCodebase}
	for {
		step, err := ac.StreamStep(ctx, tools)
		if err != nil {
			return err
		}

		switch s := step.(type) {
		case *ai.ErrorStep:
			return nil
		case ai.DefaultStep:
			return answer()
		case *ai.ToolCallStep:
			if s.ToolID == tool.SearchCodebase {
				return edit()
			}
			if s.ToolID == tool.EditCodebase {
				return nil
			}
		}
	}
}

// Search answers from the web. A web search ends the turn; when the
// router decides no search is needed the model answers directly.
func Search(ctx context.Context, ac *agent.Context) error {
	step, err := ac.StreamStep(ctx, []ai.ToolID{tool.WebSearch})
	if err != nil {
		return err
	}
	if _, ok := step.(ai.DefaultStep); ok {
		return ac.StreamToContent(ctx, agent.ContentRequest{})
	}
	return nil
}

// Reasoner answers with the reasoner slot's model.
func Reasoner(ctx context.Context, ac *agent.Context) error {
	systemPrompt := agent.CodeOutputRequirements
	return ac.StreamToContent(ctx, agent.ContentRequest{
		SystemPrompt: &systemPrompt,
		Slot:         ai.SlotReasoner,
	})
}

// Vanilla streams the model's answer with the default system prompt.
func Vanilla(ctx context.Context, ac *agent.Context) error {
	return ac.StreamToContent(ctx, agent.ContentRequest{})
}
