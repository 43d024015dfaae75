package tool

import (
	"context"
	"strings"

	ai "github.com/spetersoncode/steward"
	"github.com/spetersoncode/steward/agent"
	"github.com/spetersoncode/steward/content"
)

const editInstructions = `When to use:
- The user explicitly asks you to edit, modify, update, or change a specific file
- The user asks you to create a new file in their codebase
- The user asks you to implement a specific change in their project
- The user wants you to fix a bug in their existing code
- The user asks you to refactor their code

When NOT to use:
- The user asks a general programming question
- The user asks for code examples with no intention to add them to their codebase
- The user wants an explanation of a concept or pattern
- The user wants you to review their code without making changes

If in doubt, ask clarifying questions rather than using this tool prematurely.`

// NewEditCodebase creates the edit_codebase tool. A query starting with
// #file:<path> focuses the edit on that file.
func NewEditCodebase() *agent.Tool {
	return agent.NewTool(Package, EditCodebase.Name,
		func(ctx context.Context, ac *agent.Context, out *content.Node, args agent.Args) (any, error) {
			query := args.String("query")
			if rest, ok := strings.CutPrefix(query, "#file:"); ok {
				if fields := strings.Fields(rest); len(fields) > 0 {
					ac.Observe("I want you to focus on editing the following file: "+fields[0], nil)
					ac.ObserveFilePaths(fields[0])
				}
			}
			return nil, ac.StreamInto(ctx, out, agent.ChunkRequest{
				Slot:         ai.SlotEditor,
				SystemPrompt: ac.DefaultSystemPrompt(),
			})
		},
		agent.WithDescription("Editing codebase"),
		agent.WithIcon("edit"),
		agent.WithParam("query", "string"),
		agent.WithInstructions(editInstructions),
	)
}

// NewGeneralExpert creates the general_expert tool, which answers a
// software engineering question on its own.
func NewGeneralExpert() *agent.Tool {
	return agent.NewTool(Package, GeneralExpert.Name,
		func(ctx context.Context, ac *agent.Context, out *content.Node, args agent.Args) (any, error) {
			return nil, ac.StreamInto(ctx, out, agent.ChunkRequest{
				Input:        args.String("question"),
				SystemPrompt: ac.DefaultSystemPrompt(),
			})
		},
		agent.WithDescription("General software engineering expert"),
		agent.WithIcon("psychology"),
		agent.WithParam("question", "string"),
		agent.WithInstructions("Ask a general software engineering question that does not depend on the user's codebase."),
	)
}
