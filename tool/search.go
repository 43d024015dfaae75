package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"

	ai "github.com/spetersoncode/steward"
	"github.com/spetersoncode/steward/agent"
	"github.com/spetersoncode/steward/content"
	"github.com/spetersoncode/steward/workspace"
)

// SearchStage is one narrowing pass of a codebase search.
type SearchStage struct {
	Title     string   `json:"title"`
	FilePaths []string `json:"file_paths"`
}

// CodeSearchResult is the data search_codebase keeps on its node.
type CodeSearchResult struct {
	Stages   []SearchStage `json:"stages"`
	Complete bool          `json:"is_complete"`
}

// RelevantFiles is the structured reply search_codebase asks the router
// model for.
type RelevantFiles struct {
	FilePaths []string `json:"file_paths" jsonschema:"description=Workspace-relative paths of the files relevant to the user query"`
}

const searchInstructions = `The search_codebase tool searches the user's codebase for the files, functions and snippets relevant to a natural language query.

Use the tool when:
- understanding how a feature of the codebase is implemented or where it lives
- diagnosing a bug or unexpected behavior in the codebase
- looking for examples or patterns to follow in the codebase
- asked to find specific files, types or functions

Do NOT use the tool for general programming questions unrelated to the codebase, or for non-code requests.

Be specific in the query and use the codebase's own terminology.`

// NewSearchCodebase creates the search_codebase tool. It shortlists up to
// limit files lexically, lets the router model pick the relevant ones and
// observes those.
func NewSearchCodebase(limit int) *agent.Tool {
	return agent.NewTool(Package, SearchCodebase.Name,
		func(ctx context.Context, ac *agent.Context, out *content.Node, args agent.Args) (any, error) {
			return searchCodebase(ctx, ac, out, args.String("query"), limit)
		},
		agent.WithDescription("Searching codebase"),
		agent.WithIcon("search"),
		agent.WithParam("query", "string"),
		agent.WithInstructions(searchInstructions),
	)
}

func searchCodebase(ctx context.Context, ac *agent.Context, out *content.Node, query string, limit int) (any, error) {
	result := &CodeSearchResult{}
	out.SetData(result)

	var matches []workspace.Match
	ws := ac.Workspace()
	if ws == nil {
		if err := ac.AppendChunk(out, ai.TextChunk("Error performing code search: no workspace is open")); err != nil {
			return nil, err
		}
	} else {
		var err error
		matches, err = workspace.NewSearcher(ws, workspace.WithMaxResults(limit)).Search(ctx, query)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			ac.Logger().Warn("code search failed", "query", query, "error", err)
			if err := ac.AppendChunk(out, ai.TextChunk("Error performing code search: "+err.Error())); err != nil {
				return nil, err
			}
		}
	}
	shortlist := make([]string, len(matches))
	for i, m := range matches {
		shortlist[i] = m.Path
	}
	result.Stages = append(result.Stages, SearchStage{Title: "Lexically similar files", FilePaths: shortlist})
	if err := ac.Update(out); err != nil {
		return nil, err
	}

	result.Stages = append(result.Stages, SearchStage{Title: "LLM filtered files"})
	filtered := &result.Stages[len(result.Stages)-1]
	var relevant RelevantFiles
	for v, err := range agent.StreamStructured[RelevantFiles](ctx, ac, agent.StructuredRequest{
		Input: relevanceInput(ac.Input(), matches),
	}) {
		if err != nil {
			var me *ai.ModelError
			if !errors.As(err, &me) {
				return nil, err
			}
			ac.Logger().Warn("relevance filtering failed", "error", err)
			if err := ac.AppendChunk(out, ai.ErrorChunk(err.Error())); err != nil {
				return nil, err
			}
			break
		}
		relevant = v
		filtered.FilePaths = v.FilePaths
		if err := ac.Update(out); err != nil {
			return nil, err
		}
	}

	ac.ObserveFilePaths(relevant.FilePaths...)
	var b strings.Builder
	b.WriteString("\n\nThese are relevant files from the codebase:\n")
	for _, p := range shortlist {
		fmt.Fprintf(&b, "- %s\n", p)
	}
	ac.Observe(b.String(), nil)

	result.Complete = true
	if err := ac.Update(out); err != nil {
		return nil, err
	}
	return relevant.FilePaths, nil
}

func relevanceInput(input string, matches []workspace.Match) string {
	var files strings.Builder
	for _, m := range matches {
		fmt.Fprintf(&files, "<file path=\"%s\">\n%s\n</file>\n", m.Path, strings.Join(m.Lines, "\n"))
	}
	return fmt.Sprintf(`
Based on the following user input:
<input>
%s
</input>

Tell me which of the following files are relevant to the user query:
<files>
%s</files>

Return me the list of file paths that are relevant to the user query.
`, input, files.String())
}
