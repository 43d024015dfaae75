package agent

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"

	ai "github.com/spetersoncode/steward"
	"github.com/spetersoncode/steward/workspace"
)

// Hashtags recognized in user input.
const (
	HashtagCodebase    = "#codebase"
	HashtagCodebaseAll = "#codebase-all"
	HashtagFileTree    = "#filetree"
)

var (
	mentionPattern = regexp.MustCompile(`^\s*@([\w-]+)`)
	filePattern    = regexp.MustCompile(`#file:(\S+)`)
	dirPattern     = regexp.MustCompile(`#dir:(\S+)`)
	padPattern     = regexp.MustCompile(`#pad:(\S+)`)
)

// Input is a user's message broken into its references.
type Input struct {
	// Text is the message without the leading @mention.
	Text string
	// Mention is the @mentioned agent name, lower-cased, or "".
	Mention  string
	Files    []string
	Dirs     []string
	Pads     []string
	Hashtags []string
}

// ParseInput extracts the leading @mention, #file:, #dir: and #pad:
// references and the known hashtags from text. References stay in Text;
// tools such as edit_codebase read them from there.
func ParseInput(text string) Input {
	var in Input
	trimmed := strings.TrimSpace(text)
	if loc := mentionPattern.FindStringSubmatchIndex(trimmed); loc != nil {
		in.Mention = strings.ToLower(trimmed[loc[2]:loc[3]])
		trimmed = strings.TrimSpace(trimmed[:loc[0]] + trimmed[loc[1]:])
		text = trimmed
	}
	in.Text = text

	in.Files = submatches(filePattern, text)
	in.Dirs = submatches(dirPattern, text)
	in.Pads = submatches(padPattern, text)

	for _, tag := range []string{HashtagFileTree, HashtagCodebaseAll, HashtagCodebase} {
		if strings.Contains(text, tag) {
			in.Hashtags = append(in.Hashtags, tag)
		}
	}
	return in
}

func submatches(re *regexp.Regexp, s string) []string {
	var out []string
	for _, m := range re.FindAllStringSubmatch(s, -1) {
		out = append(out, m[1])
	}
	return out
}

// Session is what a conversation remembers between turns.
type Session struct {
	History []ai.Message `json:"history"`
	// PadIDs are pads pinned to the conversation; every turn selects them.
	PadIDs []string `json:"pad_ids,omitempty"`
	// UsedPadIDs are pads already rendered in an earlier turn.
	UsedPadIDs []string `json:"used_pad_ids,omitempty"`
	// ObservedFiles maps files shown in earlier turns to the content shown.
	ObservedFiles map[string]string `json:"observed_files,omitempty"`
}

// Advance returns the session after ac's turn, with the user's input and
// reply appended to the history.
func (s Session) Advance(ac *Context, reply string) Session {
	next := Session{
		History:       append(slices.Clone(s.History), ai.NewUserMessage(ac.Input()), ai.NewAssistantMessage(reply)),
		PadIDs:        slices.Clone(s.PadIDs),
		ObservedFiles: maps.Clone(s.ObservedFiles),
	}
	if next.ObservedFiles == nil {
		next.ObservedFiles = make(map[string]string)
	}
	maps.Copy(next.ObservedFiles, ac.ObservedFiles())

	used := make(map[string]struct{})
	addAll(used, s.UsedPadIDs)
	addAll(used, ac.PadIDs())
	next.UsedPadIDs = slices.Sorted(maps.Keys(used))
	return next
}

// Turn prepares a context from raw user input.
type Turn struct {
	Model     ai.LanguageModel
	Agents    *Agents
	Workspace *workspace.Reader
	Session   Session
	// CoreModel, when set, overrides the core slot's model.
	CoreModel string
	Options   []Option
}

// Start parses text, picks the agent it mentions (the default agent when
// it mentions none or an unknown one) and builds the turn's context.
//
// Files that changed since an earlier turn showed them are observed up
// front; #codebase-all adds every workspace file; #filetree is replaced by
// the workspace file tree.
func (t Turn) Start(text string) (*Context, *Agent, error) {
	in := ParseInput(text)

	agentName := DefaultAgentName
	if in.Mention != "" && t.Agents.Has(in.Mention) {
		agentName = in.Mention
	}
	ag, err := t.Agents.Get(agentName)
	if err != nil {
		return nil, nil, err
	}

	input := in.Text
	var files []string
	files = append(files, in.Files...)
	if t.Workspace != nil {
		if slices.Contains(in.Hashtags, HashtagFileTree) {
			tree, err := t.Workspace.FileTree()
			if err != nil {
				return nil, nil, fmt.Errorf("agent: file tree: %w", err)
			}
			input = strings.ReplaceAll(input, HashtagFileTree, "The following is the file tree structure:")
			input += "\n```\n" + tree + "\n```"
		}
		if len(in.Dirs) > 0 || slices.Contains(in.Hashtags, HashtagCodebaseAll) {
			all, err := t.Workspace.Files(".")
			if err != nil {
				return nil, nil, fmt.Errorf("agent: list files: %w", err)
			}
			for _, dir := range in.Dirs {
				for _, f := range all {
					if strings.HasPrefix(f, dir) {
						files = append(files, f)
					}
				}
			}
			if slices.Contains(in.Hashtags, HashtagCodebaseAll) {
				files = append(files, all...)
			}
		}
	}

	changed := t.changedFiles()

	opts := []Option{
		WithHistory(t.Session.History),
		WithHashtags(in.Hashtags...),
		WithUsedPadIDs(t.Session.UsedPadIDs...),
		WithPadIDs(t.Session.PadIDs...),
		WithPadIDs(in.Pads...),
		WithObservedFiles(changed),
	}
	if t.Workspace != nil {
		opts = append(opts, WithWorkspace(t.Workspace))
	}
	opts = append(opts, t.Options...)
	if t.CoreModel != "" {
		opts = append(opts, WithModels(map[ai.ModelSlot]string{ai.SlotCore: t.CoreModel}))
	}

	ac := New(t.Model, input, opts...)
	if len(changed) > 0 {
		ac.Observe("I have noticed the following files have changed: <changed-files>", nil)
		for _, path := range slices.Sorted(maps.Keys(changed)) {
			ac.Observe(FileBlock(path, changed[path]), nil)
		}
		ac.Observe("</changed-files>", nil)
	}
	ac.AddFilePaths(files...)
	return ac, ag, nil
}

func (t Turn) changedFiles() map[string]string {
	changed := make(map[string]string)
	if t.Workspace == nil {
		return changed
	}
	for path, before := range t.Session.ObservedFiles {
		now, err := t.Workspace.ReadFile(path)
		if err != nil {
			continue
		}
		if now != before {
			changed[path] = now
		}
	}
	return changed
}
