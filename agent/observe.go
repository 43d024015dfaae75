package agent

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spetersoncode/steward/pad"
)

const (
	filesHeader = "\n\nHere are some additional files for context (you don't necessarily need to edit these):\n"
	rulesHeader = "\n\n ATTENTION! Here are some additional rules and instructions for you to follow\n"
	rulesFooter = "END OF RULES\n\n"
)

var errNoWorkspace = errors.New("agent: no workspace configured")

// observeFiles shows the model every added file it has not seen yet, and
// selects the glob pads matching any added file.
func (c *Context) observeFiles() {
	paths := c.FilePaths()
	pending := slices.DeleteFunc(slices.Clone(paths), func(p string) bool {
		_, seen := c.observedFiles[p]
		return seen
	})
	if len(pending) == 0 {
		return
	}

	c.logger.Info("editing files with additional context", "files", paths)
	c.Observe(filesHeader, nil)

	for _, p := range c.pads.WithGlob() {
		if pad.Match(p.Criteria.Glob, paths) {
			c.AddPadIDs(p.ID)
		}
	}

	for _, path := range pending {
		body, err := c.readFile(path)
		if err != nil {
			c.logger.Debug("skipping unreadable file", "path", path, "error", err)
			continue
		}
		c.Observe(FileBlock(path, body), nil)
		c.observedFiles[path] = body
	}
}

func (c *Context) readFile(path string) (string, error) {
	if c.files == nil {
		return "", errNoWorkspace
	}
	return c.files.ReadFile(path)
}

// FileBlock renders a file the way observations show it to the model.
func FileBlock(path, body string) string {
	return fmt.Sprintf("\n```path=\"%s\"\n%s\n```\n", path, body)
}

// Prompt builds the model input: the observations so far, then every
// selected pad not yet rendered, then the user's input. Pads rendered
// here are not rendered again.
func (c *Context) Prompt() string {
	var b strings.Builder
	for i, o := range c.observations {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(o.Content)
	}
	if b.Len() > 0 {
		b.WriteString("\n\n")
	}

	var fresh []string
	for _, id := range slices.Sorted(maps.Keys(c.padIDs)) {
		if _, used := c.usedPadIDs[id]; !used {
			fresh = append(fresh, id)
		}
	}
	if len(fresh) > 0 {
		b.WriteString(rulesHeader)
	}
	for _, id := range fresh {
		c.usedPadIDs[id] = struct{}{}
		p, ok := c.pads.Get(id)
		if !ok {
			c.logger.Warn("selected pad not found", "pad_id", id)
			continue
		}
		fmt.Fprintf(&b, "<pad title=\"%s\">\n%s\n</pad>\n", p.Title, p.Content)
	}

	if b.Len() > 0 {
		b.WriteString(rulesFooter)
	}
	b.WriteString(c.input)
	return b.String()
}
