package router

import (
	"strconv"
	"strings"

	"github.com/spetersoncode/steward/pad"
)

// FailedRationale is reported when a reply contains none of the expected tags.
const FailedRationale = "Failed to parse response"

// Decision is the router's parsed reply.
type Decision struct {
	Rationale string
	// Tool is the tool name as written by the router. See NoTool.
	Tool string
	// Args holds the arguments for Tool, values trimmed of surrounding space.
	Args map[string]string
	// PadIndices lists the pad indices in reply order.
	PadIndices []int
	// InvalidPads holds pad-id values that were not integers.
	InvalidPads []string
}

// NoTool reports whether the router chose to answer without a tool: the tool
// tag was missing, empty, or "none" in any case.
func (d Decision) NoTool() bool {
	t := strings.TrimSpace(d.Tool)
	return t == "" || strings.EqualFold(t, "none")
}

// SelectPads resolves the decision's pad indices against the candidates the
// prompt listed. Indices outside the candidate list are returned as invalid
// rather than selected.
func (d Decision) SelectPads(candidates []pad.Pad) (selected []pad.Pad, invalid []string) {
	invalid = append(invalid, d.InvalidPads...)
	for _, i := range d.PadIndices {
		if i < 0 || i >= len(candidates) {
			invalid = append(invalid, strconv.Itoa(i))
			continue
		}
		selected = append(selected, candidates[i])
	}
	return selected, invalid
}

// Parse reads a router reply. The tags may appear in any order and
// surrounding text is ignored; the first rationale, tool and args block are
// used and every pad-id is collected. A reply with no recognizable tag at all
// yields FailedRationale and no tool.
func Parse(reply string) Decision {
	var d Decision
	found := false

	if v, ok := between(reply, "<rationale>", "</rationale>"); ok {
		d.Rationale = v
		found = true
	}
	if v, ok := between(reply, "<tool>", "</tool>"); ok {
		d.Tool = strings.TrimSpace(v)
		found = true
	}

	rest := reply
	for {
		i := strings.Index(rest, "<pad-id>")
		if i < 0 {
			break
		}
		rest = rest[i+len("<pad-id>"):]
		j := strings.Index(rest, "</pad-id>")
		if j < 0 {
			break
		}
		raw := strings.TrimSpace(rest[:j])
		rest = rest[j+len("</pad-id>"):]
		found = true
		if n, err := strconv.Atoi(raw); err == nil {
			d.PadIndices = append(d.PadIndices, n)
		} else {
			d.InvalidPads = append(d.InvalidPads, raw)
		}
	}

	if block, ok := between(reply, "<args>", "</args>"); ok {
		found = true
		d.Args = parseArgs(block)
	}

	if !found {
		return Decision{Rationale: FailedRationale}
	}
	if d.NoTool() {
		d.Args = nil
	}
	return d
}

func parseArgs(block string) map[string]string {
	const open = `<arg name="`
	args := make(map[string]string)
	rest := block
	for {
		i := strings.Index(rest, open)
		if i < 0 {
			return args
		}
		rest = rest[i+len(open):]
		q := strings.IndexByte(rest, '"')
		if q <= 0 || !strings.HasPrefix(rest[q:], `">`) {
			continue
		}
		name := rest[:q]
		value := rest[q+2:]
		end := strings.Index(value, "</arg>")
		if end < 0 {
			return args
		}
		args[name] = strings.TrimSpace(value[:end])
		rest = value[end+len("</arg>"):]
	}
}

// between returns the text between the first open tag and the next close tag.
func between(s, open, close string) (string, bool) {
	i := strings.Index(s, open)
	if i < 0 {
		return "", false
	}
	s = s[i+len(open):]
	j := strings.Index(s, close)
	if j < 0 {
		return "", false
	}
	return s[:j], true
}
