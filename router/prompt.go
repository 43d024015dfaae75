package router

import (
	"fmt"
	"strings"

	"github.com/spetersoncode/steward/pad"
)

// Param is one declared tool parameter as listed to the router.
type Param struct {
	Name string
	Type string
}

// Definition is a tool as the router sees it.
type Definition struct {
	Name         string
	Params       []Param
	Instructions string
}

// Prompt renders the router system prompt for the available tools and the
// candidate pads. Pads are listed by their index in pads; the router answers
// with those indices.
func Prompt(tools []Definition, pads []pad.Pad) string {
	lines := make([]string, 0, len(tools))
	for _, t := range tools {
		lines = append(lines, toolLine(t))
	}
	prompt := fmt.Sprintf(toolUsePrompt, strings.Join(lines, "\n"))
	if len(pads) > 0 {
		prompt += padsPrompt(pads)
	}
	return prompt
}

func toolLine(t Definition) string {
	var params string
	if len(t.Params) > 0 {
		parts := make([]string, len(t.Params))
		for i, p := range t.Params {
			parts[i] = p.Name + ": " + p.Type
		}
		params = " (Parameters: " + strings.Join(parts, ", ") + ")"
	}
	return `- <tool-definition name="` + t.Name + `">` + params + ": " + t.Instructions + "</tool-definition>"
}

func padsPrompt(pads []pad.Pad) string {
	lines := make([]string, len(pads))
	for i, p := range pads {
		var criteria string
		if p.Criteria != nil {
			criteria = p.Criteria.String()
		}
		lines[i] = fmt.Sprintf(`- <pad id="%d">Selection criteria: %s</pad>`, i, criteria)
	}
	return fmt.Sprintf(padSelectionPrompt, strings.Join(lines, "\n"))
}

const toolUsePrompt = `
Determine whether or not additional tools are needed to answer the user's query.
                                 
These are the tools:

%s

Do NOT use a tool unless you need it. If the user is asking a generic question and is NOT looking

If a user has *already* used a tool, then you do not need to use it again unless it's REALLY necessary.

Return it in the following format:

<rationale>$rationale</rationale>                                 
<tool>$tool_name</tool>
<args>
    <arg name="param_name1">value1</arg>
    <arg name="param_name2">value2</arg>
</args>

Each parameter should be provided as an arg tag with a name attribute.

---

<example>
<input>Tell me a haiku</input>

<output>
<rationale>I do not need to use any tools</rationale>                                 
</output>
</example>

---

<example>
<input>tell me a joke</input>
<output>
<rationale>user wants a joke</rationale>                                 
<tool>joke_generator</tool>
<args>
    <arg name="query">main.py</arg>
</args>
</output>
</example>
`

const padSelectionPrompt = `
You will also need to tell me which pads, if any, should be used to answer the query.

Do not use any pads unless you need them.

Here are the pads that can be used to answer the query:

%s

Expected output:

<pad-id>1</pad-id>
<pad-id>2</pad-id>

If no pads are needed, then do not return any pad-ids.
`
