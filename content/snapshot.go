package content

import ai "github.com/spetersoncode/steward"

// Snapshot is a serializable copy of a subtree for renderers.
type Snapshot struct {
	ID       ID             `json:"id"`
	Text     string         `json:"text,omitempty"`
	Errors   []Error        `json:"errors,omitempty"`
	Data     any            `json:"data,omitempty"`
	StepKind ai.StepKind    `json:"stepKind,omitempty"`
	Step     ai.Step        `json:"step,omitempty"`
	Tag      *RenderTag     `json:"tag,omitempty"`
	Calls    []CallMetadata `json:"calls,omitempty"`
	Loading  bool           `json:"loading"`
	Children []Snapshot     `json:"children,omitempty"`
}

// Snapshot copies n and its descendants.
func (n *Node) Snapshot() Snapshot {
	s := Snapshot{
		ID:      n.id,
		Text:    n.DirectText(),
		Errors:  n.Errors(),
		Data:    n.Data(),
		Step:    n.Step(),
		Loading: n.IsLoading(),
	}
	if s.Step != nil {
		s.StepKind = s.Step.Kind()
	}
	if tag := n.Tag(); !tag.IsZero() {
		s.Tag = &tag
	}
	for _, c := range n.Calls() {
		s.Calls = append(s.Calls, *c)
	}
	for _, child := range n.Children() {
		s.Children = append(s.Children, child.Snapshot())
	}
	return s
}
