package content

import (
	"slices"
	"strings"

	ai "github.com/spetersoncode/steward"
)

// ID is the stable handle of a node within its tree.
type ID int

const noParent ID = -1

// Tree owns every node of one turn's output.
type Tree struct {
	nodes    []*node
	nextRank uint64
}

type node struct {
	id       ID
	parent   ID
	rank     uint64
	children []ID
	last     ID

	parts  []string
	errors []Error
	data   any
	step   ai.Step
	tag    RenderTag
	calls  []*CallMetadata
	loaded bool
}

// NewTree creates a tree with an empty root node.
func NewTree() *Tree {
	t := &Tree{}
	t.alloc()
	return t
}

func (t *Tree) alloc() *node {
	n := &node{id: ID(len(t.nodes)), parent: noParent, last: noParent}
	t.nodes = append(t.nodes, n)
	return n
}

func (t *Tree) rank() uint64 {
	t.nextRank++
	return t.nextRank
}

// Root returns the root node.
func (t *Tree) Root() *Node {
	return &Node{tree: t, id: 0}
}

// NewNode allocates a detached node. Attach it with AddChild.
func (t *Tree) NewNode() *Node {
	n := t.alloc()
	return &Node{tree: t, id: n.id}
}

// Node returns the handle for id, or nil when id is not part of the tree.
func (t *Tree) Node(id ID) *Node {
	if id < 0 || int(id) >= len(t.nodes) {
		return nil
	}
	return &Node{tree: t, id: id}
}

// Len returns the number of allocated nodes, attached or not.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Node is a handle to one node of a Tree. Handles are cheap values; two
// handles with the same tree and ID refer to the same node.
type Node struct {
	tree *Tree
	id   ID
}

func (n *Node) n() *node {
	return n.tree.nodes[n.id]
}

// ID returns the node's stable handle.
func (n *Node) ID() ID { return n.id }

// Tree returns the tree the node belongs to.
func (n *Node) Tree() *Tree { return n.tree }

// Parent returns the parent node, or nil for the root and detached nodes.
func (n *Node) Parent() *Node {
	p := n.n().parent
	if p == noParent {
		return nil
	}
	return n.tree.Node(p)
}

// AddChild attaches child as the last child of n. A child that already has a
// parent is left where it is and moved to last position.
func (n *Node) AddChild(child *Node) {
	if child.tree != n.tree {
		panic("content: child belongs to a different tree")
	}
	c := child.n()
	if c.parent == noParent && child.id != 0 {
		c.parent = n.id
		n.n().children = append(n.n().children, child.id)
	}
	child.PromoteToLast()
}

// NewChild allocates a node and attaches it as the last child of n.
func (n *Node) NewChild() *Node {
	child := n.tree.NewNode()
	n.AddChild(child)
	return child
}

// PromoteToLast moves n to the end of its parent's child order.
// It is a no-op for the root.
func (n *Node) PromoteToLast() {
	c := n.n()
	if c.parent == noParent {
		return
	}
	c.rank = n.tree.rank()
	n.tree.nodes[c.parent].last = n.id
}

// Children returns the attached children of n in order.
func (n *Node) Children() []*Node {
	ids := slices.Clone(n.n().children)
	slices.SortFunc(ids, func(a, b ID) int {
		ra, rb := n.tree.nodes[a].rank, n.tree.nodes[b].rank
		switch {
		case ra < rb:
			return -1
		case ra > rb:
			return 1
		}
		return 0
	})
	out := make([]*Node, len(ids))
	for i, id := range ids {
		out[i] = &Node{tree: n.tree, id: id}
	}
	return out
}

// LastChild returns the last child of n, or nil when n has none.
func (n *Node) LastChild() *Node {
	last := n.n().last
	if last == noParent {
		return nil
	}
	return &Node{tree: n.tree, id: last}
}

// Deepest follows last children down from n and returns the final node.
func (n *Node) Deepest() *Node {
	cur := n
	for {
		next := cur.LastChild()
		if next == nil {
			return cur
		}
		cur = next
	}
}

// AppendChunk folds a model chunk into the node. Text extends the node's
// text, errors are recorded; completion metadata is ignored here because the
// agent context absorbs it into the node's call records.
func (n *Node) AppendChunk(c ai.Chunk) {
	node := n.n()
	switch c.Type {
	case ai.ChunkText:
		if len(node.parts) == 0 {
			node.parts = append(node.parts, c.Text)
		} else {
			node.parts[len(node.parts)-1] += c.Text
		}
	case ai.ChunkError:
		node.errors = append(node.errors, Error{Message: c.Message})
	}
}

// SetText replaces the node's own text.
func (n *Node) SetText(text string) {
	n.n().parts = []string{text}
}

// DirectText returns the node's own text, excluding children.
func (n *Node) DirectText() string {
	return strings.Join(n.n().parts, "")
}

// Text returns the node's text followed by its children's text, depth first.
// A node with no text anywhere below it falls back to its data's string form.
func (n *Node) Text() string {
	var b strings.Builder
	b.WriteString(n.DirectText())
	for _, child := range n.Children() {
		b.WriteString(child.Text())
	}
	if b.Len() > 0 {
		return b.String()
	}
	if d := n.n().data; d != nil {
		return dataString(d)
	}
	return ""
}

// Errors returns the errors recorded on the node.
func (n *Node) Errors() []Error {
	return slices.Clone(n.n().errors)
}

// AddError records an error on the node.
func (n *Node) AddError(message string) {
	node := n.n()
	node.errors = append(node.errors, Error{Message: message})
}

// Step returns the step classification of the node, or nil.
func (n *Node) Step() ai.Step {
	return n.n().step
}

// SetStep classifies the node.
func (n *Node) SetStep(s ai.Step) {
	n.n().step = s
}

// Tag returns the render tag of the node.
func (n *Node) Tag() RenderTag {
	return n.n().tag
}

// SetTag marks the node as rendered by a tool.
func (n *Node) SetTag(tag RenderTag) {
	n.n().tag = tag
}

// IsLoading reports whether the node has produced nothing yet: no children,
// no data, no errors and no text. Once a node stops loading it never loads
// again.
func (n *Node) IsLoading() bool {
	node := n.n()
	if node.loaded {
		return false
	}
	if len(node.children) > 0 || node.data != nil || len(node.errors) > 0 || n.Text() != "" {
		node.loaded = true
		return false
	}
	return true
}

// Error is a model failure recorded on a node.
type Error struct {
	Message string `json:"message"`
}

// RenderTag links a node to the tool that produced it.
type RenderTag struct {
	ToolID ai.ToolID `json:"toolId"`
	Icon   string    `json:"icon,omitempty"`
	Render string    `json:"render,omitempty"`
}

// IsZero reports whether the tag is unset.
func (r RenderTag) IsZero() bool {
	return r.ToolID.IsZero()
}
