package agent

import (
	"context"

	ai "github.com/spetersoncode/steward"
	"github.com/spetersoncode/steward/content"
	"github.com/spetersoncode/steward/router"
)

// DefaultToolIcon is used for tools registered without an icon.
const DefaultToolIcon = "handyman"

// ToolHandler runs a tool. It writes its output into out, reporting each
// update through the context (AppendChunk, Update, or the streaming helpers)
// so the driver can render progress. The returned value becomes the step's
// return value. Errors are not recovered by the context; they end the turn.
type ToolHandler func(ctx context.Context, ac *Context, out *content.Node, args Args) (any, error)

// Param is a declared tool parameter.
type Param struct {
	Name string
	Type string
}

// Tool describes a callable tool. Tools are immutable once built; usage
// counts live on the Context.
type Tool struct {
	ID           ai.ToolID
	Description  string
	Icon         string
	Render       string
	MaxUses      int
	IsAvailable  func() bool
	Params       []Param
	Instructions string
	Handler      ToolHandler
}

// ToolOption configures a Tool.
type ToolOption func(*Tool)

// WithDescription sets the short description shown while the tool runs.
func WithDescription(d string) ToolOption {
	return func(t *Tool) { t.Description = d }
}

// WithIcon sets the icon renderers show for the tool's output.
func WithIcon(icon string) ToolOption {
	return func(t *Tool) { t.Icon = icon }
}

// WithRender names the component renderers use for the tool's output.
// Empty means the renderer's default for the icon.
func WithRender(render string) ToolOption {
	return func(t *Tool) { t.Render = render }
}

// WithMaxUses sets how many times the router may pick the tool in one
// context. Values below 1 mean 1.
func WithMaxUses(n int) ToolOption {
	return func(t *Tool) { t.MaxUses = n }
}

// WithAvailability sets a predicate that hides the tool from the router
// while it returns false.
func WithAvailability(fn func() bool) ToolOption {
	return func(t *Tool) { t.IsAvailable = fn }
}

// WithParam declares a parameter. Parameters are listed to the router in
// declaration order.
func WithParam(name, typ string) ToolOption {
	return func(t *Tool) { t.Params = append(t.Params, Param{Name: name, Type: typ}) }
}

// WithInstructions sets the text the router reads to decide when to use the tool.
func WithInstructions(s string) ToolOption {
	return func(t *Tool) { t.Instructions = s }
}

// NewTool builds a tool identified by pkg and name.
func NewTool(pkg, name string, handler ToolHandler, opts ...ToolOption) *Tool {
	t := &Tool{
		ID:      ai.ToolID{Package: pkg, Name: name},
		Icon:    DefaultToolIcon,
		MaxUses: 1,
		Handler: handler,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.MaxUses < 1 {
		t.MaxUses = 1
	}
	return t
}

// Name returns the tool's name within its package.
func (t *Tool) Name() string {
	return t.ID.Name
}

// Available reports whether the tool's availability predicate passes.
func (t *Tool) Available() bool {
	return t.IsAvailable == nil || t.IsAvailable()
}

// Definition returns the tool as listed in the router prompt.
func (t *Tool) Definition() router.Definition {
	params := make([]router.Param, len(t.Params))
	for i, p := range t.Params {
		params[i] = router.Param{Name: p.Name, Type: p.Type}
	}
	return router.Definition{Name: t.ID.Name, Params: params, Instructions: t.Instructions}
}
