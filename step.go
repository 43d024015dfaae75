package steward

// ToolID is the stable identity of a tool.
type ToolID struct {
	Package string `json:"package"`
	Name    string `json:"name"`
}

// String returns package/name.
func (id ToolID) String() string {
	return id.Package + "/" + id.Name
}

// IsZero reports whether the id is unset.
func (id ToolID) IsZero() bool {
	return id.Package == "" && id.Name == ""
}

// RouterToolID tags the placeholder node that shows a routing decision in progress.
var RouterToolID = ToolID{Package: "steward", Name: "__router__"}

// StepKind discriminates the Step union.
type StepKind string

const (
	StepToolCall StepKind = "tool_call"
	StepDefault  StepKind = "default"
	StepError    StepKind = "error"
)

// Step is the outcome of one routing decision.
// It is one of *ToolCallStep, DefaultStep or *ErrorStep.
type Step interface {
	Kind() StepKind
	isStep()
}

// ToolCallStep records a tool invocation.
type ToolCallStep struct {
	ToolID      ToolID         `json:"toolId"`
	Args        map[string]any `json:"args,omitempty"`
	Rationale   string         `json:"rationale,omitempty"`
	ReturnValue any            `json:"returnValue,omitempty"`
}

// DefaultStep means no tool was chosen; the caller answers directly.
type DefaultStep struct{}

// ErrorStep ends a step loop because the router model failed.
type ErrorStep struct {
	Message string `json:"message"`
}

func (*ToolCallStep) Kind() StepKind { return StepToolCall }
func (DefaultStep) Kind() StepKind   { return StepDefault }
func (*ErrorStep) Kind() StepKind    { return StepError }

func (*ToolCallStep) isStep() {}
func (DefaultStep) isStep()   {}
func (*ErrorStep) isStep()    {}
