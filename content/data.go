package content

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNoData is returned by DataOf when the node carries no structured data.
var ErrNoData = errors.New("content: data is not set")

// SetData attaches a structured payload to the node, replacing any previous one.
func (n *Node) SetData(v any) {
	n.n().data = v
}

// Data returns the node's structured payload, or nil.
func (n *Node) Data() any {
	return n.n().data
}

// DataOf returns the node's data as T. Data stored as a different type, such
// as a map decoded from JSON, is converted through its JSON form.
func DataOf[T any](n *Node) (T, error) {
	var zero T
	d := n.Data()
	if d == nil {
		return zero, ErrNoData
	}
	if v, ok := d.(T); ok {
		return v, nil
	}
	if p, ok := d.(*T); ok && p != nil {
		return *p, nil
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return zero, fmt.Errorf("content: encode data: %w", err)
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, fmt.Errorf("content: data is not a %T: %w", zero, err)
	}
	return out, nil
}

func dataString(d any) string {
	if s, ok := d.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%+v", d)
}
