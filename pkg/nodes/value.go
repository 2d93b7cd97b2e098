package nodes

import (
	"errors"
	"fmt"
	"strings"

	"github.com/recera/nodeflow/pkg/graph"
)

// ErrUnknownType is returned for a value type outside the selector
var ErrUnknownType = errors.New("unknown value type")

// ValueType is the constant type selected on a value node
type ValueType string

const (
	TypeString     ValueType = "string"
	TypeInt        ValueType = "int"
	TypeFloat      ValueType = "float"
	TypeBool       ValueType = "bool"
	TypeListString ValueType = "list_string"
	TypeListInt    ValueType = "list_int"
	TypeListFloat  ValueType = "list_float"
)

// ValueTypes lists the selector options in display order
var ValueTypes = []ValueType{
	TypeString,
	TypeInt,
	TypeFloat,
	TypeBool,
	TypeListString,
	TypeListInt,
	TypeListFloat,
}

// ParseValueType validates a selector value
func ParseValueType(s string) (ValueType, error) {
	for _, t := range ValueTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("value type %q: %w", s, ErrUnknownType)
}

// Label is the human name shown in the selector
func (t ValueType) Label() string {
	switch t {
	case TypeString:
		return "String"
	case TypeInt:
		return "Integer"
	case TypeFloat:
		return "Float"
	case TypeBool:
		return "Boolean"
	case TypeListString:
		return "List<String>"
	case TypeListInt:
		return "List<Integer>"
	case TypeListFloat:
		return "List<Float>"
	}
	return string(t)
}

// IsList reports whether the type is one of the list variants
func (t ValueType) IsList() bool {
	return strings.HasPrefix(string(t), "list_")
}

// Widget is the input control a value node shows for its type
type Widget int

const (
	WidgetText Widget = iota
	WidgetToggle
)

func (w Widget) String() string {
	if w == WidgetToggle {
		return "toggle"
	}
	return "text"
}

// Widget returns the control for t: a toggle for bool, free text otherwise
func (t ValueType) Widget() Widget {
	if t == TypeBool {
		return WidgetToggle
	}
	return WidgetText
}

// Placeholder is the hint shown in the empty text widget
func (t ValueType) Placeholder() string {
	switch {
	case t.IsList():
		return "a,b,c"
	case t == TypeInt:
		return "123"
	case t == TypeFloat:
		return "3.14"
	}
	return "value"
}

// ValueData is the payload of a value node. Text and Bool are both kept so
// switching types back and forth does not lose what was entered.
type ValueData struct {
	Type ValueType
	Text string
	Bool bool
}

// NodeKind implements graph.NodeData
func (*ValueData) NodeKind() graph.Kind { return graph.KindValue }

// SetType switches the selector
func (v *ValueData) SetType(t ValueType) error {
	if _, err := ParseValueType(string(t)); err != nil {
		return err
	}
	v.Type = t
	return nil
}

// Display renders the current value for read-only views
func (v *ValueData) Display() string {
	if v.Type.Widget() == WidgetToggle {
		if v.Bool {
			return "true"
		}
		return "false"
	}
	return v.Text
}
