package scene

import "fmt"

// PatchOp is the kind of a patch
type PatchOp uint8

const (
	OpSetText    PatchOp = 0x01
	OpSetAttr    PatchOp = 0x02
	OpRemove     PatchOp = 0x03
	OpInsert     PatchOp = 0x04
	OpRemoveAttr PatchOp = 0x06
	OpReplace    PatchOp = 0x08
)

// Patch is a single mutation of the host page
type Patch struct {
	Op     PatchOp
	Key    string   // target element; for OpInsert the inserted element
	Parent string   // OpInsert
	Before string   // OpInsert, empty appends
	Name   string   // attribute name
	Value  string   // attribute value or text
	Elem   *Element // OpInsert and OpReplace
}

func (p Patch) String() string {
	switch p.Op {
	case OpSetText:
		return fmt.Sprintf("SetText(%s, %q)", p.Key, p.Value)
	case OpSetAttr:
		return fmt.Sprintf("SetAttr(%s, %s=%q)", p.Key, p.Name, p.Value)
	case OpRemoveAttr:
		return fmt.Sprintf("RemoveAttr(%s, %s)", p.Key, p.Name)
	case OpRemove:
		return fmt.Sprintf("Remove(%s)", p.Key)
	case OpInsert:
		return fmt.Sprintf("Insert(%s, parent=%s, before=%s)", p.Key, p.Parent, p.Before)
	case OpReplace:
		return fmt.Sprintf("Replace(%s)", p.Key)
	}
	return fmt.Sprintf("Unknown(op=%d)", p.Op)
}

// Diff computes the patches turning prev into next. Both roots must share a
// key; a nil prev yields a single replace of the root.
func Diff(prev, next *Element) []Patch {
	if next == nil {
		return nil
	}
	var ps []Patch
	if prev == nil || prev.Key != next.Key {
		return append(ps, Patch{Op: OpReplace, Key: next.Key, Elem: next})
	}
	diffElement(&ps, prev, next)
	return ps
}

func diffElement(ps *[]Patch, prev, next *Element) {
	if prev.Tag != next.Tag {
		*ps = append(*ps, Patch{Op: OpReplace, Key: prev.Key, Elem: next})
		return
	}
	diffAttrs(ps, next.Key, prev.Attrs, next.Attrs)
	if prev.Text != next.Text {
		*ps = append(*ps, Patch{Op: OpSetText, Key: next.Key, Value: next.Text})
	}
	diffKids(ps, next.Key, prev.Kids, next.Kids)
}

func diffAttrs(ps *[]Patch, key string, prev, next Attrs) {
	for _, name := range sortedNames(prev) {
		if _, ok := next[name]; !ok {
			*ps = append(*ps, Patch{Op: OpRemoveAttr, Key: key, Name: name})
		}
	}
	for _, name := range sortedNames(next) {
		if old, ok := prev[name]; !ok || old != next[name] {
			*ps = append(*ps, Patch{Op: OpSetAttr, Key: key, Name: name, Value: next[name]})
		}
	}
}

// diffKids reconciles keyed children. Kids gone from next are removed first;
// then next is walked in order against the surviving kids, inserting new or
// out-of-order kids before the next survivor still in place.
func diffKids(ps *[]Patch, parent string, prev, next []*Element) {
	inNext := make(map[string]bool, len(next))
	for _, n := range next {
		inNext[n.Key] = true
	}

	prevByKey := make(map[string]*Element, len(prev))
	live := make([]*Element, 0, len(prev))
	for _, p := range prev {
		if !inNext[p.Key] {
			*ps = append(*ps, Patch{Op: OpRemove, Key: p.Key})
			continue
		}
		prevByKey[p.Key] = p
		live = append(live, p)
	}

	moved := make(map[string]bool)
	j := 0
	for _, n := range next {
		for j < len(live) && moved[live[j].Key] {
			j++
		}
		before := ""
		if j < len(live) {
			before = live[j].Key
		}

		p, existed := prevByKey[n.Key]
		switch {
		case existed && before == n.Key:
			diffElement(ps, p, n)
			j++
		case existed:
			*ps = append(*ps, Patch{Op: OpRemove, Key: n.Key})
			moved[n.Key] = true
			*ps = append(*ps, Patch{Op: OpInsert, Key: n.Key, Parent: parent, Before: before, Elem: n})
		default:
			*ps = append(*ps, Patch{Op: OpInsert, Key: n.Key, Parent: parent, Before: before, Elem: n})
		}
	}
}
