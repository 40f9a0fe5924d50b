package scenario

import (
	"fmt"
	"strconv"
)

// FrameRefKind tells how a FrameRef addresses a frame.
type FrameRefKind int

// Frame addressing modes.
const (
	FrameMain FrameRefKind = iota
	FrameByIndex
	FrameByName
)

// FrameRef identifies a frame of the page. A nil *FrameRef means the main
// document.
type FrameRef struct {
	Kind  FrameRefKind
	Index int
	Name  string
}

// MainFrame references the top level document.
func MainFrame() *FrameRef {
	return &FrameRef{Kind: FrameMain}
}

// FrameIndex references the i-th frame of the page where 0 is the main
// document.
func FrameIndex(i int) *FrameRef {
	return &FrameRef{Kind: FrameByIndex, Index: i}
}

// FrameName references the frame with the given name or id attribute.
func FrameName(name string) *FrameRef {
	return &FrameRef{Kind: FrameByName, Name: name}
}

// IsMain reports whether r points at the main document.
func (r *FrameRef) IsMain() bool {
	return r == nil || r.Kind == FrameMain
}

func (r *FrameRef) String() string {
	switch {
	case r.IsMain():
		return "main"
	case r.Kind == FrameByIndex:
		return "index " + strconv.Itoa(r.Index)
	case r.Kind == FrameByName:
		return fmt.Sprintf("name %q", r.Name)
	default:
		return fmt.Sprintf("FrameRef(%d)", int(r.Kind))
	}
}
