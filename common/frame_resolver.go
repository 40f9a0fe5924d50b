package common

import (
	"context"
	"fmt"

	"github.com/liuxd6825/flakerun/scenario"
)

// ResolveFrame returns the execution context ref points at. The main
// document resolves without asking the browser; any other reference lists
// the frames of the page anew, so frames attached since the last call are
// visible.
func ResolveFrame(ctx context.Context, s Session, ref *scenario.FrameRef) (ExecutionContext, error) {
	if ref.IsMain() {
		return s.MainContext(), nil
	}

	frames, err := s.Frames(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing frames: %w", err)
	}

	switch ref.Kind {
	case scenario.FrameByIndex:
		if ref.Index >= 0 && ref.Index < len(frames) {
			return frames[ref.Index].Context, nil
		}
	case scenario.FrameByName:
		for _, f := range frames {
			if ref.Name != "" && (f.Name == ref.Name || f.ID == ref.Name) {
				return f.Context, nil
			}
		}
	}

	return nil, &FrameNotFoundError{Ref: ref, Available: len(frames)}
}
