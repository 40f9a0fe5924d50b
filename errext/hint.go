package errext

import "errors"

// HasHint is an error carrying advice for the user, like the flag or the
// file that fixes it.
type HasHint interface {
	error
	Hint() string
}

// WithHint attaches hint to err. A hint already present in the chain is
// kept and rendered after the new one, in parentheses. A nil err or an
// empty hint returns err as it is.
func WithHint(err error, hint string) error {
	if err == nil || hint == "" {
		return err
	}
	return &hintError{err: err, hint: hint}
}

type hintError struct {
	err  error
	hint string
}

var _ HasHint = &hintError{}

func (e *hintError) Error() string {
	return e.err.Error()
}

func (e *hintError) Unwrap() error {
	return e.err
}

func (e *hintError) Hint() string {
	var inner HasHint
	if errors.As(e.err, &inner) {
		return e.hint + " (" + inner.Hint() + ")"
	}
	return e.hint
}
