package action

import "fmt"

// InvalidStateError reports a context that does not fit what a node needs,
// for example an input path that is not an object.
type InvalidStateError struct {
	Action  string
	Message string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("action %s: invalid state: %s", e.Action, e.Message)
}

type BranchError struct {
	Branch string
	Cause  error
}

func (e *BranchError) Error() string {
	return fmt.Sprintf("branch %s failed: %v", e.Branch, e.Cause)
}

func (e *BranchError) Unwrap() error {
	return e.Cause
}
