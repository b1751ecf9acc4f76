package flow

import (
	"context"
	"fmt"

	"github.com/mohitkumar/closureflow/action"
)

var _ action.Branch = new(branchFlow)

// branchFlow runs a parallel branch sub-graph with its own machine. The
// branch inherits the deadline of the parent instance and keeps no snapshot.
type branchFlow struct {
	name string
	flow *Flow
}

func (b *branchFlow) Name() string {
	return b.name
}

func (b *branchFlow) Run(ctx context.Context, data map[string]any) (map[string]any, error) {
	machine := newBranchMachine(b.flow, fmt.Sprintf("%s/%s", flowIdFrom(ctx), b.name))
	return machine.Run(ctx, data)
}
