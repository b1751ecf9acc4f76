package action

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mohitkumar/closureflow/model"
	"github.com/stretchr/testify/require"
)

type funcBranch struct {
	name string
	fn   func(ctx context.Context, data map[string]any) (map[string]any, error)
}

func (b *funcBranch) Name() string {
	return b.name
}

func (b *funcBranch) Run(ctx context.Context, data map[string]any) (map[string]any, error) {
	return b.fn(ctx, data)
}

func flagBranch(name string, delay time.Duration) *funcBranch {
	return &funcBranch{name: name, fn: func(ctx context.Context, data map[string]any) (map[string]any, error) {
		time.Sleep(delay)
		data[name] = true
		return data, nil
	}}
}

func TestParallelNamedSlotMerge(t *testing.T) {
	act := NewParallelAction(model.ActionDef{
		Name: "Offboarding",
		Type: model.ACTION_TYPE_PARALLEL,
		Next: "StatusHandler",
		ResultSelector: map[string]model.SelectorDef{
			"$.Payload.account_id": {Branch: "a", Path: "$.account_id"},
			"$.Payload.status.a":   {Branch: "a", Path: "$.a"},
			"$.Payload.status.b":   {Branch: "b", Path: "$.b"},
			"$.Payload.status.c":   {Branch: "c", Path: "$.c"},
		},
	}, []Branch{
		flagBranch("a", 30*time.Millisecond),
		flagBranch("b", 0),
		flagBranch("c", 10*time.Millisecond),
	})
	require.NoError(t, act.Validate())

	data := map[string]any{"account_id": "123"}
	out, err := act.Execute(context.Background(), data)
	require.NoError(t, err)
	require.Equal(t, "StatusHandler", out.Next)
	require.Equal(t, map[string]any{"Payload": map[string]any{
		"account_id": "123",
		"status":     map[string]any{"a": true, "b": true, "c": true},
	}}, out.Data)
	require.Equal(t, map[string]any{"account_id": "123"}, data)
}

func TestParallelMergeWithoutSelector(t *testing.T) {
	act := NewParallelAction(model.ActionDef{Name: "P", Type: model.ACTION_TYPE_PARALLEL, End: true},
		[]Branch{flagBranch("a", 0), flagBranch("b", 0)})
	require.NoError(t, act.Validate())
	out, err := act.Execute(context.Background(), map[string]any{"x": 1})
	require.NoError(t, err)
	require.Equal(t, map[string]any{
		"a": map[string]any{"x": 1, "a": true},
		"b": map[string]any{"x": 1, "b": true},
	}, out.Data)
}

func TestParallelFailFast(t *testing.T) {
	var canceled int32
	slow := &funcBranch{name: "slow", fn: func(ctx context.Context, data map[string]any) (map[string]any, error) {
		select {
		case <-ctx.Done():
			atomic.AddInt32(&canceled, 1)
			return nil, ctx.Err()
		case <-time.After(time.Second):
			return data, nil
		}
	}}
	failing := &funcBranch{name: "failing", fn: func(ctx context.Context, data map[string]any) (map[string]any, error) {
		return nil, errors.New("offboarding failed")
	}}
	act := NewParallelAction(model.ActionDef{Name: "P", Type: model.ACTION_TYPE_PARALLEL, Next: "N"}, []Branch{slow, failing})

	start := time.Now()
	_, err := act.Execute(context.Background(), map[string]any{})
	require.Less(t, time.Since(start), 500*time.Millisecond)
	var branchErr *BranchError
	require.ErrorAs(t, err, &branchErr)
	require.Equal(t, "failing", branchErr.Branch)
	require.Equal(t, int32(1), atomic.LoadInt32(&canceled))
}

func TestParallelParentCanceled(t *testing.T) {
	blocking := &funcBranch{name: "blocking", fn: func(ctx context.Context, data map[string]any) (map[string]any, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	act := NewParallelAction(model.ActionDef{Name: "P", Type: model.ACTION_TYPE_PARALLEL, Next: "N"}, []Branch{blocking})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := act.Execute(ctx, map[string]any{})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestParallelSelectorMissingValue(t *testing.T) {
	act := NewParallelAction(model.ActionDef{
		Name:           "P",
		Type:           model.ACTION_TYPE_PARALLEL,
		Next:           "N",
		ResultSelector: map[string]model.SelectorDef{"$.out": {Branch: "a", Path: "$.missing"}},
	}, []Branch{flagBranch("a", 0)})
	require.NoError(t, act.Validate())
	_, err := act.Execute(context.Background(), map[string]any{})
	var invalid *InvalidStateError
	require.ErrorAs(t, err, &invalid)
}

func TestParallelValidate(t *testing.T) {
	require.Error(t, NewParallelAction(model.ActionDef{Name: "P", Next: "N"}, nil).Validate())
	require.Error(t, NewParallelAction(model.ActionDef{Name: "P", Next: "N"}, []Branch{flagBranch("a", 0), flagBranch("a", 0)}).Validate())
	require.Error(t, NewParallelAction(model.ActionDef{
		Name:           "P",
		Next:           "N",
		ResultSelector: map[string]model.SelectorDef{"$.out": {Branch: "unknown", Path: "$.a"}},
	}, []Branch{flagBranch("a", 0)}).Validate())
	require.Error(t, NewParallelAction(model.ActionDef{
		Name:           "P",
		Next:           "N",
		ResultSelector: map[string]model.SelectorDef{"$": {Branch: "a", Path: "$.a"}},
	}, []Branch{flagBranch("a", 0)}).Validate())
}
