package action

import (
	"context"
	"fmt"
	"sort"

	"github.com/mohitkumar/closureflow/logger"
	"github.com/mohitkumar/closureflow/model"
	"github.com/mohitkumar/closureflow/util"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Branch is one sub-graph of a parallel stage.
type Branch interface {
	Name() string
	Run(ctx context.Context, data map[string]any) (map[string]any, error)
}

var _ Action = new(parallelAction)

type parallelAction struct {
	baseAction
	branches  []Branch
	inputPath string
	selector  map[string]model.SelectorDef
}

func NewParallelAction(def model.ActionDef, branches []Branch) *parallelAction {
	return &parallelAction{
		baseAction: newBaseAction(def),
		branches:   branches,
		inputPath:  def.InputPath,
		selector:   def.ResultSelector,
	}
}

func (p *parallelAction) Validate() error {
	if len(p.branches) == 0 {
		return fmt.Errorf("action=%s, parallel should have at least one branch", p.name)
	}
	names := make(map[string]bool)
	for _, b := range p.branches {
		if names[b.Name()] {
			return fmt.Errorf("action=%s, branch %s is duplicate", p.name, b.Name())
		}
		names[b.Name()] = true
	}
	if err := util.ValidatePath(p.inputPath); err != nil {
		return fmt.Errorf("action=%s, %w", p.name, err)
	}
	for out, sel := range p.selector {
		if err := util.ValidatePath(out); err != nil {
			return fmt.Errorf("action=%s, %w", p.name, err)
		}
		if out == util.ROOT_PATH {
			return fmt.Errorf("action=%s, selector can not write the root", p.name)
		}
		if !names[sel.Branch] {
			return fmt.Errorf("action=%s, selector %s refers to unknown branch %s", p.name, out, sel.Branch)
		}
		if err := util.ValidatePath(sel.Path); err != nil {
			return fmt.Errorf("action=%s, %w", p.name, err)
		}
	}
	return p.validateTransition()
}

// Execute runs every branch on its own copy of the input view. The first
// failing branch cancels the others, the stage still waits for all of them
// and then fails without merging.
func (p *parallelAction) Execute(ctx context.Context, data map[string]any) (Outcome, error) {
	view, err := inputView(p.name, data, p.inputPath)
	if err != nil {
		return Outcome{}, err
	}
	results := make([]map[string]any, len(p.branches))
	g, gctx := errgroup.WithContext(ctx)
	for i, b := range p.branches {
		i, b := i, b
		input := util.DeepCopy(view)
		g.Go(func() error {
			out, err := b.Run(gctx, input)
			if err != nil {
				if gctx.Err() != nil {
					logger.Debug("parallel branch canceled", zap.String("action", p.name), zap.String("branch", b.Name()), zap.Error(err))
				} else {
					logger.Warn("parallel branch failed", zap.String("action", p.name), zap.String("branch", b.Name()), zap.Error(err))
				}
				return &BranchError{Branch: b.Name(), Cause: err}
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return Outcome{}, ctx.Err()
		}
		return Outcome{}, err
	}

	byName := make(map[string]map[string]any, len(p.branches))
	for i, b := range p.branches {
		byName[b.Name()] = results[i]
	}
	merged, err := p.merge(byName)
	if err != nil {
		return Outcome{}, err
	}
	return p.outcome(merged), nil
}

// merge builds the stage output from named branch results. Without a
// selector every branch output is placed under its branch name.
func (p *parallelAction) merge(results map[string]map[string]any) (map[string]any, error) {
	merged := make(map[string]any)
	if len(p.selector) == 0 {
		for name, out := range results {
			merged[name] = out
		}
		return merged, nil
	}
	paths := make([]string, 0, len(p.selector))
	for out := range p.selector {
		paths = append(paths, out)
	}
	sort.Strings(paths)
	for _, out := range paths {
		sel := p.selector[out]
		value, err := util.Lookup(results[sel.Branch], sel.Path)
		if err != nil {
			return nil, &InvalidStateError{Action: p.name, Message: fmt.Sprintf("selector %s: %s not found in branch %s output", out, sel.Path, sel.Branch)}
		}
		merged, err = util.SetPath(merged, out, value)
		if err != nil {
			return nil, &InvalidStateError{Action: p.name, Message: err.Error()}
		}
	}
	return merged, nil
}
