// Package closure defines the account-closure workflow: suspend the account,
// close it, poll the organization until the closure shows up, offboard it
// from dependent services in parallel and report the outcome.
package closure

import (
	"time"

	"github.com/mohitkumar/closureflow/model"
	"github.com/mohitkumar/closureflow/task"
)

const WORKFLOW_NAME = "aws-account-closure"

// Task handler names.
const (
	TASK_MOVE_TO_SUSPENDED               = "move_to_suspended"
	TASK_CLOSE_AWS_ACCOUNT               = "close_aws_account"
	TASK_CHECK_ORG_ACCOUNT_STATUS        = "check_org_account_status"
	TASK_OFFBOARD_FROM_OIL               = "offboard_from_oil"
	TASK_OFFBOARD_FROM_DEVELOPER_SERVICE = "offboard_from_developer_service"
	TASK_OFFBOARD_FROM_STACKSET          = "offboard_from_stackset"
	TASK_STATUS_HANDLER                  = "status_handler"
)

// Action names.
const (
	MOVE_TO_SUSPEND                 = "MoveToSuspend"
	MOVE_TO_SUSPENDED_CHOICE        = "MoveToSuspendedOU"
	AWS_ACCOUNT_CLOSE               = "AwsAccountClose"
	ACCOUNT_CLOSED_CHOICE           = "AccountClosed"
	WAIT_BEFORE_STATUS_CHECK        = "WaitBeforeStatusCheck"
	ORG_ACCOUNT_STATUS              = "OrgAccountStatus"
	ORG_STATUS_CHOICE               = "AccountSuspendedInOrg"
	INCREMENT_STATUS_RETRY          = "IncrementStatusRetry"
	STATUS_RETRY_CHOICE             = "AccountNotSuspended"
	WAIT_BEFORE_STATUS_RECHECK      = "WaitBeforeStatusRecheck"
	DEPENDENT_SERVICE_OFFBOARDING   = "DependentServiceOffboarding"
	STATUS_HANDLER                  = "StatusHandler"
	END_FLOW                        = "EndFlow"
	OFFBOARD_FROM_OIL               = "OffboardFromOil"
	OFFBOARD_FROM_DEVELOPER_SERVICE = "OffboardFromDeveloperService"
	OFFBOARD_FROM_STACKSET          = "OffboardFromStackset"
)

// Parallel branch names, the merge selects results by these names.
const (
	BRANCH_OIL               = "oil"
	BRANCH_DEVELOPER_SERVICE = "developer_service"
	BRANCH_STACKSET          = "stackset"
)

// Status flags written under sf_status by the tasks that own them.
const (
	FLAG_MOVE_TO_SUSPENDED               = "move_to_suspended"
	FLAG_CLOSE_AWS_ACCOUNT               = "close_aws_account"
	FLAG_CHECK_ORG_ACCOUNT_STATUS        = "check_org_account_status"
	FLAG_OFFBOARD_FROM_OIL               = "offboard_from_oil"
	FLAG_OFFBOARD_FROM_DEVELOPER_SERVICE = "offboard_from_developer_service"
	FLAG_OFFBOARD_FROM_STACKSET          = "offboard_from_stackset"
)

const STATUS_KEY = "sf_status"
const ACCOUNT_ID_KEY = "account_id"
const RETRY_COUNT_KEY = "check_status_retry_count"
const PAYLOAD_PATH = "$.Payload"

const MAX_STATUS_CHECKS = 5

type Options struct {
	// Timeout is the ceiling of the whole instance.
	Timeout time.Duration
	// WaitInterval is the pause before every organization status check.
	WaitInterval time.Duration
	// RetryInterval is the first backoff of the account close retry.
	RetryInterval time.Duration
	// TaskTimeout bounds one attempt of each task, zero leaves it unbounded.
	TaskTimeout time.Duration
}

func DefaultOptions() Options {
	return Options{
		Timeout:       5 * time.Minute,
		WaitInterval:  10 * time.Second,
		RetryInterval: 10 * time.Second,
	}
}

func statusPath(flag string) string {
	return PAYLOAD_PATH + "." + STATUS_KEY + "." + flag
}

func boolPtr(b bool) *bool {
	return &b
}

func floatPtr(f float64) *float64 {
	return &f
}

func taskDef(name string, taskName string, next string) model.ActionDef {
	return model.ActionDef{
		Name:       name,
		Type:       model.ACTION_TYPE_TASK,
		Task:       taskName,
		InputPath:  PAYLOAD_PATH,
		ResultPath: PAYLOAD_PATH,
		Next:       next,
	}
}

// Definition returns the account-closure graph.
func Definition(opts Options) *model.Workflow {
	moveToSuspend := taskDef(MOVE_TO_SUSPEND, TASK_MOVE_TO_SUSPENDED, MOVE_TO_SUSPENDED_CHOICE)
	moveToSuspend.InputPath = ""

	closeAccount := taskDef(AWS_ACCOUNT_CLOSE, TASK_CLOSE_AWS_ACCOUNT, ACCOUNT_CLOSED_CHOICE)
	closeAccount.Retry = []model.RetryDef{{
		ErrorEquals: []string{string(task.ERROR_TIMEOUT)},
		MaxAttempts: 1,
		Interval:    opts.RetryInterval,
		BackoffRate: 2,
	}}

	statusHandler := taskDef(STATUS_HANDLER, TASK_STATUS_HANDLER, END_FLOW)

	actions := []model.ActionDef{
		moveToSuspend,
		{
			Name: MOVE_TO_SUSPENDED_CHOICE,
			Type: model.ACTION_TYPE_CHOICE,
			Choices: []model.ChoiceRule{
				{Variable: statusPath(FLAG_MOVE_TO_SUSPENDED), BooleanEquals: boolPtr(true), Next: AWS_ACCOUNT_CLOSE},
			},
			Default: STATUS_HANDLER,
		},
		closeAccount,
		{
			Name: ACCOUNT_CLOSED_CHOICE,
			Type: model.ACTION_TYPE_CHOICE,
			Choices: []model.ChoiceRule{
				{Variable: statusPath(FLAG_CLOSE_AWS_ACCOUNT), BooleanEquals: boolPtr(true), Next: WAIT_BEFORE_STATUS_CHECK},
				{Variable: statusPath(FLAG_CLOSE_AWS_ACCOUNT), BooleanEquals: boolPtr(false), Next: STATUS_HANDLER},
			},
			Default: STATUS_HANDLER,
		},
		{
			Name:  WAIT_BEFORE_STATUS_CHECK,
			Type:  model.ACTION_TYPE_WAIT,
			Delay: opts.WaitInterval,
			Next:  ORG_ACCOUNT_STATUS,
		},
		taskDef(ORG_ACCOUNT_STATUS, TASK_CHECK_ORG_ACCOUNT_STATUS, ORG_STATUS_CHOICE),
		{
			Name: ORG_STATUS_CHOICE,
			Type: model.ACTION_TYPE_CHOICE,
			Choices: []model.ChoiceRule{
				{Variable: statusPath(FLAG_CHECK_ORG_ACCOUNT_STATUS), BooleanEquals: boolPtr(true), Next: DEPENDENT_SERVICE_OFFBOARDING},
				{Variable: statusPath(FLAG_CHECK_ORG_ACCOUNT_STATUS), BooleanEquals: boolPtr(false), Next: INCREMENT_STATUS_RETRY},
			},
			Default: STATUS_HANDLER,
		},
		{
			Name:      INCREMENT_STATUS_RETRY,
			Type:      model.ACTION_TYPE_PASS,
			Increment: PAYLOAD_PATH + "." + RETRY_COUNT_KEY,
			Next:      STATUS_RETRY_CHOICE,
		},
		{
			Name: STATUS_RETRY_CHOICE,
			Type: model.ACTION_TYPE_CHOICE,
			Choices: []model.ChoiceRule{
				{Variable: PAYLOAD_PATH + "." + RETRY_COUNT_KEY, NumericLessThan: floatPtr(MAX_STATUS_CHECKS), Next: WAIT_BEFORE_STATUS_RECHECK},
			},
			Default: STATUS_HANDLER,
		},
		{
			Name:  WAIT_BEFORE_STATUS_RECHECK,
			Type:  model.ACTION_TYPE_WAIT,
			Delay: opts.WaitInterval,
			Next:  ORG_ACCOUNT_STATUS,
		},
		{
			Name: DEPENDENT_SERVICE_OFFBOARDING,
			Type: model.ACTION_TYPE_PARALLEL,
			Branches: []model.BranchDef{
				branch(BRANCH_OIL, OFFBOARD_FROM_OIL, TASK_OFFBOARD_FROM_OIL),
				branch(BRANCH_DEVELOPER_SERVICE, OFFBOARD_FROM_DEVELOPER_SERVICE, TASK_OFFBOARD_FROM_DEVELOPER_SERVICE),
				branch(BRANCH_STACKSET, OFFBOARD_FROM_STACKSET, TASK_OFFBOARD_FROM_STACKSET),
			},
			ResultSelector: offboardingSelector(),
			Next:           STATUS_HANDLER,
		},
		statusHandler,
		{
			Name: END_FLOW,
			Type: model.ACTION_TYPE_PASS,
			End:  true,
		},
	}

	for i := range actions {
		if actions[i].Type == model.ACTION_TYPE_TASK {
			actions[i].Timeout = opts.TaskTimeout
		}
	}

	return &model.Workflow{
		Name:       WORKFLOW_NAME,
		RootAction: MOVE_TO_SUSPEND,
		Timeout:    opts.Timeout,
		Actions:    actions,
	}
}

func branch(name string, actionName string, taskName string) model.BranchDef {
	act := taskDef(actionName, taskName, "")
	act.End = true
	return model.BranchDef{
		Name:       name,
		RootAction: actionName,
		Actions:    []model.ActionDef{act},
	}
}

// offboardingSelector rebuilds the status object from the branch outputs.
// Each offboarding flag comes from the branch that owns it, the flags set
// before the stage and the account id come from the oil branch.
func offboardingSelector() map[string]model.SelectorDef {
	sel := map[string]model.SelectorDef{
		PAYLOAD_PATH + "." + ACCOUNT_ID_KEY: {Branch: BRANCH_OIL, Path: PAYLOAD_PATH + "." + ACCOUNT_ID_KEY},
	}
	from := map[string]string{
		FLAG_MOVE_TO_SUSPENDED:               BRANCH_OIL,
		FLAG_CLOSE_AWS_ACCOUNT:               BRANCH_OIL,
		FLAG_CHECK_ORG_ACCOUNT_STATUS:        BRANCH_OIL,
		FLAG_OFFBOARD_FROM_OIL:               BRANCH_OIL,
		FLAG_OFFBOARD_FROM_DEVELOPER_SERVICE: BRANCH_DEVELOPER_SERVICE,
		FLAG_OFFBOARD_FROM_STACKSET:          BRANCH_STACKSET,
	}
	for flag, branchName := range from {
		sel[statusPath(flag)] = model.SelectorDef{Branch: branchName, Path: statusPath(flag)}
	}
	return sel
}
