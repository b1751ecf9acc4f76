package closure

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mohitkumar/closureflow/task"
	"github.com/mohitkumar/closureflow/util"
)

var errMissingAccountId = errors.New("account_id is required")

// ValidateInput checks the trigger input before an instance is started.
func ValidateInput(input map[string]any) error {
	v, ok := input[ACCOUNT_ID_KEY]
	if !ok || v == nil {
		return errMissingAccountId
	}
	switch id := v.(type) {
	case string:
		if strings.TrimSpace(id) == "" {
			return errMissingAccountId
		}
	case float64, int, int64:
	default:
		return fmt.Errorf("account_id has unsupported type %T", v)
	}
	return nil
}

func TaskNames() []string {
	return []string{
		TASK_MOVE_TO_SUSPENDED,
		TASK_CLOSE_AWS_ACCOUNT,
		TASK_CHECK_ORG_ACCOUNT_STATUS,
		TASK_OFFBOARD_FROM_OIL,
		TASK_OFFBOARD_FROM_DEVELOPER_SERVICE,
		TASK_OFFBOARD_FROM_STACKSET,
		TASK_STATUS_HANDLER,
	}
}

// FlagHandler returns a handler that reports the given status flag.
func FlagHandler(flag string, value bool) task.HandlerFunc {
	return func(ctx context.Context, input map[string]any) (map[string]any, error) {
		status := map[string]any{}
		if cur, ok := input[STATUS_KEY].(map[string]any); ok {
			status = util.DeepCopy(cur)
		}
		status[flag] = value
		return map[string]any{STATUS_KEY: status}, nil
	}
}

// LocalHandlers registers handlers that succeed every step without calling
// out, used for dry runs when no handler endpoint is configured.
func LocalHandlers() *task.Registry {
	reg := task.NewRegistry()
	reg.Register(TASK_MOVE_TO_SUSPENDED, FlagHandler(FLAG_MOVE_TO_SUSPENDED, true))
	reg.Register(TASK_CLOSE_AWS_ACCOUNT, FlagHandler(FLAG_CLOSE_AWS_ACCOUNT, true))
	reg.Register(TASK_CHECK_ORG_ACCOUNT_STATUS, FlagHandler(FLAG_CHECK_ORG_ACCOUNT_STATUS, true))
	reg.Register(TASK_OFFBOARD_FROM_OIL, FlagHandler(FLAG_OFFBOARD_FROM_OIL, true))
	reg.Register(TASK_OFFBOARD_FROM_DEVELOPER_SERVICE, FlagHandler(FLAG_OFFBOARD_FROM_DEVELOPER_SERVICE, true))
	reg.Register(TASK_OFFBOARD_FROM_STACKSET, FlagHandler(FLAG_OFFBOARD_FROM_STACKSET, true))
	reg.Register(TASK_STATUS_HANDLER, func(ctx context.Context, input map[string]any) (map[string]any, error) {
		return map[string]any{}, nil
	})
	return reg
}
