package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	data := map[string]any{
		"Payload": map[string]any{
			"sf_status": map[string]any{"close_aws_account": true},
			"count":     3,
		},
	}
	v, err := Lookup(data, "$.Payload.sf_status.close_aws_account")
	require.NoError(t, err)
	require.Equal(t, true, v)

	v, err = Lookup(data, ROOT_PATH)
	require.NoError(t, err)
	require.Equal(t, data, v)

	_, err = Lookup(data, "$.Payload.sf_status.missing")
	require.Error(t, err)
}

func TestSetPath(t *testing.T) {
	data := map[string]any{"a": map[string]any{"b": 1}}

	out, err := SetPath(data, "$.a.c.d", "x")
	require.NoError(t, err)
	require.Equal(t, map[string]any{"a": map[string]any{"b": 1, "c": map[string]any{"d": "x"}}}, out)
	require.Equal(t, map[string]any{"a": map[string]any{"b": 1}}, data)

	out, err = SetPath(data, ROOT_PATH, map[string]any{"z": true})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"z": true}, out)

	_, err = SetPath(data, ROOT_PATH, 1)
	require.Error(t, err)

	_, err = SetPath(data, "a.b", 1)
	require.Error(t, err)

	_, err = SetPath(data, "$.a[0]", 1)
	require.Error(t, err)
}

func TestDeepMerge(t *testing.T) {
	dst := map[string]any{
		"account_id": "123",
		"sf_status":  map[string]any{"move_to_suspended": true},
	}
	src := map[string]any{
		"sf_status": map[string]any{"close_aws_account": false},
		"extra":     []any{1, 2},
	}
	out := DeepMerge(dst, src)
	require.Equal(t, map[string]any{
		"account_id": "123",
		"sf_status":  map[string]any{"move_to_suspended": true, "close_aws_account": false},
		"extra":      []any{1, 2},
	}, out)
	require.Len(t, dst["sf_status"], 1)
}

func TestDeepCopyIsolation(t *testing.T) {
	data := map[string]any{"nested": map[string]any{"list": []any{map[string]any{"k": 1}}}}
	cp := DeepCopy(data)
	cp["nested"].(map[string]any)["list"].([]any)[0].(map[string]any)["k"] = 2
	require.Equal(t, 1, data["nested"].(map[string]any)["list"].([]any)[0].(map[string]any)["k"])
	require.Nil(t, DeepCopy(nil))
}

func TestValidatePath(t *testing.T) {
	for path, valid := range map[string]bool{
		"":                         true,
		"$":                        true,
		"$.Payload.sf_status.flag": true,
		"Payload":                  false,
		"$.a..b":                   false,
	} {
		t.Run(path, func(t *testing.T) {
			err := ValidatePath(path)
			if valid {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}
