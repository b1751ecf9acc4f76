package model

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

const FORMAT_JSON = "json"
const FORMAT_YAML = "yaml"

// EncodeWorkflow renders a definition for humans, durations stay readable in
// yaml.
func EncodeWorkflow(wf *Workflow, format string) ([]byte, error) {
	switch format {
	case FORMAT_JSON, "":
		return json.MarshalIndent(wf, "", "  ")
	case FORMAT_YAML:
		return yaml.Marshal(wf)
	}
	return nil, fmt.Errorf("unsupported format %s", format)
}
