// Package registry loads the activity registry: the catalog of worker task
// types with their input/output JSON schemas and error codes. Process
// designers read it; workers use it to validate job variables up front.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, err
	}
	return &reg, nil
}

// Find returns the activity for a task type.
func (r *ActivityRegistry) Find(taskType string) (*Activity, bool) {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i], true
		}
	}
	return nil, false
}

// ValidateInput checks raw job variables against the activity's input schema.
// An unknown task type or an activity without a schema validates vacuously.
func (r *ActivityRegistry) ValidateInput(taskType string, variables []byte) error {
	activity, ok := r.Find(taskType)
	if !ok || len(activity.InputSchema) == 0 {
		return nil
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(activity.InputSchema),
		gojsonschema.NewBytesLoader(variables),
	)
	if err != nil {
		return fmt.Errorf("schema validation for %s: %w", taskType, err)
	}
	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		problems = append(problems, e.String())
	}
	return fmt.Errorf("input for %s invalid: %s", taskType, strings.Join(problems, "; "))
}
