// cmd/tools/worker-generator/main.go
//
// Scaffolds a new worker package from its activity registry entry: config.go,
// models.go (typed from the input/output schemas), handler.go and a starter
// handler_test.go, all matching the layout the existing workers use.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"nutrition-workers/pkg/registry"
)

// WorkerData feeds the file templates.
type WorkerData struct {
	Name         string
	PackageName  string
	TaskType     string
	Category     string
	Description  string
	InputSchema  map[string]interface{}
	OutputSchema map[string]interface{}
}

func main() {
	activityID := flag.String("activity", "", "Activity ID from the registry (e.g., suggest-combos)")
	registryPath := flag.String("registry", "pkg/registry/activity-registry.json", "Path to the activity registry")
	outputRoot := flag.String("output", "internal/workers", "Root directory for generated worker packages")
	force := flag.Bool("force", false, "Overwrite existing files")
	flag.Parse()

	if *activityID == "" {
		fmt.Println("Error: -activity is required.")
		flag.Usage()
		os.Exit(1)
	}

	reg, err := registry.LoadRegistry(*registryPath)
	if err != nil {
		fmt.Printf("Error loading registry: %v\n", err)
		os.Exit(1)
	}

	var activity *registry.Activity
	for i := range reg.Activities {
		if reg.Activities[i].ID == *activityID {
			activity = &reg.Activities[i]
			break
		}
	}
	if activity == nil {
		fmt.Printf("Error: activity %s not found in %s\n", *activityID, *registryPath)
		os.Exit(1)
	}

	data := WorkerData{
		Name:         activity.DisplayName,
		PackageName:  packageName(activity.ID),
		TaskType:     activity.TaskType,
		Category:     activity.Category,
		Description:  activity.Description,
		InputSchema:  activity.InputSchema,
		OutputSchema: activity.OutputSchema,
	}

	dir := filepath.Join(*outputRoot, activity.Category, activity.ID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		fmt.Printf("Error creating %s: %v\n", dir, err)
		os.Exit(1)
	}

	files := map[string]string{
		"config.go":       configTemplate,
		"models.go":       modelsTemplate,
		"handler.go":      handlerTemplate,
		"handler_test.go": testTemplate,
	}

	for name, tmpl := range files {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil && !*force {
			fmt.Printf("Skipping %s (exists, use -force to overwrite)\n", path)
			continue
		}
		if err := renderFile(path, tmpl, data); err != nil {
			fmt.Printf("Error writing %s: %v\n", path, err)
			os.Exit(1)
		}
		fmt.Printf("Generated %s\n", path)
	}

	fmt.Printf("\nWorker scaffold for %s is ready under %s.\n", activity.TaskType, dir)
	fmt.Println("Fill in execute() and register the handler in cmd/worker-manager/main.go.")
}

func renderFile(path, tmplText string, data WorkerData) error {
	tmpl, err := template.New(filepath.Base(path)).Funcs(template.FuncMap{
		"structFields": structFields,
	}).Parse(tmplText)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return tmpl.Execute(f, data)
}

// packageName flattens a kebab-case activity ID into a Go package name.
func packageName(id string) string {
	return strings.ReplaceAll(strings.ToLower(id), "-", "")
}

// structFields renders Go struct fields from a JSON schema's properties.
func structFields(schema map[string]interface{}) string {
	props, ok := schema["properties"].(map[string]interface{})
	if !ok || len(props) == 0 {
		return "\t// No fields declared in the registry schema yet."
	}

	required := map[string]bool{}
	if reqList, ok := schema["required"].([]interface{}); ok {
		for _, r := range reqList {
			if name, ok := r.(string); ok {
				required[name] = true
			}
		}
	}

	var fields []string
	for prop, raw := range props {
		details, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		tag := fmt.Sprintf("`json:\"%s\"`", prop)
		if !required[prop] {
			tag = fmt.Sprintf("`json:\"%s,omitempty\"`", prop)
		}
		fields = append(fields, fmt.Sprintf("\t%s %s %s", exportedName(prop), goType(details["type"]), tag))
	}
	return strings.Join(fields, "\n")
}

func exportedName(s string) string {
	if s == "" {
		return s
	}
	name := strings.ToUpper(s[:1]) + s[1:]
	for old, canonical := range map[string]string{"Id": "ID", "Url": "URL"} {
		if strings.HasSuffix(name, old) {
			name = strings.TrimSuffix(name, old) + canonical
		}
	}
	return name
}

func goType(jsonType interface{}) string {
	switch jsonType {
	case "string":
		return "string"
	case "integer":
		return "int"
	case "number":
		return "float64"
	case "boolean":
		return "bool"
	case "array":
		return "[]string"
	case "object":
		return "map[string]interface{}"
	default:
		return "interface{}"
	}
}

const configTemplate = `package {{ .PackageName }}

import "time"

// Config holds configuration for the {{ .Name }} worker.
type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}
`

const modelsTemplate = `package {{ .PackageName }}

// Input carries the job variables for the {{ .TaskType }} task.
type Input struct {
{{ structFields .InputSchema }}
}

// Output carries the variables written back on completion.
type Output struct {
{{ structFields .OutputSchema }}
}
`

const handlerTemplate = `package {{ .PackageName }}

import (
	"context"
	"encoding/json"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	commonerrors "nutrition-workers/internal/common/errors"
	"nutrition-workers/internal/common/logger"
)

const TaskType = "{{ .TaskType }}"

// Handler processes {{ .TaskType }} jobs. {{ .Description }}
type Handler struct {
	config *Config
	errors *commonerrors.ErrorHandler
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	scoped := log.With(map[string]interface{}{
		"taskType": TaskType,
	})
	return &Handler{
		config: config,
		errors: commonerrors.NewErrorHandler(scoped),
		logger: scoped,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.errors.HandleJobError(ctx, client, job,
			commonerrors.NewValidationFailedError("variables are not valid JSON: "+err.Error()))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.errors.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	// TODO: implement {{ .TaskType }}.
	return &Output{}, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	request, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to serialize output variables", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	if _, err := request.Send(ctx); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	h.logger.Info("job completed", map[string]interface{}{
		"jobKey": job.Key,
	})
}

// Execute runs the worker logic outside of a Zeebe job. Used by tests.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
`

const testTemplate = `package {{ .PackageName }}

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"nutrition-workers/internal/common/logger"
)

func createTestHandler(t *testing.T) *Handler {
	return NewHandler(LoadConfig(), logger.NewTestLogger(t))
}

func TestExecute(t *testing.T) {
	h := createTestHandler(t)

	output, err := h.Execute(context.Background(), &Input{})

	require.NoError(t, err)
	require.NotNil(t, output)
}
`
