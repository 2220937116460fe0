package trackcombofrequency

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	commonerrors "nutrition-workers/internal/common/errors"
	"nutrition-workers/internal/common/logger"
	"nutrition-workers/internal/common/metrics"
)

const (
	TaskType = "track-combo-frequency"
)

// FrequencyWriter bumps the co-occurrence counter for one ordered pair.
type FrequencyWriter interface {
	Increment(ctx context.Context, mainItemID, complementaryItemID string) error
}

type Handler struct {
	config *Config
	store  FrequencyWriter
	errors *commonerrors.ErrorHandler
	logger logger.Logger
}

func NewHandler(config *Config, store FrequencyWriter, log logger.Logger) *Handler {
	scoped := log.With(map[string]interface{}{
		"taskType": TaskType,
	})
	return &Handler{
		config: config,
		store:  store,
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
		h.errors.HandleJobError(ctx, client, job, commonerrors.NewValidationFailedError("variables must be a JSON object"))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.errors.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	pairs, err := buildPairs(input)
	if err != nil {
		return nil, err
	}

	updated := 0
	for _, p := range pairs {
		if err := h.store.Increment(ctx, p[0], p[1]); err != nil {
			return nil, err
		}
		updated++
	}

	h.logger.Info("combo frequencies updated", map[string]interface{}{
		"updated": updated,
	})
	return &Output{Updated: updated}, nil
}

// buildPairs expands the input into the ordered pairs to increment. A full
// order is counted in both directions for every unordered item pair so
// lookups work from either side of a combo.
func buildPairs(input *Input) ([][2]string, error) {
	if len(input.OrderItems) > 0 {
		items := dedupe(input.OrderItems)
		if len(items) < 2 {
			return nil, commonerrors.NewValidationFailedError("orderItems must contain at least two distinct item ids")
		}
		var pairs [][2]string
		for i := 0; i < len(items); i++ {
			for j := i + 1; j < len(items); j++ {
				pairs = append(pairs, [2]string{items[i], items[j]}, [2]string{items[j], items[i]})
			}
		}
		return pairs, nil
	}

	main := strings.TrimSpace(input.MainItemID)
	comp := strings.TrimSpace(input.ComplementaryItemID)
	if main == "" || comp == "" {
		return nil, commonerrors.NewValidationFailedError("mainItemId and complementaryItemId are required when orderItems is absent")
	}
	if main == comp {
		return nil, commonerrors.NewValidationFailedError("mainItemId and complementaryItemId must differ")
	}
	return [][2]string{{main, comp}}, nil
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, raw := range items {
		id := strings.TrimSpace(raw)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)

	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	if _, err = cmd.Send(context.Background()); err != nil {
		h.logger.Error("Failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

// Execute runs the worker logic outside of a Zeebe job. Used by tests.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
