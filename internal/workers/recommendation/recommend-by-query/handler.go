package recommendbyquery

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	commonerrors "nutrition-workers/internal/common/errors"
	"nutrition-workers/internal/common/logger"
	"nutrition-workers/internal/common/metrics"
	"nutrition-workers/internal/models"
	"nutrition-workers/internal/nutrition"
	"nutrition-workers/internal/predicate"
	"nutrition-workers/internal/resolver"
)

const (
	TaskType = "recommend-by-query"
)

// CriteriaResolver turns the free-text query into a filter, falling back to
// keyword matching when the language service is down.
type CriteriaResolver interface {
	Resolve(ctx context.Context, query string, previous *models.Criteria) (*resolver.Resolution, error)
}

// CatalogSearcher runs a compiled filter against the menu catalog.
type CatalogSearcher interface {
	Search(ctx context.Context, filter predicate.Node, sort models.SortDirective) ([]models.CatalogItem, error)
}

type Handler struct {
	config   *Config
	resolver CriteriaResolver
	catalog  CatalogSearcher
	errors   *commonerrors.ErrorHandler
	logger   logger.Logger
}

func NewHandler(config *Config, res CriteriaResolver, catalog CatalogSearcher, log logger.Logger) *Handler {
	scoped := log.With(map[string]interface{}{
		"taskType": TaskType,
	})
	return &Handler{
		config:   config,
		resolver: res,
		catalog:  catalog,
		errors:   commonerrors.NewErrorHandler(scoped),
		logger:   scoped,
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
		h.errors.HandleJobError(ctx, client, job, commonerrors.NewValidationFailedError("variables must be a JSON object with a query field"))
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
	resolution, err := h.resolver.Resolve(ctx, input.Query, input.PreviousCriteria)
	if err != nil {
		return nil, err
	}
	if resolution.UsedFallback {
		metrics.CriteriaFallbacks.WithLabelValues("language_service").Inc()
	}

	items, err := h.catalog.Search(ctx, resolution.Filter, resolution.Sort)
	if err != nil {
		return nil, err
	}
	if len(items) > h.config.MaxResults {
		items = items[:h.config.MaxResults]
	}

	recommendations := make([]models.RankedItem, 0, len(items))
	for _, item := range items {
		recommendations = append(recommendations, models.RankedItem{
			CatalogItem: item,
			Price:       nutrition.DisplayPrice(item),
		})
	}

	message := fmt.Sprintf("Found %d items matching your criteria", len(recommendations))
	if resolution.UsedFallback {
		message = fmt.Sprintf("Found %d items by keyword match", len(recommendations))
	}

	h.logger.Info("recommendations resolved", map[string]interface{}{
		"count":        len(recommendations),
		"usedFallback": resolution.UsedFallback,
	})

	return &Output{
		Criteria:        resolution.Criteria,
		Recommendations: recommendations,
		Count:           len(recommendations),
		Message:         message,
		UsedFallback:    resolution.UsedFallback,
	}, nil
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
