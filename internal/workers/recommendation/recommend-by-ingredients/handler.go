package recommendbyingredients

import (
	"context"
	"encoding/json"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	commonerrors "nutrition-workers/internal/common/errors"
	"nutrition-workers/internal/common/logger"
	"nutrition-workers/internal/common/metrics"
	"nutrition-workers/internal/common/validation"
	"nutrition-workers/internal/models"
	"nutrition-workers/internal/predicate"
	"nutrition-workers/internal/ranker"
)

const (
	TaskType = "recommend-by-ingredients"
)

// CatalogSearcher runs a compiled filter against the menu catalog.
type CatalogSearcher interface {
	Search(ctx context.Context, filter predicate.Node, sort models.SortDirective) ([]models.CatalogItem, error)
}

type Handler struct {
	config  *Config
	catalog CatalogSearcher
	errors  *commonerrors.ErrorHandler
	logger  logger.Logger
}

func NewHandler(config *Config, catalog CatalogSearcher, log logger.Logger) *Handler {
	scoped := log.With(map[string]interface{}{
		"taskType": TaskType,
	})
	return &Handler{
		config:  config,
		catalog: catalog,
		errors:  commonerrors.NewErrorHandler(scoped),
		logger:  scoped,
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
	include, exclude := ranker.NormalizeTerms(input.Include, input.Exclude)
	page := validation.NormalizePage(input.Page)
	limit := validation.NormalizeLimit(input.Limit, h.config.DefaultLimit, h.config.MaxLimit)

	filter := ranker.BuildIngredientQuery(include, exclude)
	items, err := h.catalog.Search(ctx, filter, models.SortDirective{})
	if err != nil {
		return nil, err
	}

	// The whole candidate set is ranked before pagination so page boundaries
	// never cut across equally scored items out of order.
	pageItems, total := ranker.Rank(items, include, page, limit)

	h.logger.Info("ingredient ranking complete", map[string]interface{}{
		"include": include,
		"exclude": exclude,
		"total":   total,
		"page":    page,
		"limit":   limit,
	})

	return &Output{
		Criteria: EchoedCriteria{Include: include, Exclude: exclude},
		Items:    pageItems,
		Count:    len(pageItems),
		Total:    total,
		Page:     page,
		Limit:    limit,
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
