package analyzeorderhistory

import (
	"context"
	"encoding/json"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"nutrition-workers/internal/analytics"
	commonerrors "nutrition-workers/internal/common/errors"
	"nutrition-workers/internal/common/logger"
	"nutrition-workers/internal/common/metrics"
	"nutrition-workers/internal/common/validation"
	"nutrition-workers/internal/models"
)

const (
	TaskType = "analyze-order-history"
)

// OrderReader loads a user's completed order history, oldest first.
type OrderReader interface {
	ListCompleted(ctx context.Context, userID string) ([]models.OrderRecord, error)
}

type Handler struct {
	config *Config
	orders OrderReader
	errors *commonerrors.ErrorHandler
	logger logger.Logger
	now    func() time.Time
}

func NewHandler(config *Config, orders OrderReader, log logger.Logger) *Handler {
	scoped := log.With(map[string]interface{}{
		"taskType": TaskType,
	})
	return &Handler{
		config: config,
		orders: orders,
		errors: commonerrors.NewErrorHandler(scoped),
		logger: scoped,
		now:    time.Now,
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
		h.errors.HandleJobError(ctx, client, job, commonerrors.NewValidationFailedError("variables must be a JSON object with a userId field"))
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
	// All input checks run before the store is touched.
	if err := validation.ValidateUserID(input.UserID); err != nil {
		return nil, commonerrors.NewInvalidUserIDError(input.UserID)
	}
	if err := validation.ValidateTimeRange(input.TimeRange); err != nil {
		return nil, commonerrors.NewValidationFailedError(err.Error())
	}
	if err := validation.ValidatePeriod(input.Period); err != nil {
		return nil, commonerrors.NewValidationFailedError(err.Error())
	}

	timeRange := input.TimeRange
	if timeRange == "" {
		timeRange = h.config.DefaultTimeRange
	}
	period := input.Period
	if period == "" {
		period = h.config.DefaultPeriod
	}

	orders, err := h.orders.ListCompleted(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	output := &Output{
		Patterns:        analytics.AnalyzePatterns(orders, h.now(), timeRange),
		Trends:          analytics.Trends(orders, period),
		Recommendations: analytics.Recommendations(orders),
	}

	h.logger.Info("order history analyzed", map[string]interface{}{
		"userId":          input.UserID,
		"timeRange":       timeRange,
		"period":          period,
		"ordersAnalyzed":  output.Patterns.TotalOrders,
		"trendPoints":     len(output.Trends),
		"recommendations": len(output.Recommendations),
	})
	return output, nil
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
