package suggestcombos

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"nutrition-workers/internal/combo"
	commonerrors "nutrition-workers/internal/common/errors"
	"nutrition-workers/internal/common/logger"
	"nutrition-workers/internal/common/metrics"
	"nutrition-workers/internal/models"
	"nutrition-workers/internal/storage/cache"
)

const (
	TaskType = "suggest-combos"
)

// Recommender produces complementary item suggestions for a main item.
type Recommender interface {
	Recommend(ctx context.Context, mainItemID string, limit int, prefs models.Preferences) ([]models.ComboSuggestion, error)
}

var _ Recommender = (*combo.Recommender)(nil)

type Handler struct {
	config      *Config
	recommender Recommender
	cache       *cache.Cache
	errors      *commonerrors.ErrorHandler
	logger      logger.Logger
}

// NewHandler wires the recommender with an optional response cache; pass a
// nil cache to disable caching.
func NewHandler(config *Config, rec Recommender, responseCache *cache.Cache, log logger.Logger) *Handler {
	scoped := log.With(map[string]interface{}{
		"taskType": TaskType,
	})
	return &Handler{
		config:      config,
		recommender: rec,
		cache:       responseCache,
		errors:      commonerrors.NewErrorHandler(scoped),
		logger:      scoped,
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
		h.errors.HandleJobError(ctx, client, job, commonerrors.NewValidationFailedError("variables must be a JSON object with a mainItemId field"))
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
	if strings.TrimSpace(input.MainItemID) == "" {
		return nil, commonerrors.NewValidationFailedError("mainItemId is required")
	}

	limit := input.Limit
	if limit <= 0 {
		limit = h.config.DefaultSuggestions
	}
	prefs := h.parsePreferences(input.Preferences)

	key := cacheKey(input.MainItemID, limit, prefs)
	var cached Output
	if h.cache.Get(ctx, key, &cached) {
		metrics.ComboCacheHits.WithLabelValues("hit").Inc()
		return &cached, nil
	}
	metrics.ComboCacheHits.WithLabelValues("miss").Inc()

	suggestions, err := h.recommender.Recommend(ctx, input.MainItemID, limit, prefs)
	if err != nil {
		return nil, err
	}

	output := &Output{
		Count:       len(suggestions),
		Suggestions: suggestions,
	}
	h.cache.Set(ctx, key, output)

	h.logger.Info("combo suggestions built", map[string]interface{}{
		"mainItemId": input.MainItemID,
		"count":      output.Count,
	})
	return output, nil
}

// parsePreferences tolerates any malformed preferences block.
func (h *Handler) parsePreferences(raw json.RawMessage) models.Preferences {
	var prefs models.Preferences
	if len(raw) == 0 {
		return prefs
	}
	if err := json.Unmarshal(raw, &prefs); err != nil {
		h.logger.Warn("ignoring unreadable preferences", map[string]interface{}{
			"error": err.Error(),
		})
		return models.Preferences{}
	}
	return prefs
}

func cacheKey(mainItemID string, limit int, prefs models.Preferences) string {
	return fmt.Sprintf("combos:%s:%d:%t:%t", mainItemID, limit, prefs.LowSugar, prefs.LowSodium)
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
