// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"

	"nutrition-workers/internal/common/metrics"
	"nutrition-workers/pkg/registry"
)

// JobHandler processes an activated job. Completing or failing the job is the
// handler's responsibility.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job)
}

// Worker binds a job handler to a Zeebe task type. When a registry is
// provided, job variables are schema-checked before the handler runs and
// invalid jobs are failed without retries.
type Worker struct {
	worker   worker.JobWorker
	logger   *zap.Logger
	taskType string
}

func NewWorker(
	client zbc.Client,
	taskType string,
	maxJobsActive int,
	timeout time.Duration,
	handler JobHandler,
	reg *registry.ActivityRegistry,
	logger *zap.Logger,
) *Worker {
	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(func(jobClient worker.JobClient, job entities.Job) {
			if reg != nil {
				if err := reg.ValidateInput(taskType, []byte(job.Variables)); err != nil {
					logger.Warn("job variables failed schema validation",
						zap.String("taskType", taskType),
						zap.Int64("jobKey", job.Key),
						zap.Error(err))
					failInvalidJob(jobClient, job, err, logger)
					return
				}
			}
			metrics.WorkerJobsActive.WithLabelValues(taskType).Inc()
			start := time.Now()
			handler.Handle(jobClient, job)
			metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(time.Since(start).Seconds())
			metrics.WorkerJobsActive.WithLabelValues(taskType).Dec()
		}).
		MaxJobsActive(maxJobsActive).
		Timeout(timeout).
		Open()

	logger.Info("worker registered",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", maxJobsActive))

	return &Worker{
		worker:   jobWorker,
		logger:   logger,
		taskType: taskType,
	}
}

// failInvalidJob fails a schema-invalid job with zero retries so the workflow
// sees a terminal incident instead of a retry loop.
func failInvalidJob(jobClient worker.JobClient, job entities.Job, cause error, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := jobClient.NewFailJobCommand().
		JobKey(job.Key).
		Retries(0).
		ErrorMessage(cause.Error()).
		Send(ctx)
	if err != nil {
		logger.Error("failed to fail invalid job",
			zap.Int64("jobKey", job.Key),
			zap.Error(err))
	}
}

// TaskType returns the bound task type.
func (w *Worker) TaskType() string {
	return w.taskType
}

// Close stops polling for new jobs and waits for in-flight jobs to finish.
func (w *Worker) Close() {
	w.logger.Info("stopping worker", zap.String("taskType", w.taskType))
	w.worker.Close()
}
