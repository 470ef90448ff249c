// Package job runs analyses in the background for long texts, tracking each
// job's lifecycle in redis the same way the interactive endpoint would have
// answered synchronously.
package job

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/mxppxm/english-tutor/internal/core/analyze"
	"github.com/mxppxm/english-tutor/internal/logger"
	rds "github.com/mxppxm/english-tutor/internal/platform/redis"
	"github.com/mxppxm/english-tutor/internal/platform/tasks"
)

const TaskTypeAnalyze = "analyze:task"

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Record is the stored job state.
type Record struct {
	JobID  string            `json:"job_id"`
	Status Status            `json:"status"`
	Error  string            `json:"error,omitempty"`
	Result *analyze.Response `json:"result,omitempty"`
}

type payload struct {
	JobID   string          `json:"job_id"`
	Request analyze.Request `json:"request"`
}

type Service struct {
	redis      *rds.Service
	analyze    *analyze.Service
	tasks      *tasks.Client
	maxRetries int
	log        *logger.Logger
}

func NewService(redis *rds.Service, analyzeSvc *analyze.Service, taskClient *tasks.Client, maxRetries int) *Service {
	return &Service{
		redis:      redis,
		analyze:    analyzeSvc,
		tasks:      taskClient,
		maxRetries: maxRetries,
		log:        logger.New("AnalyzeJob"),
	}
}

// Enqueue validates the request, records a pending job, and hands the work
// to the task queue.
func (s *Service) Enqueue(ctx context.Context, req analyze.Request) (string, error) {
	if _, err := s.analyze.ResolveOptions(req); err != nil {
		return "", err
	}

	jobID := uuid.NewString()
	if err := s.store(ctx, Record{JobID: jobID, Status: StatusPending}); err != nil {
		return "", err
	}

	b, err := json.Marshal(payload{JobID: jobID, Request: req})
	if err != nil {
		return "", err
	}
	if err := s.tasks.Enqueue(asynq.NewTask(TaskTypeAnalyze, b), "default", s.maxRetries); err != nil {
		return "", err
	}
	s.log.LogInfof("enqueued analysis job %s", jobID)
	return jobID, nil
}

// HandleAnalyzeTask is the asynq worker entry for one analysis job.
func (s *Service) HandleAnalyzeTask(ctx context.Context, task *asynq.Task) error {
	var p payload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return fmt.Errorf("decoding analyze task: %w", err)
	}

	_ = s.store(ctx, Record{JobID: p.JobID, Status: StatusProcessing})

	opts, err := s.analyze.ResolveOptions(p.Request)
	if err != nil {
		_ = s.store(ctx, Record{JobID: p.JobID, Status: StatusFailed, Error: err.Error()})
		return err
	}

	var resp *analyze.Response
	if len(p.Request.Sentences) > 0 {
		resp, err = s.analyze.AnalyzeSentences(ctx, p.Request.Sentences, opts)
	} else {
		resp, err = s.analyze.AnalyzeText(ctx, p.Request.Text, opts)
	}
	if err != nil {
		s.log.LogErrorf("job %s failed: %v", p.JobID, err)
		_ = s.store(ctx, Record{JobID: p.JobID, Status: StatusFailed, Error: analyze.UserFacingError(err)})
		return err
	}

	s.log.LogInfof("job %s completed (%d sentences)", p.JobID, len(resp.Sentences))
	return s.store(ctx, Record{JobID: p.JobID, Status: StatusCompleted, Result: resp})
}

func (s *Service) Get(ctx context.Context, jobID string) (*Record, error) {
	var rec Record
	if err := s.redis.CacheGet(ctx, key(jobID), &rec); err != nil {
		return nil, fmt.Errorf("job not found: %s", jobID)
	}
	return &rec, nil
}

func (s *Service) store(ctx context.Context, rec Record) error {
	return s.redis.CacheSet(ctx, key(rec.JobID), rec, ttl(rec.Status))
}

func key(id string) string { return "job:" + id }

func ttl(s Status) time.Duration {
	if s == StatusCompleted || s == StatusFailed {
		return time.Hour
	}
	return 10 * time.Minute
}
