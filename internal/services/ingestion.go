package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/docvault-backend/internal/data/repos"
	types "github.com/yungbote/docvault-backend/internal/domain"
	"github.com/yungbote/docvault-backend/internal/platform/apierr"
	"github.com/yungbote/docvault-backend/internal/platform/dbctx"
	"github.com/yungbote/docvault-backend/internal/platform/logger"
)

// cancelledByUserMessage is stamped on jobs cancelled through the API.
const cancelledByUserMessage = "Job cancelled by user"

// estimatedSecondsPerDocument feeds the duration estimate of triggered jobs.
const estimatedSecondsPerDocument = 30

type CreateIngestionJobInput struct {
	JobName           string                 `json:"jobName"`
	Type              types.IngestionType    `json:"type"`
	Description       string                 `json:"description,omitempty"`
	Parameters        map[string]interface{} `json:"parameters,omitempty"`
	TotalItems        int                    `json:"totalItems,omitempty"`
	EstimatedDuration int                    `json:"estimatedDuration,omitempty"`
	RelatedDocumentID *uuid.UUID             `json:"relatedDocumentId,omitempty"`
}

// UpdateIngestionJobInput is the generic transition payload. Timestamp
// stamping happens inside Update, callers never set startedAt/completedAt.
type UpdateIngestionJobInput struct {
	JobName         *string                `json:"jobName,omitempty"`
	Description     *string                `json:"description,omitempty"`
	Status          *types.IngestionStatus `json:"status,omitempty"`
	ErrorMessage    *string                `json:"errorMessage,omitempty"`
	Result          map[string]interface{} `json:"result,omitempty"`
	ProcessedItems  *int                   `json:"processedItems,omitempty"`
	SuccessfulItems *int                   `json:"successfulItems,omitempty"`
	FailedItems     *int                   `json:"failedItems,omitempty"`
}

type TriggerIngestionInput struct {
	JobName     string                 `json:"jobName"`
	Description string                 `json:"description,omitempty"`
	DocumentIDs []uuid.UUID            `json:"documentIds,omitempty"`
	Options     map[string]interface{} `json:"options,omitempty"`
}

type IngestionPage struct {
	Jobs       []*types.IngestionJob `json:"jobs"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	TotalPages int                   `json:"totalPages"`
}

type IngestionStatistics struct {
	TotalJobs       int            `json:"totalJobs"`
	JobsByStatus    map[string]int `json:"jobsByStatus"`
	JobsByType      map[string]int `json:"jobsByType"`
	AverageDuration int            `json:"averageDuration"`
	SuccessRate     int            `json:"successRate"`
}

// SimulatorConfig controls the background progress simulator. Production
// uses the defaults; tests shrink them.
type SimulatorConfig struct {
	StartDelay   time.Duration
	TickInterval time.Duration
}

func (c SimulatorConfig) withDefaults() SimulatorConfig {
	if c.StartDelay <= 0 {
		c.StartDelay = 100 * time.Millisecond
	}
	if c.TickInterval <= 0 {
		c.TickInterval = time.Second
	}
	return c
}

type IngestionService interface {
	Create(dbc dbctx.Context, input CreateIngestionJobInput, userID uuid.UUID) (*types.IngestionJob, error)
	List(dbc dbctx.Context, q types.IngestionQuery) (*IngestionPage, error)
	Get(dbc dbctx.Context, id uuid.UUID) (*types.IngestionJob, error)
	Update(dbc dbctx.Context, id uuid.UUID, patch UpdateIngestionJobInput) (*types.IngestionJob, error)
	Cancel(dbc dbctx.Context, id uuid.UUID) (*types.IngestionJob, error)
	Remove(dbc dbctx.Context, id uuid.UUID) error
	Trigger(dbc dbctx.Context, input TriggerIngestionInput, userID uuid.UUID) (*types.IngestionJob, error)
	Statistics(dbc dbctx.Context) (*IngestionStatistics, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.IngestionJob, error)
}

type ingestionService struct {
	log      *logger.Logger
	jobRepo  repos.IngestionJobRepo
	userRepo repos.UserRepo
	docRepo  repos.DocumentRepo
	sim      SimulatorConfig
}

func NewIngestionService(
	baseLog *logger.Logger,
	jobRepo repos.IngestionJobRepo,
	userRepo repos.UserRepo,
	docRepo repos.DocumentRepo,
	sim SimulatorConfig,
) IngestionService {
	return &ingestionService{
		log:      baseLog.With("service", "IngestionService"),
		jobRepo:  jobRepo,
		userRepo: userRepo,
		docRepo:  docRepo,
		sim:      sim.withDefaults(),
	}
}

func (s *ingestionService) Create(dbc dbctx.Context, input CreateIngestionJobInput, userID uuid.UUID) (*types.IngestionJob, error) {
	name := strings.TrimSpace(input.JobName)
	if len(name) < 3 {
		return nil, apierr.Invalid("invalid_job_name", "job name must be at least 3 characters")
	}
	if !types.IsValidIngestionType(input.Type) {
		return nil, apierr.Invalid("invalid_job_type", fmt.Sprintf("unknown job type %q", input.Type))
	}
	if input.TotalItems < 0 || input.EstimatedDuration < 0 {
		return nil, apierr.Invalid("invalid_job_counts", "item counts and durations must be non-negative")
	}

	user, err := s.userRepo.GetByID(dbc, userID)
	if err != nil {
		return nil, apierr.Internal("user_lookup_failed", err)
	}
	if user == nil {
		return nil, apierr.NotFound("user_not_found", "user not found")
	}

	if input.RelatedDocumentID != nil {
		doc, err := s.docRepo.GetByID(dbc, *input.RelatedDocumentID)
		if err != nil {
			return nil, apierr.Internal("document_lookup_failed", err)
		}
		if doc == nil {
			return nil, apierr.NotFound("related_document_not_found", "related document not found")
		}
	}

	now := time.Now()
	job := &types.IngestionJob{
		ID:                uuid.New(),
		JobName:           name,
		Type:              input.Type,
		Status:            types.IngestionStatusPending,
		Description:       input.Description,
		Parameters:        datatypes.JSONMap(input.Parameters),
		TotalItems:        input.TotalItems,
		ProcessedItems:    0,
		SuccessfulItems:   0,
		FailedItems:       0,
		EstimatedDuration: input.EstimatedDuration,
		TriggeredByID:     user.ID,
		TriggeredBy:       user,
		RelatedDocumentID: input.RelatedDocumentID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.jobRepo.Create(dbc, job); err != nil {
		return nil, apierr.Internal("job_create_failed", err)
	}
	return withProgress(job), nil
}

func (s *ingestionService) List(dbc dbctx.Context, q types.IngestionQuery) (*IngestionPage, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 {
		limit = 10
	}
	q.Page = page
	q.Limit = limit

	jobs, total, err := s.jobRepo.List(dbc, q)
	if err != nil {
		return nil, apierr.Internal("job_list_failed", err)
	}
	for _, job := range jobs {
		withProgress(job)
	}
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &IngestionPage{
		Jobs:       jobs,
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
	}, nil
}

func (s *ingestionService) Get(dbc dbctx.Context, id uuid.UUID) (*types.IngestionJob, error) {
	job, err := s.jobRepo.GetByID(dbc, id)
	if err != nil {
		return nil, apierr.Internal("job_lookup_failed", err)
	}
	if job == nil {
		return nil, apierr.NotFound("job_not_found", fmt.Sprintf("ingestion job with id %s not found", id))
	}
	return withProgress(job), nil
}

// Update is the single transition entry point. The first move into
// processing stamps startedAt; the first move into a terminal status stamps
// completedAt and actualDuration. Both stamps are write-once.
func (s *ingestionService) Update(dbc dbctx.Context, id uuid.UUID, patch UpdateIngestionJobInput) (*types.IngestionJob, error) {
	job, err := s.Get(dbc, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if patch.JobName != nil {
		name := strings.TrimSpace(*patch.JobName)
		if len(name) < 3 {
			return nil, apierr.Invalid("invalid_job_name", "job name must be at least 3 characters")
		}
		updates["job_name"] = name
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.ErrorMessage != nil {
		updates["error_message"] = *patch.ErrorMessage
	}
	if patch.Result != nil {
		updates["result"] = datatypes.JSONMap(patch.Result)
	}
	for col, v := range map[string]*int{
		"processed_items":  patch.ProcessedItems,
		"successful_items": patch.SuccessfulItems,
		"failed_items":     patch.FailedItems,
	} {
		if v == nil {
			continue
		}
		if *v < 0 {
			return nil, apierr.Invalid("invalid_job_counts", "item counts must be non-negative")
		}
		updates[col] = *v
	}

	if patch.Status != nil {
		status := *patch.Status
		if !types.IsValidIngestionStatus(status) {
			return nil, apierr.Invalid("invalid_job_status", fmt.Sprintf("unknown status %q", status))
		}
		updates["status"] = status

		now := time.Now()
		if status == types.IngestionStatusProcessing && job.StartedAt == nil {
			updates["started_at"] = now
		}
		if status.IsTerminal() && job.CompletedAt == nil {
			updates["completed_at"] = now
			if job.StartedAt != nil {
				updates["actual_duration"] = int(math.Round(now.Sub(*job.StartedAt).Seconds()))
			}
		}
	}

	if len(updates) == 0 {
		return job, nil
	}
	if err := s.jobRepo.UpdateFields(dbc, id, updates); err != nil {
		return nil, apierr.Internal("job_update_failed", err)
	}
	return s.Get(dbc, id)
}

func (s *ingestionService) Cancel(dbc dbctx.Context, id uuid.UUID) (*types.IngestionJob, error) {
	job, err := s.Get(dbc, id)
	if err != nil {
		return nil, err
	}
	if job.Status != types.IngestionStatusPending && job.Status != types.IngestionStatusProcessing {
		return nil, apierr.InvalidState("job_not_cancellable",
			"cannot cancel job that is not pending or processing")
	}
	status := types.IngestionStatusCancelled
	msg := cancelledByUserMessage
	return s.Update(dbc, id, UpdateIngestionJobInput{
		Status:       &status,
		ErrorMessage: &msg,
	})
}

func (s *ingestionService) Remove(dbc dbctx.Context, id uuid.UUID) error {
	job, err := s.Get(dbc, id)
	if err != nil {
		return err
	}
	if !job.Status.IsTerminal() {
		return apierr.InvalidState("job_active", "cannot delete active ingestion job")
	}
	if err := s.jobRepo.Delete(dbc, id); err != nil {
		return apierr.Internal("job_delete_failed", err)
	}
	return nil
}

// Trigger creates an api_trigger job, moves it to processing and detaches the
// progress simulator. It returns as soon as the first tick is scheduled.
func (s *ingestionService) Trigger(dbc dbctx.Context, input TriggerIngestionInput, userID uuid.UUID) (*types.IngestionJob, error) {
	docIDs := make([]interface{}, 0, len(input.DocumentIDs))
	for _, id := range input.DocumentIDs {
		docIDs = append(docIDs, id.String())
	}
	estimatedItems := len(input.DocumentIDs)
	if estimatedItems < 1 {
		estimatedItems = 1
	}

	job, err := s.Create(dbc, CreateIngestionJobInput{
		JobName:     input.JobName,
		Type:        types.IngestionTypeAPITrigger,
		Description: input.Description,
		Parameters: map[string]interface{}{
			"documentIds": docIDs,
			"options":     input.Options,
		},
		TotalItems:        len(input.DocumentIDs),
		EstimatedDuration: estimatedItems * estimatedSecondsPerDocument,
	}, userID)
	if err != nil {
		return nil, err
	}

	status := types.IngestionStatusProcessing
	if _, err := s.Update(dbc, job.ID, UpdateIngestionJobInput{Status: &status}); err != nil {
		return nil, err
	}

	go s.runSimulator(job.ID)

	return s.Get(dbc, job.ID)
}

func (s *ingestionService) Statistics(dbc dbctx.Context) (*IngestionStatistics, error) {
	jobs, err := s.jobRepo.ListAll(dbc)
	if err != nil {
		return nil, apierr.Internal("job_stats_failed", err)
	}

	stats := &IngestionStatistics{
		TotalJobs:    len(jobs),
		JobsByStatus: map[string]int{},
		JobsByType:   map[string]int{},
	}
	totalDuration := 0
	withDuration := 0
	completed := 0
	for _, job := range jobs {
		stats.JobsByStatus[string(job.Status)]++
		stats.JobsByType[string(job.Type)]++
		if job.ActualDuration != nil {
			totalDuration += *job.ActualDuration
			withDuration++
		}
		if job.Status == types.IngestionStatusCompleted {
			completed++
		}
	}
	if withDuration > 0 {
		stats.AverageDuration = int(math.Round(float64(totalDuration) / float64(withDuration)))
	}
	if len(jobs) > 0 {
		stats.SuccessRate = int(math.Round(float64(completed) / float64(len(jobs)) * 100))
	}
	return stats, nil
}

func (s *ingestionService) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.IngestionJob, error) {
	jobs, err := s.jobRepo.ListByTriggeredBy(dbc, userID)
	if err != nil {
		return nil, apierr.Internal("job_list_failed", err)
	}
	for _, job := range jobs {
		withProgress(job)
	}
	return jobs, nil
}

var terminalStatuses = []types.IngestionStatus{
	types.IngestionStatusCompleted,
	types.IngestionStatusFailed,
	types.IngestionStatusCancelled,
}

// runSimulator drives one job's progress in a detached goroutine. Ticks are
// strictly sequential; each tick re-reads the job so a deleted job stops the
// simulator silently and a job that left processing is never written again.
func (s *ingestionService) runSimulator(jobID uuid.UUID) {
	dbc := dbctx.New(context.Background())

	time.Sleep(s.sim.StartDelay)

	job, err := s.jobRepo.GetByID(dbc, jobID)
	if err != nil {
		s.failSimulatedJob(dbc, jobID, err)
		return
	}
	if job == nil {
		return
	}

	total := job.TotalItems
	if total <= 0 {
		total = 1
	}

	for i := 1; i <= total; i++ {
		time.Sleep(s.sim.TickInterval)

		current, err := s.jobRepo.GetByID(dbc, jobID)
		if err != nil {
			s.failSimulatedJob(dbc, jobID, err)
			return
		}
		if current == nil {
			// Job deleted mid-flight; not an error.
			return
		}
		if current.Status != types.IngestionStatusProcessing {
			// Cancelled or finalized elsewhere; abort instead of overwriting.
			return
		}

		wrote, err := s.jobRepo.UpdateFieldsUnlessStatus(dbc, jobID, terminalStatuses, map[string]interface{}{
			"processed_items":  i,
			"successful_items": i,
			"failed_items":     0,
		})
		if err != nil {
			s.failSimulatedJob(dbc, jobID, err)
			return
		}
		if !wrote {
			return
		}
	}

	current, err := s.jobRepo.GetByID(dbc, jobID)
	if err != nil || current == nil || current.Status != types.IngestionStatusProcessing {
		return
	}
	status := types.IngestionStatusCompleted
	if _, err := s.Update(dbc, jobID, UpdateIngestionJobInput{
		Status: &status,
		Result: map[string]interface{}{
			"message":        "Ingestion completed successfully",
			"processedCount": total,
		},
	}); err != nil {
		s.log.Warn("Failed to finalize simulated job", "job_id", jobID, "error", err)
	}
}

// failSimulatedJob marks the job failed with the causing error, unless the
// job was deleted or already finalized, in which case it only logs.
func (s *ingestionService) failSimulatedJob(dbc dbctx.Context, jobID uuid.UUID, cause error) {
	job, err := s.jobRepo.GetByID(dbc, jobID)
	if err != nil || job == nil || job.Status.IsTerminal() {
		s.log.Warn("Simulator failure on missing or finalized job",
			"job_id", jobID,
			"error", cause,
		)
		return
	}
	status := types.IngestionStatusFailed
	msg := cause.Error()
	if _, err := s.Update(dbc, jobID, UpdateIngestionJobInput{
		Status:       &status,
		ErrorMessage: &msg,
	}); err != nil {
		s.log.Warn("Failed to mark simulated job as failed", "job_id", jobID, "error", err)
	}
}

func withProgress(job *types.IngestionJob) *types.IngestionJob {
	if job != nil {
		job.Progress = job.ComputeProgress()
	}
	return job
}
