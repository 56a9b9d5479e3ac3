package repos

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/docvault-backend/internal/data/repos/testutil"
	types "github.com/yungbote/docvault-backend/internal/domain"
	"github.com/yungbote/docvault-backend/internal/platform/dbctx"
)

func seedJob(t *testing.T, repo IngestionJobRepo, dbc dbctx.Context, userID uuid.UUID, mutate func(*types.IngestionJob)) *types.IngestionJob {
	t.Helper()
	now := time.Now()
	job := &types.IngestionJob{
		ID:            uuid.New(),
		JobName:       "Nightly import",
		Type:          types.IngestionTypeBatchImport,
		Status:        types.IngestionStatusPending,
		TriggeredByID: userID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if mutate != nil {
		mutate(job)
	}
	if err := repo.Create(dbc, job); err != nil {
		t.Fatalf("failed to seed job: %v", err)
	}
	return job
}

func TestIngestionJobRepo_ListByStatusAndType(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	jobs := NewIngestionJobRepo(db, log)
	users := NewUserRepo(db, log)
	dbc := dbctx.New(context.Background())

	user := seedUser(t, users, dbc)
	seedJob(t, jobs, dbc, user.ID, nil)
	seedJob(t, jobs, dbc, user.ID, func(j *types.IngestionJob) {
		j.Status = types.IngestionStatusCompleted
	})
	seedJob(t, jobs, dbc, user.ID, func(j *types.IngestionJob) {
		j.Type = types.IngestionTypeAPITrigger
	})

	out, total, err := jobs.List(dbc, types.IngestionQuery{Status: types.IngestionStatusPending})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 pending jobs, got %d", total)
	}
	for _, j := range out {
		if j.Status != types.IngestionStatusPending {
			t.Fatalf("status filter leaked job with status %q", j.Status)
		}
	}

	_, total, err = jobs.List(dbc, types.IngestionQuery{Type: types.IngestionTypeAPITrigger})
	if err != nil {
		t.Fatalf("List by type failed: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected 1 api_trigger job, got %d", total)
	}
}

func TestIngestionJobRepo_UpdateFieldsUnlessStatus(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	jobs := NewIngestionJobRepo(db, log)
	users := NewUserRepo(db, log)
	dbc := dbctx.New(context.Background())

	user := seedUser(t, users, dbc)
	terminal := []types.IngestionStatus{
		types.IngestionStatusCompleted,
		types.IngestionStatusFailed,
		types.IngestionStatusCancelled,
	}

	running := seedJob(t, jobs, dbc, user.ID, func(j *types.IngestionJob) {
		j.Status = types.IngestionStatusProcessing
	})
	wrote, err := jobs.UpdateFieldsUnlessStatus(dbc, running.ID, terminal, map[string]interface{}{
		"processed_items": 3,
	})
	if err != nil {
		t.Fatalf("UpdateFieldsUnlessStatus failed: %v", err)
	}
	if !wrote {
		t.Fatalf("expected write on processing job")
	}
	got, err := jobs.GetByID(dbc, running.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.ProcessedItems != 3 {
		t.Fatalf("expected processed_items 3, got %d", got.ProcessedItems)
	}

	cancelled := seedJob(t, jobs, dbc, user.ID, func(j *types.IngestionJob) {
		j.Status = types.IngestionStatusCancelled
	})
	wrote, err = jobs.UpdateFieldsUnlessStatus(dbc, cancelled.ID, terminal, map[string]interface{}{
		"processed_items": 99,
	})
	if err != nil {
		t.Fatalf("UpdateFieldsUnlessStatus failed: %v", err)
	}
	if wrote {
		t.Fatalf("guarded update must not touch a cancelled job")
	}
	got, err = jobs.GetByID(dbc, cancelled.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.ProcessedItems != 0 {
		t.Fatalf("cancelled job was written, processed_items=%d", got.ProcessedItems)
	}
}

func TestIngestionJobRepo_Delete(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	jobs := NewIngestionJobRepo(db, log)
	users := NewUserRepo(db, log)
	dbc := dbctx.New(context.Background())

	user := seedUser(t, users, dbc)
	job := seedJob(t, jobs, dbc, user.ID, func(j *types.IngestionJob) {
		j.Status = types.IngestionStatusCompleted
	})

	if err := jobs.Delete(dbc, job.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	got, err := jobs.GetByID(dbc, job.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected job to be gone after delete")
	}
}

func TestIngestionJobRepo_ListByTriggeredBy(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	jobs := NewIngestionJobRepo(db, log)
	users := NewUserRepo(db, log)
	dbc := dbctx.New(context.Background())

	owner := seedUser(t, users, dbc)
	other := seedUser(t, users, dbc)
	seedJob(t, jobs, dbc, owner.ID, nil)
	seedJob(t, jobs, dbc, owner.ID, nil)
	seedJob(t, jobs, dbc, other.ID, nil)

	out, err := jobs.ListByTriggeredBy(dbc, owner.ID)
	if err != nil {
		t.Fatalf("ListByTriggeredBy failed: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 jobs for owner, got %d", len(out))
	}
}
