package repository

import (
	"context"
	"testing"
	"time"

	"github.com/yusufstar/photoai/internal/config"
	"github.com/yusufstar/photoai/internal/domain"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := InitDB(&config.DatabaseConfig{
		Driver:          "sqlite",
		Path:            ":memory:",
		MaxIdleConns:    1,
		MaxOpenConns:    1,
		ConnMaxLifetime: time.Hour,
		AutoMigrate:     true,
	})
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	return db
}

func seedJob(t *testing.T, repo *ModelRepository, status domain.TrainingStatus) *domain.TrainingJob {
	t.Helper()

	job := &domain.TrainingJob{
		ID:             "job-" + string(status),
		UserID:         "u1",
		ModelName:      "m1",
		ModelID:        "u1_123_m1",
		Gender:         "man",
		TriggerWord:    "ohwx",
		TrainingSteps:  1200,
		TrainingID:     "train_1",
		TrainingStatus: status,
	}
	if err := repo.Create(context.Background(), job); err != nil {
		t.Fatalf("Create: %v", err)
	}
	return job
}

func floatPtr(v float64) *float64 { return &v }
func strPtr(s string) *string     { return &s }

func TestModelRepository_ReconcileSucceeded(t *testing.T) {
	repo := NewModelRepository(newTestDB(t))
	seedJob(t, repo, domain.TrainingStatusStarting)

	rows, err := repo.ReconcileStatus(context.Background(), "u1", "m1", StatusUpdate{
		Status:       domain.TrainingStatusSucceeded,
		TrainingTime: floatPtr(120),
		Version:      strPtr("abc"),
	})
	if err != nil {
		t.Fatalf("ReconcileStatus: %v", err)
	}
	if rows != 1 {
		t.Fatalf("rows = %d, want 1", rows)
	}

	job, err := repo.GetByUserAndName(context.Background(), "u1", "m1")
	if err != nil {
		t.Fatalf("GetByUserAndName: %v", err)
	}
	if job.TrainingStatus != domain.TrainingStatusSucceeded {
		t.Errorf("status = %q", job.TrainingStatus)
	}
	if job.TrainingTime == nil || *job.TrainingTime != 120 {
		t.Errorf("training time = %v", job.TrainingTime)
	}
	if job.Version == nil || *job.Version != "abc" {
		t.Errorf("version = %v", job.Version)
	}
}

func TestModelRepository_ReconcileNonSuccessLeavesMetadataEmpty(t *testing.T) {
	repo := NewModelRepository(newTestDB(t))
	seedJob(t, repo, domain.TrainingStatusProcessing)

	rows, err := repo.ReconcileStatus(context.Background(), "u1", "m1", StatusUpdate{
		Status: domain.TrainingStatusFailed,
	})
	if err != nil {
		t.Fatalf("ReconcileStatus: %v", err)
	}
	if rows != 1 {
		t.Fatalf("rows = %d, want 1", rows)
	}

	job, _ := repo.GetByUserAndName(context.Background(), "u1", "m1")
	if job.TrainingStatus != domain.TrainingStatusFailed {
		t.Errorf("status = %q", job.TrainingStatus)
	}
	if job.TrainingTime != nil || job.Version != nil {
		t.Errorf("unexpected metadata: %v %v", job.TrainingTime, job.Version)
	}
}

func TestModelRepository_TerminalStatusIsFrozen(t *testing.T) {
	repo := NewModelRepository(newTestDB(t))
	seedJob(t, repo, domain.TrainingStatusStarting)

	if _, err := repo.ReconcileStatus(context.Background(), "u1", "m1", StatusUpdate{
		Status: domain.TrainingStatusSucceeded,
	}); err != nil {
		t.Fatalf("first reconcile: %v", err)
	}

	// A late or duplicate delivery must not regress a terminal row.
	rows, err := repo.ReconcileStatus(context.Background(), "u1", "m1", StatusUpdate{
		Status: domain.TrainingStatusProcessing,
	})
	if err != nil {
		t.Fatalf("second reconcile: %v", err)
	}
	if rows != 0 {
		t.Errorf("rows = %d, want 0", rows)
	}

	job, _ := repo.GetByUserAndName(context.Background(), "u1", "m1")
	if job.TrainingStatus != domain.TrainingStatusSucceeded {
		t.Errorf("status = %q, want succeeded", job.TrainingStatus)
	}
}

func TestModelRepository_ReconcileMissingRowIsNoOp(t *testing.T) {
	repo := NewModelRepository(newTestDB(t))

	rows, err := repo.ReconcileStatus(context.Background(), "ghost", "nope", StatusUpdate{
		Status: domain.TrainingStatusFailed,
	})
	if err != nil {
		t.Fatalf("ReconcileStatus: %v", err)
	}
	if rows != 0 {
		t.Errorf("rows = %d, want 0", rows)
	}
}

func TestModelRepository_ListByUser(t *testing.T) {
	repo := NewModelRepository(newTestDB(t))
	seedJob(t, repo, domain.TrainingStatusStarting)

	other := &domain.TrainingJob{
		ID:             "job-other",
		UserID:         "u2",
		ModelName:      "m1",
		ModelID:        "u2_456_m1",
		TrainingStatus: domain.TrainingStatusStarting,
	}
	if err := repo.Create(context.Background(), other); err != nil {
		t.Fatalf("Create: %v", err)
	}

	jobs, err := repo.ListByUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(jobs) != 1 || jobs[0].UserID != "u1" {
		t.Errorf("jobs = %+v", jobs)
	}
}
