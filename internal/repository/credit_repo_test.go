package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/yusufstar/photoai/internal/domain"
)

func seedCredits(t *testing.T, repo *CreditRepository, trainings, images int) {
	t.Helper()

	err := repo.Create(context.Background(), &domain.UserCredits{
		ID:                  "c1",
		UserID:              "u1",
		MaxModelTrainings:   trainings,
		MaxImageGenerations: images,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
}

func TestCreditRepository_DeductModelTraining(t *testing.T) {
	repo := NewCreditRepository(newTestDB(t))
	seedCredits(t, repo, 1, 0)

	if err := repo.DeductModelTraining(context.Background(), "u1"); err != nil {
		t.Fatalf("first deduction: %v", err)
	}

	err := repo.DeductModelTraining(context.Background(), "u1")
	if !errors.Is(err, ErrInsufficientCredits) {
		t.Errorf("second deduction error = %v, want ErrInsufficientCredits", err)
	}

	credits, err := repo.GetByUserID(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetByUserID: %v", err)
	}
	if credits.ModelTrainingCount != 1 {
		t.Errorf("count = %d, want 1", credits.ModelTrainingCount)
	}
	if credits.RemainingModelTrainings() != 0 {
		t.Errorf("remaining = %d, want 0", credits.RemainingModelTrainings())
	}
}

func TestCreditRepository_DeductImageGenerationUnknownUser(t *testing.T) {
	repo := NewCreditRepository(newTestDB(t))

	err := repo.DeductImageGeneration(context.Background(), "ghost")
	if !errors.Is(err, ErrInsufficientCredits) {
		t.Errorf("error = %v, want ErrInsufficientCredits", err)
	}
}
