package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/yusufstar/photoai/internal/domain"
	"github.com/yusufstar/photoai/internal/identity"
	"github.com/yusufstar/photoai/internal/mailer"
	"github.com/yusufstar/photoai/internal/repository"
)

type fakeModelStore struct {
	rows    int64
	err     error
	lastKey [2]string
	updates []repository.StatusUpdate
}

func (f *fakeModelStore) ReconcileStatus(_ context.Context, userID, modelName string, update repository.StatusUpdate) (int64, error) {
	f.lastKey = [2]string{userID, modelName}
	f.updates = append(f.updates, update)
	return f.rows, f.err
}

type fakeResolver struct {
	user *identity.User
	err  error
}

func (f *fakeResolver) GetUserByID(_ context.Context, id string) (*identity.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

type fakeMailer struct {
	sent []mailer.Message
	err  error
}

func (f *fakeMailer) Send(_ context.Context, msg mailer.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fakeDeleter struct {
	deleted []string
	err     error
}

func (f *fakeDeleter) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return f.err
}

func floatPtr(v float64) *float64 { return &v }

func newTestReconciler(models *fakeModelStore, resolver *fakeResolver, mail *fakeMailer, del *fakeDeleter) *ReconcilerService {
	if models == nil {
		models = &fakeModelStore{rows: 1}
	}
	if resolver == nil {
		resolver = &fakeResolver{user: &identity.User{ID: "u1", Email: "u1@example.com", DisplayName: "Test User"}}
	}
	if mail == nil {
		mail = &fakeMailer{}
	}
	if del == nil {
		del = &fakeDeleter{}
	}
	return NewReconcilerService(models, resolver, mail, del)
}

func TestReconciler_Succeeded(t *testing.T) {
	models := &fakeModelStore{rows: 1}
	mail := &fakeMailer{}
	del := &fakeDeleter{}
	svc := newTestReconciler(models, nil, mail, del)

	cb := &domain.TrainingCallback{
		Status:  domain.TrainingStatusSucceeded,
		Metrics: &domain.CallbackMetrics{TotalTime: floatPtr(120)},
		Output:  &domain.CallbackOutput{Version: "acme/m1:abc"},
	}

	err := svc.HandleCallback(context.Background(), CallbackParams{UserID: "u1", ModelName: "m1", FileName: "u1/f.zip"}, cb)
	if err != nil {
		t.Fatalf("HandleCallback: %v", err)
	}

	if models.lastKey != [2]string{"u1", "m1"} {
		t.Errorf("reconcile key = %v", models.lastKey)
	}
	update := models.updates[0]
	if update.Status != domain.TrainingStatusSucceeded {
		t.Errorf("status = %q", update.Status)
	}
	if update.TrainingTime == nil || *update.TrainingTime != 120 {
		t.Errorf("training time = %v", update.TrainingTime)
	}
	if update.Version == nil || *update.Version != "abc" {
		t.Errorf("version = %v", update.Version)
	}

	if len(mail.sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(mail.sent))
	}
	if mail.sent[0].To != "u1@example.com" {
		t.Errorf("email to = %q", mail.sent[0].To)
	}
	if !strings.Contains(mail.sent[0].Subject, "completed") {
		t.Errorf("subject = %q", mail.sent[0].Subject)
	}

	if len(del.deleted) != 1 || del.deleted[0] != "u1/f.zip" {
		t.Errorf("deleted = %v", del.deleted)
	}
}

func TestReconciler_SucceededWithoutMetrics(t *testing.T) {
	models := &fakeModelStore{rows: 1}
	svc := newTestReconciler(models, nil, nil, nil)

	cb := &domain.TrainingCallback{Status: domain.TrainingStatusSucceeded}

	if err := svc.HandleCallback(context.Background(), CallbackParams{UserID: "u1", ModelName: "m1"}, cb); err != nil {
		t.Fatalf("HandleCallback: %v", err)
	}

	update := models.updates[0]
	if update.TrainingTime != nil {
		t.Errorf("training time = %v, want nil", update.TrainingTime)
	}
	if update.Version != nil {
		t.Errorf("version = %v, want nil", update.Version)
	}
}

func TestReconciler_NonSuccessStatus(t *testing.T) {
	for _, status := range []string{"failed", "canceled", "processing"} {
		t.Run(status, func(t *testing.T) {
			models := &fakeModelStore{rows: 1}
			mail := &fakeMailer{}
			del := &fakeDeleter{}
			svc := newTestReconciler(models, nil, mail, del)

			cb := &domain.TrainingCallback{
				Status: domain.TrainingStatus(status),
				// Provider metadata on non-success branches must be ignored.
				Metrics: &domain.CallbackMetrics{TotalTime: floatPtr(5)},
				Output:  &domain.CallbackOutput{Version: "acme/m1:zzz"},
			}

			err := svc.HandleCallback(context.Background(), CallbackParams{UserID: "u1", ModelName: "m1", FileName: "u1/f.zip"}, cb)
			if err != nil {
				t.Fatalf("HandleCallback: %v", err)
			}

			update := models.updates[0]
			if string(update.Status) != status {
				t.Errorf("status = %q, want %q", update.Status, status)
			}
			if update.TrainingTime != nil || update.Version != nil {
				t.Errorf("unexpected success metadata: %v %v", update.TrainingTime, update.Version)
			}

			if len(mail.sent) != 1 || !strings.Contains(mail.sent[0].Subject, status) {
				t.Errorf("mail = %+v", mail.sent)
			}

			// Archive is cleaned up on every terminal and non-terminal branch.
			if len(del.deleted) != 1 {
				t.Errorf("deleted = %v", del.deleted)
			}
		})
	}
}

func TestReconciler_UnknownUser(t *testing.T) {
	models := &fakeModelStore{rows: 1}
	mail := &fakeMailer{}
	del := &fakeDeleter{}
	svc := newTestReconciler(models, &fakeResolver{err: identity.ErrUserNotFound}, mail, del)

	cb := &domain.TrainingCallback{Status: domain.TrainingStatusSucceeded}

	err := svc.HandleCallback(context.Background(), CallbackParams{UserID: "nope", ModelName: "m1", FileName: "f.zip"}, cb)
	if !errors.Is(err, identity.ErrUserNotFound) {
		t.Fatalf("error = %v, want ErrUserNotFound", err)
	}

	if len(models.updates) != 0 {
		t.Error("status was written for unknown user")
	}
	if len(mail.sent) != 0 {
		t.Error("email was sent for unknown user")
	}
	if len(del.deleted) != 0 {
		t.Error("cleanup ran for unknown user")
	}
}

func TestReconciler_MailFailureKeepsStatusWrite(t *testing.T) {
	models := &fakeModelStore{rows: 1}
	mail := &fakeMailer{err: errors.New("provider down")}
	del := &fakeDeleter{}
	svc := newTestReconciler(models, nil, mail, del)

	cb := &domain.TrainingCallback{Status: domain.TrainingStatusFailed}

	err := svc.HandleCallback(context.Background(), CallbackParams{UserID: "u1", ModelName: "m1", FileName: "f.zip"}, cb)
	if err == nil {
		t.Fatal("expected error from mail failure")
	}

	// Status write happened before the send and is not rolled back.
	if len(models.updates) != 1 {
		t.Error("status write missing")
	}
	// Cleanup is skipped once the request is failing.
	if len(del.deleted) != 0 {
		t.Errorf("deleted = %v", del.deleted)
	}
}

func TestReconciler_CleanupFailureIsSwallowed(t *testing.T) {
	del := &fakeDeleter{err: errors.New("object store down")}
	svc := newTestReconciler(nil, nil, nil, del)

	cb := &domain.TrainingCallback{Status: domain.TrainingStatusSucceeded}

	err := svc.HandleCallback(context.Background(), CallbackParams{UserID: "u1", ModelName: "m1", FileName: "f.zip"}, cb)
	if err != nil {
		t.Fatalf("cleanup failure escaped: %v", err)
	}
	if len(del.deleted) != 1 {
		t.Errorf("delete attempts = %d, want 1", len(del.deleted))
	}
}

func TestReconciler_NoOpWhenRowMissing(t *testing.T) {
	models := &fakeModelStore{rows: 0}
	svc := newTestReconciler(models, nil, nil, nil)

	cb := &domain.TrainingCallback{Status: domain.TrainingStatusFailed}

	// A missing or already-terminal row must not produce an error.
	if err := svc.HandleCallback(context.Background(), CallbackParams{UserID: "u1", ModelName: "ghost", FileName: "f.zip"}, cb); err != nil {
		t.Fatalf("HandleCallback: %v", err)
	}
}
