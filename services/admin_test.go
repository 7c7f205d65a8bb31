package services

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"gramseva-be/models"
	"gramseva-be/notify"
	"gramseva-be/store"
)

func findDelivery(deliveries []Delivery, channel string) *Delivery {
	for i := range deliveries {
		if deliveries[i].Channel == channel {
			return &deliveries[i]
		}
	}
	return nil
}

func TestSetStatusUnknownIDLeavesStoreUntouched(t *testing.T) {
	problems := store.NewMemoryProblemStore()
	ctx := context.Background()
	seedProblem(t, problems, Identity{Key: "user-1"}, "Record")

	before, _ := problems.All(ctx)

	svc := NewAdminService(problems, notify.NewRecorder())
	_, _, err := svc.SetStatus(ctx, 424242, models.Resolved)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	after, _ := problems.All(ctx)
	if !reflect.DeepEqual(before, after) {
		t.Error("collection must be unchanged after a failed status update")
	}
}

func TestSetStatusRejectsUnknownStatus(t *testing.T) {
	svc := NewAdminService(store.NewMemoryProblemStore(), notify.NewRecorder())
	_, _, err := svc.SetStatus(context.Background(), 1, models.ProblemStatus("escalated"))
	if !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestSetStatusSendsEmailAndSMS(t *testing.T) {
	problems := store.NewMemoryProblemStore()
	recorder := notify.NewRecorder()
	svc := NewAdminService(problems, recorder)
	ctx := context.Background()

	sub := validSubmission()
	sub.Title = "Pothole on Main Road"
	sub.ContactNumber = "9876543210"
	submitter := NewSubmissionService(problems, &fakeImageStore{})
	problem, _, err := submitter.Create(ctx, sub, Identity{Key: "user-1", Email: "a@x.com"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, deliveries, err := svc.SetStatus(ctx, problem.ID, models.Resolved)
	if err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if updated.Status != models.Resolved {
		t.Errorf("expected resolved, got %q", updated.Status)
	}

	if len(recorder.Emails) != 1 {
		t.Fatalf("expected 1 email, got %d", len(recorder.Emails))
	}
	email := recorder.Emails[0]
	if email.To != "a@x.com" {
		t.Errorf("email to %q", email.To)
	}
	if email.Subject != "Your reported problem has been resolved" {
		t.Errorf("unexpected subject %q", email.Subject)
	}
	if !strings.Contains(email.Body, `"Pothole on Main Road"`) {
		t.Errorf("body missing title: %q", email.Body)
	}

	if len(recorder.SMSes) != 1 {
		t.Fatalf("expected 1 SMS, got %d", len(recorder.SMSes))
	}
	if recorder.SMSes[0].To != "9876543210" {
		t.Errorf("SMS to %q", recorder.SMSes[0].To)
	}

	emailDelivery := findDelivery(deliveries, "email")
	smsDelivery := findDelivery(deliveries, "sms")
	if emailDelivery == nil || !emailDelivery.Sent {
		t.Error("expected a sent email delivery entry")
	}
	if smsDelivery == nil || !smsDelivery.Sent {
		t.Error("expected a sent SMS delivery entry")
	}
}

func TestSetStatusWarnsWhenContactsMissing(t *testing.T) {
	problems := store.NewMemoryProblemStore()
	recorder := notify.NewRecorder()
	svc := NewAdminService(problems, recorder)
	ctx := context.Background()

	problem := seedProblem(t, problems, Identity{Key: "user-1"}, "No contacts")

	_, deliveries, err := svc.SetStatus(ctx, problem.ID, models.InProgress)
	if err != nil {
		t.Fatalf("SetStatus: %v", err)
	}

	emailDelivery := findDelivery(deliveries, "email")
	if emailDelivery == nil || emailDelivery.Sent || emailDelivery.Warning == "" {
		t.Errorf("expected an email-unavailable warning, got %+v", emailDelivery)
	}
	smsDelivery := findDelivery(deliveries, "sms")
	if smsDelivery == nil || smsDelivery.Sent || smsDelivery.Warning == "" {
		t.Errorf("expected an SMS-unavailable warning, got %+v", smsDelivery)
	}
	if len(recorder.Emails) != 0 || len(recorder.SMSes) != 0 {
		t.Error("nothing should be dispatched without contact details")
	}
}

func TestSetStatusSurvivesNotifierFailure(t *testing.T) {
	problems := store.NewMemoryProblemStore()
	recorder := notify.NewRecorder()
	recorder.Err = errors.New("provider down")
	svc := NewAdminService(problems, recorder)
	ctx := context.Background()

	problem := seedProblem(t, problems, Identity{Key: "user-1", Email: "a@x.com"}, "Record")

	updated, deliveries, err := svc.SetStatus(ctx, problem.ID, models.Rejected)
	if err != nil {
		t.Fatalf("status change must not fail with the notifier down: %v", err)
	}
	if updated.Status != models.Rejected {
		t.Errorf("expected rejected, got %q", updated.Status)
	}
	emailDelivery := findDelivery(deliveries, "email")
	if emailDelivery == nil || emailDelivery.Sent {
		t.Error("expected the email delivery to be marked unsent")
	}
}

func TestListAllNewestFirst(t *testing.T) {
	problems := store.NewMemoryProblemStore()
	svc := NewAdminService(problems, notify.NewRecorder())
	ctx := context.Background()

	older := NewSubmissionService(problems, &fakeImageStore{})
	older.now = fixedNow(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC))
	older.Create(ctx, validSubmission(), Identity{Key: "user-1"})

	newer := NewSubmissionService(problems, &fakeImageStore{})
	newer.now = fixedNow(time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC))
	newer.Create(ctx, validSubmission(), Identity{Key: "user-2"})

	all, err := svc.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 problems, got %d", len(all))
	}
	if !all[0].CreatedAt.After(all[1].CreatedAt) {
		t.Error("expected newest first ordering")
	}
}

// The end-to-end lifecycle: submit without contact details, resolve as
// admin, observe the email-unavailable warning and the timestamps.
func TestSubmitThenResolveLifecycle(t *testing.T) {
	problems := store.NewMemoryProblemStore()
	recorder := notify.NewRecorder()
	ctx := context.Background()

	created := time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC)
	resolved := created.Add(48 * time.Hour)

	submitter := NewSubmissionService(problems, &fakeImageStore{})
	submitter.now = fixedNow(created)

	sub := Submission{
		Title:       "Water Supply Issue",
		Category:    "water",
		Location:    "Sector 4",
		Description: "No water supply for three days now.", // 35 characters
		Urgency:     "high",
	}
	problem, fieldErrors, err := submitter.Create(ctx, sub, Identity{Key: "user-1"})
	if err != nil || len(fieldErrors) > 0 {
		t.Fatalf("Create: %v %v", err, fieldErrors)
	}
	if problem.Status != models.Pending {
		t.Errorf("expected pending, got %q", problem.Status)
	}
	if problem.Urgency != models.High {
		t.Errorf("expected high urgency, got %q", problem.Urgency)
	}
	if problem.ContactNumber != nil {
		t.Error("expected no contact number")
	}

	admin := NewAdminService(problems, recorder)
	admin.now = fixedNow(resolved)

	updated, deliveries, err := admin.SetStatus(ctx, problem.ID, models.Resolved)
	if err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if updated.Status != models.Resolved {
		t.Errorf("expected resolved, got %q", updated.Status)
	}
	if updated.StatusUpdatedAt == nil {
		t.Fatal("expected a status-change timestamp")
	}
	if !updated.StatusUpdatedAt.After(updated.CreatedAt) {
		t.Error("status-change timestamp must be strictly after creation")
	}

	emailDelivery := findDelivery(deliveries, "email")
	if emailDelivery == nil || emailDelivery.Sent || emailDelivery.Warning == "" {
		t.Errorf("expected an email-unavailable warning, got %+v", emailDelivery)
	}
}
