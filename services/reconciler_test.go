package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"gramseva-be/models"
	"gramseva-be/store"
)

// brokenStore fails every read, for the fallback path.
type brokenStore struct {
	store.MemoryProblemStore
}

func (b *brokenStore) All(ctx context.Context) ([]models.Problem, error) {
	return nil, errors.New("collection unavailable")
}

func seedProblem(t *testing.T, problems store.ProblemStore, ident Identity, title string) *models.Problem {
	t.Helper()
	svc := NewSubmissionService(problems, &fakeImageStore{})
	sub := validSubmission()
	sub.Title = title
	problem, fieldErrors, err := svc.Create(context.Background(), sub, ident)
	if err != nil || len(fieldErrors) > 0 {
		t.Fatalf("seed: %v %v", err, fieldErrors)
	}
	return problem
}

func newTestReconciler(problems store.ProblemStore) (*Reconciler, *store.MemoryCheckStore) {
	checks := store.NewMemoryCheckStore()
	return NewReconciler(problems, checks), checks
}

func TestPersonalListFirstVisitHasNoNotifications(t *testing.T) {
	problems := store.NewMemoryProblemStore()
	r, checks := newTestReconciler(problems)
	ident := Identity{Key: "user-1", Email: "a@x.com"}

	result := r.PersonalList(context.Background(), ident)
	if len(result.Notifications) != 0 {
		t.Errorf("first visit must not notify, got %d", len(result.Notifications))
	}

	// The last-check time advances even when nothing changed.
	if _, ok, _ := checks.LastCheck(context.Background(), "user-1"); !ok {
		t.Error("expected last-check time to be persisted")
	}
}

func TestPersonalListIncludesDemoRecords(t *testing.T) {
	problems := store.NewMemoryProblemStore()
	r, _ := newTestReconciler(problems)

	result := r.PersonalList(context.Background(), Identity{Key: "user-1"})
	if len(result.Problems) != 3 {
		t.Fatalf("expected the 3 demo records, got %d", len(result.Problems))
	}
	for _, p := range result.Problems {
		if p.ID <= models.DemoIDBase {
			t.Errorf("demo record %q outside the reserved range: %d", p.Title, p.ID)
		}
	}
}

func TestCanView(t *testing.T) {
	problems := store.NewMemoryProblemStore()
	owner := Identity{Key: "user-1", Email: "a@x.com"}
	owned := seedProblem(t, problems, owner, "Owned record")
	anon := seedProblem(t, problems, Identity{}, "Anonymous record")

	if !CanView(owned, owner, false) {
		t.Error("owner must see their own record")
	}
	if !CanView(anon, Identity{Key: "user-2"}, false) {
		t.Error("anonymous records are visible to anyone")
	}

	stranger := Identity{Key: "user-2", Email: "b@y.com"}
	if CanView(owned, stranger, false) {
		t.Error("non-admin must not see someone else's record")
	}
	// Admins see every record, owned or not.
	if !CanView(owned, stranger, true) {
		t.Error("admin must see records they did not submit")
	}
}

func TestPersonalListOwnershipFilter(t *testing.T) {
	problems := store.NewMemoryProblemStore()
	r, _ := newTestReconciler(problems)
	ctx := context.Background()

	seedProblem(t, problems, Identity{Key: "user-1", Email: "a@x.com"}, "Mine by key")
	seedProblem(t, problems, Identity{Email: "a@x.com"}, "Mine by email")
	seedProblem(t, problems, Identity{}, "Anonymous record")
	seedProblem(t, problems, Identity{Key: "user-2", Email: "b@y.com"}, "Someone else's")

	// Caller's email differs only by case from the stored one.
	result := r.PersonalList(ctx, Identity{Key: "user-1", Email: "A@X.COM"})

	titles := make(map[string]bool)
	for _, p := range result.Problems {
		titles[p.Title] = true
	}
	for _, want := range []string{"Mine by key", "Mine by email", "Anonymous record"} {
		if !titles[want] {
			t.Errorf("expected %q in the personal list", want)
		}
	}
	if titles["Someone else's"] {
		t.Error("foreign record must be filtered out")
	}
}

func TestPersonalListIdentifierDisjointness(t *testing.T) {
	problems := store.NewMemoryProblemStore()
	r, _ := newTestReconciler(problems)
	ident := Identity{Key: "user-1"}

	for i := 0; i < 5; i++ {
		seedProblem(t, problems, ident, "Record")
	}

	result := r.PersonalList(context.Background(), ident)
	seen := make(map[int64]bool)
	for _, p := range result.Problems {
		if seen[p.ID] {
			t.Errorf("duplicate identifier %d in merged list", p.ID)
		}
		seen[p.ID] = true
	}
}

func TestPersonalListNotifiesOnceThenGoesQuiet(t *testing.T) {
	problems := store.NewMemoryProblemStore()
	r, checks := newTestReconciler(problems)
	ctx := context.Background()
	ident := Identity{Key: "user-1", Email: "a@x.com"}

	problem := seedProblem(t, problems, ident, "Broken Street Light")

	// Establish a last-check time before the status change.
	checks.SetLastCheck(ctx, ident.Key, time.Now().Add(-time.Hour))

	if _, err := problems.SetStatus(ctx, problem.ID, models.Resolved, time.Now()); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}

	first := r.PersonalList(ctx, ident)
	if len(first.Notifications) != 1 {
		t.Fatalf("expected exactly one notification, got %d", len(first.Notifications))
	}
	n := first.Notifications[0]
	if n.ProblemID != problem.ID || n.Title != "Broken Street Light" {
		t.Errorf("notification for wrong record: %+v", n)
	}
	if !strings.Contains(n.Message, "has been resolved") {
		t.Errorf("unexpected message: %q", n.Message)
	}

	// No intervening change: the second batch is empty.
	second := r.PersonalList(ctx, ident)
	if len(second.Notifications) != 0 {
		t.Errorf("expected empty second batch, got %d", len(second.Notifications))
	}
}

func TestPersonalListStatusPhrases(t *testing.T) {
	tests := []struct {
		status models.ProblemStatus
		want   string
	}{
		{models.Resolved, "has been resolved"},
		{models.InProgress, "is now being addressed"},
		{models.Rejected, "has been rejected"},
		{models.Pending, "has been updated to pending"},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			problems := store.NewMemoryProblemStore()
			r, checks := newTestReconciler(problems)
			ctx := context.Background()
			ident := Identity{Key: "user-1"}

			problem := seedProblem(t, problems, ident, "Record")
			checks.SetLastCheck(ctx, ident.Key, time.Now().Add(-time.Hour))
			problems.SetStatus(ctx, problem.ID, tt.status, time.Now())

			result := r.PersonalList(ctx, ident)
			if len(result.Notifications) != 1 {
				t.Fatalf("expected one notification, got %d", len(result.Notifications))
			}
			if !strings.Contains(result.Notifications[0].Message, tt.want) {
				t.Errorf("message %q missing %q", result.Notifications[0].Message, tt.want)
			}
		})
	}
}

func TestPersonalListFallsBackToDemoOnReadError(t *testing.T) {
	r, _ := newTestReconciler(&brokenStore{})

	result := r.PersonalList(context.Background(), Identity{Key: "user-1"})
	if result.LoadError == "" {
		t.Error("expected a non-fatal load error")
	}
	if len(result.Problems) != 3 {
		t.Errorf("expected demo-only fallback list, got %d records", len(result.Problems))
	}
}

func TestPersonalListDemoRecordCanNotify(t *testing.T) {
	problems := store.NewMemoryProblemStore()
	r, checks := newTestReconciler(problems)
	ctx := context.Background()
	ident := Identity{Key: "user-1"}

	// Last check predates the demo records' fixed status timestamps.
	checks.SetLastCheck(ctx, ident.Key, time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC))

	result := r.PersonalList(ctx, ident)
	if len(result.Notifications) != 3 {
		t.Errorf("expected all demo records to notify, got %d", len(result.Notifications))
	}
}
