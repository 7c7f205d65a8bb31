package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"gramseva-be/models"
	"gramseva-be/store"
)

// StatusNotification tells the submitter that one of their problems changed
// status since they last checked.
type StatusNotification struct {
	ProblemID int64  `json:"problemId"`
	Title     string `json:"title"`
	Message   string `json:"message"`
}

// PersonalList is the reconciled view for one identity.
type PersonalList struct {
	Problems      []models.Problem     `json:"problems"`
	Notifications []StatusNotification `json:"notifications"`
	// LoadError carries the non-fatal warning raised when the stored
	// records could not be read and only demo records are shown.
	LoadError string `json:"loadError,omitempty"`
}

// Reconciler merges the demonstration records with the identity's own
// submissions and detects status changes since the identity last checked.
type Reconciler struct {
	problems store.ProblemStore
	checks   store.CheckStore
	now      func() time.Time
}

func NewReconciler(problems store.ProblemStore, checks store.CheckStore) *Reconciler {
	return &Reconciler{
		problems: problems,
		checks:   checks,
		now:      time.Now,
	}
}

// visibleTo reports whether the identity may see the record: anonymous
// records are visible to everyone, otherwise the identity key or the email
// (case-insensitively) must match.
func visibleTo(p *models.Problem, ident Identity) bool {
	if p.Anonymous() {
		return true
	}
	if ident.Key != "" && p.UserID != nil && *p.UserID == ident.Key {
		return true
	}
	if ident.Email != "" && p.UserEmail != nil && strings.EqualFold(*p.UserEmail, ident.Email) {
		return true
	}
	return false
}

// CanView reports whether the identity may open the record directly:
// its owner, anyone for anonymous/demo records, and admins for everything.
func CanView(p *models.Problem, ident Identity, isAdmin bool) bool {
	return isAdmin || visibleTo(p, ident)
}

// PersonalList returns the ordered list of problems the identity may see and
// one notification per record whose status changed since the last check.
// Storage read failures degrade to a demo-only list, never an error.
func (r *Reconciler) PersonalList(ctx context.Context, ident Identity) *PersonalList {
	now := r.now()
	result := &PersonalList{}

	merged := models.DemoProblems()

	stored, err := r.problems.All(ctx)
	if err != nil {
		log.Println("Error loading stored problems:", err)
		result.LoadError = "Failed to load your submitted problems"
	} else {
		for i := range stored {
			if visibleTo(&stored[i], ident) {
				merged = append(merged, stored[i])
			}
		}
	}
	result.Problems = merged

	lastCheck, checked, err := r.checks.LastCheck(ctx, ident.Key)
	if err != nil {
		// Treat an unreadable last-check record as a first visit.
		log.Println("Error reading last status check:", err)
		checked = false
	}

	if checked {
		for i := range merged {
			p := &merged[i]
			if p.StatusUpdatedAt != nil && p.StatusUpdatedAt.After(lastCheck) {
				result.Notifications = append(result.Notifications, StatusNotification{
					ProblemID: p.ID,
					Title:     p.Title,
					Message:   fmt.Sprintf("Your problem %q %s", p.Title, statusPhrase(p.Status)),
				})
			}
		}
	}

	// Advance the last-check time unconditionally, even when nothing changed.
	if err := r.checks.SetLastCheck(ctx, ident.Key, now); err != nil {
		log.Println("Error saving last status check:", err)
	}

	return result
}

// statusPhrase is the status-specific wording of a personal-list notification.
func statusPhrase(status models.ProblemStatus) string {
	switch status {
	case models.Resolved:
		return "has been resolved"
	case models.InProgress:
		return "is now being addressed"
	case models.Rejected:
		return "has been rejected"
	default:
		return "has been updated to " + string(status)
	}
}
