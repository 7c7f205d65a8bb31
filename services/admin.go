package services

import (
	"context"
	"errors"
	"log"
	"time"

	"gramseva-be/models"
	"gramseva-be/notify"
	"gramseva-be/store"
)

// ErrInvalidStatus is returned for a status update with an unknown status value.
var ErrInvalidStatus = errors.New("invalid status")

// Delivery reports one outbound notification attempt after a status change.
// Email and SMS branches are independent; either can be a sent record or an
// unavailable warning.
type Delivery struct {
	Channel     string `json:"channel"`
	Destination string `json:"destination,omitempty"`
	Subject     string `json:"subject,omitempty"`
	Message     string `json:"message,omitempty"`
	Sent        bool   `json:"sent"`
	Warning     string `json:"warning,omitempty"`
}

// AdminService exposes the privileged aggregate view and the status mutator.
type AdminService struct {
	problems store.ProblemStore
	notifier notify.Notifier
	now      func() time.Time
}

func NewAdminService(problems store.ProblemStore, notifier notify.Notifier) *AdminService {
	return &AdminService{
		problems: problems,
		notifier: notifier,
		now:      time.Now,
	}
}

// ListAll returns every stored problem regardless of owner, newest first.
func (s *AdminService) ListAll(ctx context.Context) ([]models.Problem, error) {
	return s.problems.All(ctx)
}

// Stats summarises the stored collection for the dashboard.
func (s *AdminService) Stats(ctx context.Context) (*store.Analytics, error) {
	return s.problems.Stats(ctx)
}

// SetStatus rewrites the problem's status and last-status-change timestamp
// together, then dispatches the submitter notifications. An unknown id
// leaves the store untouched and returns store.ErrNotFound.
func (s *AdminService) SetStatus(ctx context.Context, id int64, status models.ProblemStatus) (*models.Problem, []Delivery, error) {
	if !models.ValidStatuses[status] {
		return nil, nil, ErrInvalidStatus
	}

	updated, err := s.problems.SetStatus(ctx, id, status, s.now())
	if err != nil {
		return nil, nil, err
	}

	subject, body, sms := statusMessages(status, updated.Title)
	deliveries := make([]Delivery, 0, 2)

	if updated.UserEmail != nil && *updated.UserEmail != "" {
		d := Delivery{
			Channel:     "email",
			Destination: *updated.UserEmail,
			Subject:     subject,
			Message:     body,
			Sent:        true,
		}
		if err := s.notifier.Email(*updated.UserEmail, subject, body); err != nil {
			// Fire-and-forget: the status change stands regardless.
			log.Println("Error sending email notification:", err)
			d.Sent = false
			d.Warning = "Email notification could not be delivered"
		}
		deliveries = append(deliveries, d)
	} else {
		deliveries = append(deliveries, Delivery{
			Channel: "email",
			Warning: "Cannot send email notification - no email provided for this problem",
		})
	}

	if updated.ContactNumber != nil && *updated.ContactNumber != "" {
		d := Delivery{
			Channel:     "sms",
			Destination: *updated.ContactNumber,
			Message:     sms,
			Sent:        true,
		}
		if err := s.notifier.SMS(*updated.ContactNumber, sms); err != nil {
			log.Println("Error sending SMS notification:", err)
			d.Sent = false
			d.Warning = "SMS notification could not be delivered"
		}
		deliveries = append(deliveries, d)
	} else {
		deliveries = append(deliveries, Delivery{
			Channel: "sms",
			Warning: "Cannot send SMS notification - no phone number provided",
		})
	}

	return updated, deliveries, nil
}
