package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"gramseva-be/imaging"
	"gramseva-be/models"
	"gramseva-be/store"
)

var phonePattern = regexp.MustCompile(`^[0-9]{10}$`)

// Identity is the caller's identity context supplied by the auth layer.
// Any or all fields may be empty for anonymous submissions.
type Identity struct {
	Key   string
	Email string
	Name  string
}

// Submission is a structured problem submission before validation.
type Submission struct {
	Title         string
	Category      string
	Location      string
	Description   string
	Urgency       string
	ContactNumber string
	// Image is the optional uploaded photo; nil when absent.
	Image     io.Reader
	ImageSize int64
}

// Validate checks the submission and returns a field-keyed error map,
// empty when the submission is acceptable.
func (s *Submission) Validate() map[string]string {
	errs := make(map[string]string)

	if strings.TrimSpace(s.Title) == "" {
		errs["title"] = "Problem title is required"
	}

	if strings.TrimSpace(s.Category) == "" {
		errs["category"] = "Category is required"
	} else if !models.ValidCategories[models.ProblemCategory(s.Category)] {
		errs["category"] = "Invalid category"
	}

	if strings.TrimSpace(s.Location) == "" {
		errs["location"] = "Location is required"
	}

	if strings.TrimSpace(s.Description) == "" {
		errs["description"] = "Description is required"
	} else if utf8.RuneCountInString(s.Description) < 30 {
		errs["description"] = "Description should be at least 30 characters"
	}

	if strings.TrimSpace(s.Urgency) == "" {
		errs["urgency"] = "Urgency level is required"
	} else if !models.ValidUrgencies[models.ProblemUrgency(s.Urgency)] {
		errs["urgency"] = "Invalid urgency level"
	}

	if s.ContactNumber != "" && !phonePattern.MatchString(s.ContactNumber) {
		errs["contactNumber"] = "Please enter a valid 10-digit phone number"
	}

	if s.Image != nil && s.ImageSize > imaging.MaxUploadSize {
		errs["image"] = "Image must be 5MB or smaller"
	}

	return errs
}

// SubmissionService accepts new problem records into the store.
type SubmissionService struct {
	problems store.ProblemStore
	images   imaging.Store
	now      func() time.Time
}

func NewSubmissionService(problems store.ProblemStore, images imaging.Store) *SubmissionService {
	return &SubmissionService{
		problems: problems,
		images:   images,
		now:      time.Now,
	}
}

// Create validates and stores a submission. A non-empty error map means the
// submission was rejected and nothing was written; a non-nil error means the
// image upload or the store failed, again with nothing written.
func (s *SubmissionService) Create(ctx context.Context, sub Submission, ident Identity) (*models.Problem, map[string]string, error) {
	if errs := sub.Validate(); len(errs) > 0 {
		return nil, errs, nil
	}

	var imageURL *string
	if sub.Image != nil {
		owner := ident.Key
		if owner == "" {
			owner = "anonymous"
		}
		ref, err := s.images.Save(owner, sub.Image, sub.ImageSize)
		if err != nil {
			if errors.Is(err, imaging.ErrTooLarge) {
				return nil, map[string]string{"image": "Image must be 5MB or smaller"}, nil
			}
			return nil, nil, fmt.Errorf("uploading image: %w", err)
		}
		imageURL = &ref
	}

	problem := models.Problem{
		Title:       strings.TrimSpace(sub.Title),
		Category:    models.ProblemCategory(sub.Category),
		Location:    strings.TrimSpace(sub.Location),
		Description: sub.Description,
		Urgency:     models.ProblemUrgency(sub.Urgency),
		ImageURL:    imageURL,
		Status:      models.Pending,
		CreatedAt:   s.now(),
	}
	if sub.ContactNumber != "" {
		problem.ContactNumber = &sub.ContactNumber
	}
	if ident.Key != "" {
		key := ident.Key
		problem.UserID = &key
	}
	if ident.Email != "" {
		email := ident.Email
		problem.UserEmail = &email
	}
	if ident.Name != "" {
		name := ident.Name
		problem.UserName = &name
	}

	if err := s.problems.Insert(ctx, &problem); err != nil {
		return nil, nil, fmt.Errorf("storing problem: %w", err)
	}
	return &problem, nil, nil
}
