package models

import (
	"time"
)

// ProblemCategory enum
type ProblemCategory string

const (
	Infrastructure ProblemCategory = "infrastructure"
	Water          ProblemCategory = "water"
	Electricity    ProblemCategory = "electricity"
	Sanitation     ProblemCategory = "sanitation"
	Education      ProblemCategory = "education"
	Healthcare     ProblemCategory = "healthcare"
	Other          ProblemCategory = "other"
)

// ProblemStatus enum
type ProblemStatus string

const (
	Pending    ProblemStatus = "pending"
	InProgress ProblemStatus = "in_progress"
	Resolved   ProblemStatus = "resolved"
	Rejected   ProblemStatus = "rejected"
)

// ProblemUrgency enum
type ProblemUrgency string

const (
	Low    ProblemUrgency = "low"
	Medium ProblemUrgency = "medium"
	High   ProblemUrgency = "high"
)

// ValidCategories lists the accepted submission categories
var ValidCategories = map[ProblemCategory]bool{
	Infrastructure: true, Water: true, Electricity: true,
	Sanitation: true, Education: true, Healthcare: true, Other: true,
}

// ValidStatuses lists the accepted problem statuses
var ValidStatuses = map[ProblemStatus]bool{
	Pending: true, InProgress: true, Resolved: true, Rejected: true,
}

// ValidUrgencies lists the accepted urgency levels
var ValidUrgencies = map[ProblemUrgency]bool{
	Low: true, Medium: true, High: true,
}

// Problem represents a citizen-reported problem tracked through a status lifecycle.
// The numeric ID is assigned once at creation and never recomputed.
type Problem struct {
	ID            int64           `bson:"id" json:"id"`
	Title         string          `bson:"title" json:"title"`
	Category      ProblemCategory `bson:"category" json:"category"`
	Location      string          `bson:"location" json:"location"`
	Description   string          `bson:"description" json:"description"`
	Urgency       ProblemUrgency  `bson:"urgency" json:"urgency"`
	ImageURL      *string         `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	ContactNumber *string         `bson:"contactNumber,omitempty" json:"contactNumber,omitempty"`
	Status        ProblemStatus   `bson:"status" json:"status"`
	UserID        *string         `bson:"userId,omitempty" json:"userId,omitempty"`
	UserEmail     *string         `bson:"userEmail,omitempty" json:"userEmail,omitempty"`
	UserName      *string         `bson:"userName,omitempty" json:"userName,omitempty"`
	CreatedAt     time.Time       `bson:"createdAt" json:"createdAt"`
	// StatusUpdatedAt is nil until the first explicit status change.
	StatusUpdatedAt *time.Time `bson:"statusUpdatedAt,omitempty" json:"statusUpdatedAt,omitempty"`
}

// Anonymous reports whether the problem carries no submitter identity at all.
// Anonymous records are visible to every signed-in user.
func (p *Problem) Anonymous() bool {
	return (p.UserID == nil || *p.UserID == "") && (p.UserEmail == nil || *p.UserEmail == "")
}
