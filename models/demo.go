package models

import "time"

// DemoIDBase is the reserved identifier range for the fixed demonstration
// records. The problems sequence starts at 1000 and can never reach it, so
// merged lists stay collision-free without renumbering.
const DemoIDBase int64 = 9000000

func at(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DemoProblems returns a fresh copy of the demonstration record set shown to
// every signed-in user alongside their own submissions.
func DemoProblems() []Problem {
	t1 := at(2023, time.November, 15)
	t2 := at(2023, time.November, 12)
	t3 := at(2023, time.November, 5)
	return []Problem{
		{
			ID:              DemoIDBase + 1,
			Title:           "Water Supply Issue in Sector 4",
			Category:        Water,
			Location:        "Sector 4",
			Description:     "There has been no water supply in our area for the last 3 days.",
			Urgency:         High,
			Status:          Pending,
			CreatedAt:       t1,
			StatusUpdatedAt: &t1,
		},
		{
			ID:              DemoIDBase + 2,
			Title:           "Street Light Not Working",
			Category:        Electricity,
			Location:        "Near the main temple",
			Description:     "The street light near the main temple has not been working for a week.",
			Urgency:         Medium,
			Status:          InProgress,
			CreatedAt:       t2,
			StatusUpdatedAt: &t2,
		},
		{
			ID:              DemoIDBase + 3,
			Title:           "Garbage Collection",
			Category:        Sanitation,
			Location:        "East Colony",
			Description:     "Garbage has not been collected from our area for the past week.",
			Urgency:         High,
			Status:          Resolved,
			CreatedAt:       t3,
			StatusUpdatedAt: &t3,
		},
	}
}
