package store

import (
	"context"
	"errors"
	"time"

	"gramseva-be/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when a lookup or status update targets an
// identifier that is not in the store.
var ErrNotFound = errors.New("problem not found")

// problemIDBase offsets the sequence so submitted identifiers start at 1001,
// well below models.DemoIDBase.
const problemIDBase int64 = 1000

// CategoryCount is one slice of the category breakdown.
type CategoryCount struct {
	Name  string `bson:"name" json:"name"`
	Value int64  `bson:"value" json:"value"`
}

// DayCount is the number of submissions on one calendar day.
type DayCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// Analytics summarises the stored problem collection.
type Analytics struct {
	ByCategory    []CategoryCount  `json:"problemsByCategory"`
	ByStatus      map[string]int64 `json:"problemsByStatus"`
	Last7Days     []DayCount       `json:"last7Days"`
	TotalProblems int64            `json:"totalProblems"`
	OpenProblems  int64            `json:"openProblems"`
}

// ProblemStore is the persistence contract for problem records:
// insert-with-fresh-id, read-all, lookup and status update by id.
type ProblemStore interface {
	// Insert assigns the next identifier (strictly greater than every
	// existing one) and persists the record.
	Insert(ctx context.Context, p *models.Problem) error
	// All returns every stored problem, newest first by creation time.
	All(ctx context.Context) ([]models.Problem, error)
	// ByID returns the problem with the given identifier or ErrNotFound.
	ByID(ctx context.Context, id int64) (*models.Problem, error)
	// SetStatus rewrites status and statusUpdatedAt together and returns
	// the updated record, or ErrNotFound with the store untouched.
	SetStatus(ctx context.Context, id int64, status models.ProblemStatus, at time.Time) (*models.Problem, error)
	// Stats summarises the collection for the admin dashboard.
	Stats(ctx context.Context) (*Analytics, error)
}

// MongoProblemStore backs ProblemStore with the problems and counters
// collections.
type MongoProblemStore struct {
	problems *mongo.Collection
	counters *mongo.Collection
}

func NewMongoProblemStore(problems, counters *mongo.Collection) *MongoProblemStore {
	return &MongoProblemStore{problems: problems, counters: counters}
}

// EnsureProblemIndexes creates the unique id index and the createdAt sort index.
func EnsureProblemIndexes(collection *mongo.Collection) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "createdAt", Value: -1}},
		},
	})
	return err
}

// nextID increments the problems counter and returns the new identifier.
func (s *MongoProblemStore) nextID(ctx context.Context) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": "problems"},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, err
	}
	return problemIDBase + counter.Seq, nil
}

func (s *MongoProblemStore) Insert(ctx context.Context, p *models.Problem) error {
	id, err := s.nextID(ctx)
	if err != nil {
		return err
	}
	p.ID = id

	_, err = s.problems.InsertOne(ctx, p)
	return err
}

func (s *MongoProblemStore) All(ctx context.Context) ([]models.Problem, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := s.problems.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var problems []models.Problem
	if err := cursor.All(ctx, &problems); err != nil {
		return nil, err
	}
	return problems, nil
}

func (s *MongoProblemStore) ByID(ctx context.Context, id int64) (*models.Problem, error) {
	var problem models.Problem
	err := s.problems.FindOne(ctx, bson.M{"id": id}).Decode(&problem)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &problem, nil
}

func (s *MongoProblemStore) SetStatus(ctx context.Context, id int64, status models.ProblemStatus, at time.Time) (*models.Problem, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Problem
	err := s.problems.FindOneAndUpdate(ctx,
		bson.M{"id": id},
		bson.M{"$set": bson.M{"status": status, "statusUpdatedAt": at}},
		opts,
	).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *MongoProblemStore) Stats(ctx context.Context) (*Analytics, error) {
	categoryPipeline := []bson.M{
		{
			"$group": bson.M{
				"_id":   "$category",
				"count": bson.M{"$sum": 1},
			},
		},
		{
			"$project": bson.M{
				"name":  "$_id",
				"value": "$count",
				"_id":   0,
			},
		},
	}

	cursor, err := s.problems.Aggregate(ctx, categoryPipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var byCategory []CategoryCount
	if err := cursor.All(ctx, &byCategory); err != nil {
		return nil, err
	}

	byStatus := make(map[string]int64)
	for status := range models.ValidStatuses {
		count, err := s.problems.CountDocuments(ctx, bson.M{"status": status})
		if err != nil {
			count = 0
		}
		byStatus[string(status)] = count
	}

	var last7Days []DayCount
	for i := 6; i >= 0; i-- {
		date := time.Now().AddDate(0, 0, -i)
		date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
		nextDate := date.AddDate(0, 0, 1)

		count, err := s.problems.CountDocuments(ctx, bson.M{
			"createdAt": bson.M{
				"$gte": date,
				"$lt":  nextDate,
			},
		})
		if err != nil {
			count = 0
		}
		last7Days = append(last7Days, DayCount{Date: date.Format("2006-01-02"), Count: count})
	}

	total, err := s.problems.CountDocuments(ctx, bson.M{})
	if err != nil {
		total = 0
	}

	open, err := s.problems.CountDocuments(ctx, bson.M{
		"status": bson.M{"$in": []models.ProblemStatus{models.Pending, models.InProgress}},
	})
	if err != nil {
		open = 0
	}

	return &Analytics{
		ByCategory:    byCategory,
		ByStatus:      byStatus,
		Last7Days:     last7Days,
		TotalProblems: total,
		OpenProblems:  open,
	}, nil
}
