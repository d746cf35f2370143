package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/adityapatel007-byte/Student-Material-Hub/internal/core/domain"
	"github.com/adityapatel007-byte/Student-Material-Hub/internal/core/ports"
)

const collectionQuestions = "questions"

type QuestionRepository struct {
	col *mongo.Collection
}

func NewQuestionRepository(db *mongo.Database) *QuestionRepository {
	return &QuestionRepository{col: db.Collection(collectionQuestions)}
}

func (r *QuestionRepository) Create(ctx context.Context, q *domain.Question) (*domain.Question, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	created := *q
	created.ID = primitive.NewObjectID().Hex()

	if _, err := r.col.InsertOne(ctx, created); err != nil {
		return nil, fmt.Errorf("insert question: %w", err)
	}
	return &created, nil
}

func (r *QuestionRepository) FindByID(ctx context.Context, id string, countView bool) (*domain.Question, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": id, "is_active": true}

	var q domain.Question
	var err error
	if countView {
		err = r.col.FindOneAndUpdate(ctx, filter,
			bson.M{"$inc": bson.M{"views": 1}},
			options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&q)
	} else {
		err = r.col.FindOne(ctx, filter).Decode(&q)
	}
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrQuestionNotFound
		}
		return nil, fmt.Errorf("find question: %w", err)
	}
	return &q, nil
}

func (r *QuestionRepository) List(ctx context.Context, in ports.ListQuestionsInput) (*ports.ListQuestionsResult, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"is_active": true}
	if in.SubjectID != "" {
		filter["subject_id"] = in.SubjectID
	}
	if in.Search != "" {
		filter["$or"] = bson.A{
			bson.M{"title": bson.M{"$regex": in.Search, "$options": "i"}},
			bson.M{"body": bson.M{"$regex": in.Search, "$options": "i"}},
		}
	}

	page, limit := normalizePage(in.Page, in.Limit, 20)

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count questions: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer cur.Close(ctx)

	var items []domain.Question
	if err := cur.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}

	return &ports.ListQuestionsResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, nil
}

func (r *QuestionRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrQuestionNotFound
	}
	return nil
}

func (r *QuestionRepository) AddAnswer(ctx context.Context, id string, answer domain.Answer) (*domain.Question, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var q domain.Question
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "is_active": true},
		bson.M{
			"$push": bson.M{"answers": answer},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&q)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrQuestionNotFound
		}
		return nil, fmt.Errorf("add answer: %w", err)
	}
	return &q, nil
}

// AcceptAnswer flags the chosen answer and clears the flag on every other
// answer in the same update, so at most one answer is ever accepted.
func (r *QuestionRepository) AcceptAnswer(ctx context.Context, id, answerID string) (*domain.Question, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var q domain.Question
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "answers.id": answerID},
		bson.M{
			"$set": bson.M{
				"answers.$[chosen].is_accepted": true,
				"answers.$[rest].is_accepted":   false,
				"updated_at":                    time.Now().UTC(),
			},
		},
		options.FindOneAndUpdate().
			SetArrayFilters(options.ArrayFilters{Filters: bson.A{
				bson.M{"chosen.id": answerID},
				bson.M{"rest.id": bson.M{"$ne": answerID}},
			}}).
			SetReturnDocument(options.After)).Decode(&q)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAnswerNotFound
		}
		return nil, fmt.Errorf("accept answer: %w", err)
	}
	return &q, nil
}

func (r *QuestionRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "subject_id", Value: 1}}},
		{Keys: bson.D{{Key: "author_id", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
