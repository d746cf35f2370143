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

const collectionSubjects = "subjects"

type SubjectRepository struct {
	col *mongo.Collection
}

func NewSubjectRepository(db *mongo.Database) *SubjectRepository {
	return &SubjectRepository{col: db.Collection(collectionSubjects)}
}

func (r *SubjectRepository) Create(ctx context.Context, s *domain.Subject) (*domain.Subject, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	created := *s
	created.ID = primitive.NewObjectID().Hex()
	now := time.Now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now

	if _, err := r.col.InsertOne(ctx, created); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateSubject
		}
		return nil, fmt.Errorf("insert subject: %w", err)
	}
	return &created, nil
}

func (r *SubjectRepository) FindByID(ctx context.Context, id string) (*domain.Subject, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var s domain.Subject
	err := r.col.FindOne(ctx, bson.M{"_id": id, "is_active": true}).Decode(&s)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSubjectNotFound
		}
		return nil, fmt.Errorf("find subject: %w", err)
	}
	return &s, nil
}

func (r *SubjectRepository) List(ctx context.Context, in ports.ListSubjectsInput) (*ports.ListSubjectsResult, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"is_active": true}
	if in.Department != "" {
		filter["department"] = bson.M{"$regex": in.Department, "$options": "i"}
	}
	if in.Semester > 0 {
		filter["semester"] = in.Semester
	}
	if in.Search != "" {
		filter["$or"] = bson.A{
			bson.M{"name": bson.M{"$regex": in.Search, "$options": "i"}},
			bson.M{"code": bson.M{"$regex": in.Search, "$options": "i"}},
		}
	}

	page, limit := normalizePage(in.Page, in.Limit, 25)

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count subjects: %w", err)
	}

	sort := bson.D{{Key: "name", Value: 1}}
	if in.Sort == "-created_at" {
		sort = bson.D{{Key: "created_at", Value: -1}}
	}

	opts := options.Find().
		SetSort(sort).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	defer cur.Close(ctx)

	var items []domain.Subject
	if err := cur.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode subjects: %w", err)
	}

	return &ports.ListSubjectsResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, nil
}

func (r *SubjectRepository) Update(ctx context.Context, id string, in ports.CreateSubjectInput) (*domain.Subject, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{"updated_at": time.Now().UTC()}
	if in.Name != "" {
		set["name"] = in.Name
	}
	if in.Code != "" {
		set["code"] = in.Code
	}
	if in.Description != "" {
		set["description"] = in.Description
	}
	if in.Department != "" {
		set["department"] = in.Department
	}
	if in.Semester > 0 {
		set["semester"] = in.Semester
	}
	if in.Credits > 0 {
		set["credits"] = in.Credits
	}
	if in.Tags != nil {
		set["tags"] = in.Tags
	}

	var s domain.Subject
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id, "is_active": true}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&s)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSubjectNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateSubject
		}
		return nil, fmt.Errorf("update subject: %w", err)
	}
	return &s, nil
}

func (r *SubjectRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete subject: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrSubjectNotFound
	}
	return nil
}

func (r *SubjectRepository) IncrementMaterialsCount(ctx context.Context, id string, delta int) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"materials_count": delta}})
	if err != nil {
		return fmt.Errorf("bump materials count: %w", err)
	}
	return nil
}

// EnsureIndexes creates the subject indexes: unique name and code, plus the
// department/semester listing path.
func (r *SubjectRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "code", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "department", Value: 1}, {Key: "semester", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func normalizePage(page, limit, defaultLimit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = defaultLimit
	}
	return page, limit
}

func totalPages(total int64, limit int) int {
	if total == 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
