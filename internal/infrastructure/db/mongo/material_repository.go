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

const collectionMaterials = "materials"

type MaterialRepository struct {
	col *mongo.Collection
}

func NewMaterialRepository(db *mongo.Database) *MaterialRepository {
	return &MaterialRepository{col: db.Collection(collectionMaterials)}
}

// visibleFilter restricts queries to materials students may see.
func visibleFilter() bson.M {
	return bson.M{"is_active": true, "is_approved": true}
}

func (r *MaterialRepository) Create(ctx context.Context, m *domain.Material) (*domain.Material, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	created := *m
	created.ID = primitive.NewObjectID().Hex()

	if _, err := r.col.InsertOne(ctx, created); err != nil {
		return nil, fmt.Errorf("insert material: %w", err)
	}
	return &created, nil
}

func (r *MaterialRepository) FindByID(ctx context.Context, id string, countView bool) (*domain.Material, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := visibleFilter()
	filter["_id"] = id

	var m domain.Material
	var err error
	if countView {
		err = r.col.FindOneAndUpdate(ctx, filter,
			bson.M{"$inc": bson.M{"views": 1}},
			options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&m)
	} else {
		err = r.col.FindOne(ctx, filter).Decode(&m)
	}
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrMaterialNotFound
		}
		return nil, fmt.Errorf("find material: %w", err)
	}
	return &m, nil
}

func (r *MaterialRepository) List(ctx context.Context, in ports.ListMaterialsInput) (*ports.ListMaterialsResult, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := visibleFilter()
	if in.SubjectID != "" {
		filter["subject_id"] = in.SubjectID
	}
	if in.MaterialType != "" {
		filter["material_type"] = in.MaterialType
	}
	if in.Semester > 0 {
		filter["semester"] = in.Semester
	}
	if in.Difficulty != "" {
		filter["difficulty"] = in.Difficulty
	}
	if in.Search != "" {
		filter["$text"] = bson.M{"$search": in.Search}
	}

	page, limit := normalizePage(in.Page, in.Limit, 20)

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count materials: %w", err)
	}

	sort := bson.D{{Key: "created_at", Value: -1}}
	switch in.Sort {
	case "views":
		sort = bson.D{{Key: "views", Value: -1}}
	case "title":
		sort = bson.D{{Key: "title", Value: 1}}
	}

	opts := options.Find().
		SetSort(sort).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	defer cur.Close(ctx)

	var items []domain.Material
	if err := cur.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode materials: %w", err)
	}

	return &ports.ListMaterialsResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, nil
}

func (r *MaterialRepository) Update(ctx context.Context, id string, in ports.UpdateMaterialInput) (*domain.Material, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{"updated_at": time.Now().UTC()}
	if in.Title != "" {
		set["title"] = in.Title
	}
	if in.Description != "" {
		set["description"] = in.Description
	}
	if in.Tags != nil {
		set["tags"] = in.Tags
	}
	if in.Difficulty != "" {
		set["difficulty"] = in.Difficulty
	}
	if in.AcademicYear != "" {
		set["academic_year"] = in.AcademicYear
	}
	if in.Semester > 0 {
		set["semester"] = in.Semester
	}

	var m domain.Material
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrMaterialNotFound
		}
		return nil, fmt.Errorf("update material: %w", err)
	}
	return &m, nil
}

func (r *MaterialRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete material: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrMaterialNotFound
	}
	return nil
}

// ToggleLike flips the user's like in one conditional update: the $pull only
// matches when the like exists, the $push branch runs when it does not.
func (r *MaterialRepository) ToggleLike(ctx context.Context, id, userID string) (*domain.Material, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now().UTC()

	// Try to remove an existing like first; zero modifications means the
	// user had not liked it yet.
	var m domain.Material
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "likes.user_id": userID},
		bson.M{"$pull": bson.M{"likes": bson.M{"user_id": userID}}},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&m)
	if err == nil {
		return &m, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("unlike material: %w", err)
	}

	err = r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "likes.user_id": bson.M{"$ne": userID}},
		bson.M{"$push": bson.M{"likes": domain.Like{UserID: userID, LikedAt: now}}},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrMaterialNotFound
		}
		return nil, fmt.Errorf("like material: %w", err)
	}
	return &m, nil
}

// RecordDownload appends the user to the download log once; the $ne guard
// makes repeat downloads no-ops.
func (r *MaterialRepository) RecordDownload(ctx context.Context, id, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "downloads.user_id": bson.M{"$ne": userID}},
		bson.M{"$push": bson.M{"downloads": domain.Download{UserID: userID, DownloadedAt: time.Now().UTC()}}})
	if err != nil {
		return fmt.Errorf("record download: %w", err)
	}
	return nil
}

func (r *MaterialRepository) CountBySubject(ctx context.Context, subjectID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{"subject_id": subjectID})
	if err != nil {
		return 0, fmt.Errorf("count by subject: %w", err)
	}
	return n, nil
}

// EnsureIndexes creates the material query indexes, including the text index
// backing free-text search over title, description, and tags.
func (r *MaterialRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "subject_id", Value: 1}}},
		{Keys: bson.D{{Key: "uploaded_by", Value: 1}}},
		{Keys: bson.D{{Key: "material_type", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{
			{Key: "title", Value: "text"},
			{Key: "description", Value: "text"},
			{Key: "tags", Value: "text"},
		}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
