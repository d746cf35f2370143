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

const collectionUsers = "users"

// UserRepository is the Mongo-backed credential store adapter. All
// read-then-write account mutations are expressed as single conditional
// updates (find-and-modify, aggregation-pipeline updates) so concurrent
// requests for the same account cannot lose writes.
type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(collectionUsers)}
}

type userDoc struct {
	ID                      primitive.ObjectID `bson:"_id,omitempty"`
	Name                    string             `bson:"name"`
	Email                   string             `bson:"email"`
	PasswordHash            string             `bson:"password_hash"`
	Role                    string             `bson:"role"`
	University              string             `bson:"university,omitempty"`
	Course                  string             `bson:"course,omitempty"`
	Semester                int                `bson:"semester,omitempty"`
	Verified                bool               `bson:"is_verified"`
	Status                  string             `bson:"account_status"`
	VerificationTokenHash   string             `bson:"verification_token_hash,omitempty"`
	VerificationTokenExpiry *time.Time         `bson:"verification_token_expiry,omitempty"`
	ResetTokenHash          string             `bson:"reset_token_hash,omitempty"`
	ResetTokenExpiry        *time.Time         `bson:"reset_token_expiry,omitempty"`
	LoginAttempts           int                `bson:"login_attempts"`
	LockUntil               *time.Time         `bson:"lock_until,omitempty"`
	LastLogin               *time.Time         `bson:"last_login,omitempty"`
	PasswordChangedAt       *time.Time         `bson:"password_changed_at,omitempty"`
	CreatedAt               time.Time          `bson:"created_at"`
	UpdatedAt               time.Time          `bson:"updated_at"`
}

func (d *userDoc) toDomain() *domain.User {
	return &domain.User{
		ID:                      d.ID.Hex(),
		Name:                    d.Name,
		Email:                   d.Email,
		PasswordHash:            d.PasswordHash,
		Role:                    d.Role,
		University:              d.University,
		Course:                  d.Course,
		Semester:                d.Semester,
		Verified:                d.Verified,
		Status:                  domain.AccountStatus(d.Status),
		VerificationTokenHash:   d.VerificationTokenHash,
		VerificationTokenExpiry: d.VerificationTokenExpiry,
		ResetTokenHash:          d.ResetTokenHash,
		ResetTokenExpiry:        d.ResetTokenExpiry,
		LoginAttempts:           d.LoginAttempts,
		LockUntil:               d.LockUntil,
		LastLogin:               d.LastLogin,
		PasswordChangedAt:       d.PasswordChangedAt,
		CreatedAt:               d.CreatedAt,
		UpdatedAt:               d.UpdatedAt,
	}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := userDoc{
		Name:         user.Name,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Role:         user.Role,
		University:   user.University,
		Course:       user.Course,
		Semester:     user.Semester,
		Verified:     user.Verified,
		Status:       string(user.Status),
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	created := *user
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &created, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc userDoc
	if err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc userDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return doc.toDomain(), nil
}

// RecordFailedLogin applies the lockout state machine
// (domain.NextLockoutState) as a two-stage aggregation-pipeline update:
// stage one restarts the counter when a previous lock has expired, otherwise
// increments it; stage two arms the lock once the counter reaches the
// threshold. Running the whole transition server-side keeps two simultaneous
// failures from both reading attempts=4 and losing a count.
func (r *UserRepository) RecordFailedLogin(ctx context.Context, id string, now time.Time) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	epoch := time.Unix(0, 0)
	hasLock := bson.M{"$gt": bson.A{bson.M{"$ifNull": bson.A{"$lock_until", epoch}}, epoch}}
	lockExpired := bson.M{"$and": bson.A{
		hasLock,
		bson.M{"$lte": bson.A{"$lock_until", now}},
	}}

	pipeline := bson.A{
		bson.M{"$set": bson.M{
			"login_attempts": bson.M{"$cond": bson.A{
				lockExpired,
				1,
				bson.M{"$add": bson.A{bson.M{"$ifNull": bson.A{"$login_attempts", 0}}, 1}},
			}},
			"lock_until": bson.M{"$cond": bson.A{lockExpired, "$$REMOVE", "$lock_until"}},
			"updated_at": now,
		}},
		bson.M{"$set": bson.M{
			"lock_until": bson.M{"$cond": bson.A{
				bson.M{"$and": bson.A{
					bson.M{"$gte": bson.A{"$login_attempts", domain.MaxLoginAttempts}},
					bson.M{"$not": bson.A{hasLock}},
				}},
				now.Add(domain.LockDuration),
				"$lock_until",
			}},
		}},
	}

	var doc userDoc
	err = r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, pipeline,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("record failed login: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) RecordLogin(ctx context.Context, id string, now time.Time) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = r.col.UpdateByID(ctx, oid, bson.M{
		"$set":   bson.M{"login_attempts": 0, "last_login": now, "updated_at": now},
		"$unset": bson.M{"lock_until": ""},
	})
	if err != nil {
		return fmt.Errorf("record login: %w", err)
	}
	return nil
}

func (r *UserRepository) SetVerificationToken(ctx context.Context, id, tokenHash string, expiry time.Time) error {
	return r.setToken(ctx, id, "verification_token_hash", "verification_token_expiry", tokenHash, expiry)
}

func (r *UserRepository) SetResetToken(ctx context.Context, id, tokenHash string, expiry time.Time) error {
	return r.setToken(ctx, id, "reset_token_hash", "reset_token_expiry", tokenHash, expiry)
}

func (r *UserRepository) setToken(ctx context.Context, id, hashField, expiryField, tokenHash string, expiry time.Time) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateByID(ctx, oid, bson.M{
		"$set": bson.M{hashField: tokenHash, expiryField: expiry, "updated_at": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("set token: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// ConsumeVerificationToken is the single-use consumption path: the filter
// matches only an unexpired token with this hash, and the same update marks
// the email verified, activates the account, and clears the token fields.
// Exactly one of two concurrent calls can match.
func (r *UserRepository) ConsumeVerificationToken(ctx context.Context, tokenHash string, now time.Time) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"verification_token_hash":   tokenHash,
		"verification_token_expiry": bson.M{"$gt": now},
	}
	update := bson.M{
		"$set": bson.M{
			"is_verified":    true,
			"account_status": string(domain.StatusActive),
			"updated_at":     now,
		},
		"$unset": bson.M{
			"verification_token_hash":   "",
			"verification_token_expiry": "",
		},
	}

	var doc userDoc
	err := r.col.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTokenInvalidOrExpired
		}
		return nil, fmt.Errorf("consume verification token: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) ClearResetToken(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = r.col.UpdateByID(ctx, oid, bson.M{
		"$unset": bson.M{"reset_token_hash": "", "reset_token_expiry": ""},
	})
	if err != nil {
		return fmt.Errorf("clear reset token: %w", err)
	}
	return nil
}

// ConsumeResetToken replaces the password, clears the reset token, and wipes
// the lockout state in one find-and-modify.
func (r *UserRepository) ConsumeResetToken(ctx context.Context, tokenHash, newPasswordHash string, now time.Time) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"reset_token_hash":   tokenHash,
		"reset_token_expiry": bson.M{"$gt": now},
	}
	update := bson.M{
		"$set": bson.M{
			"password_hash":       newPasswordHash,
			"password_changed_at": now,
			"login_attempts":      0,
			"updated_at":          now,
		},
		"$unset": bson.M{
			"reset_token_hash":   "",
			"reset_token_expiry": "",
			"lock_until":         "",
		},
	}

	var doc userDoc
	err := r.col.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTokenInvalidOrExpired
		}
		return nil, fmt.Errorf("consume reset token: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, newPasswordHash string, changedAt time.Time) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateByID(ctx, oid, bson.M{
		"$set": bson.M{
			"password_hash":       newPasswordHash,
			"password_changed_at": changedAt,
			"updated_at":          changedAt,
		},
	})
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) UpdateStatus(ctx context.Context, id string, status domain.AccountStatus) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc userDoc
	err = r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"account_status": string(status), "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("update status: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id string, update ports.ProfileUpdate) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{"updated_at": time.Now().UTC()}
	if update.Name != "" {
		set["name"] = update.Name
	}
	if update.University != "" {
		set["university"] = update.University
	}
	if update.Course != "" {
		set["course"] = update.Course
	}
	if update.Semester != 0 {
		set["semester"] = update.Semester
	}

	var doc userDoc
	err = r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return doc.toDomain(), nil
}

// EnsureIndexes creates the indexes the credential store relies on. The
// unique email index is what turns a racing duplicate insert into
// domain.ErrDuplicateEmail; emails are stored lower-cased so uniqueness is
// case-insensitive.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "verification_token_hash", Value: 1}}},
		{Keys: bson.D{{Key: "reset_token_hash", Value: 1}}},
		{Keys: bson.D{{Key: "university", Value: 1}, {Key: "course", Value: 1}, {Key: "semester", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
