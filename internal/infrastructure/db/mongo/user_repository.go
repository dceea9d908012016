package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/blockport/trade-finance-api/internal/core/domain"
)

const userCollection = "users"

// UserRepository persists users in MongoDB. Counter and rotation updates are
// single conditional update documents, so two concurrent logins for the same
// user cannot corrupt the failure counter or both win a rotation.
type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(userCollection)}
}

// EnsureIndexes creates the unique email index backing duplicate detection.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("ensure user indexes: %w", err)
	}
	return nil
}

type mongoUser struct {
	ID                  string     `bson:"_id"`
	Email               string     `bson:"email"`
	FullName            string     `bson:"full_name,omitempty"`
	PasswordHash        string     `bson:"password_hash"`
	Role                string     `bson:"role"`
	IsActive            bool       `bson:"is_active"`
	FailedLoginAttempts int        `bson:"failed_login_attempts"`
	LockedUntil         *time.Time `bson:"locked_until,omitempty"`
	RefreshToken        string     `bson:"refresh_token,omitempty"`
	LastLoginAt         *time.Time `bson:"last_login_at,omitempty"`
	CreatedAt           time.Time  `bson:"created_at"`
	UpdatedAt           time.Time  `bson:"updated_at"`
}

func toDoc(u *domain.User) mongoUser {
	return mongoUser{
		ID:                  u.ID,
		Email:               u.Email,
		FullName:            u.FullName,
		PasswordHash:        u.PasswordHash,
		Role:                string(u.Role),
		IsActive:            u.IsActive,
		FailedLoginAttempts: u.FailedLoginAttempts,
		LockedUntil:         u.LockedUntil,
		RefreshToken:        u.RefreshToken,
		LastLoginAt:         u.LastLoginAt,
		CreatedAt:           u.CreatedAt,
		UpdatedAt:           u.UpdatedAt,
	}
}

func (mu mongoUser) toDomain() *domain.User {
	return &domain.User{
		ID:                  mu.ID,
		Email:               mu.Email,
		FullName:            mu.FullName,
		PasswordHash:        mu.PasswordHash,
		Role:                domain.Role(mu.Role),
		IsActive:            mu.IsActive,
		FailedLoginAttempts: mu.FailedLoginAttempts,
		LockedUntil:         mu.LockedUntil,
		RefreshToken:        mu.RefreshToken,
		LastLoginAt:         mu.LastLoginAt,
		CreatedAt:           mu.CreatedAt,
		UpdatedAt:           mu.UpdatedAt,
	}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if _, err := r.coll.InsertOne(ctx, toDoc(user)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, unavailable("insert user", err)
	}
	return user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var mu mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&mu); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrUserNotFound
		}
		return nil, unavailable("find user", err)
	}
	return mu.toDomain(), nil
}

func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, unavailable("list users", err)
	}
	defer cur.Close(ctx)

	var users []*domain.User
	for cur.Next(ctx) {
		var mu mongoUser
		if err := cur.Decode(&mu); err != nil {
			return nil, unavailable("decode user", err)
		}
		users = append(users, mu.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, unavailable("list users", err)
	}
	return users, nil
}

// RecordFailedLogin increments the counter and conditionally sets the lock
// deadline in one aggregation-pipeline update, returning the new count. The
// whole read-modify-write happens server-side in a single document operation.
func (r *UserRepository) RecordFailedLogin(ctx context.Context, id string, threshold int, lockUntil time.Time) (int, error) {
	newCount := bson.M{"$add": bson.A{"$failed_login_attempts", 1}}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"failed_login_attempts": newCount,
			"locked_until": bson.M{"$cond": bson.A{
				bson.M{"$gte": bson.A{newCount, threshold}},
				lockUntil,
				"$locked_until",
			}},
			"updated_at": time.Now().UTC(),
		}}},
	}

	var mu mongoUser
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&mu)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return 0, domain.ErrUserNotFound
		}
		return 0, unavailable("record failed login", err)
	}
	return mu.FailedLoginAttempts, nil
}

func (r *UserRepository) RecordSuccessfulLogin(ctx context.Context, id, refreshToken string, at time.Time) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"failed_login_attempts": 0,
			"refresh_token":         refreshToken,
			"last_login_at":         at,
			"updated_at":            at,
		},
		"$unset": bson.M{"locked_until": ""},
	})
	if err != nil {
		return unavailable("record successful login", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// RotateRefreshToken swaps tokens only when oldToken is still stored. The
// token value in the filter is the optimistic-concurrency guard.
func (r *UserRepository) RotateRefreshToken(ctx context.Context, id, oldToken, newToken string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "refresh_token": oldToken},
		bson.M{"$set": bson.M{"refresh_token": newToken, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return unavailable("rotate refresh token", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrInvalidToken
	}
	return nil
}

func (r *UserRepository) ClearRefreshToken(ctx context.Context, id string) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$unset": bson.M{"refresh_token": ""},
		"$set":   bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return unavailable("clear refresh token", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id, fullName string) (*domain.User, error) {
	var mu mongoUser
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"full_name": fullName, "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&mu)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrUserNotFound
		}
		return nil, unavailable("update profile", err)
	}
	return mu.toDomain(), nil
}

// unavailable tags infrastructure errors so the auth core can keep transient
// persistence failures distinct from authentication verdicts.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, domain.ErrUnavailable, err)
}
