package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/evea/evea_backend/apperrors"
	"github.com/evea/evea_backend/config"
	"github.com/evea/evea_backend/models"
)

type AdminRepository struct {
	collection *mongo.Collection
}

func NewAdminRepository(db *mongo.Database) *AdminRepository {
	return &AdminRepository{collection: db.Collection(config.AdminsCollection)}
}

func (r *AdminRepository) Create(ctx context.Context, admin *models.AdminAccount) error {
	if admin.ID.IsZero() {
		admin.ID = primitive.NewObjectID()
	}
	admin.Email = strings.ToLower(admin.Email)
	if _, err := r.collection.InsertOne(ctx, admin); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.ErrDuplicateEmail
		}
		return fmt.Errorf("insert admin: %w", err)
	}
	return nil
}

func (r *AdminRepository) FindByEmail(ctx context.Context, email string) (*models.AdminAccount, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(email)})
}

func (r *AdminRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.AdminAccount, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *AdminRepository) UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"passwordHash": hash}})
	if err != nil {
		return fmt.Errorf("update admin password: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrRecordNotFound
	}
	return nil
}

func (r *AdminRepository) findOne(ctx context.Context, filter bson.M) (*models.AdminAccount, error) {
	var admin models.AdminAccount
	if err := r.collection.FindOne(ctx, filter).Decode(&admin); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrRecordNotFound
		}
		return nil, fmt.Errorf("find admin: %w", err)
	}
	return &admin, nil
}
