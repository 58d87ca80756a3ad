package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/evea/evea_backend/apperrors"
	"github.com/evea/evea_backend/config"
	"github.com/evea/evea_backend/models"
)

// RegistrationRepository persists vendor registrations in MongoDB
type RegistrationRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

func NewRegistrationRepository(db *mongo.Database) *RegistrationRepository {
	return &RegistrationRepository{
		collection: db.Collection(config.RegistrationsCollection),
		now:        time.Now,
	}
}

// Create inserts a new record and assigns its id
func (r *RegistrationRepository) Create(ctx context.Context, reg *models.VendorRegistration) (primitive.ObjectID, error) {
	if reg.ID.IsZero() {
		reg.ID = primitive.NewObjectID()
	}
	// $set on documents.<type> and $push on adminNotes need non-null fields
	if reg.Documents == nil {
		reg.Documents = map[models.DocumentType]models.DocumentRecord{}
	}
	if reg.AdminNotes == nil {
		reg.AdminNotes = []models.AdminNote{}
	}
	if _, err := r.collection.InsertOne(ctx, reg); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, apperrors.ErrDuplicateEmail
		}
		return primitive.NilObjectID, fmt.Errorf("insert registration: %w", err)
	}
	return reg.ID, nil
}

func (r *RegistrationRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.VendorRegistration, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *RegistrationRepository) FindByEmail(ctx context.Context, email string) (*models.VendorRegistration, error) {
	return r.findOne(ctx, bson.M{"businessInfo.email": email})
}

func (r *RegistrationRepository) findOne(ctx context.Context, filter bson.M) (*models.VendorRegistration, error) {
	var reg models.VendorRegistration
	err := r.collection.FindOne(ctx, filter).Decode(&reg)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrRecordNotFound
		}
		return nil, fmt.Errorf("find registration: %w", err)
	}
	return &reg, nil
}

// List returns registrations oldest-submitted first, optionally filtered by status
func (r *RegistrationRepository) List(ctx context.Context, filter models.RegistrationFilter) ([]*models.VendorRegistration, error) {
	query := bson.M{}
	if filter.Status != "" {
		query["registrationStatus"] = filter.Status
	}

	opts := options.Find().SetSort(bson.D{{Key: "submittedAt", Value: 1}, {Key: "createdAt", Value: 1}})
	if filter.Limit > 0 {
		opts.SetLimit(filter.Limit)
	}
	if filter.Skip > 0 {
		opts.SetSkip(filter.Skip)
	}

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer cursor.Close(ctx)

	var out []*models.VendorRegistration
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode registrations: %w", err)
	}
	return out, nil
}

// UpdateIfVersion applies patch only if the stored record is still at
// expectedStep and expectedVersion. It reports false when another writer won.
func (r *RegistrationRepository) UpdateIfVersion(ctx context.Context, id primitive.ObjectID, expectedStep int, expectedVersion int64, patch models.RegistrationPatch) (bool, error) {
	filter := bson.M{
		"_id":     id,
		"step":    expectedStep,
		"version": expectedVersion,
	}

	res, err := r.collection.UpdateOne(ctx, filter, patchToUpdate(patch, r.now()))
	if err != nil {
		return false, fmt.Errorf("update registration: %w", err)
	}
	return res.MatchedCount == 1, nil
}

func (r *RegistrationRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperrors.ErrRecordNotFound
	}
	return nil
}

// patchToUpdate translates a patch to a Mongo update document.
// Documents are set per key so untouched entries keep their verification state.
func patchToUpdate(p models.RegistrationPatch, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}

	if p.Step != nil {
		set["step"] = *p.Step
	}
	if p.RegistrationStatus != nil {
		set["registrationStatus"] = *p.RegistrationStatus
	}
	if p.ProfileCompletion != nil {
		set["profileCompletion"] = *p.ProfileCompletion
	}
	if p.EmailVerified != nil {
		set["emailVerified"] = *p.EmailVerified
	}
	if p.EmailVerifiedAt != nil {
		set["emailVerifiedAt"] = *p.EmailVerifiedAt
	}
	if p.PasswordHash != nil {
		set["credentials.passwordHash"] = *p.PasswordHash
	}
	if p.BankDetails != nil {
		set["bankDetails"] = p.BankDetails
	}
	if p.RegistrationNumbers != nil {
		set["registrationNumbers"] = p.RegistrationNumbers
	}
	for docType, record := range p.Documents {
		set["documents."+string(docType)] = record
	}
	if p.Services != nil {
		set["services"] = p.Services
	}
	if p.RecommendationAnswers != nil {
		set["recommendationAnswers"] = p.RecommendationAnswers
	}
	if p.SubmittedAt != nil {
		set["submittedAt"] = *p.SubmittedAt
	}
	if p.ReviewedAt != nil {
		set["reviewedAt"] = *p.ReviewedAt
	}
	if p.ReviewedBy != nil {
		set["reviewedBy"] = *p.ReviewedBy
	}

	update := bson.M{
		"$set": set,
		"$inc": bson.M{"version": 1},
	}
	if p.AppendNote != nil {
		update["$push"] = bson.M{"adminNotes": *p.AppendNote}
	}
	return update
}
