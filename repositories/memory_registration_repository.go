package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/evea/evea_backend/apperrors"
	"github.com/evea/evea_backend/models"
)

// MemoryRegistrationRepository is a mutex-guarded registration store used
// in tests and local runs without MongoDB. It honours the same
// compare-and-swap contract as the Mongo repository.
type MemoryRegistrationRepository struct {
	mu      sync.RWMutex
	records map[primitive.ObjectID]*models.VendorRegistration
	emails  map[string]primitive.ObjectID
	now     func() time.Time
}

func NewMemoryRegistrationRepository() *MemoryRegistrationRepository {
	return &MemoryRegistrationRepository{
		records: make(map[primitive.ObjectID]*models.VendorRegistration),
		emails:  make(map[string]primitive.ObjectID),
		now:     time.Now,
	}
}

func (r *MemoryRegistrationRepository) Create(ctx context.Context, reg *models.VendorRegistration) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := strings.ToLower(reg.BusinessInfo.Email)
	if _, exists := r.emails[email]; exists {
		return primitive.NilObjectID, apperrors.ErrDuplicateEmail
	}
	if reg.ID.IsZero() {
		reg.ID = primitive.NewObjectID()
	}
	stored := reg.Clone()
	if stored.Documents == nil {
		stored.Documents = map[models.DocumentType]models.DocumentRecord{}
	}
	r.records[reg.ID] = stored
	r.emails[email] = reg.ID
	return reg.ID, nil
}

func (r *MemoryRegistrationRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.VendorRegistration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.records[id]
	if !ok {
		return nil, apperrors.ErrRecordNotFound
	}
	return reg.Clone(), nil
}

func (r *MemoryRegistrationRepository) FindByEmail(ctx context.Context, email string) (*models.VendorRegistration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.emails[strings.ToLower(email)]
	if !ok {
		return nil, apperrors.ErrRecordNotFound
	}
	return r.records[id].Clone(), nil
}

func (r *MemoryRegistrationRepository) List(ctx context.Context, filter models.RegistrationFilter) ([]*models.VendorRegistration, error) {
	r.mu.RLock()
	var out []*models.VendorRegistration
	for _, reg := range r.records {
		if filter.Status != "" && reg.RegistrationStatus != filter.Status {
			continue
		}
		out = append(out, reg.Clone())
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	if filter.Skip > 0 {
		if filter.Skip >= int64(len(out)) {
			return nil, nil
		}
		out = out[filter.Skip:]
	}
	if filter.Limit > 0 && int64(len(out)) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *MemoryRegistrationRepository) UpdateIfVersion(ctx context.Context, id primitive.ObjectID, expectedStep int, expectedVersion int64, patch models.RegistrationPatch) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	reg, ok := r.records[id]
	if !ok || reg.Step != expectedStep || reg.Version != expectedVersion {
		return false, nil
	}
	updated := reg.Clone()
	patch.Apply(updated, r.now())
	r.records[id] = updated
	return true, nil
}

func (r *MemoryRegistrationRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	reg, ok := r.records[id]
	if !ok {
		return apperrors.ErrRecordNotFound
	}
	delete(r.emails, strings.ToLower(reg.BusinessInfo.Email))
	delete(r.records, id)
	return nil
}

// Count returns the number of stored records
func (r *MemoryRegistrationRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// MemoryAdminRepository keeps reviewer accounts in memory
type MemoryAdminRepository struct {
	mu     sync.RWMutex
	admins map[primitive.ObjectID]*models.AdminAccount
}

func NewMemoryAdminRepository() *MemoryAdminRepository {
	return &MemoryAdminRepository{admins: make(map[primitive.ObjectID]*models.AdminAccount)}
}

func (r *MemoryAdminRepository) Create(ctx context.Context, admin *models.AdminAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	admin.Email = strings.ToLower(admin.Email)
	for _, existing := range r.admins {
		if existing.Email == admin.Email {
			return apperrors.ErrDuplicateEmail
		}
	}
	if admin.ID.IsZero() {
		admin.ID = primitive.NewObjectID()
	}
	stored := *admin
	r.admins[admin.ID] = &stored
	return nil
}

func (r *MemoryAdminRepository) FindByEmail(ctx context.Context, email string) (*models.AdminAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email = strings.ToLower(email)
	for _, admin := range r.admins {
		if admin.Email == email {
			found := *admin
			return &found, nil
		}
	}
	return nil, apperrors.ErrRecordNotFound
}

func (r *MemoryAdminRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.AdminAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	admin, ok := r.admins[id]
	if !ok {
		return nil, apperrors.ErrRecordNotFound
	}
	found := *admin
	return &found, nil
}

func (r *MemoryAdminRepository) UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	admin, ok := r.admins[id]
	if !ok {
		return apperrors.ErrRecordNotFound
	}
	admin.PasswordHash = hash
	return nil
}
