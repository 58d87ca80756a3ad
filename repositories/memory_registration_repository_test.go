package repositories

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/evea/evea_backend/apperrors"
	"github.com/evea/evea_backend/models"
)

type MemoryRegistrationRepositorySuite struct {
	suite.Suite
	repo *MemoryRegistrationRepository
	ctx  context.Context
}

func TestMemoryRegistrationRepositorySuite(t *testing.T) {
	suite.Run(t, new(MemoryRegistrationRepositorySuite))
}

func (s *MemoryRegistrationRepositorySuite) SetupTest() {
	s.repo = NewMemoryRegistrationRepository()
	s.ctx = context.Background()
}

func (s *MemoryRegistrationRepositorySuite) newRecord(email string) *models.VendorRegistration {
	return &models.VendorRegistration{
		Step:               models.StepBusinessInfo,
		RegistrationStatus: models.StatusPendingDocuments,
		BusinessInfo:       models.BusinessInfo{BusinessName: "Lens & Light", Email: email},
		CreatedAt:          time.Now(),
	}
}

func (s *MemoryRegistrationRepositorySuite) TestCreate() {
	s.Run("assigns an id and is findable by id and email", func() {
		id, err := s.repo.Create(s.ctx, s.newRecord("a@b.com"))
		s.Require().NoError(err)
		s.False(id.IsZero())

		byID, err := s.repo.FindByID(s.ctx, id)
		s.Require().NoError(err)
		s.Equal("a@b.com", byID.BusinessInfo.Email)

		byEmail, err := s.repo.FindByEmail(s.ctx, "A@B.com")
		s.Require().NoError(err)
		s.Equal(id, byEmail.ID)
	})

	s.Run("duplicate email is rejected", func() {
		_, err := s.repo.Create(s.ctx, s.newRecord("a@b.com"))
		s.ErrorIs(err, apperrors.ErrDuplicateEmail)
		s.Equal(1, s.repo.Count())
	})
}

func (s *MemoryRegistrationRepositorySuite) TestFindMissing() {
	_, err := s.repo.FindByID(s.ctx, primitive.NewObjectID())
	s.ErrorIs(err, apperrors.ErrRecordNotFound)

	_, err = s.repo.FindByEmail(s.ctx, "nobody@example.com")
	s.ErrorIs(err, apperrors.ErrRecordNotFound)
}

func (s *MemoryRegistrationRepositorySuite) TestReturnedRecordsAreCopies() {
	id, err := s.repo.Create(s.ctx, s.newRecord("copy@b.com"))
	s.Require().NoError(err)

	found, err := s.repo.FindByID(s.ctx, id)
	s.Require().NoError(err)
	found.Step = 3
	found.Documents[models.DocPANCard] = models.DocumentRecord{FileName: "x.pdf"}

	again, err := s.repo.FindByID(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(models.StepBusinessInfo, again.Step)
	s.Empty(again.Documents)
}

func (s *MemoryRegistrationRepositorySuite) TestServicesAreNotShared() {
	reg := s.newRecord("services@b.com")
	reg.Step = models.StepDocuments
	id, err := s.repo.Create(s.ctx, reg)
	s.Require().NoError(err)

	step := models.StepServices
	services := []models.ServiceOffering{{
		Title:         "Mehendi decor",
		Category:      models.CategoryDecoration,
		GuestCapacity: &models.GuestCapacity{Min: 20, Max: 200},
		Packages:      []models.Package{{Name: "Basic", Price: 15000, Inclusions: []string{"marigold"}}},
	}}
	ok, err := s.repo.UpdateIfVersion(s.ctx, id, models.StepDocuments, 0, models.RegistrationPatch{Step: &step, Services: services})
	s.Require().NoError(err)
	s.Require().True(ok)

	// neither the caller's patch nor a returned record reaches stored state
	services[0].Packages[0].Price = 1
	found, err := s.repo.FindByID(s.ctx, id)
	s.Require().NoError(err)
	found.Services[0].GuestCapacity.Max = 5
	found.Services[0].Packages[0].Inclusions[0] = "plastic"

	again, err := s.repo.FindByID(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(15000.0, again.Services[0].Packages[0].Price)
	s.Equal(200, again.Services[0].GuestCapacity.Max)
	s.Equal("marigold", again.Services[0].Packages[0].Inclusions[0])
}

func (s *MemoryRegistrationRepositorySuite) TestUpdateIfVersion() {
	id, err := s.repo.Create(s.ctx, s.newRecord("cas@b.com"))
	s.Require().NoError(err)
	step := models.StepDocuments

	s.Run("stale step is refused", func() {
		ok, err := s.repo.UpdateIfVersion(s.ctx, id, models.StepDocuments, 0, models.RegistrationPatch{Step: &step})
		s.NoError(err)
		s.False(ok)
	})

	s.Run("stale version is refused", func() {
		ok, err := s.repo.UpdateIfVersion(s.ctx, id, models.StepBusinessInfo, 7, models.RegistrationPatch{Step: &step})
		s.NoError(err)
		s.False(ok)
	})

	s.Run("matching step and version applies the patch", func() {
		ok, err := s.repo.UpdateIfVersion(s.ctx, id, models.StepBusinessInfo, 0, models.RegistrationPatch{Step: &step})
		s.NoError(err)
		s.True(ok)

		reg, err := s.repo.FindByID(s.ctx, id)
		s.Require().NoError(err)
		s.Equal(models.StepDocuments, reg.Step)
		s.Equal(int64(1), reg.Version)
	})

	s.Run("missing record reports no match", func() {
		ok, err := s.repo.UpdateIfVersion(s.ctx, primitive.NewObjectID(), 1, 0, models.RegistrationPatch{})
		s.NoError(err)
		s.False(ok)
	})
}

func (s *MemoryRegistrationRepositorySuite) TestConcurrentUpdatesHaveOneWinner() {
	id, err := s.repo.Create(s.ctx, s.newRecord("race@b.com"))
	s.Require().NoError(err)

	var wins int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			step := models.StepDocuments
			ok, err := s.repo.UpdateIfVersion(s.ctx, id, models.StepBusinessInfo, 0, models.RegistrationPatch{Step: &step})
			if err == nil && ok {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	close(start)
	wg.Wait()

	s.Equal(int32(1), wins)
}

func (s *MemoryRegistrationRepositorySuite) TestListAndDelete() {
	first := s.newRecord("one@b.com")
	first.CreatedAt = time.Now().Add(-time.Hour)
	second := s.newRecord("two@b.com")
	second.RegistrationStatus = models.StatusPendingReview

	id1, err := s.repo.Create(s.ctx, first)
	s.Require().NoError(err)
	_, err = s.repo.Create(s.ctx, second)
	s.Require().NoError(err)

	all, err := s.repo.List(s.ctx, models.RegistrationFilter{})
	s.Require().NoError(err)
	s.Len(all, 2)
	s.Equal(id1, all[0].ID)

	pending, err := s.repo.List(s.ctx, models.RegistrationFilter{Status: models.StatusPendingReview})
	s.Require().NoError(err)
	s.Len(pending, 1)
	s.Equal("two@b.com", pending[0].BusinessInfo.Email)

	limited, err := s.repo.List(s.ctx, models.RegistrationFilter{Limit: 1, Skip: 1})
	s.Require().NoError(err)
	s.Len(limited, 1)

	s.Require().NoError(s.repo.Delete(s.ctx, id1))
	s.ErrorIs(s.repo.Delete(s.ctx, id1), apperrors.ErrRecordNotFound)

	_, err = s.repo.Create(s.ctx, s.newRecord("one@b.com"))
	s.NoError(err, "email is free again after delete")
}
