// Package testutil holds in-process fakes of the external collaborators
// and request fixtures shared by service and controller tests.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/evea/evea_backend/models"
)

var ErrFakeUnavailable = errors.New("fake service unavailable")

// FakeDocumentStore keeps uploaded files in memory.
// Set FailOnUpload to make the n-th upload (1-based) fail, or FailAll to fail every call.
type FakeDocumentStore struct {
	mu           sync.Mutex
	files        map[string]models.FileUpload
	uploadCalls  int
	deleted      []string
	FailOnUpload int
	FailAll      bool
	seq          int
}

func NewFakeDocumentStore() *FakeDocumentStore {
	return &FakeDocumentStore{files: make(map[string]models.FileUpload)}
}

func (s *FakeDocumentStore) Upload(ctx context.Context, file models.FileUpload) (models.FileRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.uploadCalls++
	if s.FailAll || (s.FailOnUpload > 0 && s.uploadCalls == s.FailOnUpload) {
		return models.FileRef{}, ErrFakeUnavailable
	}
	s.seq++
	id := fmt.Sprintf("file-%d", s.seq)
	s.files[id] = file
	return models.FileRef{ID: id, URL: "https://files.test/" + id}, nil
}

func (s *FakeDocumentStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deleted = append(s.deleted, id)
	delete(s.files, id)
	return nil
}

// Count returns the number of files currently stored
func (s *FakeDocumentStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

// IDs returns the stored file ids in sorted order
func (s *FakeDocumentStore) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.files))
	for id := range s.files {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *FakeDocumentStore) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.files[id]
	return ok
}

func (s *FakeDocumentStore) UploadCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uploadCalls
}

func (s *FakeDocumentStore) Deleted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deleted...)
}

// FakeNotifier records outbound emails; Fail makes Send return an error
type FakeNotifier struct {
	mu   sync.Mutex
	sent []models.Email
	Fail bool
}

func (n *FakeNotifier) Send(ctx context.Context, email models.Email) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Fail {
		return ErrFakeUnavailable
	}
	n.sent = append(n.sent, email)
	return nil
}

func (n *FakeNotifier) Sent() []models.Email {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]models.Email(nil), n.sent...)
}

// Last returns the most recent email or false when nothing was sent
func (n *FakeNotifier) Last() (models.Email, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sent) == 0 {
		return models.Email{}, false
	}
	return n.sent[len(n.sent)-1], true
}

// FakeEventPublisher captures published registration events
type FakeEventPublisher struct {
	mu     sync.Mutex
	admins []models.RegistrationEvent
	users  map[primitive.ObjectID][]models.RegistrationEvent
}

func NewFakeEventPublisher() *FakeEventPublisher {
	return &FakeEventPublisher{users: make(map[primitive.ObjectID][]models.RegistrationEvent)}
}

func (p *FakeEventPublisher) PublishToAdmins(event models.RegistrationEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.admins = append(p.admins, event)
}

func (p *FakeEventPublisher) PublishToUser(userID primitive.ObjectID, event models.RegistrationEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.users[userID] = append(p.users[userID], event)
}

func (p *FakeEventPublisher) AdminEvents() []models.RegistrationEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.RegistrationEvent(nil), p.admins...)
}

func (p *FakeEventPublisher) UserEvents(userID primitive.ObjectID) []models.RegistrationEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.RegistrationEvent(nil), p.users[userID]...)
}

// FakeIdentityVerifier maps ID tokens to identities. Unknown tokens fail with
// InvalidErr, or Err for every call when it is set.
type FakeIdentityVerifier struct {
	Identities map[string]*models.GoogleIdentity
	InvalidErr error
	Err        error
}

func (v *FakeIdentityVerifier) VerifyIDToken(ctx context.Context, idToken string) (*models.GoogleIdentity, error) {
	if v.Err != nil {
		return nil, v.Err
	}
	if identity, ok := v.Identities[idToken]; ok {
		copied := *identity
		return &copied, nil
	}
	return nil, v.InvalidErr
}
