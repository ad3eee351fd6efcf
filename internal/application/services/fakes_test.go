package services

import (
	"context"
	"sync"

	"github.com/crossroads-hq/crossroads-backend/internal/domain/entities"
	"github.com/crossroads-hq/crossroads-backend/internal/domain/repositories"
	apperrors "github.com/crossroads-hq/crossroads-backend/pkg/errors"
)

// fakeBusinessRepo is an in-memory BusinessRepository for service tests
type fakeBusinessRepo struct {
	mu         sync.Mutex
	businesses map[string]*entities.Business
	order      []string
	listErr    error
	updateErr  error
}

func newFakeBusinessRepo(businesses ...*entities.Business) *fakeBusinessRepo {
	repo := &fakeBusinessRepo{businesses: map[string]*entities.Business{}}
	for _, b := range businesses {
		repo.businesses[b.ID] = b
		repo.order = append(repo.order, b.ID)
	}
	return repo
}

func (r *fakeBusinessRepo) Create(ctx context.Context, business *entities.Business) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.businesses[business.ID] = business
	r.order = append(r.order, business.ID)
	return nil
}

func (r *fakeBusinessRepo) GetByID(ctx context.Context, id string) (*entities.Business, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.businesses[id]; ok {
		copied := *b
		return &copied, nil
	}
	return nil, apperrors.NewNotFoundError("business not found")
}

func (r *fakeBusinessRepo) GetByIDs(ctx context.Context, ids []string) ([]*entities.Business, error) {
	result := []*entities.Business{}
	for _, id := range ids {
		if b, err := r.GetByID(ctx, id); err == nil {
			result = append(result, b)
		}
	}
	return result, nil
}

func (r *fakeBusinessRepo) Update(ctx context.Context, business *entities.Business) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.businesses[business.ID]; !ok {
		return apperrors.NewNotFoundError("business not found")
	}
	r.businesses[business.ID] = business
	return nil
}

func (r *fakeBusinessRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.businesses[id]; !ok {
		return apperrors.NewNotFoundError("business not found")
	}
	delete(r.businesses, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *fakeBusinessRepo) List(ctx context.Context, filter repositories.BusinessFilter) ([]*entities.Business, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	result := []*entities.Business{}
	for _, id := range r.order {
		b := r.businesses[id]
		if len(filter.Statuses) > 0 && !statusIn(b.Status, filter.Statuses) {
			continue
		}
		if filter.UserID != "" && b.UserID != filter.UserID {
			continue
		}
		result = append(result, b)
	}
	return result, nil
}

func (r *fakeBusinessRepo) ListByOwner(ctx context.Context, userID string) ([]*entities.Business, error) {
	return r.List(ctx, repositories.BusinessFilter{UserID: userID})
}

func statusIn(status entities.BusinessStatus, statuses []entities.BusinessStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

// fakeUserRepo is an in-memory UserRepository for service tests
type fakeUserRepo struct {
	mu        sync.Mutex
	users     map[string]*entities.User
	createErr error
	groupLog  []string
}

func newFakeUserRepo(users ...*entities.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: map[string]*entities.User{}}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entities.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if _, ok := r.users[user.ID]; ok {
		return apperrors.NewConflictError("user already exists")
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, apperrors.NewNotFoundError("user not found")
}

func (r *fakeUserRepo) GetByIDs(ctx context.Context, ids []string) ([]*entities.User, error) {
	result := []*entities.User{}
	for _, id := range ids {
		if u, err := r.GetByID(ctx, id); err == nil {
			result = append(result, u)
		}
	}
	return result, nil
}

func (r *fakeUserRepo) GetByOwnerKey(ctx context.Context, ownerKey string) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ProfileOwner == ownerKey {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperrors.NewNotFoundError("user not found")
}

func (r *fakeUserRepo) List(ctx context.Context, limit, offset int) ([]*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := []*entities.User{}
	for _, u := range r.users {
		result = append(result, u)
	}
	return result, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *entities.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return apperrors.NewNotFoundError("user not found")
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) UpdateGroupName(ctx context.Context, id, groupName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return apperrors.NewNotFoundError("user not found")
	}
	u.GroupName = groupName
	r.groupLog = append(r.groupLog, groupName)
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

// fakeIdentityProvider records group membership calls
type fakeIdentityProvider struct {
	mu        sync.Mutex
	added     []string // "username/group"
	removed   []string
	addErr    error
	removeErr error
	groups    map[string][]string
}

func newFakeIdentityProvider() *fakeIdentityProvider {
	return &fakeIdentityProvider{groups: map[string][]string{}}
}

func (p *fakeIdentityProvider) AddUserToGroup(ctx context.Context, username, groupName string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.addErr != nil {
		return p.addErr
	}
	p.added = append(p.added, username+"/"+groupName)
	p.groups[username] = append(p.groups[username], groupName)
	return nil
}

func (p *fakeIdentityProvider) RemoveUserFromGroup(ctx context.Context, username, groupName string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.removeErr != nil {
		return p.removeErr
	}
	p.removed = append(p.removed, username+"/"+groupName)
	return nil
}

func (p *fakeIdentityProvider) ListGroupsForUser(ctx context.Context, username string) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.groups[username], nil
}

// fakeReviewRepo is an in-memory ReviewRepository for service tests
type fakeReviewRepo struct {
	mu      sync.Mutex
	reviews map[string]*entities.Review
}

func newFakeReviewRepo(reviews ...*entities.Review) *fakeReviewRepo {
	repo := &fakeReviewRepo{reviews: map[string]*entities.Review{}}
	for _, r := range reviews {
		repo.reviews[r.ID] = r
	}
	return repo
}

func (r *fakeReviewRepo) Create(ctx context.Context, review *entities.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reviews[review.ID] = review
	return nil
}

func (r *fakeReviewRepo) GetByID(ctx context.Context, id string) (*entities.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rv, ok := r.reviews[id]; ok {
		copied := *rv
		return &copied, nil
	}
	return nil, apperrors.NewNotFoundError("review not found")
}

func (r *fakeReviewRepo) ListByBusiness(ctx context.Context, businessID string, limit, offset int) ([]*entities.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := []*entities.Review{}
	for _, rv := range r.reviews {
		if rv.BusinessID == businessID {
			result = append(result, rv)
		}
	}
	return result, nil
}

func (r *fakeReviewRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entities.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := []*entities.Review{}
	for _, rv := range r.reviews {
		if rv.UserID == userID {
			result = append(result, rv)
		}
	}
	return result, nil
}

func (r *fakeReviewRepo) AggregateByBusiness(ctx context.Context, businessID string) (float64, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum, count := 0, 0
	for _, rv := range r.reviews {
		if rv.BusinessID == businessID {
			sum += rv.Rating
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(count), count, nil
}

func (r *fakeReviewRepo) Update(ctx context.Context, review *entities.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reviews[review.ID]; !ok {
		return apperrors.NewNotFoundError("review not found")
	}
	r.reviews[review.ID] = review
	return nil
}

func (r *fakeReviewRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reviews[id]; !ok {
		return apperrors.NewNotFoundError("review not found")
	}
	delete(r.reviews, id)
	return nil
}

// fakeSearchRepo records indexing calls
type fakeSearchRepo struct {
	mu      sync.Mutex
	indexed []*entities.Business
	deleted []string
}

func (r *fakeSearchRepo) Search(ctx context.Context, params repositories.SearchParams) ([]*entities.Business, error) {
	return []*entities.Business{}, nil
}

func (r *fakeSearchRepo) Index(ctx context.Context, business *entities.Business) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.indexed = append(r.indexed, business)
	return nil
}

func (r *fakeSearchRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, id)
	return nil
}

// recordingSearchRepo captures the params of the last search call
type recordingSearchRepo struct {
	fakeSearchRepo
	lastParams repositories.SearchParams
}

func (r *recordingSearchRepo) Search(ctx context.Context, params repositories.SearchParams) ([]*entities.Business, error) {
	r.lastParams = params
	return []*entities.Business{}, nil
}

// fakeEventBus records published events
type fakeEventBus struct {
	mu     sync.Mutex
	events []*entities.BusinessEvent
}

func (b *fakeEventBus) Publish(ctx context.Context, channel string, event *entities.BusinessEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
	return nil
}

func (b *fakeEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.BusinessEvent, error) {
	ch := make(chan *entities.BusinessEvent)
	return ch, nil
}

func (b *fakeEventBus) Unsubscribe(ctx context.Context, channel string) error { return nil }

func (b *fakeEventBus) Close() error { return nil }

func (b *fakeEventBus) eventTypes() []entities.BusinessEventType {
	b.mu.Lock()
	defer b.mu.Unlock()
	types := []entities.BusinessEventType{}
	for _, e := range b.events {
		types = append(types, e.EventType)
	}
	return types
}
