package workflow

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"user-admin-console/internal/domain"
	"user-admin-console/internal/repo"
)

// MockUserRepository is a mock implementation of domain.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) List(ctx context.Context, page, limit int) (*domain.Page[domain.User], error) {
	args := m.Called(ctx, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Page[domain.User]), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, in domain.UserCreateData) (*domain.User, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, id string, in domain.UserUpdateData) (*domain.User, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) (*domain.DeleteResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DeleteResult), args.Error(1)
}

// gatedRepo blocks List calls until the page is released.
type gatedRepo struct {
	domain.UserRepository

	mu      sync.Mutex
	gates   map[int]chan struct{}
	started chan int
}

func newGatedRepo(inner domain.UserRepository) *gatedRepo {
	return &gatedRepo{UserRepository: inner, gates: map[int]chan struct{}{}, started: make(chan int, 16)}
}

func (g *gatedRepo) gate(page int) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.gates[page]
	if !ok {
		ch = make(chan struct{})
		g.gates[page] = ch
	}
	return ch
}

func (g *gatedRepo) release(page int) { close(g.gate(page)) }

func (g *gatedRepo) List(ctx context.Context, page, limit int) (*domain.Page[domain.User], error) {
	ch := g.gate(page)
	g.started <- page
	<-ch
	return g.UserRepository.List(ctx, page, limit)
}

func waitStarted(t *testing.T, g *gatedRepo, page int) {
	t.Helper()
	select {
	case p := <-g.started:
		require.Equal(t, page, p)
	case <-time.After(2 * time.Second):
		t.Fatalf("list of page %d never started", page)
	}
}

// seededRepo holds n users, user00 being the oldest.
func seededRepo(t *testing.T, n int) *repo.UserRepo {
	t.Helper()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r, err := repo.OpenMemory()
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		at := base.Add(time.Duration(i) * time.Minute)
		err := r.Seed(context.Background(), domain.User{
			ID:        fmt.Sprintf("id%02d", i),
			Username:  fmt.Sprintf("user%02d", i),
			Email:     fmt.Sprintf("user%02d@example.com", i),
			Name:      fmt.Sprintf("User %02d", i),
			Role:      domain.RoleUser,
			Status:    domain.StatusActive,
			CreatedAt: at,
			UpdatedAt: at,
		}, "password123")
		require.NoError(t, err)
	}
	return r
}
