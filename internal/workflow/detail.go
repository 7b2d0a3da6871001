package workflow

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"user-admin-console/internal/domain"
)

// Detail loads a single user for the detail view.
type Detail struct {
	repo domain.UserRepository
	log  *zap.Logger

	mu      sync.Mutex
	seq     uint64
	loading bool
	user    *domain.User
	err     error
}

func NewDetail(repo domain.UserRepository, opts ...Option) *Detail {
	o := buildOptions(opts)
	return &Detail{repo: repo, log: o.log}
}

// Load fetches id. Only the most recent Load updates the view.
func (d *Detail) Load(ctx context.Context, id string) (*domain.User, error) {
	d.mu.Lock()
	d.seq++
	seq := d.seq
	d.loading = true
	d.mu.Unlock()

	u, err := d.repo.GetByID(ctx, id)

	d.mu.Lock()
	defer d.mu.Unlock()
	if seq != d.seq {
		return nil, ErrStale
	}
	d.loading = false
	d.err = err
	if err != nil {
		d.user = nil
		d.log.Warn("get user failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	d.user = u
	return u, nil
}

// User returns the loaded user, nil before a successful Load.
func (d *Detail) User() *domain.User {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.user
}

func (d *Detail) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}

func (d *Detail) Loading() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loading
}
