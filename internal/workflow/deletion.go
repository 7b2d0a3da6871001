package workflow

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"user-admin-console/internal/domain"
)

// Refresher is told to reload after a successful mutation.
type Refresher interface {
	Refetch(ctx context.Context) error
}

type DeleteState int

const (
	Idle DeleteState = iota
	Confirming
	Deleting
)

func (s DeleteState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Confirming:
		return "confirming"
	case Deleting:
		return "deleting"
	}
	return "unknown"
}

// DeleteSnapshot is what the confirmation dialog shows.
type DeleteSnapshot struct {
	State    DeleteState
	UserID   string
	UserName string
	Err      error
}

// Deletion is the delete confirmation workflow: Idle -> Confirming -> Deleting -> Idle.
type Deletion struct {
	repo    domain.UserRepository
	refresh Refresher
	log     *zap.Logger

	mu       sync.Mutex
	state    DeleteState
	userID   string
	userName string
	err      error
}

// NewDeletion builds the workflow. refresh may be nil.
func NewDeletion(repo domain.UserRepository, refresh Refresher, opts ...Option) *Deletion {
	o := buildOptions(opts)
	return &Deletion{repo: repo, refresh: refresh, log: o.log}
}

// Request opens the confirmation for one user. A pending confirmation is replaced.
func (d *Deletion) Request(userID, userName string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == Deleting {
		return ErrBusy
	}
	d.state = Confirming
	d.userID, d.userName = userID, userName
	d.err = nil
	return nil
}

// Cancel closes the confirmation without side effects.
func (d *Deletion) Cancel() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch d.state {
	case Deleting:
		return ErrBusy
	case Confirming:
		d.state = Idle
		d.userID, d.userName = "", ""
	}
	return nil
}

// Confirm deletes the pending user. Either way the workflow ends in Idle; on failure
// the error is kept and the record is not assumed deleted.
func (d *Deletion) Confirm(ctx context.Context) (*domain.DeleteResult, error) {
	d.mu.Lock()
	switch d.state {
	case Deleting:
		d.mu.Unlock()
		return nil, ErrBusy
	case Idle:
		d.mu.Unlock()
		return nil, ErrNotConfirming
	}
	d.state = Deleting
	id, name := d.userID, d.userName
	d.mu.Unlock()

	res, err := d.repo.Delete(ctx, id)

	d.mu.Lock()
	d.state = Idle
	d.userID, d.userName = "", ""
	d.err = err
	d.mu.Unlock()

	if err != nil {
		d.log.Warn("delete user failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	d.log.Info("user deleted", zap.String("id", id), zap.String("name", name))

	if d.refresh != nil {
		// 刷新失败由列表自己保存错误状态
		if rerr := d.refresh.Refetch(ctx); rerr != nil {
			d.log.Debug("refetch after delete", zap.Error(rerr))
		}
	}
	return res, nil
}

func (d *Deletion) State() DeleteState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *Deletion) Snapshot() DeleteSnapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return DeleteSnapshot{State: d.state, UserID: d.userID, UserName: d.userName, Err: d.err}
}
