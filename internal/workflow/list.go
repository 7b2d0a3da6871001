package workflow

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"user-admin-console/internal/domain"
)

// ListState is a copy of the list view at one instant.
type ListState struct {
	Page       int
	Limit      int
	Total      int
	TotalPages int
	Items      []domain.User
	Loading    bool
	Err        error
	// PastEnd marks a loaded page beyond the last one, e.g. after deleting the only
	// item of the last page. The list stays there until the caller navigates.
	PastEnd bool
}

// UserList holds the paginated users view. Only its own fetches write items; the
// delete and form workflows ask it to Refetch.
type UserList struct {
	repo domain.UserRepository
	log  *zap.Logger

	mu         sync.Mutex
	page       int
	limit      int
	items      []domain.User
	total      int
	totalPages int
	err        error
	// seq is the last issued request, done the last one that resolved.
	seq    uint64
	done   uint64
	closed bool
}

var _ Refresher = (*UserList)(nil)

func NewUserList(repo domain.UserRepository, opts ...Option) *UserList {
	o := buildOptions(opts)
	return &UserList{
		repo:  repo,
		log:   o.log,
		page:  domain.DefaultPage,
		limit: o.limit,
		items: []domain.User{},
	}
}

// Load fetches the current page.
func (l *UserList) Load(ctx context.Context) error { return l.SetPage(ctx, l.Page()) }

// Refetch reloads the current page, used after a delete or a form submit.
func (l *UserList) Refetch(ctx context.Context) error { return l.Load(ctx) }

// Retry reloads the current page after a failed fetch. There is no automatic retry.
func (l *UserList) Retry(ctx context.Context) error { return l.Load(ctx) }

// SetPage moves to page p and fetches it. Items of the previous page stay visible
// until the result arrives. A result is applied only when no newer request has been
// issued since; a superseded result returns ErrStale.
//
// p is clamped below at 1 only. A page past totalPages is fetched as asked and
// comes back empty with ListState.PastEnd set; Window still clamps its highlight.
func (l *UserList) SetPage(ctx context.Context, p int) error {
	if p < 1 {
		p = 1
	}
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	l.seq++
	seq := l.seq
	l.page = p
	limit := l.limit
	l.mu.Unlock()

	res, err := l.repo.List(ctx, p, limit)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		l.log.Debug("list result dropped after close", zap.Int("page", p))
		return ErrClosed
	}
	if seq != l.seq {
		l.log.Debug("stale list result dropped", zap.Int("page", p), zap.Uint64("seq", seq), zap.Uint64("latest", l.seq))
		return ErrStale
	}
	l.done = seq
	if err != nil {
		l.err = err
		l.log.Warn("list users failed", zap.Int("page", p), zap.Error(err))
		return err
	}
	l.err = nil
	l.items = res.Items
	if l.items == nil {
		l.items = []domain.User{}
	}
	l.total = res.Total
	l.totalPages = res.TotalPages
	return nil
}

// Next moves one page forward; it does nothing on the last page.
func (l *UserList) Next(ctx context.Context) error {
	l.mu.Lock()
	p, t := l.page, l.totalPages
	l.mu.Unlock()
	if p >= t {
		return nil
	}
	return l.SetPage(ctx, p+1)
}

// Prev moves one page back; it does nothing on page 1.
func (l *UserList) Prev(ctx context.Context) error {
	p := l.Page()
	if p <= 1 {
		return nil
	}
	return l.SetPage(ctx, p-1)
}

func (l *UserList) Page() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.page
}

func (l *UserList) Snapshot() ListState {
	l.mu.Lock()
	defer l.mu.Unlock()
	items := make([]domain.User, len(l.items))
	copy(items, l.items)
	return ListState{
		Page:       l.page,
		Limit:      l.limit,
		Total:      l.total,
		TotalPages: l.totalPages,
		Items:      items,
		Loading:    l.done != l.seq,
		Err:        l.err,
		PastEnd:    l.done == l.seq && l.err == nil && l.page > max(l.totalPages, 1),
	}
}

// Window is the pagination control layout for the current page.
func (l *UserList) Window() []PageItem {
	l.mu.Lock()
	defer l.mu.Unlock()
	return PageWindow(l.page, l.totalPages)
}

// ShowPagination is false when everything fits on one page.
func (l *UserList) ShowPagination() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totalPages > 1
}

// Find looks id up among the items currently shown.
func (l *UserList) Find(id string) (domain.User, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, u := range l.items {
		if u.ID == id {
			return u, true
		}
	}
	return domain.User{}, false
}

// RequestDelete opens the delete confirmation for a user shown on this page.
func (l *UserList) RequestDelete(d *Deletion, id string) error {
	u, ok := l.Find(id)
	if !ok {
		return ErrNotOnPage
	}
	return d.Request(u.ID, u.Name)
}

// Close discards every result that arrives afterwards.
func (l *UserList) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
}
