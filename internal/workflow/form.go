package workflow

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"user-admin-console/internal/domain"
	"user-admin-console/internal/validation"
)

type FormState int

const (
	Editing FormState = iota
	Submitting
	Done
)

func (s FormState) String() string {
	switch s {
	case Editing:
		return "editing"
	case Submitting:
		return "submitting"
	case Done:
		return "done"
	}
	return "unknown"
}

// Field names accepted by Form.Set.
const (
	FieldUsername = "username"
	FieldEmail    = "email"
	FieldName     = "name"
	FieldPassword = "password"
	FieldRole     = "role"
	FieldStatus   = "status"
)

type FormSnapshot struct {
	Mode        validation.Mode
	State       FormState
	Values      validation.FormValues
	Err         error
	FieldErrors validation.Errors
	Result      *domain.User
}

// Form is the create/edit user workflow. The mode is fixed at construction.
type Form struct {
	repo   domain.UserRepository
	log    *zap.Logger
	mode   validation.Mode
	userID string

	mu        sync.Mutex
	state     FormState
	values    validation.FormValues
	err       error
	fieldErrs validation.Errors
	result    *domain.User
}

func NewCreateForm(repo domain.UserRepository, opts ...Option) *Form {
	o := buildOptions(opts)
	return &Form{
		repo: repo,
		log:  o.log,
		mode: validation.ModeCreate,
		values: validation.FormValues{
			Role:   domain.RoleUser,
			Status: domain.StatusActive,
		},
	}
}

// NewEditForm starts from u. The password field always starts empty.
func NewEditForm(repo domain.UserRepository, u domain.User, opts ...Option) *Form {
	o := buildOptions(opts)
	return &Form{
		repo:   repo,
		log:    o.log,
		mode:   validation.ModeEdit,
		userID: u.ID,
		values: validation.FormValues{
			Username: u.Username,
			Email:    u.Email,
			Name:     u.Name,
			Role:     u.Role,
			Status:   u.Status,
		},
	}
}

// LoadEditForm fetches the user and opens an edit form for it.
func LoadEditForm(ctx context.Context, repo domain.UserRepository, id string, opts ...Option) (*Form, error) {
	u, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewEditForm(repo, *u, opts...), nil
}

func (f *Form) Mode() validation.Mode { return f.mode }

// Set changes one field. Values cannot change while a submit is in flight.
func (f *Form) Set(field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch f.state {
	case Submitting:
		return ErrSubmitting
	case Done:
		return ErrFormDone
	}
	switch field {
	case FieldUsername:
		f.values.Username = value
	case FieldEmail:
		f.values.Email = value
	case FieldName:
		f.values.Name = value
	case FieldPassword:
		f.values.Password = value
	case FieldRole:
		f.values.Role = domain.Role(value)
	case FieldStatus:
		f.values.Status = domain.Status(value)
	default:
		return fmt.Errorf("unknown form field %q", field)
	}
	return nil
}

func (f *Form) Values() validation.FormValues {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values
}

func (f *Form) State() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Form) Snapshot() FormSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return FormSnapshot{
		Mode:        f.mode,
		State:       f.state,
		Values:      f.values,
		Err:         f.err,
		FieldErrors: f.fieldErrs,
		Result:      f.result,
	}
}

// Submit validates and sends the form. Validation failures never reach the network.
// On any error the form goes back to Editing with the entered values kept.
func (f *Form) Submit(ctx context.Context) (*domain.User, error) {
	f.mu.Lock()
	switch f.state {
	case Submitting:
		f.mu.Unlock()
		return nil, ErrSubmitting
	case Done:
		f.mu.Unlock()
		return nil, ErrFormDone
	}
	values := f.values
	if err := validation.Validate(f.mode, values); err != nil {
		f.fieldErrs, _ = validation.AsErrors(err)
		f.err = err
		f.mu.Unlock()
		return nil, err
	}
	f.fieldErrs = nil
	f.err = nil
	f.state = Submitting
	f.mu.Unlock()

	var (
		u   *domain.User
		err error
	)
	if f.mode == validation.ModeCreate {
		u, err = f.repo.Create(ctx, createData(values))
	} else {
		u, err = f.repo.Update(ctx, f.userID, updateData(values))
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.state = Editing
		f.err = err
		f.log.Warn("submit user form failed", zap.String("mode", string(f.mode)), zap.Error(err))
		return nil, err
	}
	f.state = Done
	f.result = u
	f.log.Info("user form submitted", zap.String("mode", string(f.mode)), zap.String("id", u.ID))
	return u, nil
}

func createData(v validation.FormValues) domain.UserCreateData {
	return domain.UserCreateData{
		Username: v.Username,
		Email:    v.Email,
		Name:     v.Name,
		Password: v.Password,
		Role:     v.Role,
	}
}

// updateData leaves Password nil when the field is empty.
func updateData(v validation.FormValues) domain.UserUpdateData {
	d := domain.UserUpdateData{
		Username: &v.Username,
		Email:    &v.Email,
		Name:     &v.Name,
		Role:     &v.Role,
		Status:   &v.Status,
	}
	if v.Password != "" {
		d.Password = &v.Password
	}
	return d
}
