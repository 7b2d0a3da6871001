package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"user-admin-console/internal/core/database"
	"user-admin-console/internal/domain"
	"user-admin-console/pkg/utils"
)

var ErrBadCredentials = errors.New("invalid credentials")

// userRow is the users table. UsernameKey carries the case-folded username so the
// unique index rejects "JohnDoe" next to "johndoe".
type userRow struct {
	ID           string    `gorm:"primaryKey;size:32"`
	Username     string    `gorm:"size:50;not null"`
	UsernameKey  string    `gorm:"size:50;not null;uniqueIndex"`
	Email        string    `gorm:"size:255"`
	Name         string    `gorm:"size:100"`
	Role         string    `gorm:"size:16;not null"`
	Status       string    `gorm:"size:16;not null"`
	PasswordHash string    `gorm:"size:100;not null"`
	Seq          int64     `gorm:"not null"`
	CreatedAt    time.Time `gorm:"index;autoCreateTime:false"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime:false"`
}

func (userRow) TableName() string { return "users" }

func (row *userRow) toDomain() *domain.User {
	return &domain.User{
		ID:        row.ID,
		Username:  row.Username,
		Email:     row.Email,
		Name:      row.Name,
		Role:      domain.Role(row.Role),
		Status:    domain.Status(row.Status),
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
}

func usernameKey(s string) string { return strings.ToLower(s) }

// AutoMigrate creates or updates the users table.
func AutoMigrate(db *gorm.DB) error { return db.AutoMigrate(&userRow{}) }

// UserRepo is the users store behind the stand-in backend. It also works as an
// in-process fake of the users API.
type UserRepo struct {
	db    *gorm.DB
	now   func() time.Time
	newID func() string
}

var _ domain.UserRepository = (*UserRepo)(nil)

type Option func(*UserRepo)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *UserRepo) { r.now = now }
}

func WithIDGen(gen func() string) Option {
	return func(r *UserRepo) { r.newID = gen }
}

func NewUserRepo(db *gorm.DB, opts ...Option) *UserRepo {
	r := &UserRepo{db: db, now: time.Now, newID: utils.NewID}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// OpenMemory returns a migrated, empty store on a private in-memory sqlite database.
func OpenMemory(opts ...Option) (*UserRepo, error) {
	db, err := database.OpenMemory()
	if err != nil {
		return nil, err
	}
	if err := AutoMigrate(db); err != nil {
		return nil, err
	}
	return NewUserRepo(db, opts...), nil
}

// 时间统一截到微秒，mysql/postgres 存不下纳秒
func (r *UserRepo) stamp() time.Time { return r.now().UTC().Truncate(time.Microsecond) }

func notFound(id string) error { return fmt.Errorf("user %s: %w", id, domain.ErrNotFound) }

func conflict(username string) error {
	return fmt.Errorf("username '%s': %w", username, domain.ErrConflict)
}

// List returns users newest first.
func (r *UserRepo) List(ctx context.Context, page, limit int) (*domain.Page[domain.User], error) {
	page, limit = domain.NormalizePaging(page, limit)

	tx := r.db.WithContext(ctx).Model(&userRow{}).Session(&gorm.Session{})
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, err
	}
	var rows []userRow
	err := tx.Order("created_at desc").Order("seq desc").
		Offset(domain.Offset(page, limit)).Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	items := make([]domain.User, 0, len(rows))
	for i := range rows {
		items = append(items, *rows[i].toDomain())
	}
	return domain.NewPage(items, int(total), page, limit), nil
}

func (r *UserRepo) find(tx *gorm.DB, id string) (*userRow, error) {
	var row userRow
	err := tx.First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row, err := r.find(r.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *UserRepo) Create(ctx context.Context, in domain.UserCreateData) (*domain.User, error) {
	role := in.Role
	if role == "" {
		role = domain.RoleUser
	}
	now := r.stamp()
	row := &userRow{
		ID:           r.newID(),
		Username:     in.Username,
		UsernameKey:  usernameKey(in.Username),
		Email:        in.Email,
		Name:         in.Name,
		Role:         string(role),
		Status:       string(domain.StatusActive),
		PasswordHash: utils.HashPassword(in.Password),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := r.insert(ctx, row); err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

// Seed stores u as is, keeping its id and timestamps.
func (r *UserRepo) Seed(ctx context.Context, u domain.User, password string) error {
	return r.insert(ctx, &userRow{
		ID:           u.ID,
		Username:     u.Username,
		UsernameKey:  usernameKey(u.Username),
		Email:        u.Email,
		Name:         u.Name,
		Role:         string(u.Role),
		Status:       string(u.Status),
		PasswordHash: utils.HashPassword(password),
		CreatedAt:    u.CreatedAt.UTC().Truncate(time.Microsecond),
		UpdatedAt:    u.UpdatedAt.UTC().Truncate(time.Microsecond),
	})
}

// insert assigns the next seq (tie-break for equal created_at) and writes row.
func (r *UserRepo) insert(ctx context.Context, row *userRow) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := r.usernameTaken(tx, row.UsernameKey, "")
		if err != nil {
			return err
		}
		if taken {
			return conflict(row.Username)
		}
		if err := tx.Model(&userRow{}).Select("COALESCE(MAX(seq), 0)").Scan(&row.Seq).Error; err != nil {
			return err
		}
		row.Seq++
		if err := tx.Create(row).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return conflict(row.Username)
			}
			return err
		}
		return nil
	})
}

func (r *UserRepo) Update(ctx context.Context, id string, in domain.UserUpdateData) (*domain.User, error) {
	in = in.Normalize()
	var out *domain.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := r.find(tx, id)
		if err != nil {
			return err
		}
		if in.Username != nil {
			taken, err := r.usernameTaken(tx, usernameKey(*in.Username), id)
			if err != nil {
				return err
			}
			if taken {
				return conflict(*in.Username)
			}
		}

		u := row.toDomain()
		in.Apply(u)
		row.Username, row.UsernameKey = u.Username, usernameKey(u.Username)
		row.Email, row.Name = u.Email, u.Name
		row.Role, row.Status = string(u.Role), string(u.Status)
		if in.Password != nil {
			row.PasswordHash = utils.HashPassword(*in.Password)
		}
		// updatedAt 不回退
		now := r.stamp()
		if now.Before(row.UpdatedAt) {
			now = row.UpdatedAt
		}
		row.UpdatedAt = now

		if err := tx.Save(row).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return conflict(row.Username)
			}
			return err
		}
		out = row.toDomain()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete is terminal; a second delete of the same id reports not found.
func (r *UserRepo) Delete(ctx context.Context, id string) (*domain.DeleteResult, error) {
	res := r.db.WithContext(ctx).Delete(&userRow{}, "id = ?", id)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, notFound(id)
	}
	return &domain.DeleteResult{ID: id, Message: "user deleted"}, nil
}

// Authenticate finds username and checks pw against its stored hash.
func (r *UserRepo) Authenticate(ctx context.Context, username, pw string) (*domain.User, error) {
	var row userRow
	err := r.db.WithContext(ctx).First(&row, "username_key = ?", usernameKey(username)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, err
	}
	if !utils.CheckPassword(pw, row.PasswordHash) {
		return nil, ErrBadCredentials
	}
	return row.toDomain(), nil
}

// CheckPassword reports whether pw matches the stored hash of id.
func (r *UserRepo) CheckPassword(id, pw string) bool {
	row, err := r.find(r.db, id)
	return err == nil && utils.CheckPassword(pw, row.PasswordHash)
}

func (r *UserRepo) usernameTaken(tx *gorm.DB, key, exceptID string) (bool, error) {
	q := tx.Model(&userRow{}).Where("username_key = ?", key)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
