package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository is the generic CRUD layer shared by all entity repositories.
// Every call is scoped to ctx; lookups by id return gorm.ErrRecordNotFound
// when nothing matches so services can distinguish "absent" from failures.
type Repository[T any] struct {
	db *gorm.DB
}

// NewRepository binds a generic repository to the given DB handle
// (either the root connection or an open transaction).
func NewRepository[T any](database *gorm.DB) *Repository[T] {
	return &Repository[T]{db: database}
}

func (r *Repository[T]) Create(ctx context.Context, entity *T) error {
	return r.db.WithContext(ctx).Create(entity).Error
}

func (r *Repository[T]) FindByID(ctx context.Context, id string, preload ...string) (*T, error) {
	var entity T
	q := r.db.WithContext(ctx)
	for _, rel := range preload {
		q = q.Preload(rel)
	}
	if err := q.Where("id = ?", id).Take(&entity).Error; err != nil {
		return nil, err
	}
	return &entity, nil
}

// List returns every row in insertion order.
func (r *Repository[T]) List(ctx context.Context) ([]T, error) {
	var out []T
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateFields applies a column->value map to the row with the given id and
// reports how many rows matched.
func (r *Repository[T]) UpdateFields(ctx context.Context, id string, fields map[string]any) (int64, error) {
	var model T
	res := r.db.WithContext(ctx).Model(&model).Where("id = ?", id).Updates(fields)
	return res.RowsAffected, res.Error
}

// Transactor runs a unit of work inside a single database transaction.
type Transactor struct {
	db *gorm.DB
}

func NewTransactor(database *gorm.DB) *Transactor {
	return &Transactor{db: database}
}

// WithinTx commits when fn returns nil and rolls back otherwise.
func (t *Transactor) WithinTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return t.db.WithContext(ctx).Transaction(fn)
}
