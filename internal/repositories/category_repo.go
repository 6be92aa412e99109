package repositories

import (
	"context"

	"mesa/internal/models"

	"github.com/google/uuid"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, restaurantID, id uuid.UUID) (*models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, restaurantID, id uuid.UUID) error
	List(ctx context.Context, restaurantID uuid.UUID) ([]*models.Category, error)
}

type categoryRepo struct {
	db DBTX
}

func NewCategoryRepo(db DBTX) CategoryRepository {
	return &categoryRepo{db: db}
}

func (r *categoryRepo) Create(ctx context.Context, category *models.Category) error {
	query := `
		INSERT INTO categories (id, restaurant_id, name, description, position, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, category.ID, category.RestaurantID, category.Name, category.Description, category.Position)
	if isUniqueViolation(err, "") {
		return ErrDuplicate
	}
	return err
}

func (r *categoryRepo) GetByID(ctx context.Context, restaurantID, id uuid.UUID) (*models.Category, error) {
	category := &models.Category{}
	query := `
		SELECT id, restaurant_id, name, description, position, created_at, updated_at
		FROM categories
		WHERE restaurant_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, restaurantID, id).Scan(&category.ID, &category.RestaurantID, &category.Name, &category.Description, &category.Position, &category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return category, nil
}

func (r *categoryRepo) Update(ctx context.Context, category *models.Category) error {
	query := `
		UPDATE categories
		SET name = $1, description = $2, position = $3, updated_at = NOW()
		WHERE restaurant_id = $4 AND id = $5
	`
	tag, err := r.db.Exec(ctx, query, category.Name, category.Description, category.Position, category.RestaurantID, category.ID)
	if isUniqueViolation(err, "") {
		return ErrDuplicate
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *categoryRepo) Delete(ctx context.Context, restaurantID, id uuid.UUID) error {
	query := `DELETE FROM categories WHERE restaurant_id = $1 AND id = $2`
	tag, err := r.db.Exec(ctx, query, restaurantID, id)
	if isForeignKeyViolation(err) {
		return ErrInUse
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *categoryRepo) List(ctx context.Context, restaurantID uuid.UUID) ([]*models.Category, error) {
	query := `
		SELECT id, restaurant_id, name, description, position, created_at, updated_at
		FROM categories
		WHERE restaurant_id = $1
		ORDER BY position ASC, name ASC
	`
	rows, err := r.db.Query(ctx, query, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		category := &models.Category{}
		if err := rows.Scan(&category.ID, &category.RestaurantID, &category.Name, &category.Description, &category.Position, &category.CreatedAt, &category.UpdatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}
