package repositories

import (
	"context"

	"mesa/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type RestaurantRepository interface {
	// CreateWithOwner inserts a restaurant and its owner account atomically.
	CreateWithOwner(ctx context.Context, restaurant *models.Restaurant, owner *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Restaurant, error)
	GetBySlug(ctx context.Context, slug string) (*models.Restaurant, error)
	Update(ctx context.Context, restaurant *models.Restaurant) error
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
}

type restaurantRepo struct {
	db Pool
}

func NewRestaurantRepo(db Pool) RestaurantRepository {
	return &restaurantRepo{db: db}
}

const restaurantColumns = `id, name, slug, description, phone, address, is_open, created_at, updated_at`

func scanRestaurant(row pgx.Row) (*models.Restaurant, error) {
	restaurant := &models.Restaurant{}
	err := row.Scan(&restaurant.ID, &restaurant.Name, &restaurant.Slug, &restaurant.Description, &restaurant.Phone, &restaurant.Address, &restaurant.IsOpen, &restaurant.CreatedAt, &restaurant.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return restaurant, nil
}

func (r *restaurantRepo) CreateWithOwner(ctx context.Context, restaurant *models.Restaurant, owner *models.User) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO restaurants (id, name, slug, description, phone, address, is_open, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		`, restaurant.ID, restaurant.Name, restaurant.Slug, restaurant.Description, restaurant.Phone, restaurant.Address, restaurant.IsOpen)
		if isUniqueViolation(err, "") {
			return ErrDuplicate
		}
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO users (id, restaurant_id, email, password_hash, name, role, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		`, owner.ID, owner.RestaurantID, owner.Email, owner.PasswordHash, owner.Name, string(owner.Role))
		if isUniqueViolation(err, "") {
			return ErrDuplicate
		}
		return err
	})
}

func (r *restaurantRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Restaurant, error) {
	query := `SELECT ` + restaurantColumns + ` FROM restaurants WHERE id = $1`
	return scanRestaurant(r.db.QueryRow(ctx, query, id))
}

func (r *restaurantRepo) GetBySlug(ctx context.Context, slug string) (*models.Restaurant, error) {
	query := `SELECT ` + restaurantColumns + ` FROM restaurants WHERE slug = $1`
	return scanRestaurant(r.db.QueryRow(ctx, query, slug))
}

func (r *restaurantRepo) Update(ctx context.Context, restaurant *models.Restaurant) error {
	query := `
		UPDATE restaurants
		SET name = $1, description = $2, phone = $3, address = $4, is_open = $5, updated_at = NOW()
		WHERE id = $6
	`
	tag, err := r.db.Exec(ctx, query, restaurant.Name, restaurant.Description, restaurant.Phone, restaurant.Address, restaurant.IsOpen, restaurant.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *restaurantRepo) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM restaurants ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
