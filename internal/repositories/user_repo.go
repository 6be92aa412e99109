package repositories

import (
	"context"
	"strings"

	"mesa/internal/models"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, restaurantID, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, restaurantID uuid.UUID) ([]*models.User, error)
}

type userRepo struct {
	db DBTX
}

func NewUserRepo(db DBTX) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, restaurant_id, email, password_hash, name, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, user.ID, user.RestaurantID, strings.ToLower(user.Email), user.PasswordHash, user.Name, string(user.Role))
	if isUniqueViolation(err, "") {
		return ErrDuplicate
	}
	return err
}

func (r *userRepo) GetByID(ctx context.Context, restaurantID, id uuid.UUID) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, restaurant_id, email, password_hash, name, role, created_at, updated_at
		FROM users
		WHERE restaurant_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, restaurantID, id).Scan(&user.ID, &user.RestaurantID, &user.Email, &user.PasswordHash, &user.Name, &user.Role, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, restaurant_id, email, password_hash, name, role, created_at, updated_at
		FROM users
		WHERE email = $1
	`
	err := r.db.QueryRow(ctx, query, strings.ToLower(strings.TrimSpace(email))).Scan(&user.ID, &user.RestaurantID, &user.Email, &user.PasswordHash, &user.Name, &user.Role, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return user, nil
}

func (r *userRepo) List(ctx context.Context, restaurantID uuid.UUID) ([]*models.User, error) {
	query := `
		SELECT id, restaurant_id, email, password_hash, name, role, created_at, updated_at
		FROM users
		WHERE restaurant_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(ctx, query, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		if err := rows.Scan(&user.ID, &user.RestaurantID, &user.Email, &user.PasswordHash, &user.Name, &user.Role, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}
