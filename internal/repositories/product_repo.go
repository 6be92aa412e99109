package repositories

import (
	"context"
	"fmt"

	"mesa/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, restaurantID, id uuid.UUID) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	SetAvailability(ctx context.Context, restaurantID, id uuid.UUID, available bool) error
	Delete(ctx context.Context, restaurantID, id uuid.UUID) error
	List(ctx context.Context, restaurantID uuid.UUID, filter *models.ProductFilter) ([]*models.Product, error)
}

type productRepo struct {
	db DBTX
}

func NewProductRepo(db DBTX) ProductRepository {
	return &productRepo{db: db}
}

const productColumns = `id, restaurant_id, category_id, name, description, price::text, available, preparation_time, created_at, updated_at`

func scanProduct(row pgx.Row) (*models.Product, error) {
	product := &models.Product{}
	var price string
	if err := row.Scan(&product.ID, &product.RestaurantID, &product.CategoryID, &product.Name, &product.Description, &price, &product.Available, &product.PreparationTime, &product.CreatedAt, &product.UpdatedAt); err != nil {
		return nil, err
	}
	p, err := parseMoney(price)
	if err != nil {
		return nil, err
	}
	product.Price = p
	return product, nil
}

func (r *productRepo) Create(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (id, restaurant_id, category_id, name, description, price, available, preparation_time, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, product.ID, product.RestaurantID, product.CategoryID, product.Name, product.Description, money(product.Price), product.Available, product.PreparationTime)
	return err
}

func (r *productRepo) GetByID(ctx context.Context, restaurantID, id uuid.UUID) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE restaurant_id = $1 AND id = $2`
	product, err := scanProduct(r.db.QueryRow(ctx, query, restaurantID, id))
	if err != nil {
		return nil, notFound(err)
	}
	return product, nil
}

func (r *productRepo) Update(ctx context.Context, product *models.Product) error {
	query := `
		UPDATE products
		SET category_id = $1, name = $2, description = $3, price = $4, available = $5, preparation_time = $6, updated_at = NOW()
		WHERE restaurant_id = $7 AND id = $8
	`
	tag, err := r.db.Exec(ctx, query, product.CategoryID, product.Name, product.Description, money(product.Price), product.Available, product.PreparationTime, product.RestaurantID, product.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *productRepo) SetAvailability(ctx context.Context, restaurantID, id uuid.UUID, available bool) error {
	query := `UPDATE products SET available = $1, updated_at = NOW() WHERE restaurant_id = $2 AND id = $3`
	tag, err := r.db.Exec(ctx, query, available, restaurantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *productRepo) Delete(ctx context.Context, restaurantID, id uuid.UUID) error {
	query := `DELETE FROM products WHERE restaurant_id = $1 AND id = $2`
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

// List returns the restaurant's products ordered by name. A nil filter lists everything.
func (r *productRepo) List(ctx context.Context, restaurantID uuid.UUID, filter *models.ProductFilter) ([]*models.Product, error) {
	if filter == nil {
		filter = &models.ProductFilter{}
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE restaurant_id = $1`
	args := []interface{}{restaurantID}

	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		query += fmt.Sprintf(` AND category_id = $%d`, len(args))
	}
	if filter.AvailableOnly {
		query += ` AND available = TRUE`
	}
	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		query += fmt.Sprintf(` AND name ILIKE $%d`, len(args))
	}
	query += ` ORDER BY name ASC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}
