package repositories

import (
	"context"
	"testing"
	"time"

	"mesa/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func ptr[T any](v T) *T { return &v }

type CatalogueRepoTestSuite struct {
	suite.Suite
	mock         pgxmock.PgxPoolIface
	products     ProductRepository
	categories   CategoryRepository
	restaurants  RestaurantRepository
	users        UserRepository
	restaurantID uuid.UUID
	ctx          context.Context
}

func (s *CatalogueRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	require.NoError(s.T(), err)
	s.mock = mock
	s.products = NewProductRepo(mock)
	s.categories = NewCategoryRepo(mock)
	s.restaurants = NewRestaurantRepo(mock)
	s.users = NewUserRepo(mock)
	s.restaurantID = uuid.New()
	s.ctx = context.Background()
}

func (s *CatalogueRepoTestSuite) TearDownTest() {
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
	s.mock.Close()
}

func TestCatalogueRepoTestSuite(t *testing.T) {
	suite.Run(t, new(CatalogueRepoTestSuite))
}

func (s *CatalogueRepoTestSuite) TestProductCreate_PriceAsFixedText() {
	product := &models.Product{
		ID:              uuid.New(),
		RestaurantID:    s.restaurantID,
		CategoryID:      uuid.New(),
		Name:            "Margherita",
		Price:           decimal.RequireFromString("9.5"),
		Available:       true,
		PreparationTime: ptr(12),
	}

	s.mock.ExpectExec(`INSERT INTO products`).
		WithArgs(product.ID, s.restaurantID, product.CategoryID, "Margherita", product.Description, "9.50", true, product.PreparationTime).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	s.NoError(s.products.Create(s.ctx, product))
}

func (s *CatalogueRepoTestSuite) TestProductList_AvailableInCategory() {
	categoryID := uuid.New()
	now := time.Now()

	s.mock.ExpectQuery(q(`SELECT ` + productColumns + ` FROM products WHERE restaurant_id = $1 AND category_id = $2 AND available = TRUE ORDER BY name ASC`)).
		WithArgs(s.restaurantID, categoryID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "restaurant_id", "category_id", "name", "description", "price", "available", "preparation_time", "created_at", "updated_at"}).
			AddRow(uuid.New(), s.restaurantID, categoryID, "Calzone", ptr("folded"), "11.00", true, ptr(18), now, now))

	products, err := s.products.List(s.ctx, s.restaurantID, &models.ProductFilter{CategoryID: &categoryID, AvailableOnly: true})

	s.Require().NoError(err)
	s.Require().Len(products, 1)
	s.Equal("Calzone", products[0].Name)
	s.Equal(18, *products[0].PreparationTime)
}

func (s *CatalogueRepoTestSuite) TestProductSetAvailability_NotFound() {
	id := uuid.New()
	s.mock.ExpectExec(`UPDATE products SET available = \$1`).
		WithArgs(false, s.restaurantID, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	s.ErrorIs(s.products.SetAvailability(s.ctx, s.restaurantID, id, false), ErrNotFound)
}

func (s *CatalogueRepoTestSuite) TestCategoryCreate_Duplicate() {
	category := &models.Category{ID: uuid.New(), RestaurantID: s.restaurantID, Name: "Pizzas"}

	s.mock.ExpectExec(`INSERT INTO categories`).
		WithArgs(category.ID, s.restaurantID, "Pizzas", category.Description, 0).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	s.ErrorIs(s.categories.Create(s.ctx, category), ErrDuplicate)
}

func (s *CatalogueRepoTestSuite) TestCategoryDelete_ScopedToRestaurant() {
	id := uuid.New()
	s.mock.ExpectExec(q(`DELETE FROM categories WHERE restaurant_id = $1 AND id = $2`)).
		WithArgs(s.restaurantID, id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	s.ErrorIs(s.categories.Delete(s.ctx, s.restaurantID, id), ErrNotFound)
}

func (s *CatalogueRepoTestSuite) TestCategoryDelete_StillHasProducts() {
	id := uuid.New()
	s.mock.ExpectExec(q(`DELETE FROM categories WHERE restaurant_id = $1 AND id = $2`)).
		WithArgs(s.restaurantID, id).
		WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "products_category_id_fkey"})

	s.ErrorIs(s.categories.Delete(s.ctx, s.restaurantID, id), ErrInUse)
}

func (s *CatalogueRepoTestSuite) TestProductDelete_ReferencedByOrderLines() {
	id := uuid.New()
	s.mock.ExpectExec(q(`DELETE FROM products WHERE restaurant_id = $1 AND id = $2`)).
		WithArgs(s.restaurantID, id).
		WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "order_lines_product_id_fkey"})

	s.ErrorIs(s.products.Delete(s.ctx, s.restaurantID, id), ErrInUse)
}

func (s *CatalogueRepoTestSuite) TestRestaurantCreateWithOwner_Commits() {
	restaurant := &models.Restaurant{ID: s.restaurantID, Name: "Trattoria", Slug: "trattoria", IsOpen: true}
	owner := &models.User{ID: uuid.New(), RestaurantID: s.restaurantID, Email: "owner@trattoria.test", PasswordHash: "hash", Name: "Gio", Role: models.RoleOwner}

	s.mock.ExpectBegin()
	s.mock.ExpectExec(`INSERT INTO restaurants`).
		WithArgs(s.restaurantID, "Trattoria", "trattoria", restaurant.Description, restaurant.Phone, restaurant.Address, true).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	s.mock.ExpectExec(`INSERT INTO users`).
		WithArgs(owner.ID, s.restaurantID, owner.Email, "hash", "Gio", "owner").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	s.mock.ExpectCommit()

	s.NoError(s.restaurants.CreateWithOwner(s.ctx, restaurant, owner))
}

func (s *CatalogueRepoTestSuite) TestRestaurantCreateWithOwner_DuplicateEmailRollsBack() {
	restaurant := &models.Restaurant{ID: s.restaurantID, Name: "Trattoria", Slug: "trattoria"}
	owner := &models.User{ID: uuid.New(), RestaurantID: s.restaurantID, Email: "taken@test", Role: models.RoleOwner}

	s.mock.ExpectBegin()
	s.mock.ExpectExec(`INSERT INTO restaurants`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	s.mock.ExpectExec(`INSERT INTO users`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})
	s.mock.ExpectRollback()

	s.ErrorIs(s.restaurants.CreateWithOwner(s.ctx, restaurant, owner), ErrDuplicate)
}

func (s *CatalogueRepoTestSuite) TestUserCreate_LowercasesEmail() {
	user := &models.User{ID: uuid.New(), RestaurantID: s.restaurantID, Email: "Cook@Example.COM", PasswordHash: "h", Name: "Cook", Role: models.RoleStaff}

	s.mock.ExpectExec(`INSERT INTO users`).
		WithArgs(user.ID, s.restaurantID, "cook@example.com", "h", "Cook", "staff").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	s.NoError(s.users.Create(s.ctx, user))
}
