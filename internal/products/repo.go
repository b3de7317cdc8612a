package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ariefcatur/go-orders-api/internal/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound   = errors.New("product not found")
	ErrValidation = errors.New("validation failed")
)

type Product struct {
	ID          int64           `json:"product_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
}

type NewProduct struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Price       decimal.NullDecimal `json:"price"`
	Category    string              `json:"category"`
}

type Patch struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Category    *string          `json:"category,omitempty"`
}

const productColumns = `product_id, name, description, price::text, category`

type Repo struct {
	DB  *postgres.Gateway
	Log zerolog.Logger
}

func scanProduct(row pgx.Row, p *Product) error {
	var price string
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &price, &p.Category); err != nil {
		return err
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return fmt.Errorf("product %d price %q: %w", p.ID, price, err)
	}
	p.Price = d
	return nil
}

func (r *Repo) List(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Q().Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY product_id`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	out := []Product{}
	for rows.Next() {
		var p Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) FindByID(ctx context.Context, id int64) (Product, error) {
	var p Product
	err := scanProduct(r.DB.Q().QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE product_id = $1`, id), &p)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, fmt.Errorf("find product %d: %w", id, err)
	}
	return p, nil
}

func (r *Repo) Create(ctx context.Context, np NewProduct) (int64, error) {
	if np.Name == "" || !np.Price.Valid {
		return 0, fmt.Errorf("%w: name and price required", ErrValidation)
	}
	var id int64
	err := r.DB.Q().QueryRow(ctx, `
		INSERT INTO products (name, description, price, category)
		VALUES ($1, $2, $3, $4)
		RETURNING product_id`,
		np.Name, np.Description, np.Price.Decimal, np.Category,
	).Scan(&id)
	if err != nil {
		r.Log.Error().Err(err).Str("name", np.Name).Msg("create product failed")
		return 0, fmt.Errorf("create product: %w", err)
	}
	return id, nil
}

func (r *Repo) Update(ctx context.Context, id int64, p Patch) (bool, error) {
	var (
		sets []string
		args []any
	)
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if p.Name != nil {
		add("name", *p.Name)
	}
	if p.Description != nil {
		add("description", *p.Description)
	}
	if p.Price != nil {
		add("price", *p.Price)
	}
	if p.Category != nil {
		add("category", *p.Category)
	}
	if len(sets) == 0 {
		return false, fmt.Errorf("%w: no updatable fields", ErrValidation)
	}
	args = append(args, id)

	tag, err := r.DB.Q().Exec(ctx,
		fmt.Sprintf(`UPDATE products SET %s WHERE product_id = $%d`, strings.Join(sets, ", "), len(args)), args...)
	if err != nil {
		r.Log.Error().Err(err).Int64("product_id", id).Msg("update product failed")
		return false, fmt.Errorf("update product: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Delete fails while order_items still reference the product.
func (r *Repo) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.DB.Q().Exec(ctx, `DELETE FROM products WHERE product_id = $1`, id)
	if err != nil {
		r.Log.Error().Err(err).Int64("product_id", id).Msg("delete product failed")
		return false, fmt.Errorf("delete product: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
