package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-orders-api/internal/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// total_price is read as text so the exact NUMERIC value reaches decimal.
const orderColumns = `o.order_id, o.customer_id, o.order_date, o.delivery_address, o.status, o.total_price::text`

// Items resolve only through a live order; rows left behind by Delete
// never match.
const lineItemSelect = `
	SELECT oi.order_item_id, oi.order_id, oi.product_id, COALESCE(p.name, '')
	FROM order_items oi
	JOIN orders o ON o.order_id = oi.order_id
	LEFT JOIN products p ON p.product_id = oi.product_id`

type Repo struct {
	DB  *postgres.Gateway
	Log zerolog.Logger
}

// Create inserts the header and every line item in one transaction. Any
// failure rolls the whole order back; the cause is logged and the caller
// only sees ErrTransaction.
func (r *Repo) Create(ctx context.Context, h Header, items []ItemInput) (Created, error) {
	if err := ValidateCreate(h, items); err != nil {
		return Created{}, err
	}

	var orderID int64
	err := r.DB.WithTx(ctx, func(ctx context.Context, q postgres.Querier) error {
		err := q.QueryRow(ctx, `
			INSERT INTO orders (customer_id, order_date, delivery_address, status, total_price)
			VALUES ($1, CURRENT_TIMESTAMP, $2, $3, $4)
			RETURNING order_id`,
			h.CustomerID, h.DeliveryAddress, string(h.Status), h.TotalPrice.Decimal,
		).Scan(&orderID)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		// items need the generated id, so they strictly follow the header
		for i, it := range items {
			if _, err := q.Exec(ctx, `INSERT INTO order_items (order_id, product_id) VALUES ($1, $2)`,
				orderID, it.ProductID); err != nil {
				return fmt.Errorf("insert item %d (product %d): %w", i, it.ProductID, err)
			}
		}
		return nil
	})
	if err != nil {
		r.Log.Error().Err(err).Int64("customer_id", h.CustomerID).Int("items", len(items)).Msg("create order rolled back")
		return Created{}, ErrTransaction
	}

	return Created{OrderID: orderID, Order: h, Products: items}, nil
}

// ListAll returns every order joined with its customer. No pagination.
func (r *Repo) ListAll(ctx context.Context) ([]OrderWithCustomer, error) {
	rows, err := r.DB.Q().Query(ctx, `
		SELECT `+orderColumns+`, u.first_name, u.last_name, u.phone, u.email
		FROM orders o
		JOIN users u ON o.customer_id = u.id
		ORDER BY o.order_id`)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	out := []OrderWithCustomer{}
	for rows.Next() {
		var oc OrderWithCustomer
		if err := scanOrder(rows, &oc.Order, &oc.FirstName, &oc.LastName, &oc.Phone, &oc.Email); err != nil {
			return nil, err
		}
		out = append(out, oc)
	}
	return out, rows.Err()
}

func (r *Repo) FindByID(ctx context.Context, id int64) (Order, error) {
	var o Order
	err := scanOrder(r.DB.Q().QueryRow(ctx, `SELECT `+orderColumns+` FROM orders o WHERE o.order_id = $1`, id), &o)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, fmt.Errorf("find order %d: %w", id, err)
	}
	return o, nil
}

// FindByCustomer returns one entry per order with its line items. Items for
// all orders come from a single ANY($1) query instead of one per order.
func (r *Repo) FindByCustomer(ctx context.Context, customerID int64) ([]CustomerOrder, error) {
	rows, err := r.DB.Q().Query(ctx,
		`SELECT `+orderColumns+` FROM orders o WHERE o.customer_id = $1 ORDER BY o.order_id`, customerID)
	if err != nil {
		return nil, fmt.Errorf("find orders of customer %d: %w", customerID, err)
	}
	var out []CustomerOrder
	for rows.Next() {
		var o Order
		if err := scanOrder(rows, &o); err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, CustomerOrder{Order: o, Products: []LineItem{}})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}

	ids := make([]int64, len(out))
	index := make(map[int64]int, len(out))
	for i, co := range out {
		ids[i] = co.Order.ID
		index[co.Order.ID] = i
	}

	items, err := r.queryLineItems(ctx, lineItemSelect+` WHERE oi.order_id = ANY($1) ORDER BY oi.order_item_id`, ids)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		i := index[it.OrderID]
		out[i].Products = append(out[i].Products, it)
	}
	return out, nil
}

// FindLineItems lists the items of one order in insertion order.
func (r *Repo) FindLineItems(ctx context.Context, orderID int64) ([]LineItem, error) {
	return r.queryLineItems(ctx, lineItemSelect+` WHERE oi.order_id = $1 ORDER BY oi.order_item_id`, orderID)
}

func (r *Repo) queryLineItems(ctx context.Context, sql string, arg any) ([]LineItem, error) {
	rows, err := r.DB.Q().Query(ctx, sql, arg)
	if err != nil {
		return nil, fmt.Errorf("query line items: %w", err)
	}
	defer rows.Close()

	out := []LineItem{}
	for rows.Next() {
		var it LineItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// Update writes only the fields set in p. It reports false, not an error,
// when no order has the id.
func (r *Repo) Update(ctx context.Context, id int64, p Patch) (bool, error) {
	if err := p.Validate(); err != nil {
		return false, err
	}

	set, args := p.setClause()
	args = append(args, id)
	sql := fmt.Sprintf(`UPDATE orders SET %s WHERE order_id = $%d`, set, len(args))

	tag, err := r.DB.Q().Exec(ctx, sql, args...)
	if err != nil {
		r.Log.Error().Err(err).Int64("order_id", id).Strs("fields", p.Fields()).Msg("update order failed")
		return false, ErrTransaction
	}
	return tag.RowsAffected() > 0, nil
}

// Delete hard-deletes the order header. Its order_items rows are left in
// place but no read resolves them any more. Reports false when no order
// has the id.
func (r *Repo) Delete(ctx context.Context, id int64) (bool, error) {
	err := r.DB.WithTx(ctx, func(ctx context.Context, q postgres.Querier) error {
		tag, err := q.Exec(ctx, `DELETE FROM orders WHERE order_id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		r.Log.Error().Err(err).Int64("order_id", id).Msg("delete order rolled back")
		return false, ErrTransaction
	}
}

// scanOrder reads orderColumns followed by any extra destinations.
func scanOrder(row pgx.Row, o *Order, extra ...any) error {
	var status, total string
	dest := append([]any{&o.ID, &o.CustomerID, &o.OrderDate, &o.DeliveryAddress, &status, &total}, extra...)
	if err := row.Scan(dest...); err != nil {
		return err
	}
	price, err := decimal.NewFromString(total)
	if err != nil {
		return fmt.Errorf("order %d total_price %q: %w", o.ID, total, err)
	}
	o.Status = Status(status)
	o.TotalPrice = price
	return nil
}
