package httpx

import (
	"context"
	"sync"
	"time"

	"github.com/ariefcatur/go-orders-api/internal/orders"
	"github.com/ariefcatur/go-orders-api/internal/products"
	"github.com/ariefcatur/go-orders-api/internal/users"
	kafkago "github.com/segmentio/kafka-go"
)

type fakeOrders struct {
	mu        sync.Mutex
	next      int64
	rows      map[int64]orders.Order
	items     map[int64][]orders.LineItem
	finds     int
	createErr error
	// afterFind runs once the row has been read, outside the lock.
	afterFind func()
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{next: 1, rows: map[int64]orders.Order{}, items: map[int64][]orders.LineItem{}}
}

func (f *fakeOrders) Create(_ context.Context, h orders.Header, in []orders.ItemInput) (orders.Created, error) {
	if err := orders.ValidateCreate(h, in); err != nil {
		return orders.Created{}, err
	}
	if f.createErr != nil {
		return orders.Created{}, orders.ErrTransaction
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.next
	f.next++
	f.rows[id] = orders.Order{
		ID: id, CustomerID: h.CustomerID, OrderDate: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		DeliveryAddress: h.DeliveryAddress, Status: h.Status, TotalPrice: h.TotalPrice.Decimal,
	}
	for i, it := range in {
		f.items[id] = append(f.items[id], orders.LineItem{ID: int64(i + 1), OrderID: id, ProductID: it.ProductID})
	}
	return orders.Created{OrderID: id, Order: h, Products: in}, nil
}

func (f *fakeOrders) ListAll(context.Context) ([]orders.OrderWithCustomer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []orders.OrderWithCustomer{}
	for _, o := range f.rows {
		out = append(out, orders.OrderWithCustomer{Order: o, FirstName: "Ada"})
	}
	return out, nil
}

func (f *fakeOrders) FindByID(_ context.Context, id int64) (orders.Order, error) {
	f.mu.Lock()
	f.finds++
	o, ok := f.rows[id]
	hook := f.afterFind
	f.mu.Unlock()
	if !ok {
		return orders.Order{}, orders.ErrNotFound
	}
	if hook != nil {
		hook()
	}
	return o, nil
}

func (f *fakeOrders) findCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.finds
}

func (f *fakeOrders) FindByCustomer(_ context.Context, customerID int64) ([]orders.CustomerOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []orders.CustomerOrder
	for id, o := range f.rows {
		if o.CustomerID == customerID {
			out = append(out, orders.CustomerOrder{Order: o, Products: f.items[id]})
		}
	}
	if len(out) == 0 {
		return nil, orders.ErrNotFound
	}
	return out, nil
}

func (f *fakeOrders) FindLineItems(_ context.Context, id int64) ([]orders.LineItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	// items of a deleted order stay stored but are joined away
	if _, ok := f.rows[id]; !ok {
		return []orders.LineItem{}, nil
	}
	return append([]orders.LineItem{}, f.items[id]...), nil
}

func (f *fakeOrders) Update(_ context.Context, id int64, p orders.Patch) (bool, error) {
	if err := p.Validate(); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.rows[id]
	if !ok {
		return false, nil
	}
	if p.Status != nil {
		o.Status = *p.Status
	}
	if p.DeliveryAddress != nil {
		o.DeliveryAddress = *p.DeliveryAddress
	}
	f.rows[id] = o
	return true, nil
}

func (f *fakeOrders) Delete(_ context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return false, nil
	}
	delete(f.rows, id)
	return true, nil
}

type published struct {
	topic string
	key   string
	value []byte
}

type fakePublisher struct {
	mu   sync.Mutex
	sent []published
}

func (p *fakePublisher) Publish(topic string, key, value []byte, _ ...kafkago.Header) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, published{topic: topic, key: string(key), value: value})
	return nil
}

type fakeUsers struct {
	mu   sync.Mutex
	rows map[int64]users.User
	next int64
}

func (f *fakeUsers) List(context.Context) ([]users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []users.User{}
	for _, u := range f.rows {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUsers) FindByID(_ context.Context, id int64) (users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.rows[id]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.rows {
		if u.Email == email {
			return u, nil
		}
	}
	return users.User{}, users.ErrNotFound
}

func (f *fakeUsers) Create(_ context.Context, nu users.NewUser) (int64, error) {
	if nu.Email == "" || nu.Password == "" {
		return 0, users.ErrValidation
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	f.rows[f.next] = users.User{ID: f.next, Email: nu.Email, Role: nu.Role, Password: nu.Password}
	return f.next, nil
}

func (f *fakeUsers) Update(_ context.Context, id int64, p users.Patch) (bool, error) {
	if p.Empty() {
		return false, users.ErrValidation
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.rows[id]
	if !ok {
		return false, nil
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Address != nil {
		u.Address = *p.Address
	}
	f.rows[id] = u
	return true, nil
}

func (f *fakeUsers) Delete(_ context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return false, nil
	}
	delete(f.rows, id)
	return true, nil
}

type fakeProducts struct {
	mu   sync.Mutex
	rows map[int64]products.Product
	next int64
}

func (f *fakeProducts) List(context.Context) ([]products.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []products.Product{}
	for _, p := range f.rows {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProducts) FindByID(_ context.Context, id int64) (products.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok {
		return products.Product{}, products.ErrNotFound
	}
	return p, nil
}

func (f *fakeProducts) Create(_ context.Context, np products.NewProduct) (int64, error) {
	if np.Name == "" || !np.Price.Valid {
		return 0, products.ErrValidation
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	f.rows[f.next] = products.Product{ID: f.next, Name: np.Name, Price: np.Price.Decimal}
	return f.next, nil
}

func (f *fakeProducts) Update(_ context.Context, id int64, p products.Patch) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pr, ok := f.rows[id]
	if !ok {
		return false, nil
	}
	if p.Name != nil {
		pr.Name = *p.Name
	}
	f.rows[id] = pr
	return true, nil
}

func (f *fakeProducts) Delete(_ context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return false, nil
	}
	delete(f.rows, id)
	return true, nil
}
