package orders

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Patch holds the updatable order fields. A nil field is left unchanged.
// order_id and order_date have no entry and can never be written.
type Patch struct {
	CustomerID      *int64           `json:"customer_id,omitempty"`
	DeliveryAddress *string          `json:"delivery_address,omitempty"`
	Status          *Status          `json:"status,omitempty"`
	TotalPrice      *decimal.Decimal `json:"total_price,omitempty"`
}

type assignment struct {
	column string
	value  any
}

// assignments walks the allow-list in a fixed column order.
func (p Patch) assignments() []assignment {
	var out []assignment
	if p.CustomerID != nil {
		out = append(out, assignment{"customer_id", *p.CustomerID})
	}
	if p.DeliveryAddress != nil {
		out = append(out, assignment{"delivery_address", *p.DeliveryAddress})
	}
	if p.Status != nil {
		out = append(out, assignment{"status", string(*p.Status)})
	}
	if p.TotalPrice != nil {
		out = append(out, assignment{"total_price", *p.TotalPrice})
	}
	return out
}

func (p Patch) Empty() bool { return len(p.assignments()) == 0 }

// Validate applies the create-time presence rules to every field the patch
// sets, so an update can never blank out a required column.
func (p Patch) Validate() error {
	switch {
	case p.Empty():
		return fmt.Errorf("%w: no updatable fields", ErrValidation)
	case p.CustomerID != nil && *p.CustomerID == 0:
		return fmt.Errorf("%w: customer_id required", ErrValidation)
	case p.DeliveryAddress != nil && *p.DeliveryAddress == "":
		return fmt.Errorf("%w: delivery_address required", ErrValidation)
	case p.Status != nil && *p.Status == "":
		return fmt.Errorf("%w: status required", ErrValidation)
	}
	return nil
}

// Fields lists the columns the patch touches.
func (p Patch) Fields() []string {
	as := p.assignments()
	out := make([]string, len(as))
	for i, a := range as {
		out[i] = a.column
	}
	return out
}

// setClause renders "col = $1, col2 = $2" and the matching args.
func (p Patch) setClause() (string, []any) {
	as := p.assignments()
	parts := make([]string, len(as))
	args := make([]any, len(as))
	for i, a := range as {
		parts[i] = fmt.Sprintf("%s = $%d", a.column, i+1)
		args[i] = a.value
	}
	return strings.Join(parts, ", "), args
}
