package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// State is the checkout lifecycle state of an order
type State string

const (
	StateCart     State = "cart"
	StateComplete State = "complete"
	StateCanceled State = "canceled"
	StateReturned State = "returned"
)

// PaymentState summarizes the order's payments
type PaymentState string

const (
	PaymentBalanceDue PaymentState = "balance_due"
	PaymentPaid       PaymentState = "paid"
	PaymentCreditOwed PaymentState = "credit_owed"
	PaymentFailed     PaymentState = "failed"
	PaymentVoid       PaymentState = "void"
)

// ShipmentState is the state of a single shipment or, for an order, the aggregate of all of them
type ShipmentState string

const (
	ShipmentPending  ShipmentState = "pending"
	ShipmentReady    ShipmentState = "ready"
	ShipmentPartial  ShipmentState = "partial"
	ShipmentShipped  ShipmentState = "shipped"
	ShipmentCanceled ShipmentState = "canceled"
)

// LineItem is a purchased variant
type LineItem struct {
	ID       uuid.UUID       `json:"id"`
	SKU      string          `json:"sku"`
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// PaymentSource is what the payment was drawn from
type PaymentSource string

const (
	SourceCreditCard  PaymentSource = "credit_card"
	SourceStoreCredit PaymentSource = "store_credit"
)

// Address is a postal address
type Address struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Address1  string `json:"address1"`
	Address2  string `json:"address2,omitempty"`
	City      string `json:"city"`
	StateCode string `json:"state_code"`
	Zipcode   string `json:"zipcode"`
	Country   string `json:"country"`
}

// FullName joins first and last name
func (a *Address) FullName() string {
	switch {
	case a.FirstName == "":
		return a.LastName
	case a.LastName == "":
		return a.FirstName
	}
	return a.FirstName + " " + a.LastName
}

// Payment captures what the gateway told us about the order's payment
type Payment struct {
	ID             uuid.UUID     `json:"id"`
	Source         PaymentSource `json:"source"`
	Gateway        string        `json:"gateway"`
	AVSResponse    string        `json:"avs_response"`
	CVVResponse    string        `json:"cvv_response"`
	BillingAddress *Address      `json:"billing_address,omitempty"`
}

// PaidByCard reports whether the payment source is a credit card
func (p *Payment) PaidByCard() bool {
	return p != nil && p.Source == SourceCreditCard
}

// Shipment is a package of the order's items
type Shipment struct {
	ID        uuid.UUID     `json:"id"`
	Number    string        `json:"number"`
	State     ShipmentState `json:"state"`
	ShippedAt *time.Time    `json:"shipped_at,omitempty"`
}

// Order is the host platform's order, reduced to what fraud review reads and transitions
type Order struct {
	ID            uuid.UUID       `json:"id"`
	Number        string          `json:"number"`
	State         State           `json:"state"`
	PaymentState  PaymentState    `json:"payment_state"`
	ShipmentState ShipmentState   `json:"shipment_state"`
	Email         string          `json:"email"`
	Currency      string          `json:"currency"`
	Total         decimal.Decimal `json:"total"`
	LastIPAddress string          `json:"last_ip_address"`

	ApprovedAt   *time.Time `json:"approved_at,omitempty"`
	ApproverName string     `json:"approver_name,omitempty"`
	CanceledAt   *time.Time `json:"canceled_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`

	Shipments []*Shipment `json:"shipments"`
	LineItems []*LineItem `json:"line_items"`
	Payment   *Payment    `json:"payment,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Approved reports whether the order's contents have been approved
func (o *Order) Approved() bool {
	return o.ApprovedAt != nil
}

// Shipped reports whether every shipment has left
func (o *Order) Shipped() bool {
	return o.ShipmentState == ShipmentShipped
}

// Canceled reports whether the order was canceled
func (o *Order) Canceled() bool {
	return o.State == StateCanceled
}

// CanShip reports whether the order is complete and paid for
func (o *Order) CanShip() bool {
	if o.State != StateComplete {
		return false
	}
	return o.PaymentState == PaymentPaid || o.PaymentState == PaymentCreditOwed
}

// Approve marks the contents approved by approver and readies whatever can now ship.
// The guard and the transition run together so a second call fails instead of double applying.
func (o *Order) Approve(approver string, now time.Time) error {
	if o.Approved() {
		return ErrAlreadyApproved
	}
	if o.Canceled() || o.Shipped() {
		return ErrIllegalTransition
	}

	o.ApprovedAt = &now
	o.ApproverName = approver

	for _, s := range o.Shipments {
		if s.CanReady(o) {
			s.State = ShipmentReady
		}
	}
	o.UpdateShipmentState()
	o.UpdatedAt = now
	return nil
}

// Cancel runs the order's cancel transition, legal only for complete orders that have not shipped
func (o *Order) Cancel(now time.Time) error {
	if o.State != StateComplete || o.Shipped() {
		return ErrIllegalTransition
	}

	o.State = StateCanceled
	o.CanceledAt = &now
	for _, s := range o.Shipments {
		if s.State != ShipmentShipped {
			s.State = ShipmentCanceled
		}
	}
	o.UpdateShipmentState()
	o.UpdatedAt = now
	return nil
}

// UpdateShipmentState recomputes the aggregate shipment state.
// Mixed shipment states aggregate to partial.
func (o *Order) UpdateShipmentState() {
	if len(o.Shipments) == 0 {
		return
	}

	for _, s := range o.Shipments {
		if s.State != ShipmentShipped {
			s.State = ResolveShipmentState(o, s)
		}
	}

	agg := o.Shipments[0].State
	for _, s := range o.Shipments[1:] {
		if s.State != agg {
			agg = ShipmentPartial
			break
		}
	}
	o.ShipmentState = agg
}
