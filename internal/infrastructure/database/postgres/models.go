package postgres

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"order-fraud-review/internal/domain/order"
	"order-fraud-review/internal/domain/risk"
)

// OrderModel is the database model for orders
type OrderModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Number        string          `gorm:"type:varchar(32);uniqueIndex;not null"`
	State         string          `gorm:"type:varchar(20);not null"`
	PaymentState  string          `gorm:"type:varchar(20)"`
	ShipmentState string          `gorm:"type:varchar(20)"`
	Email         string          `gorm:"type:varchar(255)"`
	Currency      string          `gorm:"type:varchar(3)"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	LastIPAddress string          `gorm:"type:varchar(45)"`
	ApprovedAt    *time.Time
	ApproverName  string `gorm:"type:varchar(100)"`
	CanceledAt    *time.Time
	CompletedAt   *time.Time
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`

	Shipments []ShipmentModel `gorm:"foreignKey:OrderID"`
	LineItems []LineItemModel `gorm:"foreignKey:OrderID"`
	Payment   *PaymentModel   `gorm:"foreignKey:OrderID"`
}

// TableName returns the table name for orders
func (OrderModel) TableName() string {
	return "orders"
}

// ShipmentModel is the database model for shipments
type ShipmentModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID `gorm:"type:uuid;index;not null"`
	Number    string    `gorm:"type:varchar(32);not null"`
	State     string    `gorm:"type:varchar(20);not null"`
	ShippedAt *time.Time
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for shipments
func (ShipmentModel) TableName() string {
	return "order_shipments"
}

// LineItemModel is the database model for line items
type LineItemModel struct {
	ID       uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID  uuid.UUID       `gorm:"type:uuid;index;not null"`
	SKU      string          `gorm:"type:varchar(64)"`
	Name     string          `gorm:"type:varchar(255)"`
	Quantity int             `gorm:"not null"`
	Price    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

// TableName returns the table name for line items
func (LineItemModel) TableName() string {
	return "order_line_items"
}

// PaymentModel is the database model for an order's payment
type PaymentModel struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID    `gorm:"type:uuid;uniqueIndex;not null"`
	Source      string       `gorm:"type:varchar(32)"`
	Gateway     string       `gorm:"type:varchar(64)"`
	AVSResponse string       `gorm:"type:varchar(8)"`
	CVVResponse string       `gorm:"type:varchar(8)"`
	HasBilling  bool         `gorm:"not null;default:false"`
	Billing     AddressModel `gorm:"embedded;embeddedPrefix:bill_"`
}

// AddressModel holds address columns embedded into their owner's table
type AddressModel struct {
	FirstName string `gorm:"type:varchar(100)"`
	LastName  string `gorm:"type:varchar(100)"`
	Address1  string `gorm:"type:varchar(255)"`
	Address2  string `gorm:"type:varchar(255)"`
	City      string `gorm:"type:varchar(100)"`
	StateCode string `gorm:"type:varchar(16)"`
	Zipcode   string `gorm:"type:varchar(16)"`
	Country   string `gorm:"type:varchar(2)"`
}

// TableName returns the table name for payments
func (PaymentModel) TableName() string {
	return "order_payments"
}

// RiskRecordModel is the database model for risk records
type RiskRecordModel struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID         uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	Score           int       `gorm:"not null"`
	CaseID          *int64
	CaseDisposition *string   `gorm:"type:varchar(20)"`
	CreatedAt       time.Time `gorm:"not null"`
	UpdatedAt       time.Time `gorm:"not null"`
}

// TableName returns the table name for risk records
func (RiskRecordModel) TableName() string {
	return "order_risk_records"
}

func orderToModel(o *order.Order) *OrderModel {
	m := &OrderModel{
		ID:            o.ID,
		Number:        o.Number,
		State:         string(o.State),
		PaymentState:  string(o.PaymentState),
		ShipmentState: string(o.ShipmentState),
		Email:         o.Email,
		Currency:      o.Currency,
		Total:         o.Total,
		LastIPAddress: o.LastIPAddress,
		ApprovedAt:    o.ApprovedAt,
		ApproverName:  o.ApproverName,
		CanceledAt:    o.CanceledAt,
		CompletedAt:   o.CompletedAt,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}

	for _, s := range o.Shipments {
		if s.ID == uuid.Nil {
			s.ID = uuid.New()
		}
		m.Shipments = append(m.Shipments, ShipmentModel{
			ID:        s.ID,
			OrderID:   o.ID,
			Number:    s.Number,
			State:     string(s.State),
			ShippedAt: s.ShippedAt,
			CreatedAt: o.CreatedAt,
			UpdatedAt: o.UpdatedAt,
		})
	}
	for _, li := range o.LineItems {
		if li.ID == uuid.Nil {
			li.ID = uuid.New()
		}
		m.LineItems = append(m.LineItems, LineItemModel{
			ID:       li.ID,
			OrderID:  o.ID,
			SKU:      li.SKU,
			Name:     li.Name,
			Quantity: li.Quantity,
			Price:    li.Price,
		})
	}
	if o.Payment != nil {
		if o.Payment.ID == uuid.Nil {
			o.Payment.ID = uuid.New()
		}
		m.Payment = &PaymentModel{
			ID:          o.Payment.ID,
			OrderID:     o.ID,
			Source:      string(o.Payment.Source),
			Gateway:     o.Payment.Gateway,
			AVSResponse: o.Payment.AVSResponse,
			CVVResponse: o.Payment.CVVResponse,
		}
		if a := o.Payment.BillingAddress; a != nil {
			m.Payment.HasBilling = true
			m.Payment.Billing = AddressModel(*a)
		}
	}
	return m
}

func modelToOrder(m *OrderModel) *order.Order {
	o := &order.Order{
		ID:            m.ID,
		Number:        m.Number,
		State:         order.State(m.State),
		PaymentState:  order.PaymentState(m.PaymentState),
		ShipmentState: order.ShipmentState(m.ShipmentState),
		Email:         m.Email,
		Currency:      m.Currency,
		Total:         m.Total,
		LastIPAddress: m.LastIPAddress,
		ApprovedAt:    m.ApprovedAt,
		ApproverName:  m.ApproverName,
		CanceledAt:    m.CanceledAt,
		CompletedAt:   m.CompletedAt,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}

	for _, s := range m.Shipments {
		o.Shipments = append(o.Shipments, &order.Shipment{
			ID:        s.ID,
			Number:    s.Number,
			State:     order.ShipmentState(s.State),
			ShippedAt: s.ShippedAt,
		})
	}
	for _, li := range m.LineItems {
		o.LineItems = append(o.LineItems, &order.LineItem{
			ID:       li.ID,
			SKU:      li.SKU,
			Name:     li.Name,
			Quantity: li.Quantity,
			Price:    li.Price,
		})
	}
	if m.Payment != nil {
		o.Payment = &order.Payment{
			ID:          m.Payment.ID,
			Source:      order.PaymentSource(m.Payment.Source),
			Gateway:     m.Payment.Gateway,
			AVSResponse: m.Payment.AVSResponse,
			CVVResponse: m.Payment.CVVResponse,
		}
		if m.Payment.HasBilling {
			a := order.Address(m.Payment.Billing)
			o.Payment.BillingAddress = &a
		}
	}
	return o
}

func modelToRiskRecord(m *RiskRecordModel) *risk.RiskRecord {
	rec := &risk.RiskRecord{
		ID:        m.ID,
		OrderID:   m.OrderID,
		Score:     m.Score,
		CaseID:    m.CaseID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if m.CaseDisposition != nil {
		d := risk.Disposition(*m.CaseDisposition)
		rec.CaseDisposition = &d
	}
	return rec
}
