package casecreation

import (
	"time"

	"order-fraud-review/internal/domain/order"
)

// paypalGateway is how the vendor names PayPal-backed payments
const paypalGateway = "paypal_account"

// CasePayload is the case creation request sent to the vendor
type CasePayload struct {
	Purchase    Purchase    `json:"purchase"`
	Recipient   Recipient   `json:"recipient"`
	UserAccount UserAccount `json:"userAccount"`
	Card        Card        `json:"card"`
}

// Purchase describes the order
type Purchase struct {
	BrowserIPAddress string    `json:"browserIpAddress"`
	OrderID          string    `json:"orderId"`
	CreatedAt        string    `json:"createdAt"`
	Currency         string    `json:"currency"`
	TotalPrice       float64   `json:"totalPrice"`
	AVSResponseCode  string    `json:"avsResponseCode"`
	CVVResponseCode  string    `json:"cvvResponseCode"`
	PaymentGateway   string    `json:"paymentGateway,omitempty"`
	Products         []Product `json:"products"`
}

// Product is one line item
type Product struct {
	ItemID       string  `json:"itemId"`
	ItemName     string  `json:"itemName"`
	ItemQuantity int     `json:"itemQuantity"`
	ItemPrice    float64 `json:"itemPrice"`
}

// Recipient identifies who receives the order confirmation
type Recipient struct {
	ConfirmationEmail string `json:"confirmationEmail"`
}

// UserAccount identifies the buyer
type UserAccount struct {
	Email string `json:"email,omitempty"`
}

// Card describes a credit card payment. Card numbers stay with the payment gateway,
// so only the holder and billing address are sent; other payment sources send {}.
type Card struct {
	CardHolderName string          `json:"cardHolderName,omitempty"`
	BillingAddress *BillingAddress `json:"billingAddress,omitempty"`
}

// BillingAddress is the card's billing address
type BillingAddress struct {
	StreetAddress string `json:"streetAddress"`
	Unit          string `json:"unit,omitempty"`
	City          string `json:"city"`
	ProvinceCode  string `json:"provinceCode"`
	PostalCode    string `json:"postalCode"`
	CountryCode   string `json:"countryCode"`
}

// SerializeOrder builds the vendor case payload for o
func SerializeOrder(o *order.Order) CasePayload {
	createdAt := o.CreatedAt
	if o.CompletedAt != nil {
		createdAt = *o.CompletedAt
	}

	purchase := Purchase{
		BrowserIPAddress: o.LastIPAddress,
		OrderID:          o.Number,
		CreatedAt:        createdAt.UTC().Format(time.RFC3339),
		Currency:         o.Currency,
		TotalPrice:       o.Total.InexactFloat64(),
		Products:         make([]Product, 0, len(o.LineItems)),
	}

	if o.Payment != nil {
		purchase.AVSResponseCode = o.Payment.AVSResponse
		purchase.CVVResponseCode = o.Payment.CVVResponse
		if o.Payment.Gateway == "paypal" {
			purchase.PaymentGateway = paypalGateway
		}
	}

	for _, li := range o.LineItems {
		purchase.Products = append(purchase.Products, Product{
			ItemID:       li.SKU,
			ItemName:     li.Name,
			ItemQuantity: li.Quantity,
			ItemPrice:    li.Price.InexactFloat64(),
		})
	}

	return CasePayload{
		Purchase:    purchase,
		Recipient:   Recipient{ConfirmationEmail: o.Email},
		UserAccount: UserAccount{Email: o.Email},
		Card:        serializeCard(o.Payment),
	}
}

func serializeCard(p *order.Payment) Card {
	if !p.PaidByCard() {
		return Card{}
	}

	billing := &BillingAddress{}
	var holder string
	if a := p.BillingAddress; a != nil {
		holder = a.FullName()
		billing = &BillingAddress{
			StreetAddress: a.Address1,
			Unit:          a.Address2,
			City:          a.City,
			ProvinceCode:  a.StateCode,
			PostalCode:    a.Zipcode,
			CountryCode:   a.Country,
		}
	}
	return Card{CardHolderName: holder, BillingAddress: billing}
}
