package invoice

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/webnexa/studio-api/internal/invoice"
)

type itemResponse struct {
	ID          int64           `json:"id"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
}

type invoiceResponse struct {
	ID            int64           `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	ClientID      int64           `json:"client_id"`
	ClientName    string          `json:"client_name"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Status        string          `json:"status"`
	DueDate       string          `json:"due_date"`
	TransactionID *string         `json:"transaction_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	Items         []itemResponse  `json:"items"`
}

func toResponse(inv *invoice.Invoice) invoiceResponse {
	items := make([]itemResponse, len(inv.Items))
	for i, it := range inv.Items {
		items[i] = itemResponse{
			ID:          it.ID,
			Description: it.Description,
			Quantity:    it.Quantity,
			Rate:        it.Rate,
			Amount:      it.Amount,
		}
	}

	return invoiceResponse{
		ID:            inv.ID,
		InvoiceNumber: inv.Number,
		ClientID:      inv.ClientID,
		ClientName:    inv.ClientName,
		TotalAmount:   inv.TotalAmount,
		Status:        string(inv.Status),
		DueDate:       inv.DueDate.Format(time.DateOnly),
		TransactionID: inv.TransactionID,
		CreatedAt:     inv.CreatedAt,
		Items:         items,
	}
}

func toResponseList(invoices []*invoice.Invoice) []invoiceResponse {
	out := make([]invoiceResponse, len(invoices))
	for i, inv := range invoices {
		out[i] = toResponse(inv)
	}

	return out
}
