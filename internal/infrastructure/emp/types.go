package emp

import (
	"encoding/xml"
	"strings"

	"github.com/sddportal/backend/internal/domain/payment"
)

const (
	transactionTypeSDDSale = "sdd_sale"
	transactionTypeVoid    = "void"
)

type billingAddress struct {
	FirstName string `xml:"first_name,omitempty"`
	LastName  string `xml:"last_name,omitempty"`
	Address1  string `xml:"address1,omitempty"`
	ZipCode   string `xml:"zip_code,omitempty"`
	City      string `xml:"city,omitempty"`
	Country   string `xml:"country,omitempty"`
}

// paymentTransaction is the request envelope for sales and voids
type paymentTransaction struct {
	XMLName         xml.Name        `xml:"payment_transaction"`
	TransactionType string          `xml:"transaction_type"`
	TransactionID   string          `xml:"transaction_id"`
	Usage           string          `xml:"usage,omitempty"`
	RemoteIP        string          `xml:"remote_ip,omitempty"`
	ReferenceID     string          `xml:"reference_id,omitempty"`
	Amount          int64           `xml:"amount,omitempty"`
	Currency        string          `xml:"currency,omitempty"`
	IBAN            string          `xml:"iban,omitempty"`
	BIC             string          `xml:"bic,omitempty"`
	CustomerEmail   string          `xml:"customer_email,omitempty"`
	BillingAddress  *billingAddress `xml:"billing_address,omitempty"`
}

type reconcileRequest struct {
	XMLName       xml.Name `xml:"reconcile"`
	TransactionID string   `xml:"transaction_id"`
}

// paymentResponse is the gateway reply for process and reconcile calls
type paymentResponse struct {
	XMLName          xml.Name `xml:"payment_response"`
	TransactionType  string   `xml:"transaction_type"`
	Status           string   `xml:"status"`
	UniqueID         string   `xml:"unique_id"`
	TransactionID    string   `xml:"transaction_id"`
	Code             string   `xml:"code"`
	Message          string   `xml:"message"`
	TechnicalMessage string   `xml:"technical_message"`
	Mode             string   `xml:"mode"`
	Timestamp        string   `xml:"timestamp"`
}

func saleTransaction(req *payment.SaleRequest) *paymentTransaction {
	tx := &paymentTransaction{
		TransactionType: transactionTypeSDDSale,
		TransactionID:   req.TransactionID,
		Usage:           req.Usage,
		RemoteIP:        req.RemoteIP,
		Amount:          req.AmountMinor,
		Currency:        req.Currency,
		IBAN:            req.IBAN,
		BIC:             req.BIC,
		CustomerEmail:   req.Email,
	}
	addr := billingAddress{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Address1:  req.Address1,
		ZipCode:   req.ZipCode,
		City:      req.City,
		Country:   req.Country,
	}
	if addr != (billingAddress{}) {
		tx.BillingAddress = &addr
	}
	return tx
}

func voidTransaction(req *payment.VoidRequest) *paymentTransaction {
	return &paymentTransaction{
		TransactionType: transactionTypeVoid,
		TransactionID:   req.TransactionID,
		Usage:           req.Usage,
		RemoteIP:        req.RemoteIP,
		ReferenceID:     req.ReferenceID,
	}
}

// toGatewayResponse normalizes the XML reply. OK is false for error and declined statuses.
func (r *paymentResponse) toGatewayResponse() *payment.GatewayResponse {
	status := strings.ToLower(strings.TrimSpace(r.Status))
	return &payment.GatewayResponse{
		OK:               status != payment.StatusError && status != payment.StatusDeclined,
		Status:           status,
		UniqueID:         r.UniqueID,
		TransactionID:    r.TransactionID,
		Code:             r.Code,
		Message:          r.Message,
		TechnicalMessage: r.TechnicalMessage,
	}
}
