package request

// AddItemRequest adds one unit of a batch to the session cart
type AddItemRequest struct {
	ProductBatchID int64 `json:"productBatchId" binding:"required"`
}

// UpdateItemQtyRequest sets the quantity of a carted batch
type UpdateItemQtyRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// SetCustomerRequest attaches a customer to the session. Either customerId
// references an existing customer, or name and mobile describe a new one.
type SetCustomerRequest struct {
	CustomerID *int64 `json:"customerId"`
	Name       string `json:"name"`
	Mobile     string `json:"mobile"`
	AscplID    string `json:"ascplId"`
}

// SetReferenceRequest records the referring member's ASCPL ID
type SetReferenceRequest struct {
	AscplID string `json:"ascplId"`
}

// AddPaymentRequest records a tender event. Amount is in rupees.
type AddPaymentRequest struct {
	Mode   string  `json:"mode" binding:"required"`
	Amount float64 `json:"amount" binding:"required"`
	RefNo  string  `json:"refNo"`
}

// CreateInvoiceRequest is the one-shot invoice payload
type CreateInvoiceRequest struct {
	CustomerID       *int64                     `json:"customerId"`
	CustomerName     string                     `json:"customerName"`
	Mobile           string                     `json:"mobile"`
	ReferenceAscplID string                     `json:"referenceAscplId"`
	Items            []CreateInvoiceItemRequest `json:"items" binding:"required,min=1,dive"`
	PaymentMode      string                     `json:"paymentMode" binding:"required"`
}

// CreateInvoiceItemRequest is one requested invoice line
type CreateInvoiceItemRequest struct {
	ProductBatchID int64 `json:"productBatchId" binding:"required"`
	Quantity       int   `json:"quantity" binding:"required,min=1"`
}
