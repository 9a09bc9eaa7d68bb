package request

// CreateCustomerRequest registers a new customer in the directory
type CreateCustomerRequest struct {
	Name    string  `json:"name" binding:"required"`
	Mobile  string  `json:"mobile" binding:"required"`
	AscplID *string `json:"ascplId"`
}
