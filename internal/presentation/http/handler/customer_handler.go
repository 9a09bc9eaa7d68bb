package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sanjeevani/pos-api/internal/application/service"
	"github.com/sanjeevani/pos-api/internal/presentation/http/dto/request"
	"github.com/sanjeevani/pos-api/internal/presentation/http/dto/response"
	"github.com/sanjeevani/pos-api/pkg/pagination"
)

// CustomerHandler handles customer directory endpoints
type CustomerHandler struct {
	customerService *service.CustomerService
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(customerService *service.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

// Search handles GET /billing/customers/search?term=
func (h *CustomerHandler) Search(c *gin.Context) {
	customers, err := h.customerService.Search(c.Request.Context(), c.Query("term"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Customers retrieved", customers)
}

// Create handles POST /billing/customers
func (h *CustomerHandler) Create(c *gin.Context) {
	var req request.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	customer, err := h.customerService.Create(c.Request.Context(), &service.CreateCustomerInput{
		Name:    req.Name,
		Mobile:  req.Mobile,
		AscplID: req.AscplID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Customer created", customer)
}

// Get handles GET /billing/customers/:id
func (h *CustomerHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "Invalid customer ID")
		return
	}

	customer, err := h.customerService.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Customer retrieved", customer)
}

// List handles GET /billing/customers
func (h *CustomerHandler) List(c *gin.Context) {
	params := pagination.DefaultPagination()
	if err := c.ShouldBindQuery(params); err != nil {
		response.BadRequest(c, "Invalid pagination parameters")
		return
	}

	result, err := h.customerService.List(c.Request.Context(), params, c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Customers retrieved", result)
}
