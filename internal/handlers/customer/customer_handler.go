// internal/handlers/customer/customer_handler.go
package customer

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"arrears-service/internal/domain/customer"
	"arrears-service/internal/middleware"
	xerrors "arrears-service/internal/pkg/errors"
	"arrears-service/internal/pkg/response"
	contactService "arrears-service/internal/service/contact"
	service "arrears-service/internal/service/customer"
)

type CustomerHandler struct {
	customerService *service.CustomerService
	contactService  *contactService.Service
}

func NewCustomerHandler(customerService *service.CustomerService, contactService *contactService.Service) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		contactService:  contactService,
	}
}

// ListCustomers retrieves customers visible to the principal, with filters.
func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	p := middleware.MustGetPrincipal(c)

	var filters customer.CustomerListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid query parameters", err)
		return
	}

	result, err := h.customerService.ListCustomers(c.Request.Context(), p, &filters)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to list customers", err)
		return
	}

	response.Success(c, http.StatusOK, "customers retrieved", result)
}

// GetCustomer retrieves one customer with its assigned caller.
func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid customer ID", err)
		return
	}

	result, err := h.customerService.GetCustomer(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "customer not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to get customer", err)
		return
	}

	response.Success(c, http.StatusOK, "customer retrieved", result)
}

// RecordContact appends a contact attempt and runs the completion
// bookkeeping on the customer's batch.
func (h *CustomerHandler) RecordContact(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid customer ID", err)
		return
	}

	var req customer.RecordContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.contactService.RecordContact(c.Request.Context(), id, &req)
	switch {
	case err == nil:
		response.Success(c, http.StatusOK, "contact recorded", result)
	case errors.Is(err, xerrors.ErrNotFound):
		response.NotFound(c, "customer not found")
	case errors.Is(err, xerrors.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, "invalid contact details", err)
	default:
		// The contact itself may have been persisted; the client gets the
		// partial-failure message from the service.
		response.Error(c, http.StatusInternalServerError, "failed to record contact", err)
	}
}

// DeleteCustomer soft deletes a customer.
func (h *CustomerHandler) DeleteCustomer(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid customer ID", err)
		return
	}

	if err := h.customerService.DeleteCustomer(c.Request.Context(), id); err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "customer not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to delete customer", err)
		return
	}

	response.Success(c, http.StatusOK, "customer deleted", nil)
}

// GetStats aggregates customer counts under the principal's scope.
func (h *CustomerHandler) GetStats(c *gin.Context) {
	p := middleware.MustGetPrincipal(c)

	stats, err := h.customerService.GetStats(c.Request.Context(), p)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to get stats", err)
		return
	}

	response.Success(c, http.StatusOK, "stats retrieved", stats)
}
