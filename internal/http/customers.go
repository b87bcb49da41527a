package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/laundry-service/internal/model"
	"github.com/laundry-service/internal/repo"
	"github.com/laundry-service/internal/service"
)

func (h *Handler) ListCustomers(c *gin.Context) {
	page, limit := pageParams(c)
	customers, total, err := h.svc.Customers.List(c.Request.Context(), repo.CustomerFilter{
		StoreID: storeID(c),
		Search:  c.Query("search"),
		Limit:   uint64(limit),
		Offset:  uint64((page - 1) * limit),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	if customers == nil {
		customers = []model.Customer{}
	}
	respondPage(c, customers, page, limit, total)
}

func (h *Handler) CreateCustomer(c *gin.Context) {
	var req service.CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	customer, err := h.svc.Customers.Create(c.Request.Context(), storeID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, customer)
}

func (h *Handler) GetCustomer(c *gin.Context) {
	customer, err := h.svc.Customers.Get(c.Request.Context(), storeID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, customer)
}

func (h *Handler) UpdateCustomer(c *gin.Context) {
	var req service.CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	customer, err := h.svc.Customers.Update(c.Request.Context(), storeID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, customer)
}

func (h *Handler) ListDrivers(c *gin.Context) {
	drivers, err := h.svc.Drivers.List(c.Request.Context(), storeID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if drivers == nil {
		drivers = []model.Driver{}
	}
	respond(c, http.StatusOK, drivers)
}

func (h *Handler) CreateDriver(c *gin.Context) {
	var req service.DriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	driver, err := h.svc.Drivers.Create(c.Request.Context(), storeID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, driver)
}
