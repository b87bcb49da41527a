package http

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/laundry-service/internal/model"
	"github.com/laundry-service/internal/repo"
	"github.com/laundry-service/internal/service"
)

// orderFilter reads the list filters shared by the list and export routes.
func orderFilter(c *gin.Context) (repo.OrderFilter, error) {
	f := repo.OrderFilter{
		StoreID:    storeID(c),
		CustomerID: c.Query("customerId"),
		Search:     strings.TrimSpace(c.Query("search")),
	}
	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			status := model.OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
			if !status.Valid() {
				return f, fmt.Errorf("unknown status %q", s)
			}
			f.Statuses = append(f.Statuses, status)
		}
	}
	var err error
	if f.From, err = parseDate(c.Query("from"), false); err != nil {
		return f, fmt.Errorf("invalid from date")
	}
	if f.To, err = parseDate(c.Query("to"), true); err != nil {
		return f, fmt.Errorf("invalid to date")
	}
	return f, nil
}

// parseDate accepts RFC 3339 or a plain date; a plain end date covers the
// whole day.
func parseDate(raw string, endOfDay bool) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func (h *Handler) ListOrders(c *gin.Context) {
	filter, err := orderFilter(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	page, limit := pageParams(c)
	filter.Limit = uint64(limit)
	filter.Offset = uint64((page - 1) * limit)

	orders, total, err := h.svc.Orders.ListOrders(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	if orders == nil {
		orders = []model.Order{}
	}
	respondPage(c, orders, page, limit, total)
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	order, err := h.svc.Orders.CreateOrder(c.Request.Context(), storeID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, order)
}

func (h *Handler) ExportOrders(c *gin.Context) {
	filter, err := orderFilter(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	format := strings.ToLower(c.DefaultQuery("format", service.FormatCSV))
	if format != service.FormatCSV && format != service.FormatXLSX {
		badRequest(c, "format must be one of csv xlsx")
		return
	}

	var buf bytes.Buffer
	if err := h.svc.Export.Export(c.Request.Context(), &buf, filter, format); err != nil {
		respondError(c, err)
		return
	}
	name := fmt.Sprintf("orders_%s.%s", time.Now().Format(time.DateOnly), format)
	c.Header("Content-Disposition", "attachment; filename="+name)
	c.Data(http.StatusOK, service.ContentType(format), buf.Bytes())
}

func (h *Handler) GetOrder(c *gin.Context) {
	detail, err := h.svc.Orders.GetOrderDetail(c.Request.Context(), storeID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, detail)
}

func (h *Handler) GetActions(c *gin.Context) {
	actions, err := h.svc.Orders.GetActions(c.Request.Context(), storeID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, actions)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	var req service.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	order, err := h.svc.Orders.UpdateStatus(c.Request.Context(), storeID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, order)
}

type reworkRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) Rework(c *gin.Context) {
	var req reworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	order, err := h.svc.Orders.Rework(c.Request.Context(), storeID(c), c.Param("id"), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, order)
}

type addItemsRequest struct {
	Items []service.ItemInput `json:"items"`
}

func (h *Handler) AddItems(c *gin.Context) {
	var req addItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	order, err := h.svc.Orders.AddItems(c.Request.Context(), storeID(c), c.Param("id"), req.Items)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, order)
}

type itemStatusRequest struct {
	Status model.ItemStatus `json:"status"`
}

func (h *Handler) UpdateItemStatus(c *gin.Context) {
	var req itemStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	item, err := h.svc.Orders.UpdateItemStatus(c.Request.Context(), storeID(c), c.Param("id"), c.Param("itemId"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, item)
}

func (h *Handler) ItemQRCode(c *gin.Context) {
	png, err := h.svc.Print.ItemQRCode(c.Request.Context(), storeID(c), c.Param("id"), c.Param("itemId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (h *Handler) SendToWorkshop(c *gin.Context) {
	var req service.WorkshopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	order, err := h.svc.Orders.SendToWorkshop(c.Request.Context(), storeID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, order)
}

func (h *Handler) ReturnFromWorkshop(c *gin.Context) {
	var req service.WorkshopReturnRequest
	// an empty body returns every item still out
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
	}
	order, err := h.svc.Orders.ReturnFromWorkshop(c.Request.Context(), storeID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, order)
}

func (h *Handler) ListPayments(c *gin.Context) {
	payments, err := h.svc.Orders.Payments(c.Request.Context(), storeID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if payments == nil {
		payments = []model.Payment{}
	}
	respond(c, http.StatusOK, payments)
}

func (h *Handler) RecordPayment(c *gin.Context) {
	var req service.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	payment, err := h.svc.Orders.RecordPayment(c.Request.Context(), storeID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, payment)
}

type assignDriverRequest struct {
	DriverID string `json:"driverId"`
}

func (h *Handler) AssignDriver(c *gin.Context) {
	var req assignDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	order, err := h.svc.Orders.AssignDriver(c.Request.Context(), storeID(c), c.Param("id"), req.DriverID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, order)
}

func (h *Handler) History(c *gin.Context) {
	history, err := h.svc.Orders.History(c.Request.Context(), storeID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if history == nil {
		history = []model.StatusHistory{}
	}
	respond(c, http.StatusOK, history)
}

func (h *Handler) WhatsAppLink(c *gin.Context) {
	link, err := h.svc.Notify.OrderLink(c.Request.Context(), storeID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, link)
}

func (h *Handler) PrintInvoice(c *gin.Context) {
	invoice, err := h.svc.Print.Invoice(c.Request.Context(), storeID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, invoice)
}

func (h *Handler) PrintTags(c *gin.Context) {
	tags, err := h.svc.Print.Tags(c.Request.Context(), storeID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if tags == nil {
		tags = []service.Tag{}
	}
	respond(c, http.StatusOK, tags)
}
