package http

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/laundry-service/internal/apperr"
	"github.com/laundry-service/internal/model"
	"github.com/laundry-service/internal/repo"
	"github.com/laundry-service/internal/service"
	"github.com/laundry-service/internal/workflow"
)

type OrderService interface {
	CreateOrder(ctx context.Context, storeID string, req service.CreateOrderRequest) (*model.Order, error)
	GetOrderDetail(ctx context.Context, storeID, id string) (*service.OrderDetail, error)
	GetActions(ctx context.Context, storeID, id string) (workflow.ActionSet, error)
	ListOrders(ctx context.Context, filter repo.OrderFilter) ([]model.Order, int, error)
	UpdateStatus(ctx context.Context, storeID, id string, req service.StatusRequest) (*model.Order, error)
	Rework(ctx context.Context, storeID, id, reason string) (*model.Order, error)
	AddItems(ctx context.Context, storeID, id string, items []service.ItemInput) (*model.Order, error)
	UpdateItemStatus(ctx context.Context, storeID, orderID, itemID string, to model.ItemStatus) (*model.OrderItem, error)
	SendToWorkshop(ctx context.Context, storeID, id string, req service.WorkshopRequest) (*model.Order, error)
	ReturnFromWorkshop(ctx context.Context, storeID, id string, req service.WorkshopReturnRequest) (*model.Order, error)
	RecordPayment(ctx context.Context, storeID, id string, req service.PaymentRequest) (*model.Payment, error)
	Payments(ctx context.Context, storeID, id string) ([]model.Payment, error)
	AssignDriver(ctx context.Context, storeID, id, driverID string) (*model.Order, error)
	History(ctx context.Context, storeID, id string) ([]model.StatusHistory, error)
}

type CustomerService interface {
	Create(ctx context.Context, storeID string, req service.CustomerRequest) (*model.Customer, error)
	Update(ctx context.Context, storeID, id string, req service.CustomerRequest) (*model.Customer, error)
	Get(ctx context.Context, storeID, id string) (*model.Customer, error)
	List(ctx context.Context, filter repo.CustomerFilter) ([]model.Customer, int, error)
}

type DriverService interface {
	Create(ctx context.Context, storeID string, req service.DriverRequest) (*model.Driver, error)
	List(ctx context.Context, storeID string) ([]model.Driver, error)
}

type StoreService interface {
	Features(ctx context.Context, storeID string) (model.Features, error)
	UpdateFeatures(ctx context.Context, storeID string, f model.Features) (model.Features, error)
}

type AuthService interface {
	TokenParser
	Login(ctx context.Context, req service.LoginRequest) (*service.LoginResponse, error)
}

type DashboardService interface {
	Stats(ctx context.Context, storeID string) (*service.DashboardStats, error)
}

type NotifyService interface {
	OrderLink(ctx context.Context, storeID, orderID string) (*service.WhatsAppLink, error)
}

type PrintService interface {
	Invoice(ctx context.Context, storeID, orderID string) (*service.Invoice, error)
	Tags(ctx context.Context, storeID, orderID string) ([]service.Tag, error)
	ItemQRCode(ctx context.Context, storeID, orderID, itemID string) ([]byte, error)
}

type ExportService interface {
	Export(ctx context.Context, w io.Writer, filter repo.OrderFilter, format string) error
}

// Services groups everything the handlers call.
type Services struct {
	Orders    OrderService
	Customers CustomerService
	Drivers   DriverService
	Stores    StoreService
	Auth      AuthService
	Dashboard DashboardService
	Notify    NotifyService
	Print     PrintService
	Export    ExportService
}

type Handler struct {
	svc Services
}

func NewHandler(svc Services) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.POST("/auth/login", h.Login)

	authed := api.Group("", AuthMiddleware(h.svc.Auth))

	authed.GET("/store/features", h.GetFeatures)
	authed.PATCH("/store/features", requireOwner, h.UpdateFeatures)

	authed.GET("/customers", h.ListCustomers)
	authed.POST("/customers", h.CreateCustomer)
	authed.GET("/customers/:id", h.GetCustomer)
	authed.PATCH("/customers/:id", h.UpdateCustomer)

	authed.GET("/drivers", h.ListDrivers)
	authed.POST("/drivers", h.CreateDriver)

	authed.GET("/dashboard/stats", h.DashboardStats)

	orders := authed.Group("/orders")
	orders.GET("", h.ListOrders)
	orders.POST("", h.CreateOrder)
	orders.GET("/export", h.ExportOrders)
	orders.GET("/:id", h.GetOrder)
	orders.GET("/:id/actions", h.GetActions)
	orders.PATCH("/:id/status", h.UpdateStatus)
	orders.POST("/:id/rework", h.Rework)
	orders.POST("/:id/items", h.AddItems)
	orders.PATCH("/:id/items/:itemId/status", h.UpdateItemStatus)
	orders.GET("/:id/items/:itemId/qrcode", h.ItemQRCode)
	orders.POST("/:id/workshop", h.SendToWorkshop)
	orders.POST("/:id/workshop/return", h.ReturnFromWorkshop)
	orders.GET("/:id/payments", h.ListPayments)
	orders.POST("/:id/payments", h.RecordPayment)
	orders.PATCH("/:id/driver", h.AssignDriver)
	orders.GET("/:id/history", h.History)
	orders.GET("/:id/whatsapp", h.WhatsAppLink)
	orders.GET("/:id/print/invoice", h.PrintInvoice)
	orders.GET("/:id/print/tags", h.PrintTags)
}

func requireOwner(c *gin.Context) {
	if role, _ := c.Get(roleKey); role != model.RoleOwner {
		respondError(c, apperr.ErrForbidden)
		return
	}
	c.Next()
}

func (h *Handler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	resp, err := h.svc.Auth.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, resp)
}

func (h *Handler) GetFeatures(c *gin.Context) {
	f, err := h.svc.Stores.Features(c.Request.Context(), storeID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, f)
}

func (h *Handler) UpdateFeatures(c *gin.Context) {
	var f model.Features
	if err := c.ShouldBindJSON(&f); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	updated, err := h.svc.Stores.UpdateFeatures(c.Request.Context(), storeID(c), f)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, updated)
}

func (h *Handler) DashboardStats(c *gin.Context) {
	stats, err := h.svc.Dashboard.Stats(c.Request.Context(), storeID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, stats)
}
