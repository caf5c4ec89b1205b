package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/orderdesk/app/models"
	"github.com/shashiranjanraj/orderdesk/app/repositories"
	"github.com/shashiranjanraj/orderdesk/pkg/bind"
	"github.com/shashiranjanraj/orderdesk/pkg/logger"
	"github.com/shashiranjanraj/orderdesk/pkg/middleware"
	"github.com/shashiranjanraj/orderdesk/pkg/response"
)

// DefaultOrderType is stamped on orders submitted without an explicit type.
const DefaultOrderType = "video"

type OrderController struct {
	orders *repositories.OrderRepository
	users  *repositories.UserRepository
}

func NewOrderController() *OrderController {
	return &OrderController{
		orders: repositories.NewOrderRepository(),
		users:  repositories.NewUserRepository(),
	}
}

// List handles GET /api/orders. The admin sees every order; a client sees
// only their own; an anonymous caller gets an empty list. The role comes
// from the user directory, not the session, so a hand-edited users file
// takes effect without re-login.
func (c *OrderController) List(w http.ResponseWriter, r *http.Request) {
	username := middleware.UserFromCtx(r.Context())

	admin := false
	if u, ok := c.users.Find(username); ok {
		admin = u.IsAdmin()
	}

	orders, err := c.orders.ListFor(username, admin)
	if err != nil {
		logger.WithCtx(r.Context()).Error("order list failed", "error", err)
		response.Error(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	response.Success(w, map[string]interface{}{"orders": orders})
}

type createOrderInput struct {
	Type        string `json:"type" validate:"nullable,max=64"`
	Description string `json:"description" validate:"required,max=2000"`
	Reference   string `json:"reference" validate:"nullable,max=500"`
}

// Create handles POST /api/orders. Requires an authenticated session
// (enforced by middleware.Authenticated on the route).
func (c *OrderController) Create(w http.ResponseWriter, r *http.Request) {
	var body createOrderInput
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	orderType := strings.TrimSpace(body.Type)
	if orderType == "" {
		orderType = DefaultOrderType
	}

	owner := middleware.UserFromCtx(r.Context())
	order, err := c.orders.Create(owner, orderType,
		strings.TrimSpace(body.Description), strings.TrimSpace(body.Reference))
	if err != nil {
		logger.WithCtx(r.Context()).Error("order create failed", "error", err)
		response.Error(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	logger.WithCtx(r.Context()).Info("order created", "id", order.ID, "user", owner)
	response.Success(w, map[string]interface{}{"id": order.ID})
}

type setStatusInput struct {
	Status string `json:"status" validate:"nullable,max=64"`
}

// SetStatus handles POST /api/orders/{id}/status. Admin only (enforced by
// rbac.HasRole on the route). A missing status falls back to "updated".
func (c *OrderController) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		response.NotFound(w, "Order not found")
		return
	}

	var body setStatusInput
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	status := strings.TrimSpace(body.Status)
	if status == "" {
		status = models.OrderStatusUpdated
	}

	if err := c.orders.SetStatus(id, status); err != nil {
		if errors.Is(err, repositories.ErrOrderNotFound) {
			response.NotFound(w, "Order not found")
			return
		}
		logger.WithCtx(r.Context()).Error("order status update failed", "id", id, "error", err)
		response.Error(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	logger.WithCtx(r.Context()).Info("order status updated", "id", id, "status", status)
	response.OK(w)
}
