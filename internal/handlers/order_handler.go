package handlers

import (
	"eshop/internal/middleware"
	"eshop/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service *services.OrderService
	logger  *zap.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the order routes. The router must already be
// guarded by middleware.AuthRequired.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Get("/get/totalsales", h.HandleTotalSales)
	orderRoutes.Get("/get/count", h.HandleCount)
	orderRoutes.Get("/get/userorders/:userId", middleware.ValidateObjectID("userId"), h.HandleGetUserOrders)
	orderRoutes.Get("/:id", middleware.ValidateObjectID("id"), h.HandleGetOrderByID)
	orderRoutes.Put("/:id", middleware.ValidateObjectID("id"), h.HandleUpdateOrderStatus)
	orderRoutes.Delete("/:id", middleware.ValidateObjectID("id"), h.HandleDeleteOrder)
}

func requester(c *fiber.Ctx) (services.Requester, error) {
	r, ok := middleware.RequesterFrom(c)
	if !ok {
		return services.Requester{}, fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}
	return r, nil
}

// HandleGetOrders lists every order. Administrators only.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	r, err := requester(c)
	if err != nil {
		return err
	}
	orders, err := h.service.ListOrders(c.UserContext(), r)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"orders": orders})
}

// HandleGetOrderByID retrieves a single order by its ID.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	r, err := requester(c)
	if err != nil {
		return err
	}
	order, err := h.service.GetOrder(c.UserContext(), r, c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"order": order})
}

// HandleCreateOrder places a new order.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	r, err := requester(c)
	if err != nil {
		return err
	}

	var req services.PlaceOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	order, err := h.service.PlaceOrder(c.UserContext(), r, req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Order created successfully",
		"data":    order,
	})
}

// UpdateStatusRequest is the body of a status update.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// HandleUpdateOrderStatus updates the status of an order. Administrators only.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	r, err := requester(c)
	if err != nil {
		return err
	}

	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	order, err := h.service.UpdateStatus(c.UserContext(), r, c.Params("id"), req.Status)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{
		"message": "Order status updated successfully",
		"data":    order,
	})
}

// HandleDeleteOrder deletes an order and its line items.
func (h *OrderHandler) HandleDeleteOrder(c *fiber.Ctx) error {
	r, err := requester(c)
	if err != nil {
		return err
	}

	order, report, err := h.service.DeleteOrder(c.UserContext(), r, c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{
		"message": "Order deleted successfully",
		"data":    order,
		"cascade": report,
	})
}

// HandleTotalSales returns the sum of all order totals.
func (h *OrderHandler) HandleTotalSales(c *fiber.Ctx) error {
	r, err := requester(c)
	if err != nil {
		return err
	}
	total, err := h.service.TotalSales(c.UserContext(), r)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"totalSales": total.StringFixed(2)})
}

// HandleCount returns the number of orders.
func (h *OrderHandler) HandleCount(c *fiber.Ctx) error {
	r, err := requester(c)
	if err != nil {
		return err
	}
	count, err := h.service.CountOrders(c.UserContext(), r)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"orderCount": count})
}

// HandleGetUserOrders lists the orders of one user, newest first.
func (h *OrderHandler) HandleGetUserOrders(c *fiber.Ctx) error {
	r, err := requester(c)
	if err != nil {
		return err
	}
	orders, err := h.service.ListOrdersForUser(c.UserContext(), r, c.Params("userId"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"userOrders": orders})
}
