package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vladislavdragonenkov/orderline/internal/domain"
	"github.com/vladislavdragonenkov/orderline/internal/dto"
)

const entityOrder = "Order"

func (h *handler) listOrders(c *gin.Context) {
	orders, err := h.Orders.ListOrders(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *handler) getOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	order, err := h.Orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	found, ok := order.Get()
	if !ok {
		h.writeError(c, domain.ErrOrderNotFound)
		return
	}
	c.JSON(http.StatusOK, found)
}

func (h *handler) createOrder(c *gin.Context) {
	in, ok := bindJSON[dto.OrderDto](c)
	if !ok {
		return
	}

	created, err := h.Orders.CreateOrder(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	location(c, entityOrder, created.OrderID)
	c.JSON(http.StatusCreated, created)
}

// updateOrder заменяет позиции заказа входящим набором (см. OrderService.UpdateOrder).
func (h *handler) updateOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	in, ok := bindJSON[dto.OrderDto](c)
	if !ok {
		return
	}
	if in.OrderID != id {
		writeMessage(c, http.StatusBadRequest, msgOrderIDMismatch)
		return
	}

	if err := h.Orders.UpdateOrder(c.Request.Context(), id, in); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) deleteOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	deleted, err := h.Orders.DeleteOrder(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if !deleted {
		h.writeError(c, domain.ErrOrderNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}
