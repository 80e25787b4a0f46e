package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vladislavdragonenkov/orderline/internal/domain"
	"github.com/vladislavdragonenkov/orderline/internal/dto"
)

const entityOrderLine = "OrderLine"

// listOrderLines отвечает 404, когда позиций нет.
func (h *handler) listOrderLines(c *gin.Context) {
	lines, err := h.OrderLines.ListOrderLines(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	if len(lines) == 0 {
		writeMessage(c, http.StatusNotFound, msgNoOrderLines)
		return
	}
	c.JSON(http.StatusOK, lines)
}

func (h *handler) getOrderLine(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	line, err := h.OrderLines.GetOrderLine(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	found, ok := line.Get()
	if !ok {
		h.writeError(c, domain.ErrOrderLineNotFound)
		return
	}
	c.JSON(http.StatusOK, found)
}

func (h *handler) createOrderLine(c *gin.Context) {
	in, ok := bindJSON[dto.OrderLineDto](c)
	if !ok {
		return
	}

	created, err := h.OrderLines.CreateOrderLine(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	location(c, entityOrderLine, created.OrderLineID)
	c.JSON(http.StatusCreated, created)
}

func (h *handler) updateOrderLine(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	in, ok := bindJSON[dto.OrderLineDto](c)
	if !ok {
		return
	}

	// Несовпадение ID проверяет сервис: ErrOrderLineIDMismatch даёт 400.
	if err := h.OrderLines.UpdateOrderLine(c.Request.Context(), id, in); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) deleteOrderLine(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.OrderLines.DeleteOrderLine(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
