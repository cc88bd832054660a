package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/f2fpay/internal/application/payment/usecases"
	"github.com/orris-inc/f2fpay/internal/shared/logger"
)

// NotifyHandler answers Alipay asynchronous notifications. The provider only
// understands the bare "success"/"fail" body, so no JSON envelope is used.
type NotifyHandler struct {
	processor notificationProcessor
	logger    logger.Interface
}

func NewNotifyHandler(processor notificationProcessor, logger logger.Interface) *NotifyHandler {
	return &NotifyHandler{
		processor: processor,
		logger:    logger,
	}
}

// @Summary		Alipay notification
// @Description	Receives trade status notifications signed by Alipay
// @Tags			payments
// @Accept			x-www-form-urlencoded
// @Produce		plain
// @Success		200	{string}	string	"success or fail"
// @Router			/payments/alipay/notify [post]
func (h *NotifyHandler) HandleAlipayNotify(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		h.logger.Warnw("failed to parse notification form", "error", err)
		c.String(http.StatusOK, usecases.AckFail.String())
		return
	}

	form := c.Request.PostForm
	if len(form) == 0 {
		form = c.Request.Form
	}

	ack := h.processor.Execute(c.Request.Context(), form)
	c.String(http.StatusOK, ack.String())
}
