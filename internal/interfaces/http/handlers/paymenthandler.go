package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/f2fpay/internal/application/payment/usecases"
	vo "github.com/orris-inc/f2fpay/internal/domain/payment/valueobjects"
	"github.com/orris-inc/f2fpay/internal/interfaces/dto"
	"github.com/orris-inc/f2fpay/internal/shared/constants"
	"github.com/orris-inc/f2fpay/internal/shared/errors"
	"github.com/orris-inc/f2fpay/internal/shared/logger"
	"github.com/orris-inc/f2fpay/internal/shared/utils"
)

type PaymentHandler struct {
	requestQRCode  qrCodeRequester
	captureBarcode barcodeCapturer
	refund         paymentRefunder
	finder         paymentFinder
	logger         logger.Interface
}

func NewPaymentHandler(
	requestQRCode qrCodeRequester,
	captureBarcode barcodeCapturer,
	refund paymentRefunder,
	finder paymentFinder,
	logger logger.Interface,
) *PaymentHandler {
	return &PaymentHandler{
		requestQRCode:  requestQRCode,
		captureBarcode: captureBarcode,
		refund:         refund,
		finder:         finder,
		logger:         logger,
	}
}

func parseRequestMoney(amount, currency string) (vo.Money, error) {
	if currency == "" {
		currency = dto.DefaultCurrency
	}
	m, err := vo.ParseMoney(strings.TrimSpace(amount), strings.ToUpper(currency))
	if err != nil {
		return vo.Money{}, errors.NewValidationError("invalid amount", err.Error())
	}
	if !m.IsPositive() {
		return vo.Money{}, errors.NewValidationError("amount must be positive")
	}
	return m, nil
}

func (h *PaymentHandler) fail(c *gin.Context, err error, msg string, args ...any) {
	appErr := toAppError(err)
	args = append(args, "error", err)
	if appErr.Code >= http.StatusInternalServerError {
		h.logger.Errorw(msg, args...)
	} else {
		h.logger.Warnw(msg, args...)
	}
	utils.ErrorResponseWithError(c, appErr)
}

// @Summary		Request QR code
// @Description	Create (or reuse) a face-to-face precreate charge and return the QR payload
// @Tags			payments
// @Accept			json
// @Produce		json
// @Param			request	body		dto.RequestQRCodeRequest							true	"Order and amount"
// @Success		200		{object}	utils.APIResponse{data=dto.RequestQRCodeResponse}	"QR code ready"
// @Failure		400		{object}	utils.APIResponse									"Bad request"
// @Failure		409		{object}	utils.APIResponse									"Order conflict"
// @Failure		502		{object}	utils.APIResponse									"Provider rejected the charge"
// @Router			/api/payments/qrcode [post]
func (h *PaymentHandler) RequestQRCode(c *gin.Context) {
	var req dto.RequestQRCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	amount, err := parseRequestMoney(req.Amount, req.Currency)
	if err != nil {
		h.fail(c, err, "invalid qr code amount", "order_id", req.OrderID)
		return
	}

	result, err := h.requestQRCode.Execute(c.Request.Context(), usecases.RequestQRCodeCommand{
		OrderID: req.OrderID,
		Amount:  amount,
	})
	if err != nil {
		h.fail(c, err, "failed to request qr code", "order_id", req.OrderID)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "qr code ready", dto.RequestQRCodeResponse{
		PaymentID: result.Payment.ID(),
		OrderID:   result.Payment.OrderID(),
		QRCode:    result.QRPayload,
		Reused:    result.Reused,
	})
}

// @Summary		Capture barcode payment
// @Description	Charge the buyer's payment code scanned at the counter
// @Tags			payments
// @Accept			json
// @Produce		json
// @Param			request	body		dto.CaptureBarcodeRequest					true	"Order, auth code and amount"
// @Success		200		{object}	utils.APIResponse{data=dto.PaymentDTO}		"Payment captured"
// @Failure		400		{object}	utils.APIResponse							"Bad request"
// @Failure		409		{object}	utils.APIResponse							"Order paid by qr code"
// @Failure		502		{object}	utils.APIResponse							"Provider rejected the charge"
// @Router			/api/payments/barcode [post]
func (h *PaymentHandler) CaptureBarcode(c *gin.Context) {
	var req dto.CaptureBarcodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	amount, err := parseRequestMoney(req.Amount, req.Currency)
	if err != nil {
		h.fail(c, err, "invalid barcode amount", "order_id", req.OrderID)
		return
	}

	p, err := h.captureBarcode.Execute(c.Request.Context(), usecases.CaptureBarcodeCommand{
		OrderID:  req.OrderID,
		AuthCode: req.AuthCode,
		Amount:   amount,
	})
	if err != nil {
		h.fail(c, err, "failed to capture barcode payment", "order_id", req.OrderID)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "payment captured", dto.ToPaymentDTO(p))
}

// @Summary		Get payment by order
// @Tags			payments
// @Produce		json
// @Param			order_id	path		string									true	"Order ID"
// @Success		200			{object}	utils.APIResponse{data=dto.PaymentDTO}	"Payment"
// @Failure		404			{object}	utils.APIResponse						"Not found"
// @Router			/api/payments/orders/{order_id} [get]
// @Router			/api/admin/payments/orders/{order_id} [get]
func (h *PaymentHandler) GetByOrder(c *gin.Context) {
	orderID := c.Param("order_id")

	p, err := h.finder.ByOrderID(c.Request.Context(), orderID)
	if err != nil {
		h.fail(c, err, "failed to get payment", "order_id", orderID)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", dto.ToPaymentDTO(p))
}

// @Summary		Refund payment
// @Description	Refund part or all of the remaining balance of a captured payment
// @Tags			admin
// @Accept			json
// @Produce		json
// @Security		Bearer
// @Param			id		path		int										true	"Payment ID"
// @Param			request	body		dto.RefundRequest						false	"Refund amount"
// @Success		200		{object}	utils.APIResponse{data=dto.PaymentDTO}	"Refund recorded"
// @Failure		400		{object}	utils.APIResponse						"Invalid amount"
// @Failure		401		{object}	utils.APIResponse						"Unauthorized"
// @Failure		403		{object}	utils.APIResponse						"Forbidden"
// @Failure		409		{object}	utils.APIResponse						"Payment not refundable"
// @Failure		502		{object}	utils.APIResponse						"Provider rejected the refund"
// @Router			/api/admin/payments/{id}/refund [post]
func (h *PaymentHandler) Refund(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid payment id")
		return
	}

	var req dto.RefundRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "invalid request: "+err.Error())
			return
		}
	}

	p, err := h.refund.Execute(c.Request.Context(), usecases.RefundPaymentCommand{
		PaymentID:  uint(id),
		Amount:     req.Amount,
		OperatorID: c.GetString(constants.ContextKeyOperatorID),
	})
	if err != nil {
		h.fail(c, err, "failed to refund payment", "payment_id", id)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "refund recorded", dto.ToPaymentDTO(p))
}
