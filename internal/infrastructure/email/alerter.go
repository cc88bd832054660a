package email

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/orris-inc/f2fpay/internal/application/payment/usecases"
	"github.com/orris-inc/f2fpay/internal/shared/logger"
	"github.com/orris-inc/f2fpay/internal/shared/services/markdown"
)

// ReconciliationAlerter e-mails operators when a refund went through at the
// provider but could not be recorded locally.
type ReconciliationAlerter struct {
	mail       *SMTPEmailService
	markdown   markdown.MarkdownService
	recipients []string
	siteName   string
	logger     logger.Interface
}

func NewReconciliationAlerter(
	mail *SMTPEmailService,
	md markdown.MarkdownService,
	recipients []string,
	siteName string,
	log logger.Interface,
) *ReconciliationAlerter {
	return &ReconciliationAlerter{
		mail:       mail,
		markdown:   md,
		recipients: recipients,
		siteName:   siteName,
		logger:     log,
	}
}

func (a *ReconciliationAlerter) AlertRefundNotRecorded(ctx context.Context, alert usecases.RefundAlert) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	subject := fmt.Sprintf("[%s] Refund not recorded for order %s", a.siteName, alert.OrderID)
	body := refundAlertMarkdown(alert)

	html, err := a.markdown.ToHTMLSanitized(body)
	if err != nil {
		return err
	}

	if err := a.mail.Send(a.recipients, subject, html, body); err != nil {
		return err
	}

	a.logger.Infow("refund reconciliation alert sent",
		"payment_id", alert.PaymentID,
		"order_id", alert.OrderID,
		"recipients", len(a.recipients))
	return nil
}

func refundAlertMarkdown(alert usecases.RefundAlert) string {
	var b strings.Builder
	b.WriteString("## Refund needs manual reconciliation\n\n")
	b.WriteString("The payment provider accepted the refund below, but it could not be saved. ")
	b.WriteString("Record it manually before issuing any further refund for this order.\n\n")
	b.WriteString("| Field | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Payment ID | %d |\n", alert.PaymentID)
	fmt.Fprintf(&b, "| Order ID | %s |\n", escapeCell(alert.OrderID))
	fmt.Fprintf(&b, "| Trade No | %s |\n", escapeCell(alert.RemoteID))
	fmt.Fprintf(&b, "| Refund amount | %s |\n", alert.Amount)
	fmt.Fprintf(&b, "| Refunded before | %s |\n", alert.Refunded)
	fmt.Fprintf(&b, "| Occurred at | %s |\n", alert.OccurredAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "\n**Error:** `%s`\n", strings.ReplaceAll(alert.Error, "`", "'"))
	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
