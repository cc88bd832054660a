package paymentgateway

import (
	"errors"
	"fmt"

	"github.com/orris-inc/f2fpay/internal/shared/utils"
)

var (
	ErrRemoteCallFailed            = errors.New("remote call failed")
	ErrSignatureVerificationFailed = errors.New("signature verification failed")
)

const defaultUserMessage = "The payment provider could not process the request. Please try again later."

// RemoteCallError carries the provider's diagnosis of a failed call.
type RemoteCallError struct {
	Operation  string
	OrderID    string
	Code       string
	Message    string
	SubCode    string
	SubMessage string
	Err        error
}

func (e *RemoteCallError) Error() string {
	msg := fmt.Sprintf("%s for order %s failed", e.Operation, e.OrderID)
	if e.Code != "" {
		msg += fmt.Sprintf(": code=%s sub_code=%s sub_msg=%s", e.Code, e.SubCode, e.SubMessage)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RemoteCallError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrRemoteCallFailed}
	}
	return []error{ErrRemoteCallFailed, e.Err}
}

// UserMessage is safe to show to a customer or operator.
func (e *RemoteCallError) UserMessage() string {
	msg := utils.SanitizeText(e.SubMessage)
	if msg == "" {
		msg = utils.SanitizeText(e.Message)
	}
	if msg == "" {
		return defaultUserMessage
	}
	if code := utils.SanitizeText(e.SubCode); code != "" {
		return fmt.Sprintf("%s (%s)", msg, code)
	}
	return msg
}

// AsRemoteCallError unwraps err into a *RemoteCallError.
func AsRemoteCallError(err error) (*RemoteCallError, bool) {
	var rce *RemoteCallError
	if errors.As(err, &rce) {
		return rce, true
	}
	return nil, false
}
