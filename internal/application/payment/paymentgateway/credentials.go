package paymentgateway

import (
	vo "github.com/orris-inc/f2fpay/internal/domain/payment/valueobjects"
	"github.com/orris-inc/f2fpay/internal/shared/config"
	"github.com/orris-inc/f2fpay/internal/shared/utils"
)

// GatewayCredentials identifies the merchant application at the provider.
// Keys are base64 DER or PEM text.
type GatewayCredentials struct {
	GatewayID  string  `json:"gateway_id" validate:"required"`
	AppID      string  `json:"app_id" validate:"required,numeric"`
	PrivateKey string  `json:"private_key" validate:"required"`
	PublicKey  string  `json:"public_key" validate:"required"`
	Mode       vo.Mode `json:"mode" validate:"required,oneof=test live"`
	NotifyURL  string  `json:"notify_url" validate:"omitempty,url"`
	GatewayURL string  `json:"gateway_url" validate:"omitempty,url"`
}

// NewCredentialsFromConfig builds and validates credentials from configuration.
func NewCredentialsFromConfig(cfg config.AlipayConfig) (GatewayCredentials, error) {
	creds := GatewayCredentials{
		GatewayID:  cfg.GatewayID,
		AppID:      cfg.AppID,
		PrivateKey: cfg.PrivateKey,
		PublicKey:  cfg.PublicKey,
		Mode:       vo.Mode(cfg.Mode),
		NotifyURL:  cfg.NotifyURL,
		GatewayURL: cfg.GatewayURL,
	}
	if err := creds.Validate(); err != nil {
		return GatewayCredentials{}, err
	}
	return creds, nil
}

func (c GatewayCredentials) Validate() error {
	return utils.ValidateStruct(c)
}
