package alipay

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"slices"
	"strings"
)

// SignTypeRSA2 is SHA256WithRSA, the only sign type this client speaks.
const SignTypeRSA2 = "RSA2"

// Signer produces request signatures with the merchant key and checks
// provider signatures with the provider's public key.
type Signer struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
}

func NewSigner(privateKey, publicKey string) (*Signer, error) {
	priv, err := ParsePrivateKey(privateKey)
	if err != nil {
		return nil, err
	}
	pub, err := ParsePublicKey(publicKey)
	if err != nil {
		return nil, err
	}
	return &Signer{privateKey: priv, publicKey: pub}, nil
}

// signContent joins the non-empty parameters as k=v pairs sorted by key,
// skipping the excluded keys.
func signContent(params map[string]string, exclude ...string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v == "" || slices.Contains(exclude, k) {
			continue
		}
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
	}
	return b.String()
}

func (s *Signer) Sign(content []byte) (string, error) {
	digest := sha256.Sum256(content)
	sig, err := rsa.SignPKCS1v15(rand.Reader, s.privateKey, crypto.SHA256, digest[:])
	if err != nil {
		return "", fmt.Errorf("failed to sign request: %w", err)
	}
	return base64.StdEncoding.EncodeToString(sig), nil
}

// SignParams signs a request parameter set.
func (s *Signer) SignParams(params map[string]string) (string, error) {
	return s.Sign([]byte(signContent(params, "sign")))
}

func (s *Signer) Verify(content []byte, signature string) error {
	sig, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return fmt.Errorf("invalid signature encoding: %w", err)
	}
	digest := sha256.Sum256(content)
	return rsa.VerifyPKCS1v15(s.publicKey, crypto.SHA256, digest[:], sig)
}
