// Package signature verifies Motive webhook signatures. Verification runs
// over the exact raw request bytes, before any JSON parsing, so that
// re-serialization can never invalidate a legitimate payload.
package signature

import (
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec // provider signs with HMAC-SHA1
	"encoding/hex"
	"errors"
	"net/http"

	"github.com/DIMO-Network/server-garage/pkg/richerrors"
)

// Header is the request header carrying the hex-encoded HMAC-SHA1 signature.
const Header = "X-KT-Webhook-Signature"

func unauthorized(err error) error {
	return richerrors.Error{
		Code:        http.StatusUnauthorized,
		ExternalMsg: "Invalid webhook signature",
		Err:         err,
	}
}

// Verify checks that signatureHeader is the hex HMAC-SHA1 of rawBody under
// secret. Any mismatch, missing header, or undecodable signature fails; the
// caller must reject the whole request.
func Verify(rawBody []byte, signatureHeader, secret string) error {
	if signatureHeader == "" {
		return unauthorized(errors.New("missing signature header"))
	}

	provided, err := hex.DecodeString(signatureHeader)
	if err != nil {
		return unauthorized(errors.New("signature is not valid hex"))
	}

	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write(rawBody)
	expected := mac.Sum(nil)

	if !hmac.Equal(provided, expected) {
		return unauthorized(errors.New("signature mismatch"))
	}
	return nil
}
