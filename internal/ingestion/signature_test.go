package ingestion

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"

	"eld-compliance/internal/config"
	"eld-compliance/internal/domain/device"
	appErrors "eld-compliance/pkg/errors"
)

func signHex(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func signBase64(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func newTestVerifier() *SignatureVerifier {
	return NewSignatureVerifier(&config.ProvidersConfig{
		SamsaraSecret: "samsara-secret",
		GeotabSecret:  "geotab-secret",
		MotiveSecret:  "motive-secret",
	})
}

func TestVerifyAcceptsValidSignatures(t *testing.T) {
	v := newTestVerifier()
	body := []byte(`{"eventType":"dutyLogUpdated","data":{}}`)

	require.NoError(t, v.Verify(device.ProviderSamsara, body, "sha256="+signHex("samsara-secret", body)))
	require.NoError(t, v.Verify(device.ProviderGeotab, body, signHex("geotab-secret", body)))
	require.NoError(t, v.Verify(device.ProviderMotive, body, signBase64("motive-secret", body)))
}

func TestVerifyRejectsMutatedBody(t *testing.T) {
	v := newTestVerifier()
	body := []byte(`{"eventType":"dutyLogUpdated","data":{}}`)
	sig := "sha256=" + signHex("samsara-secret", body)

	// Flip one byte anywhere in the payload and verification must fail.
	for i := range body {
		mutated := append([]byte(nil), body...)
		mutated[i] ^= 0x01

		err := v.Verify(device.ProviderSamsara, mutated, sig)
		require.ErrorIs(t, err, appErrors.ErrInvalidSignature, "byte %d", i)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	v := newTestVerifier()
	body := []byte(`{"records":[]}`)

	err := v.Verify(device.ProviderGeotab, body, signHex("not-the-secret", body))
	require.ErrorIs(t, err, appErrors.ErrInvalidSignature)
}

func TestVerifyRejectsMissingSignature(t *testing.T) {
	v := newTestVerifier()

	err := v.Verify(device.ProviderMotive, []byte(`{}`), "")
	require.ErrorIs(t, err, appErrors.ErrInvalidSignature)
}

func TestVerifyHexComparisonIsCaseInsensitive(t *testing.T) {
	v := newTestVerifier()
	body := []byte(`{"records":[]}`)

	sig := signHex("geotab-secret", body)
	upper := make([]byte, len(sig))
	for i := 0; i < len(sig); i++ {
		c := sig[i]
		if c >= 'a' && c <= 'f' {
			c = c - 'a' + 'A'
		}
		upper[i] = c
	}

	require.NoError(t, v.Verify(device.ProviderGeotab, body, string(upper)))
}

func TestVerifyDegradesOpenWithoutSecret(t *testing.T) {
	v := NewSignatureVerifier(&config.ProvidersConfig{
		SamsaraSecret: "",
		GeotabSecret:  "geotab-secret",
	})
	body := []byte(`{"eventType":"locationUpdated"}`)

	// No secret configured: the delivery is accepted unverified.
	require.NoError(t, v.Verify(device.ProviderSamsara, body, ""))
	require.NoError(t, v.Verify(device.ProviderSamsara, body, "sha256=garbage"))

	// A configured provider still verifies.
	require.ErrorIs(t, v.Verify(device.ProviderGeotab, body, "garbage"), appErrors.ErrInvalidSignature)
}

func TestVerifyUnknownProvider(t *testing.T) {
	v := newTestVerifier()

	err := v.Verify(device.Provider("teletrac"), []byte(`{}`), "sig")
	require.ErrorIs(t, err, appErrors.ErrUnknownProvider)
}
