package businessflow

import (
	"crypto/hmac"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/amirphl/topup-gateway/utils"
	"github.com/shopspring/decimal"
)

// FieldSeparator joins signed fields, as required by the provider
const FieldSeparator = ";"

// Signer computes and checks WayForPay merchant signatures: HMAC-MD5 over the
// fields joined with ';', keyed with the merchant secret, hex encoded.
type Signer struct {
	secret []byte
}

// NewSigner creates a signer for the merchant secret key
func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// Sign returns the lowercase hex signature of fields. Slices contribute each element in order.
func (s *Signer) Sign(fields ...any) string {
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = appendField(parts, field)
	}

	mac := hmac.New(md5.New, s.secret)
	mac.Write([]byte(strings.Join(parts, FieldSeparator)))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether candidate is the signature of fields
func (s *Signer) Verify(candidate string, fields ...any) bool {
	expected := s.Sign(fields...)
	return hmac.Equal([]byte(expected), []byte(candidate))
}

func appendField(parts []string, field any) []string {
	switch v := field.(type) {
	case string:
		return append(parts, v)
	case json.Number:
		return append(parts, v.String())
	case decimal.Decimal:
		return append(parts, utils.FormatAmount(v))
	case int:
		return append(parts, strconv.Itoa(v))
	case int64:
		return append(parts, strconv.FormatInt(v, 10))
	case []string:
		return append(parts, v...)
	case []int:
		for _, n := range v {
			parts = append(parts, strconv.Itoa(n))
		}
		return parts
	case fmt.Stringer:
		return append(parts, v.String())
	default:
		return append(parts, fmt.Sprint(v))
	}
}
