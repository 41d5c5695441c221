package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// refPrefix tags every transaction reference this bot issues, so foreign
// references fail decoding instead of resolving to a buyer.
const refPrefix = "ldeta"

// refDelimiter never appears in a numeric buyer id.
const refDelimiter = "-"

// ErrMalformedRef reports a transaction reference this bot did not issue or
// that lost fields in transit.
var ErrMalformedRef = errors.New("malformed transaction reference")

// EncodeTxRef builds the correlation token embedded in an outbound payment
// request: prefix, product tag, buyer id and a random nonce. The nonce makes
// references unique across concurrent purchases. productTag must not contain
// the delimiter.
func EncodeTxRef(buyerID int64, productTag string) string {
	return strings.Join([]string{
		refPrefix,
		productTag,
		strconv.FormatInt(buyerID, 10),
		uuid.New().String(),
	}, refDelimiter)
}

// DecodeTxRef recovers the buyer id from a transaction reference echoed back
// by the payment gateway. It never panics: any input that is not a reference
// produced by EncodeTxRef yields an error wrapping ErrMalformedRef.
func DecodeTxRef(ref string) (int64, error) {
	parts := strings.SplitN(ref, refDelimiter, 4)
	if len(parts) != 4 {
		return 0, fmt.Errorf("%w: expected 4 fields, got %d", ErrMalformedRef, len(parts))
	}
	if parts[0] != refPrefix {
		return 0, fmt.Errorf("%w: unknown prefix %q", ErrMalformedRef, parts[0])
	}
	if parts[1] == "" || parts[3] == "" {
		return 0, fmt.Errorf("%w: empty product tag or nonce", ErrMalformedRef)
	}
	buyerID, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: buyer id %q is not numeric", ErrMalformedRef, parts[2])
	}
	return buyerID, nil
}
