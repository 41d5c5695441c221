package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	buyerIDs := []int64{1, 42, 987654321, 123456789012345}

	for _, id := range buyerIDs {
		t.Run(fmt.Sprintf("buyer_%d", id), func(t *testing.T) {
			ref := EncodeTxRef(id, "album")
			decoded, err := DecodeTxRef(ref)
			require.NoError(t, err)
			assert.Equal(t, id, decoded)
		})
	}
}

func TestDecodeMalformedRefs(t *testing.T) {
	tests := []struct {
		name string
		ref  string
	}{
		{"empty", ""},
		{"no delimiter", "garbage"},
		{"too few fields", "ldeta-album"},
		{"missing nonce", "ldeta-album-42"},
		{"non-numeric buyer id", "ldeta-album-abc-4f2d9c1e"},
		{"wrong prefix", "stripe-album-42-4f2d9c1e"},
		{"empty tag", "ldeta--42-4f2d9c1e"},
		{"bare number", "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := DecodeTxRef(tt.ref)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedRef)
			assert.Zero(t, id, "malformed ref must never yield a buyer id")
		})
	}
}

func TestTxRefUniqueness(t *testing.T) {
	// A small pool of buyers generating many concurrent-style purchases
	// must still yield distinct references thanks to the nonce.
	buyerIDs := []int64{7, 42, 1001}
	seen := make(map[string]struct{}, 10000)

	for i := 0; i < 10000; i++ {
		ref := EncodeTxRef(buyerIDs[i%len(buyerIDs)], "album")
		_, dup := seen[ref]
		require.False(t, dup, "duplicate tx_ref generated: %s", ref)
		seen[ref] = struct{}{}
	}
}
