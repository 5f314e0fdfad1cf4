package utils

import (
    "strings"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestBookingReferenceShape(t *testing.T) {
    ref := BookingReference()
    require.True(t, strings.HasPrefix(ref, "BF-"), "reference %q lacks prefix", ref)
    code := strings.TrimPrefix(ref, "BF-")
    assert.Len(t, code, 8)
    for _, r := range code {
        assert.Contains(t, referenceAlphabet, string(r), "unexpected character %q in %q", r, ref)
    }
}

func TestBookingReferenceVaries(t *testing.T) {
    seen := map[string]bool{}
    for i := 0; i < 50; i++ {
        seen[BookingReference()] = true
    }
    // Collisions in 50 draws from a 31^8 space would indicate a
    // broken random source.
    assert.Greater(t, len(seen), 45)
}
