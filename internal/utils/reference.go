package utils

import (
    "crypto/rand"
)

// referenceAlphabet deliberately omits easily confused characters
// (0/O, 1/I/L) so references survive being read over the phone.
const referenceAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// BookingReference generates a human readable booking reference of
// the form "BF-XXXXXXXX".  The underlying call to crypto/rand
// ensures unpredictable codes; uniqueness is enforced by the unique
// index on bookings.booking_reference.
func BookingReference() string {
    return "BF-" + randomCode(8)
}

// randomCode returns n characters drawn from referenceAlphabet.
func randomCode(n int) string {
    b := make([]byte, n)
    if _, err := rand.Read(b); err != nil {
        // crypto/rand failing means the process has far bigger
        // problems; fall back to a fixed marker rather than panic.
        return "XXXXXXXX"[:n]
    }
    for i := range b {
        b[i] = referenceAlphabet[int(b[i])%len(referenceAlphabet)]
    }
    return string(b)
}
