package reservation

import (
    "testing"

    "github.com/shopspring/decimal"
    "github.com/stretchr/testify/assert"
)

func TestStandardRefundPolicyTiers(t *testing.T) {
    total := decimal.NewFromInt(100)

    cases := []struct {
        name        string
        hours       int
        fee         string
        cancellable bool
    }{
        {"48h and beyond", 48, "10", true},
        {"well in advance", 120, "10", true},
        {"24 to 48h", 30, "15", true},
        {"12 to 24h", 12, "25", true},
        {"6 to 12h", 6, "40", true},
        {"under 6h", 5, "0", false},
        {"departed", -2, "0", false},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            fee, ok := StandardRefundPolicy(total, tc.hours)
            assert.Equal(t, tc.cancellable, ok)
            want, _ := decimal.NewFromString(tc.fee)
            assert.True(t, fee.Equal(want), "fee was %s, want %s", fee, want)
        })
    }
}

func TestStandardRefundPolicyRounds(t *testing.T) {
    total := decimal.NewFromFloat(99.99)
    fee, ok := StandardRefundPolicy(total, 72)
    assert.True(t, ok)
    // 10% of 99.99 rounds to 10.00.
    assert.Equal(t, "10", fee.String())
}
