package reservation

import "github.com/shopspring/decimal"

// Cancellation fee tiers by hours before departure.  Less than six
// hours out, cancellation is refused entirely.
var (
    feeTier48h = decimal.NewFromFloat(0.10)
    feeTier24h = decimal.NewFromFloat(0.15)
    feeTier12h = decimal.NewFromFloat(0.25)
    feeTier6h  = decimal.NewFromFloat(0.40)
)

// StandardRefundPolicy implements the tiered cancellation fee
// schedule: 10% at 48+ hours, 15% at 24-48, 25% at 12-24, 40% at
// 6-12, and no cancellation under 6 hours.  Fees are rounded to two
// decimal places.
func StandardRefundPolicy(total decimal.Decimal, hoursBeforeDeparture int) (decimal.Decimal, bool) {
    var rate decimal.Decimal
    switch {
    case hoursBeforeDeparture >= 48:
        rate = feeTier48h
    case hoursBeforeDeparture >= 24:
        rate = feeTier24h
    case hoursBeforeDeparture >= 12:
        rate = feeTier12h
    case hoursBeforeDeparture >= 6:
        rate = feeTier6h
    default:
        return decimal.Zero, false
    }
    return total.Mul(rate).Round(2), true
}
