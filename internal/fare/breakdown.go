// Package fare implements the deterministic fare breakdown applied to every
// completed booking.
package fare

import "math"

// Rates applied when splitting a gross fare. The GST rate applies to the
// convenience fee only, not the full fare.
const (
	convenienceFeeRate = 0.05
	gstRate            = 0.18
)

// Breakdown is the result of splitting a gross fare into its components.
// DriverFee + ConvenienceFee + GSTAmount always equals GrandTotal to the
// cent; any compounding rounding remainder is surfaced in Rounding, never
// silently dropped.
type Breakdown struct {
	FareAmount     float64
	ConvenienceFee float64
	GSTAmount      float64
	DriverFee      float64
	GrandTotal     float64
	SubTotal       float64
	Rounding       float64
}

// ComputeBreakdown splits grossFare into driver fee, convenience fee and
// GST. Each step rounds to two decimals before the next step consumes it;
// the order is fixed because later components depend on already-rounded
// earlier values. Negative or non-finite input is a contract violation the
// caller must reject beforehand.
func ComputeBreakdown(grossFare float64) Breakdown {
	fareAmount := round2(grossFare)
	convenienceFee := round2(fareAmount * convenienceFeeRate)
	gstAmount := round2(convenienceFee * gstRate)
	driverFee := round2(fareAmount - convenienceFee - gstAmount)
	grandTotal := driverFee + convenienceFee + gstAmount
	subTotal := grandTotal
	rounding := round2(fareAmount - subTotal)

	return Breakdown{
		FareAmount:     fareAmount,
		ConvenienceFee: convenienceFee,
		GSTAmount:      gstAmount,
		DriverFee:      driverFee,
		GrandTotal:     grandTotal,
		SubTotal:       subTotal,
		Rounding:       rounding,
	}
}

// round2 rounds to two decimal places, half away from zero.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
