// Package replenish implements the statistical formulas and ordering
// policies of a continuous-review replenishment system. All functions are
// pure: they depend solely on their inputs and hold no state, which keeps
// them individually unit-testable.
package replenish

import (
	"fmt"
	"math"
)

// Coefficients for Acklam's rational approximation of the inverse normal
// CDF. Absolute error is below 1.15e-9 over the full domain.
var (
	invNormA = [6]float64{-3.969683028665376e+01, 2.209460984245205e+02, -2.759285104469687e+02, 1.383577518672690e+02, -3.066479806614716e+01, 2.506628277459239e+00}
	invNormB = [5]float64{-5.447609879822406e+01, 1.615858368580409e+02, -1.556989798598866e+02, 6.680131188771972e+01, -1.328068155288572e+01}
	invNormC = [6]float64{-7.784894002430293e-03, -3.223964580411365e-01, -2.400758277161838e+00, -2.549732539343734e+00, 4.374664141464968e+00, 2.938163982698783e+00}
	invNormD = [4]float64{7.784695709041462e-03, 3.224671290700398e-01, 2.445134137142996e+00, 3.754408661907416e+00}
)

const invNormPLow = 0.02425

// ZScore returns z such that Phi(z) = serviceLevel, where Phi is the CDF of
// the standard normal distribution. A service level outside (0, 1) is an
// input error and must abort the calling operation.
func ZScore(serviceLevel float64) (float64, error) {
	if math.IsNaN(serviceLevel) || serviceLevel <= 0 || serviceLevel >= 1 {
		return 0, fmt.Errorf("service level must be between 0 and 1 exclusive, got %v", serviceLevel)
	}

	p := serviceLevel
	switch {
	case p < invNormPLow:
		q := math.Sqrt(-2 * math.Log(p))
		return (((((invNormC[0]*q+invNormC[1])*q+invNormC[2])*q+invNormC[3])*q+invNormC[4])*q + invNormC[5]) /
			((((invNormD[0]*q+invNormD[1])*q+invNormD[2])*q+invNormD[3])*q + 1), nil
	case p > 1-invNormPLow:
		q := math.Sqrt(-2 * math.Log(1-p))
		return -(((((invNormC[0]*q+invNormC[1])*q+invNormC[2])*q+invNormC[3])*q+invNormC[4])*q + invNormC[5]) /
			((((invNormD[0]*q+invNormD[1])*q+invNormD[2])*q+invNormD[3])*q + 1), nil
	default:
		q := p - 0.5
		r := q * q
		return (((((invNormA[0]*r+invNormA[1])*r+invNormA[2])*r+invNormA[3])*r+invNormA[4])*r + invNormA[5]) * q /
			(((((invNormB[0]*r+invNormB[1])*r+invNormB[2])*r+invNormB[3])*r+invNormB[4])*r + 1), nil
	}
}

// LeadTimeDemand is the expected demand during the replenishment lead time,
// assuming demand and lead time are independent.
func LeadTimeDemand(muDemand, muLeadTime float64) float64 {
	return muDemand * muLeadTime
}

// LeadTimeSigma is the standard deviation of demand during the lead time:
//
//	Var(DL) = muT*sigmaD^2 + muD^2*sigmaT^2
//
// The radicand is clamped at zero so floating-point underflow can never
// produce a domain error.
func LeadTimeSigma(muDemand, sigmaDemand, muLeadTime, sigmaLeadTime float64) float64 {
	variance := muLeadTime*sigmaDemand*sigmaDemand + muDemand*muDemand*sigmaLeadTime*sigmaLeadTime
	if variance <= 0 {
		return 0
	}
	return math.Sqrt(variance)
}

// SafetyStock sizes the buffer absorbing demand and lead-time variability at
// the target service level.
func SafetyStock(z, sigmaLeadTimeDemand float64) float64 {
	return z * sigmaLeadTimeDemand
}

// ReorderPoint is the stock level that triggers a new order: expected
// lead-time demand plus safety stock.
func ReorderPoint(muLeadTimeDemand, safetyStock float64) float64 {
	return muLeadTimeDemand + safetyStock
}
