package realm

import "time"

// Calculator derives realm numbers from time and biometric inputs using
// numerological digit reduction. The realm number is the digit root (1-9)
// of the summed digit values of the sample instant's calendar components
// plus the heart rate.
type Calculator struct {
	loc *time.Location
}

func NewCalculator(loc *time.Location) *Calculator {
	if loc == nil {
		loc = time.Local
	}
	return &Calculator{loc: loc}
}

// Compute reduces the sample instant and heart rate to a realm number.
func (c *Calculator) Compute(ts time.Time, bpm int) int {
	t := ts.In(c.loc)
	sum := DigitSum(t.Hour()) +
		DigitSum(t.Minute()) +
		DigitSum(t.Day()) +
		DigitSum(int(t.Month())) +
		DigitSum(t.Year()) +
		DigitSum(bpm)
	return Reduce(sum)
}

// Reduce collapses n to its digit root in 1-9. Non-positive input maps to 9
// so the result always stays in the numerological domain.
func Reduce(n int) int {
	if n <= 0 {
		return 9
	}
	r := n % 9
	if r == 0 {
		return 9
	}
	return r
}

// DigitSum sums the base-10 digits of n.
func DigitSum(n int) int {
	if n < 0 {
		n = -n
	}
	s := 0
	for n > 0 {
		s += n % 10
		n /= 10
	}
	return s
}
