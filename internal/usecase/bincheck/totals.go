package bincheck

import (
	"bufio"
	"fmt"
	"io"
	"math"
)

// Buckets is the number of distance ranges: upper limits 0.0, 0.1, ... 1.0.
const Buckets = 11

// Totals counts good and bad bins by distance range.
type Totals struct {
	good [Buckets]int
	bad  [Buckets]int
}

// Bucket returns the index of the smallest upper limit (in tenths) at or above d.
// Distances are clamped to [0,1].
func Bucket(d float64) int {
	// 0.3*10 is 3.0000000000000004 in binary floating point.
	i := int(math.Ceil(d*10 - 1e-9))
	return min(max(i, 0), Buckets-1)
}

// Add counts one bin.
func (t *Totals) Add(distance float64, good bool) {
	i := Bucket(distance)
	if good {
		t.good[i]++
	} else {
		t.bad[i]++
	}
}

// Good returns the good count of bucket i.
func (t *Totals) Good(i int) int { return t.good[i] }

// Bad returns the bad count of bucket i.
func (t *Totals) Bad(i int) int { return t.bad[i] }

// Percent returns the share of good bins in bucket i, 0 when it is empty.
func (t *Totals) Percent(i int) float64 {
	n := t.good[i] + t.bad[i]
	if n == 0 {
		return 0
	}
	return float64(t.good[i]) * 100 / float64(n)
}

// Write renders the totals table.
func (t *Totals) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "upper_limit\tGood\tBad\tPercent")
	for i := range Buckets {
		fmt.Fprintf(bw, "%4.1f\t%d\t%d\t%6.2f\n", float64(i)/10, t.good[i], t.bad[i], t.Percent(i))
	}
	return bw.Flush()
}
