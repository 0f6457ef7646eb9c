// Copyright (C) 2024 the cfdiag authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.


package stats

import (
	"fmt"
	"math"

	"github.com/valyala/fastrand"
	"gonum.org/v1/gonum/stat"

	"github.com/landsat-tools/cfdiag/internal/qsort"
)

// Basic summary statistics on a data array, for log output
type Summary struct {
	Num    int
	Min    float32
	Max    float32
	Mean   float32
	StdDev float32
	Median float32
}

// Pretty print a summary to string
func (s *Summary) String() string {
	return fmt.Sprintf("n %d min %.6g max %.6g mean %.6g stdDev %.6g median %.6g",
	                    s.Num, s.Min,  s.Max,  s.Mean,  s.StdDev,  s.Median)
}

// Calculate summary statistics for a data array. The median is estimated from
// a random subsample when the population exceeds maxSamples (see Sample)
func CalcSummary(data []float32) (s *Summary) {
	s=&Summary{Num: len(data)}
	if len(data)==0 { return s }

	xs:=make([]float64, len(data))
	mmin, mmax:=data[0], data[0]
	for i,d:=range data {
		xs[i]=float64(d)
		if d<mmin { mmin=d }
		if d>mmax { mmax=d }
	}
	mean, std:=stat.MeanStdDev(xs, nil)
	s.Min, s.Max=mmin, mmax
	s.Mean, s.StdDev=float32(mean), float32(std)
	if math.IsNaN(std) { s.StdDev=0 } // single-element population

	samples:=Sample(data, maxSamples)
	s.Median=qsort.QSelectMedianFloat32(samples)
	return s
}

// Population size beyond which medians and histograms work on a subsample
const maxSamples = 128*1024

// Returns a random subsample of up to n elements, or a copy of the data if it
// is smaller than that. The result may be reordered freely by the caller
func Sample(data []float32, n int) []float32 {
	if len(data)<=n {
		return append([]float32(nil), data...)
	}
	rng:=fastrand.RNG{}
	samples:=make([]float32, n)
	for i:=range samples {
		samples[i]=data[rng.Uint32n(uint32(len(data)))]
	}
	return samples
}

// Calculate the p-th percentile (p in [0,100]) of the given population with
// linear interpolation between closest ranks, index = p/100 * (n-1).
// The dynamic cloud thresholds are contractually tied to this exact
// interpolation; do not substitute other quantile definitions.
// An empty population yields 0. The input array is left unmodified
func Percentile(data []float32, p float32) float32 {
	if len(data)==0 { return 0 }
	if len(data)==1 { return data[0] }

	sorted:=append([]float32(nil), data...)
	qsort.QSortFloat32(sorted)

	rank:=float64(p)/100*float64(len(sorted)-1)
	lo:=int(math.Floor(rank))
	if lo>=len(sorted)-1 { return sorted[len(sorted)-1] }
	if lo<0 { return sorted[0] }
	frac:=float32(rank-float64(lo))
	return sorted[lo] + (sorted[lo+1]-sorted[lo])*frac
}
