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
	"math"
	"testing"
)

func TestPercentileLinearInterpolation(t *testing.T) {
	// reference values computed with numpy.percentile(a, p), linear method
	cases:=[]struct{
		data   []float32
		p      float32
		expect float32
	}{
		{[]float32{1,2,3,4,5},             50,   3},
		{[]float32{1,2,3,4},               50,   2.5},
		{[]float32{1,2,3,4},               25,   1.75},
		{[]float32{5,1,4,2,3},             82.5, 4.3},
		{[]float32{5,1,4,2,3},             17.5, 1.7},
		{[]float32{10},                    82.5, 10},
		{[]float32{0,100},                 82.5, 82.5},
		{[]float32{1,2,3,4,5},             0,    1},
		{[]float32{1,2,3,4,5},             100,  5},
	}
	for _,c:=range cases {
		res:=Percentile(c.data, c.p)
		if math.Abs(float64(res-c.expect))>1e-4 {
			t.Errorf("Percentile(%v, %g)=%g; want %g", c.data, c.p, res, c.expect)
		}
	}
}

func TestPercentileEmptyPopulationDefaultsToZero(t *testing.T) {
	if res:=Percentile(nil, 82.5); res!=0 {
		t.Errorf("Percentile(nil)=%g; want 0", res)
	}
}

func TestPercentileLeavesInputUnmodified(t *testing.T) {
	data:=[]float32{5,1,4,2,3}
	_=Percentile(data, 50)
	want:=[]float32{5,1,4,2,3}
	for i:=range data {
		if data[i]!=want[i] {
			t.Fatalf("input modified at %d: got %v", i, data)
		}
	}
}

func TestCalcSummary(t *testing.T) {
	s:=CalcSummary([]float32{2,4,4,4,5,5,7,9})
	if s.Num!=8      { t.Errorf("Num=%d; want 8", s.Num) }
	if s.Min!=2      { t.Errorf("Min=%g; want 2", s.Min) }
	if s.Max!=9      { t.Errorf("Max=%g; want 9", s.Max) }
	if s.Mean!=5     { t.Errorf("Mean=%g; want 5", s.Mean) }
	// gonum MeanStdDev uses the sample standard deviation, sqrt(32/7)
	if math.Abs(float64(s.StdDev)-math.Sqrt(32.0/7.0))>1e-5 {
		t.Errorf("StdDev=%g; want %g", s.StdDev, math.Sqrt(32.0/7.0))
	}
}

func TestSample(t *testing.T) {
	data:=make([]float32, 1000)
	for i:=range data { data[i]=42 }

	small:=Sample(data, 2000)
	if len(small)!=len(data) { t.Errorf("len=%d; want %d", len(small), len(data)) }

	sub:=Sample(data, 100)
	if len(sub)!=100 { t.Errorf("len=%d; want 100", len(sub)) }
	for _,v:=range sub {
		if v!=42 { t.Fatalf("sample contains %g; want 42", v) }
	}
}
