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


package cloudmask

import (
	"testing"
)

func TestCalcSpectralIndex(t *testing.T) {
	a:=[]float32{ 3000,  500, 0, -3000, 2000}
	b:=[]float32{ 1000, 1500, 0,  3000, 2000}
	want:=[]float32{0.5, -0.5, 0.01, 0.01, 0}

	got:=CalcSpectralIndex(a, b, 2, 5, 1)
	if len(got)!=len(want) {
		t.Fatalf("got %d values, want %d", len(got), len(want))
	}
	for i:=range want {
		if d:=got[i]-want[i]; d>1e-6 || d< -1e-6 {
			t.Errorf("pixel %d: got %f, want %f", i, got[i], want[i])
		}
	}
}
