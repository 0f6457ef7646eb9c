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

// Computes the normalized difference spectral index (a-b)/(a+b) elementwise.
// Where a+b is exactly zero the result is the sentinel 0.01, not NaN, so that
// downstream threshold comparisons stay well-defined. NDVI is the index over
// (nir, red), NDSI the index over (green, swir1)
func CalcSpectralIndex(a, b []float32, maxThreads int, width, height int32) []float32 {
	si:=make([]float32, len(a))
	forEachRowBlock(height, maxThreads, func(yLo, yHi int32) {
		for i:=int(yLo)*int(width); i<int(yHi)*int(width); i++ {
			sum:=a[i]+b[i]
			if sum==0 {
				si[i]=0.01
			} else {
				si[i]=(a[i]-b[i])/sum
			}
		}
	})
	return si
}
