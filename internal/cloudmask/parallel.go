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

// Runs fn over disjoint [yLo,yHi) row blocks with given concurrency limit.
// Stages are elementwise with no inter-pixel dependency, so blocks may run
// in any order; callers must only write indices inside their own block
func forEachRowBlock(height int32, maxThreads int, fn func(yLo, yHi int32)) {
	if maxThreads<1 { maxThreads=1 }
	blocks:=int32(maxThreads)
	if blocks>height { blocks=height }
	if blocks<=1 {
		fn(0, height)
		return
	}

	per:=(height+blocks-1)/blocks
	limiter:=make(chan bool, maxThreads)
	for yLo:=int32(0); yLo<height; yLo+=per {
		yHi:=yLo+per
		if yHi>height { yHi=height }
		limiter <- true
		go func(lo, hi int32) {
			defer func() { <-limiter }()
			fn(lo, hi)
		}(yLo, yHi)
	}
	for i:=0; i<cap(limiter); i++ {  // wait for goroutines to finish
		limiter <- true
	}
}
