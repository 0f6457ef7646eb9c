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
	"io"
	"runtime"

	"github.com/pbnjay/memory"
)

// Tunable constants of the diagnostic algorithm. The defaults reproduce the
// operational CFMask confidence band; changing them changes the output contract
type Config struct {
	FillValue          float32 `json:"fillValue"`          // no-data sentinel in all input bands
	SaturationValue    float32 `json:"saturationValue"`    // DN marking a saturated visible-band pixel
	CloudProbThreshold float32 `json:"cloudProbThreshold"` // base cloud probability cutoff, percent
	ThermBuffer        float32 `json:"thermBuffer"`        // buffer around the clear-sky thermal percentiles, Celsius*100
	HighConfOffset     float32 `json:"highConfOffset"`     // cold-pixel offset for unconditional high confidence, Celsius*100
	MediumConfOffset   float32 `json:"mediumConfOffset"`   // cutoff relaxation for medium confidence, percent
}

func DefaultConfig() Config {
	return Config{
		FillValue:          -9999,
		SaturationValue:    20000,
		CloudProbThreshold: 22.5,
		ThermBuffer:        400.0,
		HighConfOffset:     3500.0,
		MediumConfOffset:   10.0,
	}
}

// An execution context for pipeline invocations
type Context struct {
	Log        io.Writer
	MaxThreads int     // concurrency limit for row-block evaluation
	MemoryMB   int     // physical memory, for the oversized-scene advisory
}

func NewContext(log io.Writer) *Context {
	return &Context{
		Log:        log,
		MaxThreads: runtime.GOMAXPROCS(0),
		MemoryMB:   int(memory.TotalMemory()/1024/1024),
	}
}
