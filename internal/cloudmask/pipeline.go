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
	"fmt"
)

// Confidence codes of the output confidence raster
const (
	ConfFill   uint8 = 0
	ConfLow    uint8 = 1
	ConfMedium uint8 = 2
	ConfHigh   uint8 = 3
)

// A diagnostic test: a named elementwise predicate with a fixed additive
// contribution to the diagnostic code, an optional candidate-mask narrowing
// effect, and an optional confidence level it assigns where it fires.
//
// The contributions are summed, not OR-ed: the table mixes power-of-two
// contributions with the small decimal magnitudes 2 and 20 for the medium
// confidence tests, so sums are NOT a disjoint bitfield (basic+thermal yields
// 3, as does basic plus medium water confidence). Downstream consumers decode
// against this exact table; do not rework it into a pure bitmask
type Test struct {
	Name         string
	Contribution uint32
	Level        uint8                               // confidence level where fired, 0 for none
	Eval         func(s *state) (fired []bool)
	Narrow       func(s *state, fired []bool)        // may only clear candidacy, never set it
}

// Per-test outcome for log output and the REST response
type TestResult struct {
	Name         string `json:"name"`
	Contribution uint32 `json:"contribution"`
	Fired        int    `json:"fired"`
}

// The five per-scene dynamic thresholds, computed from clear-population
// percentiles after the primary pipeline and before any confidence test.
// Read-only once computed; recomputed fresh for every scene
type Thresholds struct {
	LandTempLow     float32 `json:"landTempLow"`     // P17.5 of clear-sky land thermal, minus buffer
	LandTempHigh    float32 `json:"landTempHigh"`    // P82.5 of clear-sky land thermal, plus buffer
	WaterTempHigh   float32 `json:"waterTempHigh"`   // P82.5 of clear-sky water thermal
	LandProbCutoff  float32 `json:"landProbCutoff"`  // P82.5 of clear-land cloud probability, plus base threshold
	WaterProbCutoff float32 `json:"waterProbCutoff"` // P82.5 of clear-water cloud probability, plus base threshold
}

// The per-scene outputs of the diagnostic pipeline
type Result struct {
	Width, Height int32

	Diag      []uint32  // additive diagnostic codes per the Test table
	Conf      []uint8   // confidence codes 0..3
	LandProb  []float32 // land cloud probability, percent
	WaterProb []float32 // water cloud probability, percent

	Thresholds    Thresholds
	Tests         []TestResult
	ClearFraction float32
	Warnings      []string
}

// Shared working state of one pipeline invocation. Grids are single-writer:
// the stage that produces a field is the only one that mutates it
type state struct {
	cfg    Config
	ctx    *Context
	width  int32
	height int32

	blue, green, red, nir, swir1, swir2, therm []float32

	ndvi, ndsi []float32

	fill []bool    // sentinel no-data pixels; never set bits nor confidence
	sat  []bool    // saturated visible pixels among thermal-test candidates

	basic     []bool    // passed the basic cloud test
	candidate []bool    // passed basic and thermal tests; domain of whiteness/haze
	cld       []bool    // running cloud candidate mask, monotonically narrowed
	whiteness []float32 // whiteness over candidate pixels

	water []bool

	clearLand, clearWater []bool
	landBit, waterBit     []bool // probability percentile populations (after fallback)

	thr                 Thresholds
	landProb, waterProb []float32

	confA, confB, confC []bool // high-confidence test hits, for downstream exclusion

	diag     []uint32
	conf     []uint8
	tests    []TestResult
	clearPtm float32 // clear fraction of the valid pixels
	landPtm  float32 // clear-land fraction, drives the land population fallback
	waterPtm float32 // clear-water fraction, drives the water population fallback
	warnings []string
}

func (s *state) n() int { return len(s.blue) }

func (s *state) warnf(format string, args ...interface{}) {
	w:=fmt.Sprintf(format, args...)
	s.warnings=append(s.warnings, w)
	fmt.Fprintf(s.ctx.Log, "Warning: %s\n", w)
}

// Evaluates an ordered test table: accumulates contributions, assigns
// confidence levels first-match-wins, then applies candidate narrowing
func (s *state) runTests(tests []Test) {
	for _,t:=range tests {
		fired:=t.Eval(s)
		count:=0
		for i,f:=range fired {
			if !f { continue }
			s.diag[i]+=t.Contribution
			if t.Level!=0 && s.conf[i]==ConfFill {
				s.conf[i]=t.Level
			}
			count++
		}
		if t.Narrow!=nil {
			t.Narrow(s, fired)
		}
		s.tests=append(s.tests, TestResult{Name: t.Name, Contribution: t.Contribution, Fired: count})
		fmt.Fprintf(s.ctx.Log, "Test %-24s (+%d): %d pixels\n", t.Name, t.Contribution, count)
	}
}

// Evaluates an elementwise predicate over the whole grid in parallel row blocks
func (s *state) evalPixels(pred func(i int) bool) []bool {
	fired:=make([]bool, s.n())
	forEachRowBlock(s.height, s.ctx.MaxThreads, func(yLo, yHi int32) {
		for i:=int(yLo)*int(s.width); i<int(yHi)*int(s.width); i++ {
			if pred(i) { fired[i]=true }
		}
	})
	return fired
}

// Builds the working state for one invocation: wires the band grids, allocates
// the outputs, derives the fill mask and the spectral indices
func newState(b *Bands, cfg Config, ctx *Context) *state {
	s:=&state{
		cfg: cfg, ctx: ctx,
		width: b.Blue.Width, height: b.Blue.Height,
		blue: b.Blue.Data, green: b.Green.Data, red: b.Red.Data, nir: b.NIR.Data,
		swir1: b.SWIR1.Data, swir2: b.SWIR2.Data, therm: b.Therm.Data,
	}
	s.diag=make([]uint32, s.n())
	s.conf=make([]uint8, s.n())

	// fill mask comes from the blue band alone and is reused by every stage
	s.fill=s.evalPixels(func(i int) bool { return s.blue[i]==cfg.FillValue })
	s.sat=make([]bool, s.n())

	fmt.Fprintf(ctx.Log, "Calculating spectral indices...\n")
	s.ndvi=CalcSpectralIndex(s.nir, s.red, ctx.MaxThreads, s.width, s.height)
	s.ndsi=CalcSpectralIndex(s.green, s.swir1, ctx.MaxThreads, s.width, s.height)
	return s
}

// Run computes the diagnostic and confidence rasters for one scene.
// Stages run strictly in order: primary tests narrow the candidate mask,
// then clear-population statistics fix the dynamic thresholds, then the
// probability surfaces feed the confidence classifier. Within each stage
// the computation is elementwise and parallelized over row blocks
func Run(b *Bands, cfg Config, ctx *Context) (*Result, error) {
	if err:=b.Validate(); err!=nil {
		return nil, fmt.Errorf("invalid input bands: %s", err.Error())
	}

	s:=newState(b, cfg, ctx)

	if mib:=estimateWorkingSetMiB(s.n()); mib>ctx.MemoryMB*7/10 {
		s.warnf("scene working set ~%d MiB exceeds 70%% of physical memory (%d MiB); expect swapping", mib, ctx.MemoryMB)
	}

	s.runTests(primaryTests())

	calcClearPopulations(s)
	calcThermalThresholds(s)
	calcProbabilitySurfaces(s)
	calcProbabilityCutoffs(s)

	fmt.Fprintf(ctx.Log, "Assigning confidence levels...\n")
	s.runTests(confidenceTests())

	// test f: whatever remains unset and is not fill is low confidence
	low:=0
	for i:=range s.conf {
		if s.conf[i]==ConfFill && !s.fill[i] {
			s.conf[i]=ConfLow
			low++
		}
	}
	fmt.Fprintf(ctx.Log, "Test %-24s (+0): %d pixels\n", "low confidence (f)", low)

	return &Result{
		Width: s.width, Height: s.height,
		Diag: s.diag, Conf: s.conf,
		LandProb: s.landProb, WaterProb: s.waterProb,
		Thresholds: s.thr, Tests: s.tests,
		ClearFraction: s.clearPtm,
		Warnings: s.warnings,
	}, nil
}

// Rough per-pixel footprint: 7 input bands, 2 indices, 2 probability surfaces
// and the diagnostic grid at 4 bytes, plus the boolean masks
func estimateWorkingSetMiB(pixels int) int {
	return pixels*(12*4+12) / (1024*1024)
}
