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

	"github.com/landsat-tools/cfdiag/internal/stats"
)

// Partitions the non-candidate pixels into clear land and clear water and
// logs the population shares. Must run after the primary pipeline has
// finished narrowing the candidate mask
func calcClearPopulations(s *state) {
	fmt.Fprintf(s.ctx.Log, "Setting clear water and clear land bits...\n")
	s.clearWater=s.evalPixels(func(i int) bool { return s.water[i] && !s.cld[i] && !s.fill[i] })
	s.clearLand =s.evalPixels(func(i int) bool { return !s.water[i] && !s.cld[i] && !s.fill[i] })

	cClear, cCount, cLand, cWater:=0, 0, 0, 0
	for i:=range s.fill {
		if s.fill[i] { continue }
		cCount++
		if !s.cld[i] { cClear++ }
		if s.clearLand[i] { cLand++ }
		if s.clearWater[i] { cWater++ }
	}
	fmt.Fprintf(s.ctx.Log, "Total # of pixels: %d, clear %d, clear land %d, clear water %d\n",
		cCount, cClear, cLand, cWater)

	if cCount==0 {
		s.clearPtm=0
		s.warnf("scene is entirely fill; statistics default to 0")
		s.landPtm, s.waterPtm=0, 0
		return
	}
	s.clearPtm=float32(cClear)/float32(cCount)
	s.landPtm =float32(cLand)/float32(cCount)
	s.waterPtm=float32(cWater)/float32(cCount)
	fmt.Fprintf(s.ctx.Log, "%% clear %.4f, %% clear land %.4f, %% clear water %.4f\n",
		s.clearPtm*100, s.landPtm*100, s.waterPtm*100)

	if s.clearPtm<=0.1 {
		s.warnf("scene is > 90%% cloudy; typical downstream operation (with dilation) " +
			"writes remaining non-cloud pixels as cloud shadow, cloudy pixels as " +
			"high-confidence cloud, and disables the remaining thermal tests")
	}
}

// Computes the clear-sky thermal percentiles with the buffered limits.
// A land (or water) clear population under 10% of the valid pixels falls
// back to the full clear population; an empty population defaults the
// percentile input to zero. The resulting landBit/waterBit masks are the
// same populations later used for the probability cutoff percentiles
func calcThermalThresholds(s *state) {
	fmt.Fprintf(s.ctx.Log, "Calculating temperature percentiles...\n")

	landBT:=gatherThermal(s, s.clearLand)
	s.landBit=s.clearLand
	if s.landPtm<0.1 {
		fmt.Fprintf(s.ctx.Log, "Less than 10%% cloud-free land. Using all clear pixels instead.\n")
		s.landBit=s.evalPixels(func(i int) bool { return !s.cld[i] })
		landBT=gatherThermal(s, s.landBit)
	}
	if len(landBT)==0 {
		s.warnf("no cloud-free land pixels; land thermal statistics default to 0")
	}

	waterBT:=gatherThermal(s, s.clearWater)
	s.waterBit=s.clearWater
	if s.waterPtm<0.1 {
		fmt.Fprintf(s.ctx.Log, "Less than 10%% cloud-free water. Using all clear pixels instead.\n")
		s.waterBit=s.evalPixels(func(i int) bool { return !s.cld[i] })
		waterBT=gatherThermal(s, s.waterBit)
	}
	if len(waterBT)==0 {
		s.warnf("no cloud-free water pixels; water thermal statistics default to 0")
	}

	s.thr.LandTempLow  =stats.Percentile(landBT, 17.5) - s.cfg.ThermBuffer
	s.thr.LandTempHigh =stats.Percentile(landBT, 82.5) + s.cfg.ThermBuffer
	s.thr.WaterTempHigh=stats.Percentile(waterBT, 82.5)
	fmt.Fprintf(s.ctx.Log, "t_templ %.2f t_temph %.2f t_wtemp %.2f\n",
		s.thr.LandTempLow, s.thr.LandTempHigh, s.thr.WaterTempHigh)
}

// Collects thermal values over the given mask, excluding saturated and fill
// pixels, for percentile computation
func gatherThermal(s *state, mask []bool) []float32 {
	vals:=make([]float32, 0, 1024)
	for i,m:=range mask {
		if m && !s.sat[i] && !s.fill[i] {
			vals=append(vals, s.therm[i])
		}
	}
	return vals
}

// Computes the dynamic probability cutoffs from the probability surfaces over
// the clear populations selected above. Must run after the surfaces exist
// and before any confidence test
func calcProbabilityCutoffs(s *state) {
	fmt.Fprintf(s.ctx.Log, "Calculating dynamic cloud thresholds...\n")

	landPop:=make([]float32, 0, 1024)
	waterPop:=make([]float32, 0, 1024)
	for i:=range s.fill {
		if s.fill[i] { continue }
		if s.landBit[i]  { landPop =append(landPop,  s.landProb[i]) }
		if s.waterBit[i] { waterPop=append(waterPop, s.waterProb[i]) }
	}
	if len(landPop)==0 {
		s.warnf("empty clear-land probability population; land cutoff degrades to the base threshold")
	}
	if len(waterPop)==0 {
		s.warnf("empty clear-water probability population; water cutoff degrades to the base threshold")
	}

	s.thr.LandProbCutoff =stats.Percentile(landPop, 82.5) + s.cfg.CloudProbThreshold
	s.thr.WaterProbCutoff=stats.Percentile(waterPop, 82.5) + s.cfg.CloudProbThreshold
	fmt.Fprintf(s.ctx.Log, "clr_mask %.4f wclr_mask %.4f\n", s.thr.LandProbCutoff, s.thr.WaterProbCutoff)
}
