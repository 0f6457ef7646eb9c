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

// Computes the water and land cloud probability surfaces in percent.
// Both are defined over the full grid; fill pixels keep whatever the raw
// formula yields for them, and are excluded again wherever the surfaces
// are consumed. Requires the thermal thresholds
func calcProbabilitySurfaces(s *state) {
	fmt.Fprintf(s.ctx.Log, "Calculating cloud probability over water...\n")
	calcWaterProb(s)
	fmt.Fprintf(s.ctx.Log, "Calculating cloud probability over land...\n")
	calcLandProb(s)
}

// Water probability is brightness (SWIR1 against a 1100 ceiling) times the
// water temperature term, scaled to percent. The temperature term is clipped
// at zero for valid pixels only
func calcWaterProb(s *state) {
	s.waterProb=make([]float32, s.n())
	forEachRowBlock(s.height, s.ctx.MaxThreads, func(yLo, yHi int32) {
		for i:=int(yLo)*int(s.width); i<int(yHi)*int(s.width); i++ {
			bright:=s.swir1[i]/1100.0
			if bright<0 { bright=0 }
			if bright>1 { bright=1 }

			wt:=(s.thr.WaterTempHigh-s.therm[i])/400.0
			if wt<0 && !s.fill[i] { wt=0 }

			s.waterProb[i]=bright*wt*100.0
		}
	})
}

// Land probability is a variability term (one minus the largest of NDVI, NDSI
// and a full-grid whiteness, each clamped at zero) times the land temperature
// term, scaled to percent. Unlike the whiteness test this whiteness covers
// every pixel, with 0 where the visible mean is zero or a visible band is
// saturated on a valid pixel
func calcLandProb(s *state) {
	s.landProb=make([]float32, s.n())
	tempRange:=s.thr.LandTempHigh-s.thr.LandTempLow
	forEachRowBlock(s.height, s.ctx.MaxThreads, func(yLo, yHi int32) {
		for i:=int(yLo)*int(s.width); i<int(yHi)*int(s.width); i++ {
			ndvi:=s.ndvi[i]
			if ndvi<0 { ndvi=0 }
			ndsi:=s.ndsi[i]
			if ndsi<0 { ndsi=0 }

			var white float32
			mean:=(s.blue[i]+s.green[i]+s.red[i])/3.0
			if mean!=0 {
				white=(abs32(s.blue[i]-mean)+abs32(s.green[i]-mean)+abs32(s.red[i]-mean))/mean
			}
			if !s.fill[i] &&
				(mean==0 ||
					s.blue[i]==s.cfg.SaturationValue || s.green[i]==s.cfg.SaturationValue ||
					s.red[i]==s.cfg.SaturationValue) {
				white=0
			}

			vari:=ndvi
			if ndsi>vari  { vari=ndsi }
			if white>vari { vari=white }

			tp:=(s.thr.LandTempHigh-s.therm[i])/tempRange
			if tp<0 { tp=0 }

			s.landProb[i]=(1.0-vari)*tp*100.0
		}
	})
}
