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

// The ordered primary test table. Later tests only read or clear candidacy
// set by earlier ones, never re-set it: a pixel stays a cloud candidate only
// while it has passed the basic and thermal tests and has not failed
// whiteness, haze-1 or haze-2
func primaryTests() []Test {
	return []Test{
		{
			// NDSI<0.8 and NDVI<0.8 and SWIR2>300: potentially a cloud
			Name: "basic cloud", Contribution: 1,
			Eval: func(s *state) []bool {
				s.basic=s.evalPixels(func(i int) bool {
					return !s.fill[i] && s.ndsi[i]<0.8 && s.ndvi[i]<0.8 && s.swir2[i]>300
				})
				return s.basic
			},
		},
		{
			// basic passed and brightness temperature below 27.00 C (scaled)
			Name: "thermal", Contribution: 2,
			Eval: func(s *state) []bool {
				s.candidate=s.evalPixels(func(i int) bool {
					return s.basic[i] && s.therm[i]<2700 && !s.fill[i]
				})
				return s.candidate
			},
			Narrow: func(s *state, fired []bool) {
				// the candidate mask starts as the thermal-test survivors
				s.cld=append([]bool(nil), fired...)
			},
		},
		{
			Name: "whiteness", Contribution: 4,
			Eval: evalWhiteness,
			Narrow: func(s *state, fired []bool) {
				for i:=range s.cld {
					if s.candidate[i] && !s.fill[i] && s.whiteness[i]>=0.7 {
						s.cld[i]=false
					}
				}
			},
		},
		{
			// blue - 0.5*red - 800 > 0: haze test 1 failed, still possibly cloud
			Name: "haze optimized 1 failed", Contribution: 8,
			Eval: func(s *state) []bool {
				return s.evalPixels(func(i int) bool {
					return s.candidate[i] && !s.sat[i] && !s.fill[i] &&
						s.blue[i]-0.5*s.red[i]-800.0>0
				})
			},
			Narrow: func(s *state, fired []bool) {
				for i:=range s.cld {
					if s.candidate[i] && !s.sat[i] && !s.fill[i] &&
						s.blue[i]-0.5*s.red[i]-800.0<=0 {
						s.cld[i]=false
					}
				}
			},
		},
		{
			// nir/swir1 > 0.75: haze test 2 failed, still possibly cloud.
			// swir1==0 follows float division: +Inf fails the test, NaN passes nothing
			Name: "haze optimized 2 failed", Contribution: 16,
			Eval: func(s *state) []bool {
				return s.evalPixels(func(i int) bool {
					return s.candidate[i] && !s.fill[i] && s.nir[i]/s.swir1[i]>0.75
				})
			},
			Narrow: func(s *state, fired []bool) {
				for i:=range s.cld {
					if s.candidate[i] && !s.fill[i] && s.swir1[i]!=0 &&
						s.nir[i]/s.swir1[i]<=0.75 {
						s.cld[i]=false
					}
				}
			},
		},
		{
			// NDSI>0.15, bright NIR and green, below 10.00 C (scaled)
			Name: "basic snow", Contribution: 32,
			Eval: func(s *state) []bool {
				return s.evalPixels(func(i int) bool {
					return !s.fill[i] && s.ndsi[i]>0.15 && s.nir[i]>1100 &&
						s.green[i]>1000 && s.therm[i]<1000
				})
			},
		},
		{
			// fixes the land/water partition for the rest of the algorithm
			Name: "basic water", Contribution: 64,
			Eval: func(s *state) []bool {
				s.water=s.evalPixels(func(i int) bool {
					return !s.fill[i] &&
						((s.ndvi[i]<0.01 && s.nir[i]<1100) ||
						 (s.ndvi[i]>0.0 && s.ndvi[i]<0.1 && s.nir[i]<500))
				})
				return s.water
			},
		},
	}
}

// Whiteness is the mean absolute deviation of the visible bands from their
// mean, divided by that mean; forced to 100 where the mean is zero and to 0
// where any visible band is saturated. It is only defined over pixels that
// are still thermal-test candidates, and the saturation mask is likewise
// restricted to those pixels (matching the operational tool)
func evalWhiteness(s *state) []bool {
	s.whiteness=make([]float32, s.n())
	forEachRowBlock(s.height, s.ctx.MaxThreads, func(yLo, yHi int32) {
		for i:=int(yLo)*int(s.width); i<int(yHi)*int(s.width); i++ {
			if !s.candidate[i] { continue }

			mean:=(s.blue[i]+s.green[i]+s.red[i])/3.0
			if mean==0 {
				if !s.fill[i] { s.whiteness[i]=100.0 }
				continue
			}
			w:=(abs32(s.blue[i]-mean)+abs32(s.green[i]-mean)+abs32(s.red[i]-mean))/mean

			if s.blue[i]==s.cfg.SaturationValue || s.green[i]==s.cfg.SaturationValue ||
				s.red[i]==s.cfg.SaturationValue {
				s.sat[i]=true
				if !s.fill[i] { w=0.0 }
			}
			s.whiteness[i]=w
		}
	})

	return s.evalPixels(func(i int) bool {
		return s.candidate[i] && !s.fill[i] && s.whiteness[i]<0.7
	})
}

func abs32(x float32) float32 {
	if x<0 { return -x }
	return x
}
