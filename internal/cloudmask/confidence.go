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

// The ordered confidence test table (a through e). Each test excludes the
// pixels already claimed by the earlier tests it is downstream of, so the
// high and medium assignments never overlap. Test f, low confidence for
// everything valid still unset, is applied by the caller after this table.
//
// The medium tests deliberately contribute the small decimal magnitudes
// 2 and 20, overlapping the thermal (+2) and haze-2 (+16) sums; see the
// Test type for why the code stays additive
func confidenceTests() []Test {
	return []Test{
		{
			// very cold pixels are clouds no matter what the probabilities say
			Name: "high confidence (a)", Contribution: 128, Level: ConfHigh,
			Eval: func(s *state) []bool {
				cold:=s.thr.LandTempLow+s.cfg.ThermBuffer-s.cfg.HighConfOffset
				s.confA=s.evalPixels(func(i int) bool {
					return !s.fill[i] && s.therm[i]<cold
				})
				return s.confA
			},
		},
		{
			Name: "high confidence water (b)", Contribution: 256, Level: ConfHigh,
			Eval: func(s *state) []bool {
				s.confB=s.evalPixels(func(i int) bool {
					return s.water[i] && s.waterProb[i]>s.thr.WaterProbCutoff &&
						s.cld[i] && !s.fill[i] && !s.confA[i]
				})
				return s.confB
			},
		},
		{
			Name: "high confidence land (c)", Contribution: 512, Level: ConfHigh,
			Eval: func(s *state) []bool {
				s.confC=s.evalPixels(func(i int) bool {
					return !s.water[i] && s.landProb[i]>s.thr.LandProbCutoff &&
						s.cld[i] && !s.fill[i] && !s.confA[i]
				})
				return s.confC
			},
		},
		{
			Name: "medium confidence water (d)", Contribution: 2, Level: ConfMedium,
			Eval: func(s *state) []bool {
				cut:=s.thr.WaterProbCutoff-s.cfg.MediumConfOffset
				return s.evalPixels(func(i int) bool {
					return s.water[i] && s.waterProb[i]>cut &&
						s.cld[i] && !s.fill[i] && !s.confA[i] && !s.confB[i]
				})
			},
		},
		{
			Name: "medium confidence land (e)", Contribution: 20, Level: ConfMedium,
			Eval: func(s *state) []bool {
				cut:=s.thr.LandProbCutoff-s.cfg.MediumConfOffset
				return s.evalPixels(func(i int) bool {
					return !s.water[i] && s.landProb[i]>cut &&
						s.cld[i] && !s.fill[i] && !s.confA[i] && !s.confC[i]
				})
			},
		},
	}
}
