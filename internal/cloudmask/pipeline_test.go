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

	"github.com/google/go-cmp/cmp"
)

func approx(t *testing.T, name string, got, want, tol float32) {
	t.Helper()
	if d:=got-want; d>tol || d< -tol {
		t.Errorf("%s: got %f, want %f", name, got, want)
	}
}

func bandsFromRows(width int32, rows []pixel) *Bands {
	px:=make([]pixel, 0, int(width)*len(rows))
	for _,r:=range rows {
		for x:=int32(0); x<width; x++ {
			px=append(px, r)
		}
	}
	return bandsFromPixels(width, int32(len(rows)), px)
}

func expandRows(width int32, rows []uint32) []uint32 {
	out:=make([]uint32, 0, int(width)*len(rows))
	for _,r:=range rows {
		for x:=int32(0); x<width; x++ {
			out=append(out, r)
		}
	}
	return out
}

func expandRows8(width int32, rows []uint8) []uint8 {
	out:=make([]uint8, 0, int(width)*len(rows))
	for _,r:=range rows {
		for x:=int32(0); x<width; x++ {
			out=append(out, r)
		}
	}
	return out
}

// A land scene with uniform rows: clear vegetated land, an unambiguous cold
// bright cloud, a second cloud bright enough only for medium confidence,
// snow and a fill strip. The water fallback path is exercised because the
// scene has no water at all
func TestRunLandScene(t *testing.T) {
	const width=8
	rows:=[]pixel{
		{  500,   500,   500,  3000,  2000,   250,  2900}, // clear land
		{  500,   500,   500,  3000,  2000,   250,  2900},
		{  500,   500,   500,  3000,  2000,   250,  2900},
		{  500,   500,   500,  3000,  2000,   250,  2900},
		{ 5000,  5000,  5000,  5000,  5000,  5000,   500}, // high confidence cloud
		{ 5000,  5000,  5000,  5000,  5000,  5000,   500},
		{ 5000,  5000,  5000, 11667,  5000,  5000,   500}, // medium confidence cloud
		{ 2000,  2000,  2000,  2000,   500,   100,   500}, // snow
		{-9999, -9999, -9999, -9999, -9999, -9999, -9999},
	}

	res,err:=Run(bandsFromRows(width, rows), DefaultConfig(), testContext())
	if err!=nil { t.Fatal(err) }

	wantDiag:=expandRows(width, []uint32{0, 0, 0, 0, 543, 543, 51, 32, 0})
	if diff:=cmp.Diff(wantDiag, res.Diag); diff!="" {
		t.Errorf("diagnostic codes mismatch (-want +got):\n%s", diff)
	}
	wantConf:=expandRows8(width, []uint8{
		ConfLow, ConfLow, ConfLow, ConfLow,
		ConfHigh, ConfHigh, ConfMedium, ConfLow, ConfFill,
	})
	if diff:=cmp.Diff(wantConf, res.Conf); diff!="" {
		t.Errorf("confidence codes mismatch (-want +got):\n%s", diff)
	}

	// clear-land thermal population is 32x2900 plus 8x500 from the snow row
	approx(t, "LandTempLow", res.Thresholds.LandTempLow, 100, 1e-3)
	approx(t, "LandTempHigh", res.Thresholds.LandTempHigh, 3300, 1e-3)
	approx(t, "WaterTempHigh", res.Thresholds.WaterTempHigh, 2900, 1e-3)
	approx(t, "LandProbCutoff", res.Thresholds.LandProbCutoff, 57.5, 1e-3)
	approx(t, "WaterProbCutoff", res.Thresholds.WaterProbCutoff, 295.227, 1e-2)
	approx(t, "ClearFraction", res.ClearFraction, 0.625, 1e-6)

	if len(res.Warnings)!=0 {
		t.Errorf("unexpected warnings: %v", res.Warnings)
	}
	if len(res.Tests)!=12 {
		t.Fatalf("got %d test results, want 12", len(res.Tests))
	}
	wantFired:=map[string]int{
		"basic cloud":                24,
		"whiteness":                  24,
		"basic snow":                 8,
		"basic water":                0,
		"high confidence (a)":        0,
		"high confidence land (c)":   16,
		"medium confidence land (e)": 8,
	}
	for _,tr:=range res.Tests {
		if want,ok:=wantFired[tr.Name]; ok && tr.Fired!=want {
			t.Errorf("test %q fired %d pixels, want %d", tr.Name, tr.Fired, want)
		}
	}
}

// A water scene: clear water plus a hazy cloud that also meets the water
// test, taking the high confidence water branch. The land fallback path is
// exercised because the scene has no land
func TestRunWaterScene(t *testing.T) {
	const width=8
	rows:=[]pixel{
		{ 300,  300,  400,  300,  100,  100, 2800}, // clear water
		{ 300,  300,  400,  300,  100,  100, 2800},
		{ 300,  300,  400,  300,  100,  100, 2800},
		{ 300,  300,  400,  300,  100,  100, 2800},
		{ 300,  300,  400,  300,  100,  100, 2800},
		{ 300,  300,  400,  300,  100,  100, 2800},
		{6000, 6000, 6000, 1000, 1000, 1000, 1500}, // cloud over water
		{6000, 6000, 6000, 1000, 1000, 1000, 1500},
	}

	res,err:=Run(bandsFromRows(width, rows), DefaultConfig(), testContext())
	if err!=nil { t.Fatal(err) }

	wantDiag:=expandRows(width, []uint32{64, 64, 64, 64, 64, 64, 351, 351})
	if diff:=cmp.Diff(wantDiag, res.Diag); diff!="" {
		t.Errorf("diagnostic codes mismatch (-want +got):\n%s", diff)
	}
	wantConf:=expandRows8(width, []uint8{
		ConfLow, ConfLow, ConfLow, ConfLow, ConfLow, ConfLow, ConfHigh, ConfHigh,
	})
	if diff:=cmp.Diff(wantConf, res.Conf); diff!="" {
		t.Errorf("confidence codes mismatch (-want +got):\n%s", diff)
	}

	approx(t, "LandTempLow", res.Thresholds.LandTempLow, 2400, 1e-3)
	approx(t, "LandTempHigh", res.Thresholds.LandTempHigh, 3200, 1e-3)
	approx(t, "WaterTempHigh", res.Thresholds.WaterTempHigh, 2800, 1e-3)
	approx(t, "LandProbCutoff", res.Thresholds.LandProbCutoff, 47.5, 1e-3)
	approx(t, "WaterProbCutoff", res.Thresholds.WaterProbCutoff, 22.5, 1e-3)
	approx(t, "ClearFraction", res.ClearFraction, 0.75, 1e-6)

	// every valid pixel must carry a confidence, fill must carry none
	for i,c:=range res.Conf {
		if c<ConfLow || c>ConfHigh {
			t.Errorf("pixel %d: confidence %d out of range", i, c)
		}
	}
	if len(res.Warnings)!=0 {
		t.Errorf("unexpected warnings: %v", res.Warnings)
	}
}

// An all-fill scene must produce zero codes, fill confidence everywhere and
// the degenerate-statistics warnings instead of a panic
func TestRunAllFill(t *testing.T) {
	rows:=[]pixel{
		{-9999, -9999, -9999, -9999, -9999, -9999, -9999},
		{-9999, -9999, -9999, -9999, -9999, -9999, -9999},
	}
	res,err:=Run(bandsFromRows(4, rows), DefaultConfig(), testContext())
	if err!=nil { t.Fatal(err) }

	for i:=range res.Diag {
		if res.Diag[i]!=0 || res.Conf[i]!=ConfFill {
			t.Errorf("pixel %d: diag %d conf %d, want 0 and fill", i, res.Diag[i], res.Conf[i])
		}
	}
	if len(res.Warnings)==0 {
		t.Error("expected degenerate-statistics warnings, got none")
	}
	if res.ClearFraction!=0 {
		t.Errorf("clear fraction %f, want 0", res.ClearFraction)
	}
}

func TestValidateBands(t *testing.T) {
	b:=bandsFromRows(4, []pixel{{1,1,1,1,1,1,1}})
	if err:=b.Validate(); err!=nil {
		t.Fatalf("valid bands rejected: %s", err.Error())
	}

	missing:=*b
	missing.Therm=nil
	if err:=missing.Validate(); err==nil {
		t.Error("missing band accepted")
	}

	mismatched:=*b
	mismatched.NIR=bandsFromRows(5, []pixel{{1,1,1,1,1,1,1}}).NIR
	if err:=mismatched.Validate(); err==nil {
		t.Error("mismatched band shape accepted")
	}
}
