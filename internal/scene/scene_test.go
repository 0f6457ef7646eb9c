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


package scene

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/landsat-tools/cfdiag/internal/cloudmask"
	"github.com/landsat-tools/cfdiag/internal/raster"
)

func TestIdentify(t *testing.T) {
	cases:=[]struct{
		fn               string
		id               string
		landsat8, coll   bool
		wantErr          bool
	}{
		{fn: "LC08_L1TP_034032_20160520_20170223_01_T1_toa_band2.tif",
			id: "LC08_L1TP_034032_20160520_20170223_01_T1", landsat8: true, coll: true},
		{fn: "LE07_L1TP_034032_20160520_20170223_01_T1_toa_band1.tif",
			id: "LE07_L1TP_034032_20160520_20170223_01_T1", landsat8: false, coll: true},
		{fn: "LC80330422013173LGN00_toa_band2.tif",
			id: "LC80330422013173LGN00", landsat8: true, coll: false},
		{fn: "LT50330422011173GNC01_toa_band1.tif",
			id: "LT50330422011173GNC01", landsat8: false, coll: false},
		{fn: "short.tif", wantErr: true},
	}
	for _,c:=range cases {
		id, landsat8, coll, err:=identify(c.fn)
		if c.wantErr {
			if err==nil { t.Errorf("%s: expected error", c.fn) }
			continue
		}
		if err!=nil { t.Errorf("%s: %s", c.fn, err.Error()); continue }
		if id!=c.id || landsat8!=c.landsat8 || coll!=c.coll {
			t.Errorf("%s: got (%s, %v, %v), want (%s, %v, %v)",
				c.fn, id, landsat8, coll, c.id, c.landsat8, c.coll)
		}
	}
}

func touch(t *testing.T, fn string) {
	t.Helper()
	if err:=os.WriteFile(fn, nil, 0644); err!=nil { t.Fatal(err) }
}

func TestDiscover(t *testing.T) {
	dir:=t.TempDir()
	const id="LC08_L1TP_034032_20160520_20170223_01_T1"
	for _,b:=range []string{"band2", "band3", "band4", "band5", "band6", "band7", "band10"} {
		touch(t, filepath.Join(dir, id+"_toa_"+b+".tif"))
	}

	sc, err:=Discover(dir)
	if err!=nil { t.Fatal(err) }
	if sc.ID!=id || !sc.Landsat8 || !sc.Collection {
		t.Errorf("got (%s, %v, %v), want (%s, true, true)", sc.ID, sc.Landsat8, sc.Collection, id)
	}
	// "band1." must never resolve to band 10
	if got:=filepath.Base(sc.BandFiles["therm"]); got!=id+"_toa_band10.tif" {
		t.Errorf("therm resolved to %s", got)
	}
	if got:=filepath.Base(sc.BandFiles["blue"]); got!=id+"_toa_band2.tif" {
		t.Errorf("blue resolved to %s", got)
	}
}

func TestDiscoverMissingBand(t *testing.T) {
	dir:=t.TempDir()
	const id="LC08_L1TP_034032_20160520_20170223_01_T1"
	touch(t, filepath.Join(dir, id+"_toa_band2.tif"))
	if _, err:=Discover(dir); err==nil {
		t.Error("incomplete scene accepted")
	}
}

// Writes a synthetic pre-collection scene as ENVI grids, loads it back and
// checks the thermal rescale and the output rasters
func TestLoadBandsAndWriteOutputs(t *testing.T) {
	dir:=t.TempDir()
	const id="LC80330422013173LGN00"
	cfg:=cloudmask.DefaultConfig()

	dns:=[]int16{3000, 2000, -9999, 1000}
	for _,b:=range []string{"band2", "band3", "band4", "band5", "band6", "band7", "band10"} {
		fn:=filepath.Join(dir, id+"_toa_"+b+".img")
		if err:=raster.WriteENVIInt16(fn, dns, 2, 2, "", ""); err!=nil { t.Fatal(err) }
	}

	sc, err:=Discover(dir)
	if err!=nil { t.Fatal(err) }
	b, err:=sc.LoadBands(cfg, io.Discard)
	if err!=nil { t.Fatal(err) }
	if err:=b.Validate(); err!=nil { t.Fatal(err) }

	if got:=b.Blue.Data[0]; got!=3000 {
		t.Errorf("blue[0]=%f, want 3000", got)
	}
	// 3000 DN is 300K, 26.85 C, 2685 scaled
	if got:=b.Therm.Data[0]; got<2684.9 || got>2685.1 {
		t.Errorf("therm[0]=%f, want ~2685", got)
	}
	if got:=b.Therm.Data[2]; got!=cfg.FillValue {
		t.Errorf("therm[2]=%f, fill sentinel not preserved", got)
	}

	res, err:=cloudmask.Run(b, cfg, &cloudmask.Context{Log: io.Discard, MaxThreads: 1, MemoryMB: 1<<20})
	if err!=nil { t.Fatal(err) }
	sc.OutDir=filepath.Join(dir, "out")
	files, err:=sc.WriteOutputs(res, b.Blue, io.Discard)
	if err!=nil { t.Fatal(err) }
	if len(files)!=4 {
		t.Fatalf("got %d output files, want 4", len(files))
	}
	for _,fn:=range files {
		if filepath.Dir(fn)!=sc.OutDir {
			t.Errorf("output %s not in the output directory", fn)
		}
		if _, err:=os.Stat(fn); err!=nil { t.Errorf("missing output %s", fn) }
	}

	sc.Cleanup(io.Discard)
	if _, err:=os.Stat(sc.BandFiles["blue"]); !os.IsNotExist(err) {
		t.Error("input bands not cleaned up")
	}
	if _, err:=os.Stat(files[0]); err!=nil {
		t.Error("cleanup removed an output raster")
	}
}
