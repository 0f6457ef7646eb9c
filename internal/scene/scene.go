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


// Package scene resolves Landsat 4-8 scene archives into co-registered band
// grids and writes the diagnostic outputs next to them. Both Collection 1 and
// pre-collection product IDs are supported
package scene

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/landsat-tools/cfdiag/internal/cloudmask"
	"github.com/landsat-tools/cfdiag/internal/raster"
)

// The band roles consumed by the diagnostic pipeline, in loading order
var bandRoles=[]string{"blue", "green", "red", "nir", "swir1", "swir2", "therm"}

// A resolved scene: its product ID, sensor generation and the per-role band
// file paths discovered in Dir
type Scene struct {
	ID         string
	Dir        string
	OutDir     string            // output directory; empty writes next to the inputs
	Landsat8   bool
	Collection bool              // Collection 1 naming, else pre-collection
	BandFiles  map[string]string // band role to file path
}

// The directory result rasters and quick looks go to
func (sc *Scene) outputDir() string {
	if sc.OutDir!="" { return sc.OutDir }
	return sc.Dir
}

// Landsat 8 moved the visible/infrared bands up by one and the thermal band
// to band 10; earlier sensors keep thermal on band 6 with SWIR2 on band 7
func bandNumbers(landsat8 bool) map[string]int {
	if landsat8 {
		return map[string]int{"blue": 2, "green": 3, "red": 4, "nir": 5,
			"swir1": 6, "swir2": 7, "therm": 10}
	}
	return map[string]int{"blue": 1, "green": 2, "red": 3, "nir": 4,
		"swir1": 5, "swir2": 7, "therm": 6}
}

// Derives the product ID and sensor generation from a band file name.
// Collection 1 names carry a two-digit sensor field ("LC08_...", 40
// significant characters); pre-collection names a one-digit field
// ("LC8...", 21 characters)
func identify(fileName string) (id string, landsat8, collection bool, err error) {
	fn:=filepath.Base(fileName)
	if len(fn)<21 {
		return "", false, false, fmt.Errorf("%s: not a Landsat band file name", fn)
	}
	if fn[2]=='0' {
		if len(fn)<40 {
			return "", false, false, fmt.Errorf("%s: truncated Collection 1 name", fn)
		}
		return fn[0:40], fn[2:4]=="08", true, nil
	}
	return fn[0:21], fn[2]=='8', false, nil
}

// Discover locates the band files of the single scene extracted into dir and
// resolves them by role. Band files are recognized by the "band<N>." name
// fragment with a .tif or .img suffix
func Discover(dir string) (*Scene, error) {
	var bands []string
	for _,pat:=range []string{"*band*.tif", "*band*.TIF", "*band*.img"} {
		m, err:=filepath.Glob(filepath.Join(dir, pat))
		if err!=nil { return nil, err }
		bands=append(bands, m...)
	}
	if len(bands)==0 {
		return nil, fmt.Errorf("%s: no band files found", dir)
	}
	sort.Strings(bands)

	id, landsat8, collection, err:=identify(bands[0])
	if err!=nil { return nil, err }

	sc:=&Scene{ID: id, Dir: dir, Landsat8: landsat8, Collection: collection,
		BandFiles: map[string]string{}}
	numbers:=bandNumbers(landsat8)
	for _,role:=range bandRoles {
		frag:=fmt.Sprintf("band%d.", numbers[role])
		for _,b:=range bands {
			if strings.Contains(strings.ToLower(filepath.Base(b)), frag) {
				sc.BandFiles[role]=b
				break
			}
		}
		if sc.BandFiles[role]=="" {
			return nil, fmt.Errorf("%s: missing %s band (band%d)", id, role, numbers[role])
		}
	}
	return sc, nil
}

// LoadBands reads the seven band grids. Reflective bands are kept as scaled
// TOA reflectance DNs; the thermal band is rescaled from DN to Celsius*100
// via ((dn*0.1)-273.15)*100, preserving the fill sentinel
func (sc *Scene) LoadBands(cfg cloudmask.Config, logWriter io.Writer) (*cloudmask.Bands, error) {
	grids:=make(map[string]*raster.Grid, len(bandRoles))
	for i,role:=range bandRoles {
		g, err:=raster.ReadGrid(sc.BandFiles[role], i, logWriter)
		if err!=nil { return nil, err }
		grids[role]=g
	}

	therm:=grids["therm"].Data
	for i,dn:=range therm {
		if dn==cfg.FillValue { continue }
		therm[i]=((dn*0.1)-273.15)*100
	}

	return &cloudmask.Bands{
		Blue: grids["blue"], Green: grids["green"], Red: grids["red"],
		NIR: grids["nir"], SWIR1: grids["swir1"], SWIR2: grids["swir2"],
		Therm: grids["therm"],
	}, nil
}

// WriteOutputs writes the four result rasters next to the input bands as ENVI
// grids, propagating the georeference of the given input grid: the additive
// diagnostic codes, the confidence codes, and the land and water probability
// surfaces. Returns the written file names
func (sc *Scene) WriteOutputs(res *cloudmask.Result, ref *raster.Grid, logWriter io.Writer) ([]string, error) {
	dir:=sc.outputDir()
	if err:=os.MkdirAll(dir, 0755); err!=nil { return nil, err }
	diagFn :=filepath.Join(dir, sc.ID+"_cfmask_diag.img")
	confFn :=filepath.Join(dir, sc.ID+"_cfmask_conf_diag.img")
	probFn :=filepath.Join(dir, sc.ID+"_prob.img")
	wprobFn:=filepath.Join(dir, sc.ID+"_wprob.img")

	fmt.Fprintf(logWriter, "Writing diagnostic raster to %s\n", diagFn)
	if err:=raster.WriteENVIUint32(diagFn, res.Diag, res.Width, res.Height, ref.MapInfo, ref.CoordSys); err!=nil {
		return nil, err
	}
	fmt.Fprintf(logWriter, "Writing confidence raster to %s\n", confFn)
	if err:=raster.WriteENVIUint8(confFn, res.Conf, res.Width, res.Height, ref.MapInfo, ref.CoordSys); err!=nil {
		return nil, err
	}
	fmt.Fprintf(logWriter, "Writing land probability raster to %s\n", probFn)
	if err:=raster.WriteENVIFloat32(probFn, res.LandProb, res.Width, res.Height, ref.MapInfo, ref.CoordSys); err!=nil {
		return nil, err
	}
	fmt.Fprintf(logWriter, "Writing water probability raster to %s\n", wprobFn)
	if err:=raster.WriteENVIFloat32(wprobFn, res.WaterProb, res.Width, res.Height, ref.MapInfo, ref.CoordSys); err!=nil {
		return nil, err
	}
	return []string{diagFn, confFn, probFn, wprobFn}, nil
}

// Cleanup deletes the extracted input band files and metadata sidecars,
// leaving the result rasters in place
func (sc *Scene) Cleanup(logWriter io.Writer) {
	fmt.Fprintf(logWriter, "Cleaning up input bands...\n")
	doomed:=make([]string, 0, len(sc.BandFiles)+2)
	for _,fn:=range sc.BandFiles {
		doomed=append(doomed, fn)
		if strings.HasSuffix(strings.ToLower(fn), ".img") {
			doomed=append(doomed, strings.TrimSuffix(fn, filepath.Ext(fn))+".hdr")
		}
	}
	if xmls, err:=filepath.Glob(filepath.Join(sc.Dir, "*.xml")); err==nil {
		doomed=append(doomed, xmls...)
	}
	for _,fn:=range doomed {
		if err:=os.Remove(fn); err!=nil && !os.IsNotExist(err) {
			fmt.Fprintf(logWriter, "Warning: cannot remove %s: %s\n", fn, err.Error())
		}
	}
}
