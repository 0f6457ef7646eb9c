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

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/valyala/fastrand"

	"github.com/landsat-tools/cfdiag/internal/raster"
)

const synthID = "LC80330422013173LGN00"

// band DN levels for synthetic clear land and cloud, in the band order
// blue, green, red, nir, swir1, swir2, therm. Thermal DNs are Kelvin*10:
// 3000 is 26.85 C for clear land, 2650 is -8.15 C inside clouds
var synthLand =[7]int16{500, 550, 600, 3000, 2000, 1500, 3000}
var synthCloud=[7]int16{5000, 5000, 5000, 5200, 4800, 4600, 2650}

var synthBandNames=[7]string{"band2", "band3", "band4", "band5", "band6", "band7", "band10"}

// cmdSynth writes a synthetic Landsat 8 scene with randomly placed cloud
// blobs and a fill margin into dir, for exercising the pipeline without
// downloading real data. The scene uses pre-collection naming so the normal
// discovery path picks it up
func cmdSynth(dir string, width, height int32, cover float32, logWriter io.Writer) error {
	if width<16 || height<16 {
		return fmt.Errorf("synthetic scene must be at least 16x16 pixels")
	}
	if err:=os.MkdirAll(dir, 0755); err!=nil { return err }

	rng:=fastrand.RNG{}
	rng.Seed(0xb0bcafe)

	pixels:=int(width)*int(height)
	cloudy:=make([]bool, pixels)
	placeCloudBlobs(&rng, cloudy, width, height, cover)

	margin:=width/16
	if h:=height/16; h<margin { margin=h }

	for b,name:=range synthBandNames {
		data:=make([]int16, pixels)
		for y:=int32(0); y<height; y++ {
			for x:=int32(0); x<width; x++ {
				i:=int(y)*int(width)+int(x)
				if x<margin || y<margin || x>=width-margin || y>=height-margin {
					data[i]=-9999
					continue
				}
				level:=synthLand[b]
				if cloudy[i] { level=synthCloud[b] }
				data[i]=level+int16(rng.Uint32n(100))-50
			}
		}
		fn:=filepath.Join(dir, synthID+"_toa_"+name+".img")
		if err:=raster.WriteENVIInt16(fn, data, width, height, "", ""); err!=nil {
			return err
		}
		fmt.Fprintf(logWriter, "Wrote synthetic band %s\n", fn)
	}
	return nil
}

// Stamps square cloud blobs at random positions until roughly the requested
// cover fraction is reached
func placeCloudBlobs(rng *fastrand.RNG, cloudy []bool, width, height int32, cover float32) {
	if cover<=0 { return }
	if cover>0.9 { cover=0.9 }
	want:=int(float32(len(cloudy))*cover)

	size:=width/8
	if h:=height/8; h<size { size=h }
	if size<2 { size=2 }

	marked:=0
	for attempts:=0; marked<want && attempts<10000; attempts++ {
		cx:=int32(rng.Uint32n(uint32(width)))
		cy:=int32(rng.Uint32n(uint32(height)))
		for y:=cy; y<cy+size && y<height; y++ {
			for x:=cx; x<cx+size && x<width; x++ {
				i:=int(y)*int(width)+int(x)
				if !cloudy[i] {
					cloudy[i]=true
					marked++
				}
			}
		}
	}
}
