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


package raster

import (
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"golang.org/x/image/tiff"
	"image"
)

// Read a raster file into a float32 grid, dispatching on the file suffix.
// .img loads ENVI BSQ with its .hdr sidecar; .tif/.tiff loads grayscale TIFF.
// 16-bit TIFF samples are reinterpreted as signed int16, the Landsat TOA
// convention, so fill sentinels like -9999 survive the round trip
func ReadGrid(fileName string, id int, logWriter io.Writer) (g *Grid, err error) {
	switch strings.ToLower(path.Ext(fileName)) {
	case ".img":
		g, err=readENVI(fileName)
	case ".tif", ".tiff":
		g, err=readTIFFGray(fileName)
	default:
		return nil, fmt.Errorf("%s: unknown raster suffix", fileName)
	}
	if err!=nil { return nil, err }

	g.ID=id
	fmt.Fprintf(logWriter, "%d: Loaded %s raster from %s\n", g.ID, g.DimensionsToString(), fileName)
	return g, nil
}

func readTIFFGray(fileName string) (g *Grid, err error) {
	f, err:=os.Open(fileName)
	if err!=nil { return nil, err }
	defer f.Close()

	img, err:=tiff.Decode(f)
	if err!=nil { return nil, fmt.Errorf("%s: %s", fileName, err.Error()) }

	bounds:=img.Bounds()
	width, height:=int32(bounds.Dx()), int32(bounds.Dy())
	data:=make([]float32, int(width)*int(height))

	switch im:=img.(type) {
	case *image.Gray:
		for y:=0; y<int(height); y++ {
			row:=im.Pix[y*im.Stride : y*im.Stride+int(width)]
			for x,v:=range row {
				data[y*int(width)+x]=float32(v)
			}
		}
	case *image.Gray16:
		for y:=0; y<int(height); y++ {
			for x:=0; x<int(width); x++ {
				off:=y*im.Stride + 2*x
				v:=uint16(im.Pix[off])<<8 | uint16(im.Pix[off+1])
				data[y*int(width)+x]=float32(int16(v))
			}
		}
	default:
		return nil, fmt.Errorf("%s: TIFF color model unsupported, grayscale only", fileName)
	}

	g=NewGrid(width, height, data)
	g.FileName=fileName
	return g, nil
}
