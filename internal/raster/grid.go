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
)

// A single-band raster grid of float32 samples in row-major order,
// with optional georeferencing metadata carried through verbatim.
type Grid struct {
	ID       int         // Sequential ID number, for log output
	FileName string      // Original file name, if any, for log output

	Width    int32       // Samples per line
	Height   int32       // Number of lines

	Data     []float32   // The pixel data, len = Width*Height

	MapInfo  string      // ENVI "map info" line (geotransform), empty if unknown
	CoordSys string      // ENVI "coordinate system string" line, empty if unknown
}

// Creates a grid of the given dimensions. Data is not copied, allocated if nil
func NewGrid(width, height int32, data []float32) *Grid {
	if data==nil {
		data=make([]float32, int(width)*int(height))
	}
	return &Grid{
		Width:  width,
		Height: height,
		Data:   data,
	}
}

// Creates an empty grid with the dimensions and georeferencing of the given one
func NewGridLike(g *Grid) *Grid {
	res:=NewGrid(g.Width, g.Height, nil)
	res.MapInfo, res.CoordSys=g.MapInfo, g.CoordSys
	return res
}

func (g *Grid) Pixels() int {
	return int(g.Width)*int(g.Height)
}

func (g *Grid) DimensionsToString() string {
	return fmt.Sprintf("%dx%d", g.Width, g.Height)
}

// Equal tells whether all given grids share one shape.
// Nil grids and grids whose data length disagrees with their dimensions fail
func EqualShape(gs ...*Grid) bool {
	if len(gs)==0 { return true }
	for _,g:=range gs {
		if g==nil { return false }
		if len(g.Data)!=g.Pixels() { return false }
		if g.Width!=gs[0].Width || g.Height!=gs[0].Height { return false }
	}
	return true
}
