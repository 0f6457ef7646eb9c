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


// Package render produces quick-look previews and histograms from diagnostic
// results, for eyeballing a scene without a GIS
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/landsat-tools/cfdiag/internal/cloudmask"
)

// Confidence preview palette: black for fill, then a green-yellow-red ramp
// over low, medium and high, built in HCL so the perceived lightness stays even
func confidencePalette() [4]color.NRGBA {
	pal:=[4]color.NRGBA{}
	pal[cloudmask.ConfFill]=color.NRGBA{0, 0, 0, 255}
	hues:=map[uint8]float64{cloudmask.ConfLow: 135, cloudmask.ConfMedium: 80, cloudmask.ConfHigh: 25}
	for level, hue:=range hues {
		c:=colorful.Hcl(hue, 0.8, 0.7).Clamped()
		r, g, b:=c.RGB255()
		pal[level]=color.NRGBA{r, g, b, 255}
	}
	return pal
}

// WriteConfidencePNG renders the confidence raster as a paletted PNG preview
func WriteConfidencePNG(fileName string, conf []uint8, width, height int32) error {
	if len(conf)!=int(width)*int(height) {
		return fmt.Errorf("%d confidence values for %dx%d pixels", len(conf), width, height)
	}
	pal:=confidencePalette()

	img:=image.NewNRGBA(image.Rect(0, 0, int(width), int(height)))
	for i,c:=range conf {
		if c>cloudmask.ConfHigh { c=cloudmask.ConfHigh }
		off:=i*4
		p:=pal[c]
		img.Pix[off], img.Pix[off+1], img.Pix[off+2], img.Pix[off+3]=p.R, p.G, p.B, p.A
	}

	f, err:=os.Create(fileName)
	if err!=nil { return err }
	if err:=png.Encode(f, img); err!=nil {
		f.Close()
		return err
	}
	return f.Close()
}
