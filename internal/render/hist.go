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


package render

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/landsat-tools/cfdiag/internal/stats"
)

const histBins = 50
const histSamples = 64*1024

// WriteProbHistogram plots the distribution of a probability surface and
// saves it as a PNG. Large populations are subsampled; the cutoff is drawn
// as a vertical line so outliers above it are visible at a glance
func WriteProbHistogram(fileName, title string, values []float32, cutoff float32) error {
	if len(values)==0 {
		return fmt.Errorf("%s: empty probability population", title)
	}
	samples:=stats.Sample(values, histSamples)
	vals:=make(plotter.Values, len(samples))
	for i,v:=range samples {
		vals[i]=float64(v)
	}

	p:=plot.New()
	p.Title.Text=title
	p.X.Label.Text="cloud probability [%]"
	p.Y.Label.Text="pixels"

	h, err:=plotter.NewHist(vals, histBins)
	if err!=nil { return err }
	p.Add(h)

	_, _, _, yMax:=h.DataRange()
	cut:=plotter.XYs{{X: float64(cutoff), Y: 0}, {X: float64(cutoff), Y: yMax}}
	line, err:=plotter.NewLine(cut)
	if err!=nil { return err }
	line.Width=vg.Points(1.5)
	p.Add(line)

	return p.Save(8*vg.Inch, 6*vg.Inch, fileName)
}
