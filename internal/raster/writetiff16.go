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
	"bufio"
	"image"
	"image/color"
	"io"
	"math"
	"os"

	"golang.org/x/image/tiff"
)

// Write a float32 grid to 16-bit grayscale TIFF, scaling [min,max] to the
// full sample range. NaNs and out-of-range values are clamped
func WriteMonoTIFF16ToFile(fileName string, data []float32, width, height int32, min, max float32) error {
	file, err := os.Create(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	defer writer.Flush()

	return writeMonoTIFF16(writer, data, width, height, min, max)
}

func writeMonoTIFF16(writer io.Writer, data []float32, width, height int32, min, max float32) error {
	img := image.NewGray16(image.Rectangle{image.Point{0, 0}, image.Point{int(width), int(height)}})
	scale := 1 / (max - min)
	for y := 0; y < int(height); y++ {
		yoffset := y * int(width)
		for x := 0; x < int(width); x++ {
			gray := data[yoffset+x]
			gray = (gray - min) * scale
			// replace NaNs with zeros for export, else TIFF output breaks
			if math.IsNaN(float64(gray)) || gray < 0 {
				gray = 0
			}
			if gray > 1 {
				gray = 1
			}
			c := color.Gray16{uint16(gray * 65535)}
			img.SetGray16(x, y, c)
		}
	}

	return tiff.Encode(writer, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
}
