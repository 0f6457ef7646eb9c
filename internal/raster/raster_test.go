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
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/tiff"
)

func TestGridHelpers(t *testing.T) {
	g:=NewGrid(3, 2, nil)
	g.MapInfo="UTM, 1, 1, 0, 0, 30, 30, 13, North, WGS-84"
	if len(g.Data)!=6 || g.Pixels()!=6 {
		t.Errorf("grid has %d values for %d pixels", len(g.Data), g.Pixels())
	}

	like:=NewGridLike(g)
	if like.MapInfo!=g.MapInfo || !EqualShape(g, like) {
		t.Error("NewGridLike lost shape or georeferencing")
	}
	if EqualShape(g, NewGrid(2, 3, nil)) {
		t.Error("mismatched shapes compare equal")
	}
	if EqualShape(g, nil) {
		t.Error("nil grid compares equal")
	}
}

func TestENVIInt16RoundTrip(t *testing.T) {
	fn:=filepath.Join(t.TempDir(), "band.img")
	data:=[]int16{3000, -9999, 0, 32767, -32768, 42}
	const mapInfo="UTM, 1.000, 1.000, 440985.000, 4423215.000, 30, 30, 13, North, WGS-84"

	if err:=WriteENVIInt16(fn, data, 3, 2, mapInfo, "PROJCS[\"WGS 84\"]"); err!=nil {
		t.Fatal(err)
	}
	g, err:=ReadGrid(fn, 0, io.Discard)
	if err!=nil { t.Fatal(err) }

	if g.Width!=3 || g.Height!=2 {
		t.Fatalf("grid is %s, want 3x2", g.DimensionsToString())
	}
	for i,want:=range data {
		if g.Data[i]!=float32(want) {
			t.Errorf("pixel %d: got %f, want %d", i, g.Data[i], want)
		}
	}
	if g.MapInfo!=mapInfo {
		t.Errorf("map info %q not preserved", g.MapInfo)
	}
	if g.CoordSys=="" {
		t.Error("coordinate system not preserved")
	}
}

func TestENVIFloat32RoundTrip(t *testing.T) {
	fn:=filepath.Join(t.TempDir(), "prob.img")
	data:=[]float32{0, 22.5, 87.25, -1.5}

	if err:=WriteENVIFloat32(fn, data, 2, 2, "", ""); err!=nil { t.Fatal(err) }
	g, err:=ReadGrid(fn, 0, io.Discard)
	if err!=nil { t.Fatal(err) }

	for i,want:=range data {
		if g.Data[i]!=want {
			t.Errorf("pixel %d: got %f, want %f", i, g.Data[i], want)
		}
	}
}

func TestENVIUint32RoundTrip(t *testing.T) {
	fn:=filepath.Join(t.TempDir(), "diag.img")
	data:=[]uint32{0, 31, 543, 1023}

	if err:=WriteENVIUint32(fn, data, 4, 1, "", ""); err!=nil { t.Fatal(err) }
	g, err:=ReadGrid(fn, 0, io.Discard)
	if err!=nil { t.Fatal(err) }

	for i,want:=range data {
		if g.Data[i]!=float32(want) {
			t.Errorf("pixel %d: got %f, want %d", i, g.Data[i], want)
		}
	}
}

func TestWriteENVIShapeMismatch(t *testing.T) {
	fn:=filepath.Join(t.TempDir(), "bad.img")
	if err:=WriteENVIUint8(fn, []uint8{1, 2, 3}, 2, 2, "", ""); err==nil {
		t.Error("shape mismatch accepted")
	}
}

func TestReadGridUnknownSuffix(t *testing.T) {
	if _, err:=ReadGrid("scene.fits", 0, io.Discard); err==nil {
		t.Error("unknown raster suffix accepted")
	}
}

// 16-bit TIFF samples are reinterpreted as signed on load, so negative
// sentinels written by other tooling survive
func TestReadTIFFGraySigned(t *testing.T) {
	fn:=filepath.Join(t.TempDir(), "band.tif")

	fill:=int16(-9999)
	img:=image.NewGray16(image.Rect(0, 0, 2, 1))
	img.SetGray16(0, 0, color.Gray16{Y: 3000})
	img.SetGray16(1, 0, color.Gray16{Y: uint16(fill)})
	f, err:=os.Create(fn)
	if err!=nil { t.Fatal(err) }
	if err:=tiff.Encode(f, img, nil); err!=nil { t.Fatal(err) }
	if err:=f.Close(); err!=nil { t.Fatal(err) }

	g, err:=ReadGrid(fn, 0, io.Discard)
	if err!=nil { t.Fatal(err) }
	if g.Data[0]!=3000 || g.Data[1]!=-9999 {
		t.Errorf("got (%f, %f), want (3000, -9999)", g.Data[0], g.Data[1])
	}
}

func TestWriteMonoTIFF16(t *testing.T) {
	fn:=filepath.Join(t.TempDir(), "quicklook.tif")
	data:=[]float32{0, 25, 50, 100}
	if err:=WriteMonoTIFF16ToFile(fn, data, 2, 2, 0, 100); err!=nil { t.Fatal(err) }

	f, err:=os.Open(fn)
	if err!=nil { t.Fatal(err) }
	defer f.Close()
	img, err:=tiff.Decode(f)
	if err!=nil { t.Fatal(err) }
	g16, ok:=img.(*image.Gray16)
	if !ok { t.Fatalf("decoded %T, want *image.Gray16", img) }
	if g16.Gray16At(0, 0).Y!=0 || g16.Gray16At(1, 1).Y!=65535 {
		t.Errorf("scaling endpoints are (%d, %d), want (0, 65535)",
			g16.Gray16At(0, 0).Y, g16.Gray16At(1, 1).Y)
	}
}
