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
	"fmt"

	"github.com/landsat-tools/cfdiag/internal/raster"
)

// The co-registered input grids for one scene, resolved by band role.
// Reflective bands carry scaled TOA reflectance; Therm carries brightness
// temperature in Celsius*100 (the loader applies ((dn*0.1)-273.15)*100)
type Bands struct {
	Blue  *raster.Grid
	Green *raster.Grid
	Red   *raster.Grid
	NIR   *raster.Grid
	SWIR1 *raster.Grid
	SWIR2 *raster.Grid
	Therm *raster.Grid
}

// Every stage indexes all grids with one flat offset, so a shape mismatch
// invalidates the whole invocation. There is no partial-result recovery
func (b *Bands) Validate() error {
	named:=[]struct{
		name string
		g    *raster.Grid
	}{
		{"blue", b.Blue}, {"green", b.Green}, {"red", b.Red}, {"nir", b.NIR},
		{"swir1", b.SWIR1}, {"swir2", b.SWIR2}, {"therm", b.Therm},
	}
	for _,n:=range named {
		if n.g==nil {
			return fmt.Errorf("missing %s band", n.name)
		}
		if len(n.g.Data)!=n.g.Pixels() {
			return fmt.Errorf("%s band: %d values for %s pixels", n.name, len(n.g.Data), n.g.DimensionsToString())
		}
	}
	for _,n:=range named[1:] {
		if n.g.Width!=b.Blue.Width || n.g.Height!=b.Blue.Height {
			return fmt.Errorf("%s band is %s, blue band is %s: all bands must share one shape",
				n.name, n.g.DimensionsToString(), b.Blue.DimensionsToString())
		}
	}
	return nil
}
