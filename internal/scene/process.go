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
	"fmt"
	"os"
	"strings"

	"github.com/landsat-tools/cfdiag/internal/cloudmask"
)

// Process runs the whole diagnostic chain on a scene archive or an already
// extracted scene directory: extract, discover, load, diagnose, write the
// result rasters. Outputs go to outDir, or next to the inputs if empty.
// With keepInputs false the extracted band files are deleted afterwards,
// like when processing archives in bulk. Returns the scene, the diagnostic
// result and the written output files
func Process(path, outDir string, cfg cloudmask.Config, ctx *cloudmask.Context, keepInputs bool) (*Scene, *cloudmask.Result, []string, error) {
	fi, err:=os.Stat(path)
	if err!=nil { return nil, nil, nil, err }

	dir:=path
	extracted:=false
	if !fi.IsDir() {
		lower:=strings.ToLower(path)
		if !strings.HasSuffix(lower, ".tar") && !strings.HasSuffix(lower, ".tar.gz") &&
			!strings.HasSuffix(lower, ".tgz") {
			return nil, nil, nil, fmt.Errorf("%s: not a scene directory or tar archive", path)
		}
		if dir, err=ExtractArchive(path, ctx.Log); err!=nil {
			return nil, nil, nil, err
		}
		extracted=true
	}

	sc, err:=Discover(dir)
	if err!=nil { return nil, nil, nil, err }
	sc.OutDir=outDir
	fmt.Fprintf(ctx.Log, "Processing scene %s (Landsat 8: %v, Collection 1: %v)\n",
		sc.ID, sc.Landsat8, sc.Collection)

	bands, err:=sc.LoadBands(cfg, ctx.Log)
	if err!=nil { return nil, nil, nil, err }

	res, err:=cloudmask.Run(bands, cfg, ctx)
	if err!=nil { return nil, nil, nil, err }

	files, err:=sc.WriteOutputs(res, bands.Blue, ctx.Log)
	if err!=nil { return sc, res, nil, err }

	if extracted && !keepInputs {
		sc.Cleanup(ctx.Log)
	}
	return sc, res, files, nil
}
