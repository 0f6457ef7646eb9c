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
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/landsat-tools/cfdiag/internal/cloudmask"
	"github.com/landsat-tools/cfdiag/internal/logtee"
	"github.com/landsat-tools/cfdiag/internal/raster"
	"github.com/landsat-tools/cfdiag/internal/render"
	"github.com/landsat-tools/cfdiag/internal/rest"
	"github.com/landsat-tools/cfdiag/internal/scene"
	"github.com/landsat-tools/cfdiag/internal/stats"
)

const version = "0.1.0"

var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to `file`")
var memprofile = flag.String("memprofile", "", "write memory profile to `file`")

var out     = flag.String("out", "", "write output rasters to `directory` instead of next to the inputs")
var log     = flag.String("log", "", "save log output to `file` in addition to stdout")
var preview = flag.Bool("preview", false, "save a PNG preview of the confidence raster next to the outputs")
var hist    = flag.Bool("hist", false, "save PNG histograms of the probability surfaces next to the outputs")
var tiff16  = flag.Bool("tiff16", false, "save the probability surfaces as 16-bit grayscale TIFF quick looks")
var keep    = flag.Bool("keep", false, "keep extracted band files after processing an archive")

var fill       = flag.Float64("fill", -9999, "no-data sentinel value in the input bands")
var saturation = flag.Float64("saturation", 20000, "DN marking a saturated visible-band pixel")
var cloudProb  = flag.Float64("cloudprob", 22.5, "base cloud probability cutoff in percent, added to the clear-sky percentile")
var tBuffer    = flag.Float64("tbuffer", 400, "buffer around the clear-sky thermal percentiles, Celsius*100")
var confHigh   = flag.Float64("confhigh", 3500, "cold-pixel offset for unconditional high confidence, Celsius*100")
var confMed    = flag.Float64("confmed", 10, "cutoff relaxation for medium confidence, percent")

var synthWidth  = flag.Int64("width", 512, "width of synthetic scenes in pixels")
var synthHeight = flag.Int64("height", 512, "height of synthetic scenes in pixels")
var synthCover  = flag.Float64("cover", 0.3, "approximate cloud cover fraction of synthetic scenes")

func config() cloudmask.Config {
	return cloudmask.Config{
		FillValue:          float32(*fill),
		SaturationValue:    float32(*saturation),
		CloudProbThreshold: float32(*cloudProb),
		ThermBuffer:        float32(*tBuffer),
		HighConfOffset:     float32(*confHigh),
		MediumConfOffset:   float32(*confMed),
	}
}

func main() {
	start:=time.Now()
	flag.Usage=func(){
		fmt.Printf(`cfdiag Copyright (c) 2024 the cfdiag authors
This program comes with ABSOLUTELY NO WARRANTY.
This is free software, and you are welcome to redistribute it under certain conditions.
Refer to https://www.gnu.org/licenses/gpl-3.0.en.html for details.

Usage: %s [-flag value] (diag|synth|serve|legal|version) (scene0.tar.gz ... scenen.tar.gz)

Commands:
  diag    Compute cloud diagnostic and confidence rasters for the given
          Landsat scene archives or extracted scene directories
  synth   Write a synthetic test scene into the given directory
  serve   Start REST API server on port 8080
  legal   Show license and attribution information
  version Show version information

Flags:
`, os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *log!="" {
		if err:=logtee.AlsoToFile(*log); err!=nil {
			logtee.Fatalf("Unable to open logfile '%s'\n", *log)
		}
	}
	logWriter:=logtee.Writer()

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			logtee.Fatalf("Could not create CPU profile: %s\n", err.Error())
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			logtee.Fatalf("Could not start CPU profile: %s\n", err.Error())
		}
		defer pprof.StopCPUProfile()
	}

	args:=flag.Args()
	if len(args)<1 {
		flag.Usage()
		return
	}

	var err error
	switch args[0] {
	case "diag":
		if len(args)<2 {
			logtee.Fatalf("diag requires at least one scene archive or directory\n")
		}
		for _,path:=range args[1:] {
			if err=cmdDiag(path); err!=nil { break }
		}

	case "synth":
		if len(args)!=2 {
			logtee.Fatalf("synth requires exactly one destination directory\n")
		}
		err=cmdSynth(args[1], int32(*synthWidth), int32(*synthHeight), float32(*synthCover), logWriter)

	case "serve":
		rest.Serve()

	case "legal":
		cmdLegal()

	case "version":
		logtee.Printf("Version %s\n", version)

	case "help", "?":
		flag.Usage()

	default:
		logtee.Printf("Unknown command '%s'\n\n", args[0])
		flag.Usage()
		return
	}

	elapsed:=time.Now().Sub(start)
	logtee.Printf("\nDone after %v\n", elapsed)

	if *memprofile != "" {
		f, err := os.Create(*memprofile)
		if err != nil {
			logtee.Fatalf("Could not create memory profile: %s\n", err.Error())
		}
		defer f.Close()
		runtime.GC() // get up-to-date statistics
		if err := pprof.Lookup("allocs").WriteTo(f, 0); err != nil {
			logtee.Fatalf("Could not write allocation profile: %s\n", err.Error())
		}
	}

	if err!=nil {
		logtee.Printf("Error: %s\n", err.Error())
		logtee.Sync()
		os.Exit(-1)
	}
	logtee.Sync()
}

// Runs the diagnostic chain on one scene and writes the optional quick looks
func cmdDiag(path string) error {
	logWriter:=logtee.Writer()
	ctx:=cloudmask.NewContext(logWriter)
	cfg:=config()

	sc, res, _, err:=scene.Process(path, *out, cfg, ctx, *keep)
	if err!=nil { return err }
	outDir:=sc.Dir
	if *out!="" { outDir=*out }

	if *preview {
		fn:=filepath.Join(outDir, sc.ID+"_conf.png")
		logtee.Printf("Writing confidence preview to %s\n", fn)
		if err:=render.WriteConfidencePNG(fn, res.Conf, res.Width, res.Height); err!=nil {
			return err
		}
	}
	if *hist {
		land, water:=validProbs(res)
		for _,h:=range []struct{
			suffix, title string
			values        []float32
			cutoff        float32
		}{
			{"_prob_hist.png", "land cloud probability", land, res.Thresholds.LandProbCutoff},
			{"_wprob_hist.png", "water cloud probability", water, res.Thresholds.WaterProbCutoff},
		} {
			fn:=filepath.Join(outDir, sc.ID+h.suffix)
			logtee.Printf("Writing histogram to %s\n", fn)
			if err:=render.WriteProbHistogram(fn, h.title, h.values, h.cutoff); err!=nil {
				return err
			}
		}
	}

	if *tiff16 {
		for _,q:=range []struct{
			suffix string
			values []float32
		}{
			{"_prob.tif", res.LandProb},
			{"_wprob.tif", res.WaterProb},
		} {
			fn:=filepath.Join(outDir, sc.ID+q.suffix)
			logtee.Printf("Writing quick look to %s\n", fn)
			if err:=raster.WriteMonoTIFF16ToFile(fn, q.values, res.Width, res.Height, 0, 100); err!=nil {
				return err
			}
		}
	}

	summarize(res)
	return nil
}

// Restricts the probability surfaces to valid pixels; fill carries no
// confidence code, so the confidence raster doubles as the valid mask
func validProbs(res *cloudmask.Result) (land, water []float32) {
	land =make([]float32, 0, len(res.LandProb))
	water=make([]float32, 0, len(res.WaterProb))
	for i,c:=range res.Conf {
		if c==cloudmask.ConfFill { continue }
		land =append(land,  res.LandProb[i])
		water=append(water, res.WaterProb[i])
	}
	return land, water
}

func summarize(res *cloudmask.Result) {
	land, water:=validProbs(res)
	if len(land)>0 {
		logtee.Printf("Land probability  %v\n", stats.CalcSummary(land))
		logtee.Printf("Water probability %v\n", stats.CalcSummary(water))
	}
	logtee.Printf("Clear fraction %.2f%%\n", res.ClearFraction*100)
	for _,w:=range res.Warnings {
		logtee.Printf("Warning: %s\n", w)
	}
}
