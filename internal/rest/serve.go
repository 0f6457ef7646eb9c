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


package rest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/landsat-tools/cfdiag/internal/cloudmask"
	"github.com/landsat-tools/cfdiag/internal/scene"
)

func Serve() {
	r := gin.Default()
	api := r.Group("/api")
	{
		v1 := api.Group("/v1")
		{
			v1.GET ("/ping", getPing)
			v1.POST("/diag", postDiag)
			v1.POST("/stats", postStats)
		}
	}
	r.Run() // listen and serve on 0.0.0.0:8080
}

func getPing(c *gin.Context) {
	c.JSON(200, gin.H{
		"message": "pong",
	})
}

func printArgs(logWriter io.Writer, prefix, suffix string, args interface{}) error {
	m,err:=json.MarshalIndent(args, "", "  ")
	if err!=nil { return err }
	fmt.Fprintf(logWriter, "%s%s%s", prefix, string(m), suffix)
	return nil
}

type postDiagArgs struct {
	Path       string            `json:"path"`       // scene archive or extracted directory on the server
	OutDir     string            `json:"outDir"`     // output directory; empty writes next to the scene
	Config     *cloudmask.Config `json:"config"`     // optional algorithm constant overrides
	KeepInputs bool              `json:"keepInputs"` // keep extracted band files after processing
}

func (args *postDiagArgs) config() cloudmask.Config {
	if args.Config!=nil { return *args.Config }
	return cloudmask.DefaultConfig()
}

// Runs the full diagnostic chain on a server-side scene, streaming the
// processing log as plain text. Result rasters are written next to the scene
func postDiag(c *gin.Context) {
	logWriter := c.Writer
	var args postDiagArgs
	if err:=c.ShouldBind(&args); err!=nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error() } )
		return
	}

	header := logWriter.Header()
	header.Set("Content-Type", "text/plain")
	logWriter.WriteHeader(http.StatusOK)

	if err:=printArgs(logWriter, "Arguments:\n", "\n", args); err!=nil {
		fmt.Fprintf(logWriter, "Error printing arguments: %s\n", err.Error())
		return
	}

	ctx:=cloudmask.NewContext(logWriter)
	_, _, files, err:=scene.Process(args.Path, args.OutDir, args.config(), ctx, args.KeepInputs)
	if err!=nil {
		fmt.Fprintf(logWriter, "error: %s\n", err.Error())
	} else {
		for _,fn:=range files {
			fmt.Fprintf(logWriter, "Wrote %s\n", fn)
		}
	}
	logWriter.(http.Flusher).Flush()
}

// Runs the diagnostic chain but returns the scene statistics as JSON instead
// of streaming the log: thresholds, per-test counts, clear fraction, warnings
func postStats(c *gin.Context) {
	var args postDiagArgs
	if err:=c.ShouldBind(&args); err!=nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error() } )
		return
	}

	ctx:=cloudmask.NewContext(io.Discard)
	sc, res, _, err:=scene.Process(args.Path, args.OutDir, args.config(), ctx, args.KeepInputs)
	if err!=nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error() } )
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"scene":         sc.ID,
		"landsat8":      sc.Landsat8,
		"collection1":   sc.Collection,
		"thresholds":    res.Thresholds,
		"tests":         res.Tests,
		"clearFraction": res.ClearFraction,
		"warnings":      res.Warnings,
	})
}
