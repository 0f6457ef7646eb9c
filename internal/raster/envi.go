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
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// ENVI data type codes, as written into the .hdr "data type" field
const (
	enviUint8   = 1
	enviInt16   = 2
	enviFloat32 = 4
	enviUint32  = 13
)

// Parsed fields of an ENVI .hdr sidecar file
type enviHeader struct {
	Samples  int32
	Lines    int32
	Bands    int32
	DataType int
	ByteOrder int
	MapInfo  string
	CoordSys string
}

// Replaces the file suffix with .hdr, the ENVI sidecar naming convention
func hdrFileName(imgFileName string) string {
	if i:=strings.LastIndexByte(imgFileName, '.'); i>=0 {
		return imgFileName[:i]+".hdr"
	}
	return imgFileName+".hdr"
}

// Read an ENVI BSQ raster (.img plus .hdr sidecar) into a float32 grid.
// Supports single-band uint8, int16, float32 and uint32 data, byte order 0
func readENVI(fileName string) (g *Grid, err error) {
	hdr, err:=readENVIHeader(hdrFileName(fileName))
	if err!=nil { return nil, err }
	if hdr.Bands!=1 {
		return nil, fmt.Errorf("%s: %d bands, single-band rasters only", fileName, hdr.Bands)
	}
	if hdr.ByteOrder!=0 {
		return nil, fmt.Errorf("%s: byte order %d unsupported, little-endian only", fileName, hdr.ByteOrder)
	}

	raw, err:=os.ReadFile(fileName)
	if err!=nil { return nil, err }

	numPixels:=int(hdr.Samples)*int(hdr.Lines)
	data:=make([]float32, numPixels)
	switch hdr.DataType {
	case enviUint8:
		if len(raw)<numPixels { return nil, fmt.Errorf("%s: truncated, %d bytes for %d pixels", fileName, len(raw), numPixels) }
		for i:=0; i<numPixels; i++ {
			data[i]=float32(raw[i])
		}
	case enviInt16:
		if len(raw)<2*numPixels { return nil, fmt.Errorf("%s: truncated, %d bytes for %d pixels", fileName, len(raw), numPixels) }
		for i:=0; i<numPixels; i++ {
			data[i]=float32(int16(binary.LittleEndian.Uint16(raw[2*i:])))
		}
	case enviFloat32:
		if len(raw)<4*numPixels { return nil, fmt.Errorf("%s: truncated, %d bytes for %d pixels", fileName, len(raw), numPixels) }
		for i:=0; i<numPixels; i++ {
			data[i]=math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
		}
	case enviUint32:
		if len(raw)<4*numPixels { return nil, fmt.Errorf("%s: truncated, %d bytes for %d pixels", fileName, len(raw), numPixels) }
		for i:=0; i<numPixels; i++ {
			data[i]=float32(binary.LittleEndian.Uint32(raw[4*i:]))
		}
	default:
		return nil, fmt.Errorf("%s: ENVI data type %d unsupported", fileName, hdr.DataType)
	}

	g=NewGrid(hdr.Samples, hdr.Lines, data)
	g.FileName=fileName
	g.MapInfo, g.CoordSys=hdr.MapInfo, hdr.CoordSys
	return g, nil
}

// Parse an ENVI header file. Multi-line {...} values are joined before parsing
func readENVIHeader(fileName string) (hdr *enviHeader, err error) {
	f, err:=os.Open(fileName)
	if err!=nil { return nil, err }
	defer f.Close()

	hdr=&enviHeader{Bands: 1}
	scanner:=bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var pending string
	for scanner.Scan() {
		line:=strings.TrimSpace(scanner.Text())
		if pending!="" {
			pending+=" "+line
			if !strings.Contains(line, "}") { continue }
			line, pending=pending, ""
		} else if strings.Contains(line, "{") && !strings.Contains(line, "}") {
			pending=line
			continue
		}

		key, value, found:=strings.Cut(line, "=")
		if !found { continue }
		key=strings.ToLower(strings.TrimSpace(key))
		value=strings.TrimSpace(value)

		switch key {
		case "samples":
			v, err:=strconv.Atoi(value)
			if err!=nil { return nil, fmt.Errorf("%s: bad samples %q", fileName, value) }
			hdr.Samples=int32(v)
		case "lines":
			v, err:=strconv.Atoi(value)
			if err!=nil { return nil, fmt.Errorf("%s: bad lines %q", fileName, value) }
			hdr.Lines=int32(v)
		case "bands":
			v, err:=strconv.Atoi(value)
			if err!=nil { return nil, fmt.Errorf("%s: bad bands %q", fileName, value) }
			hdr.Bands=int32(v)
		case "data type":
			v, err:=strconv.Atoi(value)
			if err!=nil { return nil, fmt.Errorf("%s: bad data type %q", fileName, value) }
			hdr.DataType=v
		case "byte order":
			v, err:=strconv.Atoi(value)
			if err!=nil { return nil, fmt.Errorf("%s: bad byte order %q", fileName, value) }
			hdr.ByteOrder=v
		case "map info":
			hdr.MapInfo=strings.Trim(value, "{} ")
		case "coordinate system string":
			hdr.CoordSys=strings.Trim(value, "{} ")
		}
	}
	if err:=scanner.Err(); err!=nil { return nil, err }
	if hdr.Samples<=0 || hdr.Lines<=0 {
		return nil, fmt.Errorf("%s: missing samples/lines", fileName)
	}
	return hdr, nil
}

// Write an ENVI BSQ raster plus .hdr sidecar
func writeENVI(fileName string, raw []byte, width, height int32, dataType int, mapInfo, coordSys string) error {
	if err:=os.WriteFile(fileName, raw, 0666); err!=nil { return err }

	b:=strings.Builder{}
	b.WriteString("ENVI\n")
	b.WriteString("description = {cfdiag output}\n")
	fmt.Fprintf(&b, "samples = %d\n", width)
	fmt.Fprintf(&b, "lines = %d\n", height)
	b.WriteString("bands = 1\n")
	b.WriteString("header offset = 0\n")
	b.WriteString("file type = ENVI Standard\n")
	fmt.Fprintf(&b, "data type = %d\n", dataType)
	b.WriteString("interleave = bsq\n")
	b.WriteString("byte order = 0\n")
	if mapInfo!="" {
		fmt.Fprintf(&b, "map info = {%s}\n", mapInfo)
	}
	if coordSys!="" {
		fmt.Fprintf(&b, "coordinate system string = {%s}\n", coordSys)
	}
	return os.WriteFile(hdrFileName(fileName), []byte(b.String()), 0666)
}

// Write a uint8 grid (e.g. the confidence codes) as ENVI raster
func WriteENVIUint8(fileName string, data []uint8, width, height int32, mapInfo, coordSys string) error {
	if len(data)!=int(width)*int(height) {
		return fmt.Errorf("%s: %d values for %dx%d pixels", fileName, len(data), width, height)
	}
	return writeENVI(fileName, data, width, height, enviUint8, mapInfo, coordSys)
}

// Write a uint32 grid (e.g. the diagnostic codes) as ENVI raster
func WriteENVIUint32(fileName string, data []uint32, width, height int32, mapInfo, coordSys string) error {
	if len(data)!=int(width)*int(height) {
		return fmt.Errorf("%s: %d values for %dx%d pixels", fileName, len(data), width, height)
	}
	raw:=make([]byte, 4*len(data))
	for i,v:=range data {
		binary.LittleEndian.PutUint32(raw[4*i:], v)
	}
	return writeENVI(fileName, raw, width, height, enviUint32, mapInfo, coordSys)
}

// Write a float32 grid (e.g. the probability surfaces) as ENVI raster
func WriteENVIFloat32(fileName string, data []float32, width, height int32, mapInfo, coordSys string) error {
	if len(data)!=int(width)*int(height) {
		return fmt.Errorf("%s: %d values for %dx%d pixels", fileName, len(data), width, height)
	}
	raw:=make([]byte, 4*len(data))
	for i,v:=range data {
		binary.LittleEndian.PutUint32(raw[4*i:], math.Float32bits(v))
	}
	return writeENVI(fileName, raw, width, height, enviFloat32, mapInfo, coordSys)
}

// Write an int16 grid (e.g. synthetic TOA bands) as ENVI raster
func WriteENVIInt16(fileName string, data []int16, width, height int32, mapInfo, coordSys string) error {
	if len(data)!=int(width)*int(height) {
		return fmt.Errorf("%s: %d values for %dx%d pixels", fileName, len(data), width, height)
	}
	raw:=make([]byte, 2*len(data))
	for i,v:=range data {
		binary.LittleEndian.PutUint16(raw[2*i:], uint16(v))
	}
	return writeENVI(fileName, raw, width, height, enviInt16, mapInfo, coordSys)
}
