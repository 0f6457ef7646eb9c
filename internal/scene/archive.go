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
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ExtractArchive unpacks a scene archive (.tar.gz, .tgz or plain .tar) into
// the directory the archive lives in, mirroring where downstream tooling
// expects the bands, and returns that directory. Entries escaping the
// destination are rejected; non-regular entries are skipped
func ExtractArchive(archivePath string, logWriter io.Writer) (dir string, err error) {
	f, err:=os.Open(archivePath)
	if err!=nil { return "", err }
	defer f.Close()

	var r io.Reader=f
	lower:=strings.ToLower(archivePath)
	if strings.HasSuffix(lower, ".gz") || strings.HasSuffix(lower, ".tgz") {
		gz, err:=gzip.NewReader(f)
		if err!=nil { return "", fmt.Errorf("%s: %s", archivePath, err.Error()) }
		defer gz.Close()
		r=gz
	}

	dir=filepath.Dir(archivePath)
	fmt.Fprintf(logWriter, "Extracting files...\n")

	tr:=tar.NewReader(r)
	for {
		hdr, err:=tr.Next()
		if err==io.EOF { break }
		if err!=nil { return "", fmt.Errorf("%s: %s", archivePath, err.Error()) }

		dest, err:=sanitizePath(dir, hdr.Name)
		if err!=nil { return "", err }

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err:=os.MkdirAll(dest, 0755); err!=nil { return "", err }
		case tar.TypeReg:
			if err:=extractFile(dest, tr, hdr.Mode); err!=nil {
				return "", fmt.Errorf("%s: %s", hdr.Name, err.Error())
			}
		default:
			fmt.Fprintf(logWriter, "Skipping non-regular archive entry %s\n", hdr.Name)
		}
	}
	return dir, nil
}

func sanitizePath(dir, name string) (string, error) {
	dest:=filepath.Join(dir, filepath.Clean(name))
	if !strings.HasPrefix(dest, filepath.Clean(dir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry %s escapes destination", name)
	}
	return dest, nil
}

func extractFile(dest string, r io.Reader, mode int64) error {
	if err:=os.MkdirAll(filepath.Dir(dest), 0755); err!=nil { return err }
	f, err:=os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, os.FileMode(mode&0777))
	if err!=nil { return err }
	if _, err:=io.Copy(f, r); err!=nil {
		f.Close()
		return err
	}
	return f.Close()
}
