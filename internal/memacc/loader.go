package memacc

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// LoadStatus classifies the outcome of loading a program image.
type LoadStatus int

const (
	LoadOK LoadStatus = iota
	LoadNotFound
	LoadTooLarge
	LoadReadError
)

func (s LoadStatus) String() string {
	switch s {
	case LoadOK:
		return "ok"
	case LoadNotFound:
		return "not found"
	case LoadTooLarge:
		return "too large"
	case LoadReadError:
		return "read error"
	}
	return fmt.Sprintf("LoadStatus(%d)", int(s))
}

// LoadResult reports what a load did. Size is the image length in bytes;
// for LoadTooLarge it is the size that was rejected.
type LoadResult struct {
	Status LoadStatus
	Path   string
	Size   int64
	Err    error
}

// OK reports a successful load.
func (r LoadResult) OK() bool { return r.Status == LoadOK }

// ImageExt is tried when a bare program name does not exist.
const ImageExt = ".bin"

// FindImage resolves name to an existing file, trying name itself and then
// name with ImageExt appended.
func FindImage(name string) (string, bool) {
	candidates := []string{name}
	if filepath.Ext(name) != ImageExt {
		candidates = append(candidates, name+ImageExt)
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, true
		}
	}
	return name, false
}

// LoadFile copies the file at path into img starting at address 0.
// Images larger than img are rejected and img is left untouched.
func LoadFile(path string, img *Image) LoadResult {
	res := LoadResult{Path: path}

	info, err := os.Stat(path)
	if err != nil {
		res.Err = err
		if errors.Is(err, fs.ErrNotExist) {
			res.Status = LoadNotFound
		} else {
			res.Status = LoadReadError
		}
		return res
	}
	if info.IsDir() {
		res.Status = LoadReadError
		res.Err = fmt.Errorf("%s is a directory", path)
		return res
	}
	if info.Size() > int64(img.Len()) {
		res.Status = LoadTooLarge
		res.Size = info.Size()
		res.Err = fmt.Errorf("image is %d bytes, memory is %d bytes", info.Size(), img.Len())
		return res
	}

	f, err := os.Open(path)
	if err != nil {
		res.Status = LoadReadError
		res.Err = err
		return res
	}
	defer f.Close()

	inner := LoadReader(f, img)
	inner.Path = path
	return inner
}

// LoadReader copies everything from r into img starting at address 0.
func LoadReader(r io.Reader, img *Image) LoadResult {
	// Read one byte past the image so oversize input is detected before
	// anything is copied.
	buf, err := io.ReadAll(io.LimitReader(r, int64(img.Len())+1))
	if err != nil {
		return LoadResult{Status: LoadReadError, Size: int64(len(buf)), Err: err}
	}
	if len(buf) > img.Len() {
		return LoadResult{
			Status: LoadTooLarge,
			Size:   int64(len(buf)),
			Err:    fmt.Errorf("image exceeds %d bytes of memory", img.Len()),
		}
	}
	copy(img.Bytes(), buf)
	return LoadResult{Status: LoadOK, Size: int64(len(buf))}
}
