package render

import (
	"bytes"
	"io"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

var disableConfigDir sync.Once

// Info describes a rendered PDF.
type Info struct {
	Pages int
	// Width and Height of the first page in points.
	Width  float64
	Height float64
}

// PageCount returns the number of pages of a PDF.
func PageCount(data []byte) (int, error) {
	disableConfigDir.Do(api.DisableConfigDir)
	return api.PageCount(bytes.NewReader(data), nil)
}

func inspect(rs io.ReadSeeker) (Info, error) {
	disableConfigDir.Do(api.DisableConfigDir)

	pages, err := api.PageCount(rs, nil)
	if err != nil {
		return Info{}, err
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return Info{}, err
	}
	dims, err := api.PageDims(rs, nil)
	if err != nil {
		return Info{}, err
	}

	info := Info{Pages: pages}
	if len(dims) > 0 {
		info.Width = dims[0].Width
		info.Height = dims[0].Height
	}
	return info, nil
}
