package render

import (
	"bytes"
	"fmt"
	"os/exec"

	"github.com/gejjech/flowviz/pkg/errors"
)

// ToPDF converts diagram SVG bytes to PDF using rsvg-convert.
// Requires librsvg (apt install librsvg2-bin, brew install librsvg).
func ToPDF(svg []byte) ([]byte, error) {
	return rsvgConvert(svg, "pdf")
}

// ToPNG converts diagram SVG bytes to PNG at the given scale factor.
// Scale 2.0 doubles the raster resolution.
// Requires librsvg (apt install librsvg2-bin, brew install librsvg).
func ToPNG(svg []byte, scale float64) ([]byte, error) {
	return rsvgConvert(svg, "png", "-z", fmt.Sprintf("%.2f", scale))
}

// rsvgConvert shells out to rsvg-convert. A missing binary is an
// UNSUPPORTED error; the pipeline recovers by switching to the fallback
// renderer, which rasterizes without librsvg.
func rsvgConvert(svg []byte, format string, extraArgs ...string) ([]byte, error) {
	if _, err := exec.LookPath("rsvg-convert"); err != nil {
		return nil, errors.New(errors.ErrCodeUnsupported,
			"%s diagram export requires librsvg (apt install librsvg2-bin, brew install librsvg)", format)
	}

	args := append([]string{"-f", format}, extraArgs...)
	cmd := exec.Command("rsvg-convert", args...)
	cmd.Stdin = bytes.NewReader(svg)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "rsvg-convert %s: %s", format, errBuf.String())
	}
	return out.Bytes(), nil
}
