// Package fonts resolves typefaces for the raster renderer.
//
// A system TrueType font is located with go-findfont and parsed with
// freetype; when no candidate is found the built-in fixed 7x13 face is
// used instead. Font resolution never fails - a missing font degrades the
// output, it does not abort a render.
package fonts

import (
	"os"

	"github.com/flopp/go-findfont"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// Candidate font files, tried in order. DejaVu ships with most Linux
// distributions; the rest cover macOS and Windows.
var (
	regularCandidates = []string{
		"DejaVuSans.ttf",
		"LiberationSans-Regular.ttf",
		"Arial.ttf",
		"Helvetica.ttc",
	}
	boldCandidates = []string{
		"DejaVuSans-Bold.ttf",
		"LiberationSans-Bold.ttf",
		"Arial Bold.ttf",
		"Arial-Bold.ttf",
	}
)

// Face returns a regular text face at the given point size.
func Face(points float64) font.Face {
	return load(regularCandidates, points)
}

// BoldFace returns a bold face at the given point size, falling back to
// the regular candidates and finally the built-in face.
func BoldFace(points float64) font.Face {
	return load(append(boldCandidates, regularCandidates...), points)
}

// load walks the candidate list and returns the first parseable face.
func load(candidates []string, points float64) font.Face {
	for _, name := range candidates {
		path, err := findfont.Find(name)
		if err != nil {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		f, err := truetype.Parse(data)
		if err != nil {
			continue
		}
		return truetype.NewFace(f, &truetype.Options{Size: points})
	}
	return basicfont.Face7x13
}
