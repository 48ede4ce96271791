package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/park285/cheese-board/internal/engine"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// Glyph outlines on a 45x45 grid.
var glyphs = map[engine.Kind]string{
	engine.Pawn: `<circle cx="22.5" cy="12" r="5"/>
<path d="M15 35 L18 20 H27 L30 35 Z"/>`,
	engine.Rook: `<path d="M11 14 V9 H15 V11 H20 V9 H25 V11 H30 V9 H34 V14 Z"/>
<path d="M14 14 H31 L29 33 H16 Z"/>`,
	engine.Knight: `<path d="M14 35 L16 24 L12 20 L16 12 L22 9 L30 11 L33 20 L30 35 Z"/>`,
	engine.Bishop: `<circle cx="22.5" cy="7" r="2.5"/>
<path d="M22.5 9 L28 18 L26 33 H19 L17 18 Z"/>`,
	engine.Queen: `<path d="M9 33 L11 14 L17 26 L22.5 11 L28 26 L34 14 L36 33 Z"/>
<circle cx="11" cy="12" r="2"/><circle cx="22.5" cy="9" r="2"/><circle cx="34" cy="12" r="2"/>`,
	engine.King: `<path d="M21 4 H24 V7 H27 V10 H24 V14 H21 V10 H18 V7 H21 Z"/>
<path d="M12 33 L14 17 H31 L33 33 Z"/>`,
}

const pedestal = `<path d="M9 40 H36 V35 H9 Z"/>`

func glyphSVG(kind engine.Kind, c engine.Color) ([]byte, error) {
	body, ok := glyphs[kind]
	if !ok {
		return nil, fmt.Errorf("no glyph for %q", kind)
	}
	fill, stroke := "#f8f6f0", "#1e1e1e"
	if c == engine.Black {
		fill, stroke = "#2b2b2b", "#e6e6e6"
	}
	var b bytes.Buffer
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 45 45" width="45" height="45">`)
	fmt.Fprintf(&b, `<g fill="%s" stroke="%s" stroke-width="1.5">`, fill, stroke)
	b.WriteString(body)
	b.WriteString(pedestal)
	b.WriteString(`</g></svg>`)
	return b.Bytes(), nil
}

type pieceCacheKey struct {
	kind  engine.Kind
	color engine.Color
	size  int
}

var (
	pieceCache   = map[pieceCacheKey]image.Image{}
	pieceCacheMu sync.RWMutex
)

func pieceImage(kind engine.Kind, c engine.Color, size int) (image.Image, error) {
	key := pieceCacheKey{kind: kind, color: c, size: size}

	pieceCacheMu.RLock()
	if img, ok := pieceCache[key]; ok {
		pieceCacheMu.RUnlock()
		return img, nil
	}
	pieceCacheMu.RUnlock()

	data, err := glyphSVG(kind, c)
	if err != nil {
		return nil, err
	}
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse %s %s glyph: %w", c, kind, err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Transparent), image.Point{}, draw.Src)
	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)

	pieceCacheMu.Lock()
	pieceCache[key] = img
	pieceCacheMu.Unlock()

	return img, nil
}
