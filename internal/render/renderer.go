// Package render draws the board as a PNG.
package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"
	"math"
	"strings"

	nchess "github.com/corentings/chess/v2"
	"github.com/park285/cheese-board/internal/engine"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Input is everything drawn on one image.
type Input struct {
	Pieces   []engine.Piece
	Turn     engine.Color
	Selected *engine.Piece
	Moves    []engine.Move // candidates of Selected
	LastMove *engine.Outcome
	Header   string
	Footer   string
}

type Renderer struct {
	squareSize int
}

func New(squareSize int) *Renderer {
	if squareSize <= 0 {
		squareSize = 64
	}
	return &Renderer{squareSize: squareSize}
}

func (r *Renderer) SquareSize() int { return r.squareSize }

var (
	lightSquare      = color.RGBA{233, 207, 163, 255}
	darkSquare       = color.RGBA{187, 136, 96, 255}
	backgroundColor  = color.RGBA{22, 24, 36, 255}
	selectedFill     = color.NRGBA{R: 255, G: 228, B: 120, A: 140}
	lastMoveFill     = color.NRGBA{R: 182, G: 184, B: 190, A: 110}
	advanceDotColor  = color.NRGBA{R: 30, G: 120, B: 60, A: 170}
	captureRingColor = color.NRGBA{R: 200, G: 40, B: 40, A: 190}
	hudPanelColor    = color.NRGBA{R: 28, G: 31, B: 46, A: 250}
	hudTextPrimary   = color.NRGBA{R: 236, G: 239, B: 255, A: 255}
	coordinateText   = color.NRGBA{R: 8, G: 214, B: 120, A: 255}
)

const (
	hudPanelRadius = 8
	hudPanelHeight = 28
	sideMargin     = 24
)

func (r *Renderer) RenderPNG(ctx context.Context, in Input) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	sq := r.squareSize
	boardSize := sq * 8
	topMargin := hudPanelHeight*2 + 16
	bottomMargin := hudPanelHeight + 4
	origin := image.Point{X: sideMargin, Y: topMargin}
	boardRect := image.Rect(origin.X, origin.Y, origin.X+boardSize, origin.Y+boardSize)

	img := image.NewRGBA(image.Rect(0, 0, boardSize+sideMargin*2, boardSize+topMargin+bottomMargin))
	imagedraw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, imagedraw.Src)

	drawSquares(img, sq, origin)
	if in.LastMove != nil {
		drawSquareOverlay(img, in.LastMove.From, sq, origin, lastMoveFill)
		drawSquareOverlay(img, in.LastMove.Move.Dest(), sq, origin, lastMoveFill)
	}
	if in.Selected != nil {
		drawSquareOverlay(img, in.Selected.Position, sq, origin, selectedFill)
	}
	if err := drawPieces(ctx, img, in.Pieces, sq, origin); err != nil {
		return nil, err
	}
	drawMoveMarkers(img, in.Moves, sq, origin)
	drawCoordinates(img, sq, origin)
	drawHUD(img, boardRect, headerText(in), in.Footer)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func headerText(in Input) string {
	if h := strings.TrimSpace(in.Header); h != "" {
		return h
	}
	return string(in.Turn) + " to move"
}

func squareRect(p engine.Position, squareSize int, origin image.Point) image.Rectangle {
	x := origin.X + p.Col*squareSize
	y := origin.Y + p.Row*squareSize
	return image.Rect(x, y, x+squareSize, y+squareSize)
}

func squareCenter(p engine.Position, squareSize int, origin image.Point) image.Point {
	r := squareRect(p, squareSize, origin)
	return image.Point{X: r.Min.X + squareSize/2, Y: r.Min.Y + squareSize/2}
}

func squareColor(row, col int) color.Color {
	if (row+col)%2 == 1 {
		return darkSquare
	}
	return lightSquare
}

func drawSquares(dst imagedraw.Image, squareSize int, origin image.Point) {
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			rect := squareRect(engine.Position{Row: row, Col: col}, squareSize, origin)
			imagedraw.Draw(dst, rect, image.NewUniform(squareColor(row, col)), image.Point{}, imagedraw.Src)
		}
	}
}

func drawPieces(ctx context.Context, dst imagedraw.Image, pieces []engine.Piece, squareSize int, origin image.Point) error {
	for _, p := range pieces {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !engine.InBounds(p.Position.Row, p.Position.Col) {
			continue
		}
		glyph, err := pieceImage(p.Kind, p.Color, squareSize)
		if err != nil {
			return err
		}
		imagedraw.Draw(dst, squareRect(p.Position, squareSize, origin), glyph, image.Point{}, imagedraw.Over)
	}
	return nil
}

func drawSquareOverlay(img *image.RGBA, p engine.Position, squareSize int, origin image.Point, clr color.Color) {
	if !engine.InBounds(p.Row, p.Col) {
		return
	}
	imagedraw.Draw(img, squareRect(p, squareSize, origin), image.NewUniform(clr), image.Point{}, imagedraw.Over)
}

// drawMoveMarkers puts a dot on empty destinations and a ring around capture targets.
func drawMoveMarkers(img *image.RGBA, moves []engine.Move, squareSize int, origin image.Point) {
	for _, mv := range moves {
		center := squareCenter(mv.Dest(), squareSize, origin)
		switch mv.Kind() {
		case engine.MoveCapture:
			outer := squareSize * 46 / 100
			drawRing(img, center, outer, outer-max(3, squareSize/12), captureRingColor)
		default:
			drawDisc(img, center, squareSize/7, advanceDotColor)
		}
	}
}

func drawCoordinates(dst imagedraw.Image, squareSize int, origin image.Point) {
	face := basicfont.Face7x13
	drawer := &font.Drawer{Dst: dst, Face: face, Src: image.NewUniform(coordinateText)}
	ascent := face.Metrics().Ascent.Ceil()
	boardEnd := origin.Y + 8*squareSize
	for i := 0; i < 8; i++ {
		rank := nchess.Rank(7 - i).String()
		rankBaseline := origin.Y + i*squareSize + squareSize/2 + ascent/2
		drawCenteredText(drawer, rank, origin.X-sideMargin/2, rankBaseline)

		file := nchess.File(i).String()
		drawCenteredText(drawer, file, origin.X+i*squareSize+squareSize/2, boardEnd+ascent+2)
	}
}

func drawHUD(img *image.RGBA, boardRect image.Rectangle, header, footer string) {
	drawer := &font.Drawer{Dst: img, Face: basicfont.Face7x13}

	headerRect := image.Rect(boardRect.Min.X, 8, boardRect.Max.X, 8+hudPanelHeight)
	drawRoundedPanel(img, headerRect, hudPanelRadius, hudPanelColor)
	drawCenteredString(drawer, headerRect, truncateWithEllipsis(drawer.Face, header, headerRect.Dx()-16), hudTextPrimary)

	if strings.TrimSpace(footer) == "" {
		return
	}
	footerRect := image.Rect(boardRect.Min.X, headerRect.Max.Y+4, boardRect.Max.X, headerRect.Max.Y+4+hudPanelHeight)
	drawRoundedPanel(img, footerRect, hudPanelRadius, hudPanelColor)
	drawCenteredString(drawer, footerRect, truncateWithEllipsis(drawer.Face, footer, footerRect.Dx()-16), hudTextPrimary)
}

func truncateWithEllipsis(face font.Face, text string, maxWidth int) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || maxWidth <= 0 || face == nil {
		return trimmed
	}
	drawer := font.Drawer{Face: face}
	if drawer.MeasureString(trimmed).Round() <= maxWidth {
		return trimmed
	}
	const ellipsis = "..."
	if drawer.MeasureString(ellipsis).Round() > maxWidth {
		return ""
	}
	runes := []rune(trimmed)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + ellipsis
		if drawer.MeasureString(candidate).Round() <= maxWidth {
			return candidate
		}
	}
	return ellipsis
}

func drawRoundedPanel(img *image.RGBA, rect image.Rectangle, radius int, clr color.Color) {
	if rect.Empty() {
		return
	}
	radius = min(max(radius, 0), rect.Dx()/2, rect.Dy()/2)
	fill := image.NewUniform(clr)
	if radius == 0 {
		imagedraw.Draw(img, rect, fill, image.Point{}, imagedraw.Over)
		return
	}
	imagedraw.Draw(img, image.Rect(rect.Min.X+radius, rect.Min.Y, rect.Max.X-radius, rect.Max.Y), fill, image.Point{}, imagedraw.Over)
	imagedraw.Draw(img, image.Rect(rect.Min.X, rect.Min.Y+radius, rect.Min.X+radius, rect.Max.Y-radius), fill, image.Point{}, imagedraw.Over)
	imagedraw.Draw(img, image.Rect(rect.Max.X-radius, rect.Min.Y+radius, rect.Max.X, rect.Max.Y-radius), fill, image.Point{}, imagedraw.Over)

	corners := []image.Point{
		{rect.Min.X + radius, rect.Min.Y + radius},
		{rect.Max.X - radius - 1, rect.Min.Y + radius},
		{rect.Min.X + radius, rect.Max.Y - radius - 1},
		{rect.Max.X - radius - 1, rect.Max.Y - radius - 1},
	}
	for _, c := range corners {
		drawQuarterDisc(img, c, radius, rect, clr)
	}
}

// drawQuarterDisc fills the part of a disc that lies in a panel corner
// not already covered by the panel's rectangles.
func drawQuarterDisc(img *image.RGBA, center image.Point, radius int, panel image.Rectangle, clr color.Color) {
	inner := image.Rect(panel.Min.X+radius, panel.Min.Y+radius, panel.Max.X-radius, panel.Max.Y-radius)
	rr := radius * radius
	for y := -radius; y <= radius; y++ {
		for x := -radius; x <= radius; x++ {
			p := image.Point{X: center.X + x, Y: center.Y + y}
			if x*x+y*y > rr || !p.In(panel) {
				continue
			}
			if p.X >= inner.Min.X && p.X < inner.Max.X || p.Y >= inner.Min.Y && p.Y < inner.Max.Y {
				continue
			}
			blendPixel(img, p.X, p.Y, clr)
		}
	}
}

func drawCenteredString(drawer *font.Drawer, rect image.Rectangle, text string, clr color.Color) {
	if text == "" {
		return
	}
	metrics := drawer.Face.Metrics()
	width := drawer.MeasureString(text).Round()
	x := max(rect.Min.X+(rect.Dx()-width)/2, rect.Min.X)
	baseline := rect.Min.Y + (rect.Dy()+metrics.Ascent.Ceil()-metrics.Descent.Ceil())/2
	drawer.Src = image.NewUniform(clr)
	drawer.Dot = fixed.P(x, baseline)
	drawer.DrawString(text)
}

func drawCenteredText(drawer *font.Drawer, text string, centerX, baseline int) {
	width := drawer.MeasureString(text).Round()
	drawer.Dot = fixed.P(centerX-width/2, baseline)
	drawer.DrawString(text)
}

func drawDisc(img *image.RGBA, center image.Point, radius int, clr color.Color) {
	drawRing(img, center, radius, -1, clr)
}

// drawRing fills pixels whose distance from center is in (inner, outer].
func drawRing(img *image.RGBA, center image.Point, outer, inner int, clr color.Color) {
	if outer <= 0 {
		blendPixel(img, center.X, center.Y, clr)
		return
	}
	oo := float64(outer * outer)
	ii := math.Inf(-1)
	if inner >= 0 {
		ii = float64(inner * inner)
	}
	for y := -outer; y <= outer; y++ {
		for x := -outer; x <= outer; x++ {
			d := float64(x*x + y*y)
			if d > oo || d <= ii {
				continue
			}
			blendPixel(img, center.X+x, center.Y+y, clr)
		}
	}
}

func blendPixel(img *image.RGBA, x, y int, clr color.Color) {
	if !(image.Point{X: x, Y: y}).In(img.Bounds()) {
		return
	}
	sr, sg, sb, sa := clr.RGBA()
	if sa == 0 {
		return
	}
	dst := img.RGBAAt(x, y)
	inv := 65535 - sa
	// Premultiplied "over".
	img.SetRGBA(x, y, color.RGBA{
		R: uint8((sr + uint32(dst.R)*0x101*inv/65535) >> 8),
		G: uint8((sg + uint32(dst.G)*0x101*inv/65535) >> 8),
		B: uint8((sb + uint32(dst.B)*0x101*inv/65535) >> 8),
		A: uint8((sa + uint32(dst.A)*0x101*inv/65535) >> 8),
	})
}
