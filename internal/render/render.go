// Package render draws a board position as a PNG image.
package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/park285/chess-area/internal/chess"
)

const (
	DefaultSquareSize = 64
	minSquareSize     = 16
	maxSquareSize     = 160
)

// Options tune a rendering. The zero value draws a plain board at DefaultSquareSize.
type Options struct {
	SquareSize int
	// LastMove, when set, tints its origin and destination squares.
	LastMove *chess.Move
	// Flip draws the board from black's side.
	Flip bool
}

var (
	lightSquare     = color.RGBA{233, 207, 163, 255}
	darkSquare      = color.RGBA{187, 136, 96, 255}
	backgroundColor = color.RGBA{38, 36, 33, 255}
	lastMoveFill    = color.NRGBA{R: 255, G: 228, B: 120, A: 140}
	coordinateColor = color.NRGBA{R: 220, G: 220, B: 220, A: 255}
)

// RenderPNG draws b with file and rank labels in the margin and returns the encoded PNG.
func RenderPNG(ctx context.Context, b chess.Board, opts Options) ([]byte, error) {
	size := opts.SquareSize
	switch {
	case size == 0:
		size = DefaultSquareSize
	case size < minSquareSize || size > maxSquareSize:
		return nil, fmt.Errorf("square size %d out of range [%d, %d]", size, minSquareSize, maxSquareSize)
	}

	margin := size / 2
	boardSize := size * 8
	origin := image.Point{X: margin, Y: margin}
	img := image.NewRGBA(image.Rect(0, 0, boardSize+margin*2, boardSize+margin*2))
	imagedraw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, imagedraw.Src)

	drawSquares(img, size, origin)
	if opts.LastMove != nil {
		drawSquareOverlay(img, opts.LastMove.From, size, origin, opts.Flip, lastMoveFill)
		drawSquareOverlay(img, opts.LastMove.To, size, origin, opts.Flip, lastMoveFill)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if err := drawPieces(img, b, size, origin, opts.Flip); err != nil {
		return nil, err
	}
	drawCoordinates(img, size, origin, opts.Flip)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// cellOrigin returns the top-left pixel of sq; rank 8 is on top unless flipped.
func cellOrigin(sq chess.Square, size int, origin image.Point, flip bool) image.Point {
	row, col := 7-sq.Row, sq.Col
	if flip {
		row, col = sq.Row, 7-sq.Col
	}
	return image.Point{X: origin.X + col*size, Y: origin.Y + row*size}
}

func squareColor(sq chess.Square) color.Color {
	if (sq.Row+sq.Col)%2 == 0 {
		return darkSquare
	}
	return lightSquare
}

func drawSquares(dst imagedraw.Image, size int, origin image.Point) {
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			sq := chess.Sq(row, col)
			// colors are symmetric under flipping both axes
			p := cellOrigin(sq, size, origin, false)
			imagedraw.Draw(dst, image.Rect(p.X, p.Y, p.X+size, p.Y+size), image.NewUniform(squareColor(sq)), image.Point{}, imagedraw.Src)
		}
	}
}

func drawSquareOverlay(dst imagedraw.Image, sq chess.Square, size int, origin image.Point, flip bool, clr color.Color) {
	if !sq.Valid() {
		return
	}
	p := cellOrigin(sq, size, origin, flip)
	imagedraw.Draw(dst, image.Rect(p.X, p.Y, p.X+size, p.Y+size), image.NewUniform(clr), image.Point{}, imagedraw.Over)
}

func drawPieces(dst imagedraw.Image, b chess.Board, size int, origin image.Point, flip bool) error {
	for _, pp := range b.Pieces() {
		img, err := renderPieceImage(pp.Piece, size)
		if err != nil {
			return err
		}
		p := cellOrigin(pp.Square, size, origin, flip)
		imagedraw.Draw(dst, image.Rect(p.X, p.Y, p.X+size, p.Y+size), img, image.Point{}, imagedraw.Over)
	}
	return nil
}

func drawCoordinates(dst imagedraw.Image, size int, origin image.Point, flip bool) {
	face := basicfont.Face7x13
	drawer := &font.Drawer{Dst: dst, Src: image.NewUniform(coordinateColor), Face: face}
	ascent := face.Metrics().Ascent.Ceil()
	margin := origin.X

	for i := 0; i < 8; i++ {
		p := cellOrigin(chess.Sq(i, i), size, origin, flip)
		rank := string(rune('1' + i))
		file := string(rune('a' + i))
		drawCenteredText(drawer, rank, margin/2, p.Y+size/2+ascent/2)
		drawCenteredText(drawer, file, p.X+size/2, origin.Y+8*size+margin/2+ascent/2)
	}
}

func drawCenteredText(drawer *font.Drawer, text string, centerX, baseline int) {
	width := drawer.MeasureString(text).Round()
	drawer.Dot = fixed.P(centerX-width/2, baseline)
	drawer.DrawString(text)
}
