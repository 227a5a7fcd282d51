package render

import (
	"bytes"
	"embed"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/park285/chess-area/internal/chess"
)

//go:embed assets/pieces/*.svg
var pieceFiles embed.FS

type pieceCacheKey struct {
	piece chess.Piece
	size  int
}

var (
	pieceCache   = map[pieceCacheKey]image.Image{}
	pieceCacheMu sync.RWMutex
)

var pieceColors = map[chess.Color][2]string{
	chess.White: {"#f8f8f8", "#1e1e1e"},
	chess.Black: {"#2b2b2b", "#0a0a0a"},
}

func renderPieceImage(piece chess.Piece, size int) (image.Image, error) {
	key := pieceCacheKey{piece: piece, size: size}

	pieceCacheMu.RLock()
	if img, ok := pieceCache[key]; ok {
		pieceCacheMu.RUnlock()
		return img, nil
	}
	pieceCacheMu.RUnlock()

	name := pieceAssetName(piece.Type)
	data, err := pieceFiles.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read piece asset %s: %w", name, err)
	}

	icon, err := oksvg.ReadIconStream(bytes.NewReader(colorize(data, piece.Color)))
	if err != nil {
		return nil, fmt.Errorf("parse piece svg: %w", err)
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

func pieceAssetName(t chess.PieceType) string {
	return fmt.Sprintf("assets/pieces/%s.svg", t)
}

// colorize fills the {fill} and {stroke} placeholders of a piece asset.
func colorize(svg []byte, c chess.Color) []byte {
	pal, ok := pieceColors[c]
	if !ok {
		pal = pieceColors[chess.White]
	}
	out := bytes.ReplaceAll(svg, []byte("{fill}"), []byte(pal[0]))
	return bytes.ReplaceAll(out, []byte("{stroke}"), []byte(pal[1]))
}
