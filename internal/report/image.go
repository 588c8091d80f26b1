package report

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"unicode"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	cardPadding   = 24
	lineHeight    = 17
	maxLineRunes  = 72
	imageHeading  = "Informe Gerado"
	maxImageLines = 400
)

var (
	ErrEmptyReport = errors.New("empty report")

	colorBackground = color.RGBA{R: 0xf3, G: 0xf4, B: 0xf6, A: 0xff}
	colorCard       = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	colorBorder     = color.RGBA{R: 0xd1, G: 0xd5, B: 0xdb, A: 0xff}
	colorHeading    = color.RGBA{R: 0x11, G: 0x18, B: 0x27, A: 0xff}
	colorBody       = color.RGBA{R: 0x37, G: 0x41, B: 0x51, A: 0xff}
)

// asciiReplacements covers the punctuation the report uses that has no
// decomposition into ASCII.
var asciiReplacements = map[rune]rune{
	'–': '-', '—': '-', '•': '*', '“': '"', '”': '"', '‘': '\'', '’': '\'', '\u00a0': ' ',
}

// FoldASCII strips accents and maps the remaining non-ASCII runes so the
// text can be drawn with the bitmap face, e.g. "Médio – •" -> "Medio - *".
func FoldASCII(s string) string {
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		runes.Map(func(r rune) rune {
			if rep, ok := asciiReplacements[r]; ok {
				return rep
			}
			if r == '\t' {
				return ' '
			}
			if r > unicode.MaxASCII {
				return '?'
			}
			return r
		}),
		norm.NFC,
	)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// wrapLines folds the text and breaks lines longer than width at spaces,
// hard-splitting words that do not fit.
func wrapLines(text string, width int) []string {
	var out []string
	for _, line := range strings.Split(FoldASCII(text), "\n") {
		line = strings.TrimRight(line, " \r")
		for len(line) > width {
			cut := strings.LastIndex(line[:width+1], " ")
			if cut <= 0 {
				cut = width
			}
			out = append(out, line[:cut])
			line = strings.TrimLeft(line[cut:], " ")
		}
		out = append(out, line)
	}
	if len(out) > maxImageLines {
		out = append(out[:maxImageLines], "...")
	}
	return out
}

// Image renders the report text on a white card and encodes it as PNG.
func Image(w io.Writer, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyReport
	}
	lines := wrapLines(text, maxLineRunes)
	face := basicfont.Face7x13

	cols := len(imageHeading)
	for _, l := range lines {
		if len(l) > cols {
			cols = len(l)
		}
	}
	advance := face.Advance
	cardW := cols*advance + 2*cardPadding
	cardH := (len(lines)+2)*lineHeight + 2*cardPadding
	width := cardW + 2*cardPadding
	height := cardH + 2*cardPadding

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(colorBackground), image.Point{}, draw.Src)

	card := image.Rect(cardPadding, cardPadding, cardPadding+cardW, cardPadding+cardH)
	draw.Draw(img, card.Inset(-1), image.NewUniform(colorBorder), image.Point{}, draw.Src)
	draw.Draw(img, card, image.NewUniform(colorCard), image.Point{}, draw.Src)

	x := card.Min.X + cardPadding
	y := card.Min.Y + cardPadding + face.Ascent

	heading := &font.Drawer{Dst: img, Src: image.NewUniform(colorHeading), Face: face}
	// drawn twice, one pixel apart, for a bold heading
	for _, dx := range []int{0, 1} {
		heading.Dot = fixed.Point26_6{X: fixed.I(x + dx), Y: fixed.I(y)}
		heading.DrawString(imageHeading)
	}
	y += 2 * lineHeight

	body := &font.Drawer{Dst: img, Src: image.NewUniform(colorBody), Face: face}
	for _, l := range lines {
		body.Dot = fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)}
		body.DrawString(l)
		y += lineHeight
	}

	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode report image: %w", err)
	}
	return nil
}

// ImagePNG is Image into a byte slice.
func ImagePNG(text string) ([]byte, error) {
	var buf bytes.Buffer
	if err := Image(&buf, text); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
