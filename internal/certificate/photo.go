package certificate

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"net/http"
	"strings"
	"unicode"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

const (
	// MaxPhotoSide bounds the stored profile photo
	MaxPhotoSide = 1024
	// AvatarSide is the square photo embedded in certificates
	AvatarSide = 300
	// MaxPhotoBytes limits uploads
	MaxPhotoBytes = 5 << 20
	// MaxPhotoPixels limits the decoded size; checked from the header before decoding
	MaxPhotoPixels = 6000 * 6000
)

var (
	ErrUnsupportedImage = errors.New("unsupported image format")
	ErrImageTooLarge    = errors.New("image dimensions too large")
)

type photoCodec struct {
	decode       func(io.Reader) (image.Image, error)
	decodeConfig func(io.Reader) (image.Config, error)
}

var photoCodecs = map[string]photoCodec{
	"jpeg": {jpeg.Decode, jpeg.DecodeConfig},
	"png":  {png.Decode, png.DecodeConfig},
	"webp": {webp.Decode, webp.DecodeConfig},
}

// DecodePhoto sniffs and decodes JPEG, PNG or WebP data
func DecodePhoto(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty file: %w", ErrUnsupportedImage)
	}

	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	ct := http.DetectContentType(head)

	codec, ok := photoCodecs[strings.TrimPrefix(ct, "image/")]
	if !ok {
		return nil, fmt.Errorf("%s: %w", ct, ErrUnsupportedImage)
	}

	cfg, err := codec.decodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s header: %w", ct, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPhotoPixels {
		return nil, fmt.Errorf("%dx%d: %w", cfg.Width, cfg.Height, ErrImageTooLarge)
	}

	img, err := codec.decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", ct, err)
	}
	return img, nil
}

// PrepareProfilePhoto decodes an upload, bounds it to MaxPhotoSide and returns PNG bytes
func PrepareProfilePhoto(data []byte) ([]byte, error) {
	img, err := DecodePhoto(data)
	if err != nil {
		return nil, err
	}
	img = downscale(img, MaxPhotoSide)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode photo: %w", err)
	}
	return buf.Bytes(), nil
}

// Avatar center-crops a stored photo into the square used on certificates
func Avatar(data []byte) (image.Image, error) {
	img, err := DecodePhoto(data)
	if err != nil {
		return nil, err
	}
	return imaging.Fill(img, AvatarSide, AvatarSide, imaging.Center, imaging.Lanczos), nil
}

// downscale keeps the aspect ratio
func downscale(src image.Image, maxSide int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxSide && h <= maxSide {
		return src
	}

	scale := math.Min(float64(maxSide)/float64(w), float64(maxSide)/float64(h))
	nw := max(1, int(math.Round(float64(w)*scale)))
	nh := max(1, int(math.Round(float64(h)*scale)))

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

// Initials returns up to two uppercase letters for the initials disc
func Initials(firstName, lastName, fullName string) string {
	var out []rune
	for _, part := range []string{firstName, lastName} {
		if r, ok := firstLetter(part); ok {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		for _, word := range strings.Fields(fullName) {
			if r, ok := firstLetter(word); ok {
				out = append(out, r)
			}
			if len(out) == 2 {
				break
			}
		}
	}
	if len(out) == 0 {
		return "?"
	}
	return string(out)
}

func firstLetter(s string) (rune, bool) {
	for _, r := range strings.TrimSpace(s) {
		if unicode.IsLetter(r) {
			return unicode.ToUpper(r), true
		}
		return 0, false
	}
	return 0, false
}

func joinNonEmpty(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
