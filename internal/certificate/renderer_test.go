package certificate

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"
)

func solidPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func TestRender_WithAndWithoutPhoto(t *testing.T) {
	r := NewRenderer()
	base := Data{
		FirstName:      "Aziza",
		LastName:       "Karimova",
		CourseName:     "Ilmiy tadqiqot asoslari",
		Percentage:     85,
		CorrectAnswers: 17,
		TotalQuestions: 20,
		IssuedAt:       time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
		SerialNumber:   "YT-20260314-ABCD1234",
	}

	avatar, err := Avatar(solidPNG(t, 400, 250))
	if err != nil {
		t.Fatalf("Avatar() error = %v", err)
	}

	tests := []struct {
		name  string
		photo image.Image
	}{
		{"initials", nil},
		{"photo", avatar},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := base
			d.Photo = tt.photo
			out, err := r.Render(d)
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if !bytes.HasPrefix(out, []byte("%PDF-")) {
				t.Errorf("output is not a PDF: %q", out[:8])
			}
		})
	}
}

func TestScoreLineAndDate(t *testing.T) {
	if got := ScoreLine(85, 17, 20); got != "Natija: 85%  •  17/20 to'g'ri javob" {
		t.Errorf("ScoreLine() = %q", got)
	}
	if got := FormatDate(time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)); got != "05.01.2026" {
		t.Errorf("FormatDate() = %q", got)
	}
}

func TestInitials(t *testing.T) {
	tests := []struct {
		first, last, full string
		want              string
	}{
		{"aziza", "karimova", "", "AK"},
		{"", "", "Bobur Aliyev Jr", "BA"},
		{"Sardor", "", "", "S"},
		{"", "", "", "?"},
		{"1abc", "", "", "?"},
	}
	for _, tt := range tests {
		if got := Initials(tt.first, tt.last, tt.full); got != tt.want {
			t.Errorf("Initials(%q,%q,%q) = %q, want %q", tt.first, tt.last, tt.full, got, tt.want)
		}
	}
}

func TestPrepareProfilePhoto(t *testing.T) {
	out, err := PrepareProfilePhoto(solidPNG(t, 2048, 1024))
	if err != nil {
		t.Fatalf("PrepareProfilePhoto() error = %v", err)
	}
	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output not PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != MaxPhotoSide || b.Dy() != MaxPhotoSide/2 {
		t.Errorf("size = %dx%d, want %dx%d", b.Dx(), b.Dy(), MaxPhotoSide, MaxPhotoSide/2)
	}
}

func TestDecodePhoto_Rejects(t *testing.T) {
	if _, err := DecodePhoto([]byte("GIF89a not really")); !errors.Is(err, ErrUnsupportedImage) {
		t.Errorf("error = %v, want ErrUnsupportedImage", err)
	}
	if _, err := DecodePhoto(nil); !errors.Is(err, ErrUnsupportedImage) {
		t.Errorf("empty error = %v", err)
	}
}

// withPNGSize rewrites the IHDR dimensions and checksum of an encoded PNG
func withPNGSize(t *testing.T, data []byte, w, h uint32) []byte {
	t.Helper()
	out := append([]byte(nil), data...)
	if string(out[12:16]) != "IHDR" {
		t.Fatalf("first chunk = %q, want IHDR", out[12:16])
	}
	binary.BigEndian.PutUint32(out[16:20], w)
	binary.BigEndian.PutUint32(out[20:24], h)
	binary.BigEndian.PutUint32(out[29:33], crc32.ChecksumIEEE(out[12:29]))
	return out
}

func TestDecodePhoto_RejectsHugeDimensions(t *testing.T) {
	huge := withPNGSize(t, solidPNG(t, 4, 4), 40000, 40000)

	if _, err := DecodePhoto(huge); !errors.Is(err, ErrImageTooLarge) {
		t.Fatalf("error = %v, want ErrImageTooLarge", err)
	}
	if _, err := PrepareProfilePhoto(huge); !errors.Is(err, ErrImageTooLarge) {
		t.Errorf("PrepareProfilePhoto() error = %v, want ErrImageTooLarge", err)
	}

	// A header within budget still decodes normally
	if _, err := DecodePhoto(solidPNG(t, 64, 48)); err != nil {
		t.Errorf("small photo error = %v", err)
	}
}

func TestAvatarIsSquare(t *testing.T) {
	img, err := Avatar(solidPNG(t, 640, 200))
	if err != nil {
		t.Fatalf("Avatar() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != AvatarSide || b.Dy() != AvatarSide {
		t.Errorf("avatar = %dx%d", b.Dx(), b.Dy())
	}
}
