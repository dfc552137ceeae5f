package certificate

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Data is everything printed on one certificate
type Data struct {
	FirstName      string
	LastName       string
	FullName       string
	CourseName     string
	Percentage     int
	CorrectAnswers int
	TotalQuestions int
	IssuedAt       time.Time
	SerialNumber   string

	// Photo is drawn inside a circle; nil draws the initials disc
	Photo image.Image
}

type rgb struct{ r, g, b int }

var (
	colorCream  = rgb{250, 248, 243}
	colorIndigo = rgb{79, 70, 229}
	colorGreen  = rgb{16, 185, 129}
	colorGold   = rgb{212, 175, 55}
	colorWhite  = rgb{255, 255, 255}
	colorInk    = rgb{31, 41, 55}
	colorMuted  = rgb{107, 114, 128}
	colorSubtle = rgb{156, 163, 175}
	colorPanel  = rgb{243, 244, 246}
)

const (
	signatureName = "X.U.Mirovna"
	sealText      = "BuxDU"
	footerLine    = "Ushbu sertifikat Yosh Tadqiqotchi tizimidan olingan"
	footerSite    = "www.yoshtadqiqotchi.uz"
	footerContact = "Buxoro davlat universiteti • info@buxdu.uz"
	photoDiameter = 100.0
)

// Renderer draws landscape A4 certificates
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render returns the PDF bytes for d
func (r *Renderer) Render(d Data) ([]byte, error) {
	pdf := gofpdf.New("L", "pt", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle("Sertifikat", true)
	pdf.SetCreator("Yosh Tadqiqotchi", true)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	w, h := pdf.GetPageSize()
	cx := w / 2

	// background, header band, bottom bar
	fill(pdf, colorCream)
	pdf.Rect(0, 0, w, h, "F")
	fill(pdf, colorIndigo)
	pdf.Rect(0, 0, w, 120, "F")
	fill(pdf, colorGreen)
	pdf.Rect(0, h-15, w, 15, "F")

	// frames
	stroke(pdf, colorGold, 4)
	pdf.Rect(25, 25, w-50, h-50, "D")
	stroke(pdf, colorIndigo, 1.5)
	pdf.Rect(35, 35, w-70, h-70, "D")
	drawCorners(pdf, w, h)

	// title
	text(pdf, colorWhite, "B", 56)
	centered(pdf, tr, cx, 75, "SERTIFIKAT")
	stroke(pdf, colorGold, 2)
	pdf.Line(cx-120, 85, cx+120, 85)

	text(pdf, colorMuted, "I", 13)
	centered(pdf, tr, cx, 145, "Ushbu sertifikat faxr bilan quyidagi shaxsga beriladi:")

	// photo or initials
	photoCY := 240.0
	if d.Photo != nil {
		if err := drawPhoto(pdf, d.Photo, cx, photoCY); err != nil {
			drawInitials(pdf, tr, d, cx, photoCY)
		}
	} else {
		drawInitials(pdf, tr, d, cx, photoCY)
	}

	// name
	name := displayName(d)
	text(pdf, colorGold, "BI", 38)
	centered(pdf, tr, cx, 320, name)
	half := pdf.GetStringWidth(tr(name))/2 + 20
	stroke(pdf, colorGold, 1.5)
	pdf.Line(cx-half, 332, cx+half, 332)

	text(pdf, colorMuted, "I", 13)
	centered(pdf, tr, cx, 365, "Quyidagi onlayn ta'lim kursini muvaffaqiyatli tugatdi:")

	text(pdf, colorIndigo, "BI", 22)
	centered(pdf, tr, cx, 400, fmt.Sprintf("\"%s\"", d.CourseName))

	// score box
	boxW, boxH := 380.0, 45.0
	fill(pdf, colorGreen)
	pdf.RoundedRect(cx-boxW/2, 405, boxW, boxH, 10, "1234", "F")
	text(pdf, colorWhite, "BI", 16)
	centered(pdf, tr, cx, 433, ScoreLine(d.Percentage, d.CorrectAnswers, d.TotalQuestions))

	drawDate(pdf, tr, d.IssuedAt, h)
	drawSignature(pdf, tr, w, h, d.IssuedAt)

	// footer
	text(pdf, colorSubtle, "I", 9)
	centered(pdf, tr, cx, h-50, footerLine)
	text(pdf, colorIndigo, "B", 9)
	centered(pdf, tr, cx, h-38, footerSite)
	text(pdf, colorSubtle, "I", 8)
	centered(pdf, tr, cx, h-26, footerContact)

	if d.SerialNumber != "" {
		text(pdf, colorSubtle, "", 7)
		pdf.SetXY(w-260, h-52)
		pdf.CellFormat(200, 10, tr("No. "+d.SerialNumber), "", 0, "R", false, 0, "")
	}

	fill(pdf, colorGold)
	pdf.Circle(60, h-60, 4, "F")
	pdf.Circle(w-60, h-60, 4, "F")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render certificate: %w", err)
	}
	return buf.Bytes(), nil
}

// ScoreLine is the text inside the score box
func ScoreLine(percentage, correct, total int) string {
	return fmt.Sprintf("Natija: %d%%  •  %d/%d to'g'ri javob", percentage, correct, total)
}

// FormatDate prints dd.mm.yyyy
func FormatDate(t time.Time) string {
	return t.Format("02.01.2006")
}

func displayName(d Data) string {
	if d.FirstName != "" || d.LastName != "" {
		return joinNonEmpty(d.FirstName, d.LastName)
	}
	return d.FullName
}

func drawCorners(pdf *gofpdf.Fpdf, w, h float64) {
	const size = 40.0
	stroke(pdf, colorGold, 3)
	for _, c := range [][4]float64{
		{35, 35, 1, 1},
		{w - 35, 35, -1, 1},
		{35, h - 35, 1, -1},
		{w - 35, h - 35, -1, -1},
	} {
		pdf.Line(c[0], c[1], c[0]+c[2]*size, c[1])
		pdf.Line(c[0], c[1], c[0], c[1]+c[3]*size)
	}
}

func drawPhoto(pdf *gofpdf.Fpdf, photo image.Image, cx, cy float64) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, photo); err != nil {
		return err
	}

	opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	pdf.RegisterImageOptionsReader("photo", opts, &buf)
	if !pdf.Ok() {
		pdf.ClearError()
		return fmt.Errorf("photo could not be embedded")
	}

	r := photoDiameter / 2
	stroke(pdf, colorGold, 3)
	pdf.Circle(cx, cy, r+5, "D")

	pdf.ClipCircle(cx, cy, r, false)
	pdf.ImageOptions("photo", cx-r, cy-r, photoDiameter, photoDiameter, false, opts, 0, "")
	pdf.ClipEnd()
	return nil
}

func drawInitials(pdf *gofpdf.Fpdf, tr func(string) string, d Data, cx, cy float64) {
	r := photoDiameter / 2
	stroke(pdf, colorGold, 3)
	pdf.Circle(cx, cy, r+5, "D")
	fill(pdf, colorIndigo)
	pdf.Circle(cx, cy, r, "F")

	text(pdf, colorWhite, "BI", 48)
	centered(pdf, tr, cx, cy+17, Initials(d.FirstName, d.LastName, d.FullName))
}

func drawDate(pdf *gofpdf.Fpdf, tr func(string) string, issuedAt time.Time, h float64) {
	baseY := h - 120

	text(pdf, colorMuted, "I", 11)
	pdf.SetXY(80, baseY-30)
	pdf.CellFormat(140, 12, tr("Berilgan sana:"), "", 0, "L", false, 0, "")

	fill(pdf, colorPanel)
	pdf.RoundedRect(75, baseY-15, 140, 30, 5, "1234", "F")
	stroke(pdf, colorIndigo, 1)
	pdf.RoundedRect(75, baseY-15, 140, 30, 5, "1234", "D")

	text(pdf, colorInk, "B", 13)
	centered(pdf, tr, 145, baseY+5, FormatDate(issuedAt))
}

func drawSignature(pdf *gofpdf.Fpdf, tr func(string) string, w, h float64, issuedAt time.Time) {
	baseY := h - 120

	text(pdf, colorMuted, "I", 11)
	pdf.SetXY(w-280, baseY-30)
	pdf.CellFormat(200, 12, tr("Tizim rahbari:"), "", 0, "R", false, 0, "")

	stroke(pdf, colorInk, 1)
	pdf.Line(w-280, baseY+5, w-80, baseY+5)
	text(pdf, colorInk, "BI", 18)
	pdf.SetXY(w-280, baseY-14)
	pdf.CellFormat(200, 16, tr(signatureName), "", 0, "R", false, 0, "")

	// seal
	sx, sy := w-140, baseY+10
	stroke(pdf, colorIndigo, 2)
	pdf.Circle(sx, sy, 35, "D")
	stroke(pdf, colorIndigo, 1)
	pdf.Circle(sx, sy, 30, "D")
	text(pdf, colorIndigo, "B", 8)
	centered(pdf, tr, sx, sy-2, sealText)
	centered(pdf, tr, sx, sy+8, strconv.Itoa(issuedAt.Year()))
}

// centered writes s with its baseline at y, centered on cx
func centered(pdf *gofpdf.Fpdf, tr func(string) string, cx, y float64, s string) {
	s = tr(s)
	pdf.Text(cx-pdf.GetStringWidth(s)/2, y, s)
}

func fill(pdf *gofpdf.Fpdf, c rgb) {
	pdf.SetFillColor(c.r, c.g, c.b)
}

func stroke(pdf *gofpdf.Fpdf, c rgb, width float64) {
	pdf.SetDrawColor(c.r, c.g, c.b)
	pdf.SetLineWidth(width)
}

func text(pdf *gofpdf.Fpdf, c rgb, style string, size float64) {
	pdf.SetTextColor(c.r, c.g, c.b)
	pdf.SetFont("Helvetica", style, size)
}
