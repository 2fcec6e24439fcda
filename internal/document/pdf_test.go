package document_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/jung-kurt/gofpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/JaimeStill/pdf-image-server/internal/document"
	"github.com/JaimeStill/pdf-image-server/internal/locator"
	"github.com/JaimeStill/pdf-image-server/pkg/logging"
)

var fill = color.NRGBA{R: 200, G: 30, B: 90, A: 255}

func solidPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, fill)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode fixture image: %v", err)
	}
	return buf.Bytes()
}

// writeFixture produces a two page PDF with one 6x4 image. gofpdf shares a
// single resource dictionary between pages, so the image is listed on both.
func writeFixture(t *testing.T) string {
	t.Helper()

	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetFont("Helvetica", "", 12)

	pdf.AddPage()
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("fixture", opts, bytes.NewReader(solidPNG(t, 6, 4)))
	pdf.ImageOptions("fixture", 72, 72, 60, 40, false, opts, 0, "")

	pdf.AddPage()
	pdf.Text(72, 72, "second page")

	return output(t, pdf, "fixture.pdf")
}

// writeTextFixture produces a single page PDF without any image.
func writeTextFixture(t *testing.T) string {
	t.Helper()

	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.AddPage()
	pdf.Text(72, 72, "no images here")

	return output(t, pdf, "text.pdf")
}

func output(t *testing.T, pdf *gofpdf.Fpdf, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := pdf.OutputFileAndClose(path); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func open(t *testing.T, path string) document.Document {
	t.Helper()
	doc, err := document.NewPDFOpener().Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { doc.Close() })
	return doc
}

func TestPDFOpenerPages(t *testing.T) {
	doc := open(t, writeFixture(t))

	if got := doc.PageCount(); got != 2 {
		t.Fatalf("PageCount() = %d, want 2", got)
	}

	page, err := doc.Page(0)
	if err != nil {
		t.Fatalf("Page(0) error = %v", err)
	}
	if got := page.Rotation(); got != 0 {
		t.Errorf("Rotation() = %d, want 0", got)
	}
	if page.MediaBox() == "" {
		t.Error("MediaBox() is empty")
	}

	if _, err := doc.Page(2); !errors.Is(err, document.ErrParse) {
		t.Errorf("Page(2) error = %v, want ErrParse", err)
	}
}

func TestPDFOpenerImageResource(t *testing.T) {
	doc := open(t, writeFixture(t))

	page, err := doc.Page(0)
	if err != nil {
		t.Fatalf("Page(0) error = %v", err)
	}

	resources, err := page.Resources()
	if err != nil {
		t.Fatalf("Resources() error = %v", err)
	}

	var img document.Resource
	for _, r := range resources {
		if r.IsImage() {
			img = r
			break
		}
	}
	if img == nil {
		t.Fatal("no image resource on page 1")
	}
	if img.Name() == "" {
		t.Error("image resource has no name")
	}

	pixels, err := img.Pixels()
	if err != nil {
		t.Fatalf("Pixels() error = %v", err)
	}

	b := pixels.Bounds()
	if b.Dx() != 6 || b.Dy() != 4 {
		t.Fatalf("image size = %dx%d, want 6x4", b.Dx(), b.Dy())
	}

	got := color.NRGBAModel.Convert(pixels.At(b.Min.X+2, b.Min.Y+1)).(color.NRGBA)
	if got != fill {
		t.Errorf("pixel = %v, want %v", got, fill)
	}
}

func TestPDFOpenerPageWithoutImages(t *testing.T) {
	doc := open(t, writeTextFixture(t))

	page, err := doc.Page(0)
	if err != nil {
		t.Fatalf("Page(0) error = %v", err)
	}

	resources, err := page.Resources()
	if err != nil {
		t.Fatalf("Resources() error = %v", err)
	}
	for _, r := range resources {
		if r.IsImage() {
			t.Errorf("unexpected image resource %q", r.Name())
		}
	}
}

func TestPDFOpenerRotation(t *testing.T) {
	src := writeFixture(t)

	in, err := os.Open(src)
	if err != nil {
		t.Fatal(err)
	}
	defer in.Close()

	var rotated bytes.Buffer
	conf := model.NewDefaultConfiguration()
	if err := api.Rotate(in, &rotated, 90, []string{"1"}, conf); err != nil {
		t.Fatalf("rotate fixture: %v", err)
	}

	path := filepath.Join(t.TempDir(), "rotated.pdf")
	if err := os.WriteFile(path, rotated.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	doc := open(t, path)

	tests := []struct {
		index int
		want  int
	}{
		{0, 90},
		{1, 0},
	}

	for _, tt := range tests {
		page, err := doc.Page(tt.index)
		if err != nil {
			t.Fatalf("Page(%d) error = %v", tt.index, err)
		}
		if got := page.Rotation(); got != tt.want {
			t.Errorf("Page(%d).Rotation() = %d, want %d", tt.index, got, tt.want)
		}
	}
}

func TestPDFOpenerRejectsNonPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "note.pdf")
	if err := os.WriteFile(path, []byte("plain text, not a document"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := document.NewPDFOpener().Open(context.Background(), path)
	if !errors.Is(err, document.ErrParse) {
		t.Errorf("Open() error = %v, want ErrParse", err)
	}
}

func TestPDFOpenerHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := document.NewPDFOpener().Open(ctx, writeFixture(t))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Open() error = %v, want context.Canceled", err)
	}
}

func TestPDFOpenerResourcesSortedByName(t *testing.T) {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.AddPage()
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("wide", opts, bytes.NewReader(solidPNG(t, 6, 4)))
	pdf.RegisterImageOptionsReader("tall", opts, bytes.NewReader(solidPNG(t, 3, 7)))
	pdf.ImageOptions("wide", 72, 72, 60, 40, false, opts, 0, "")
	pdf.ImageOptions("tall", 72, 200, 30, 70, false, opts, 0, "")

	doc := open(t, output(t, pdf, "two.pdf"))

	page, err := doc.Page(0)
	if err != nil {
		t.Fatalf("Page(0) error = %v", err)
	}
	resources, err := page.Resources()
	if err != nil {
		t.Fatalf("Resources() error = %v", err)
	}

	var names []string
	for _, r := range resources {
		if r.IsImage() {
			names = append(names, r.Name())
		}
	}
	if len(names) != 2 {
		t.Fatalf("image resources = %v, want 2", names)
	}
	if !slices.IsSorted(names) {
		t.Errorf("resource names %v not in ascending order", names)
	}

	loc, err := locator.New(logging.Discard()).Locate(doc, 0)
	if err != nil {
		t.Fatalf("Locate() error = %v", err)
	}
	if loc.Resource != names[0] {
		t.Errorf("located %q, want first by name %q", loc.Resource, names[0])
	}
}

func TestPDFOpenerLocateImage(t *testing.T) {
	doc := open(t, writeFixture(t))

	loc, err := locator.New(logging.Discard()).Locate(doc, 0)
	if err != nil {
		t.Fatalf("Locate() error = %v", err)
	}
	if b := loc.Image.Bounds(); b.Dx() != 6 || b.Dy() != 4 {
		t.Errorf("image size = %dx%d, want 6x4", b.Dx(), b.Dy())
	}
	if loc.PageCount != 2 {
		t.Errorf("PageCount = %d, want 2", loc.PageCount)
	}

	if _, err := locator.New(logging.Discard()).Locate(open(t, writeTextFixture(t)), 0); !errors.Is(err, locator.ErrNoImage) {
		t.Errorf("Locate(text only) error = %v, want ErrNoImage", err)
	}
}
