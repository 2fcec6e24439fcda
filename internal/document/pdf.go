package document

import (
	"context"
	"fmt"
	"image"
	"os"
	"sort"

	// Decoders for the formats pdfcpu hands back from image extraction.
	_ "image/jpeg"
	_ "image/png"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	_ "golang.org/x/image/tiff"
)

func init() {
	// pdfcpu otherwise installs a configuration directory under the user's
	// home on first use.
	api.DisableConfigDir()
}

// PDFOpener opens documents with pdfcpu in relaxed validation mode.
type PDFOpener struct {
	conf *model.Configuration
}

// NewPDFOpener creates an opener with pdfcpu's default configuration.
func NewPDFOpener() *PDFOpener {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &PDFOpener{conf: conf}
}

// Open reads the cross reference table of the file at path. The file stays
// open until the returned Document is closed.
func (o *PDFOpener) Open(ctx context.Context, path string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	pctx, err := api.ReadContext(f, o.conf)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	if err := pctx.EnsurePageCount(); err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: page count: %v", ErrParse, err)
	}

	return &pdfDocument{file: f, ctx: pctx}, nil
}

type pdfDocument struct {
	file *os.File
	ctx  *model.Context
}

func (d *pdfDocument) PageCount() int {
	return d.ctx.PageCount
}

func (d *pdfDocument) Page(index int) (Page, error) {
	if index < 0 || index >= d.ctx.PageCount {
		return nil, fmt.Errorf("%w: page index %d of %d", ErrParse, index, d.ctx.PageCount)
	}

	dict, _, inh, err := d.ctx.PageDict(index+1, false)
	if err != nil {
		return nil, fmt.Errorf("%w: page %d: %v", ErrParse, index+1, err)
	}
	if dict == nil {
		return nil, fmt.Errorf("%w: page %d missing", ErrParse, index+1)
	}

	return &pdfPage{ctx: d.ctx, dict: dict, inh: inh}, nil
}

func (d *pdfDocument) Close() error {
	return d.file.Close()
}

type pdfPage struct {
	ctx  *model.Context
	dict types.Dict
	inh  *model.InheritedPageAttrs
}

func (p *pdfPage) Rotation() int {
	if p.inh == nil {
		return 0
	}
	return p.inh.Rotate
}

func (p *pdfPage) MediaBox() string {
	if p.inh == nil || p.inh.MediaBox == nil {
		return ""
	}
	return p.inh.MediaBox.String()
}

func (p *pdfPage) CropBox() string {
	if p.inh == nil || p.inh.CropBox == nil {
		return p.MediaBox()
	}
	return p.inh.CropBox.String()
}

// Resources returns the XObjects of the page's resource dictionary, falling
// back to resources inherited from the page tree. Names are sorted because
// pdfcpu dictionaries do not keep file order.
func (p *pdfPage) Resources() ([]Resource, error) {
	res, err := p.resourceDict()
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, nil
	}

	obj, found := res.Find("XObject")
	if !found {
		return nil, nil
	}

	xobjects, err := p.ctx.DereferenceDict(obj)
	if err != nil {
		return nil, fmt.Errorf("%w: xobject dictionary: %v", ErrParse, err)
	}

	names := make([]string, 0, len(xobjects))
	for name := range xobjects {
		names = append(names, name)
	}
	sort.Strings(names)

	resources := make([]Resource, 0, len(names))
	for _, name := range names {
		r, err := p.resource(name, xobjects[name])
		if err != nil {
			return nil, err
		}
		if r != nil {
			resources = append(resources, r)
		}
	}

	return resources, nil
}

func (p *pdfPage) resourceDict() (types.Dict, error) {
	if obj, found := p.dict.Find("Resources"); found {
		d, err := p.ctx.DereferenceDict(obj)
		if err != nil {
			return nil, fmt.Errorf("%w: resources: %v", ErrParse, err)
		}
		if d != nil {
			return d, nil
		}
	}
	if p.inh != nil {
		return p.inh.Resources, nil
	}
	return nil, nil
}

func (p *pdfPage) resource(name string, obj types.Object) (Resource, error) {
	objNr := 0
	if ir, ok := obj.(types.IndirectRef); ok {
		objNr = ir.ObjectNumber.Value()
	}

	// The second result reports whether pdfcpu had validated the object
	// before this call, which never holds for a context opened without
	// validation, so only a missing stream counts as absent.
	sd, _, err := p.ctx.DereferenceStreamDict(obj)
	if err != nil {
		return nil, fmt.Errorf("%w: xobject %s: %v", ErrParse, name, err)
	}
	if sd == nil {
		return nil, nil
	}

	subtype := ""
	if st := sd.Subtype(); st != nil {
		subtype = *st
	}

	return &pdfResource{
		ctx:     p.ctx,
		name:    name,
		subtype: subtype,
		objNr:   objNr,
		sd:      sd,
	}, nil
}

type pdfResource struct {
	ctx     *model.Context
	name    string
	subtype string
	objNr   int
	sd      *types.StreamDict
}

func (r *pdfResource) Name() string {
	return r.name
}

func (r *pdfResource) IsImage() bool {
	return r.subtype == "Image"
}

// Pixels lets pdfcpu undo the stream filters and re-wrap the samples in a
// standard container (PNG, JPEG or TIFF) which is then decoded.
func (r *pdfResource) Pixels() (image.Image, error) {
	if !r.IsImage() {
		return nil, fmt.Errorf("%w: %s is a %s xobject", ErrUnsupportedImage, r.name, r.subtype)
	}

	img, err := pdfcpu.ExtractImage(r.ctx, r.sd, false, r.name, r.objNr, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnsupportedImage, r.name, err)
	}
	if img == nil || img.Reader == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, r.name)
	}

	decoded, _, err := image.Decode(img)
	if err != nil {
		return nil, fmt.Errorf("%w: %s (%s): %v", ErrUnsupportedImage, r.name, img.FileType, err)
	}

	return decoded, nil
}
