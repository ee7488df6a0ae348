package certsvc

import (
	"bytes"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/pkg/errors"
	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/tmwangi/elimu/core"
)

const (
	imageWidth  = 1200
	imageHeight = 850

	outerBorderMargin = 30.0
	innerBorderMargin = 42.0
	outerBorderWidth  = 6.0
	innerBorderWidth  = 2.0

	titleFontSize    = 52.0
	nameFontSize     = 44.0
	courseFontSize   = 36.0
	bodyFontSize     = 22.0
	footerFontSize   = 18.0
	qrSize           = 140
	qrMargin         = 60.0
	dateLayout       = "January 2, 2006"
)

var (
	bgColor     = color.RGBA{252, 250, 245, 255}
	borderColor = color.RGBA{40, 54, 85, 255}
	titleColor  = color.RGBA{40, 54, 85, 255}
	nameColor   = color.RGBA{140, 94, 30, 255}
	textColor   = color.RGBA{70, 74, 80, 255}
)

type pngRenderer struct {
	appName string
}

var _ core.CertificateRenderer = (*pngRenderer)(nil)

func NewPNGRenderer(conf *core.Config) *pngRenderer {
	return &pngRenderer{appName: conf.AppName}
}

func loadFace(ttf []byte, size float64) (font.Face, error) {
	fnt, err := opentype.Parse(ttf)
	if err != nil {
		return nil, errors.Wrap(err, "parsing font")
	}
	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{Size: size, DPI: 72})
	if err != nil {
		return nil, errors.Wrap(err, "creating font face")
	}
	return face, nil
}

func setFace(dc *gg.Context, ttf []byte, size float64) error {
	face, err := loadFace(ttf, size)
	if err != nil {
		return err
	}
	dc.SetFontFace(face)
	return nil
}

// Render produces a PNG certificate of completion. The QR code at the bottom
// right encodes data.VerifyURL.
func (r pngRenderer) Render(data core.CertificateData) (*bytes.Buffer, string, error) {
	dc := gg.NewContext(imageWidth, imageHeight)
	cx := float64(imageWidth) / 2

	dc.SetColor(bgColor)
	dc.Clear()

	// double border frame
	dc.SetColor(borderColor)
	dc.SetLineWidth(outerBorderWidth)
	dc.DrawRectangle(outerBorderMargin, outerBorderMargin,
		imageWidth-2*outerBorderMargin, imageHeight-2*outerBorderMargin)
	dc.Stroke()
	dc.SetLineWidth(innerBorderWidth)
	dc.DrawRectangle(innerBorderMargin, innerBorderMargin,
		imageWidth-2*innerBorderMargin, imageHeight-2*innerBorderMargin)
	dc.Stroke()

	if err := setFace(dc, gobold.TTF, titleFontSize); err != nil {
		return nil, "", err
	}
	dc.SetColor(titleColor)
	dc.DrawStringAnchored("Certificate of Completion", cx, 170, 0.5, 0.5)

	if err := setFace(dc, goregular.TTF, bodyFontSize); err != nil {
		return nil, "", err
	}
	dc.SetColor(textColor)
	dc.DrawStringAnchored("This certifies that", cx, 270, 0.5, 0.5)

	if err := setFace(dc, gobold.TTF, nameFontSize); err != nil {
		return nil, "", err
	}
	dc.SetColor(nameColor)
	dc.DrawStringAnchored(data.StudentName, cx, 340, 0.5, 0.5)

	if err := setFace(dc, goregular.TTF, bodyFontSize); err != nil {
		return nil, "", err
	}
	dc.SetColor(textColor)
	dc.DrawStringAnchored("has successfully completed the course", cx, 410, 0.5, 0.5)

	if err := setFace(dc, gobold.TTF, courseFontSize); err != nil {
		return nil, "", err
	}
	dc.SetColor(titleColor)
	dc.DrawStringAnchored(data.CourseName, cx, 475, 0.5, 0.5)

	if data.CourseDescription != "" {
		if err := setFace(dc, goitalic.TTF, bodyFontSize); err != nil {
			return nil, "", err
		}
		dc.SetColor(textColor)
		dc.DrawStringWrapped(data.CourseDescription, cx, 545, 0.5, 0.5,
			imageWidth-4*innerBorderMargin, 1.4, gg.AlignCenter)
	}

	if err := setFace(dc, goregular.TTF, bodyFontSize); err != nil {
		return nil, "", err
	}
	dc.SetColor(textColor)
	dc.DrawStringAnchored("Issued on "+data.IssuedAt.Format(dateLayout), cx, 660, 0.5, 0.5)

	if err := setFace(dc, goregular.TTF, footerFontSize); err != nil {
		return nil, "", err
	}
	dc.DrawStringAnchored(r.appName, cx, imageHeight-90, 0.5, 0.5)

	if data.VerifyURL != "" {
		qr, err := qrcode.New(data.VerifyURL, qrcode.Medium)
		if err != nil {
			return nil, "", errors.Wrap(err, "generating verification QR code")
		}
		qr.DisableBorder = true
		dc.DrawImage(qr.Image(qrSize), imageWidth-qrSize-int(qrMargin), imageHeight-qrSize-int(qrMargin))
	}

	buf := new(bytes.Buffer)
	if err := dc.EncodePNG(buf); err != nil {
		return nil, "", errors.Wrap(err, "encoding certificate")
	}
	return buf, "image/png", nil
}
