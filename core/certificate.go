package core

import (
	"bytes"
	"time"
)

type (
	// CertificateData is everything a renderer needs to produce a
	// certificate of completion document.
	CertificateData struct {
		StudentName       string
		CourseName        string
		CourseDescription string
		IssuedAt          time.Time
		VerifyURL         string
	}

	// CertificateRenderer is any service that can render a certificate
	// document. The document format is the renderer's business.
	CertificateRenderer interface {
		Render(data CertificateData) (*bytes.Buffer, string /* content type */, error)
	}
)
