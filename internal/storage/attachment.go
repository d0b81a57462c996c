package storage

import (
	"bytes"
	"io"
)

// Attachment is an upload ready to be stored.
type Attachment struct {
	Data        []byte
	ContentType string
	Ext         string
}

type fileKind struct {
	contentType string
	ext         string
	image       bool
}

// sniff identifies the accepted upload types by their leading bytes.
func sniff(header []byte) (fileKind, bool) {
	switch {
	case len(header) >= 3 && bytes.Equal(header[:3], []byte{0xFF, 0xD8, 0xFF}):
		return fileKind{"image/jpeg", ".jpg", true}, true
	case len(header) >= 8 && bytes.Equal(header[:8], []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}):
		return fileKind{"image/png", ".png", true}, true
	case len(header) >= 12 && bytes.Equal(header[:4], []byte("RIFF")) && bytes.Equal(header[8:12], []byte("WEBP")):
		return fileKind{"image/webp", ".webp", true}, true
	case len(header) >= 5 && bytes.Equal(header[:5], []byte("%PDF-")):
		return fileKind{"application/pdf", ".pdf", false}, true
	}
	return fileKind{}, false
}

// PrepareAttachment reads at most maxBytes from r, checks the type, and
// normalises images. PDFs are passed through unchanged.
func PrepareAttachment(r io.Reader, maxBytes int64, opts ImageOptions) (*Attachment, error) {
	if maxBytes <= 0 {
		maxBytes = 10 * 1024 * 1024
	}
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, ErrTooLarge
	}

	kind, ok := sniff(data)
	if !ok {
		return nil, ErrUnsupported
	}
	if !kind.image {
		return &Attachment{Data: data, ContentType: kind.contentType, Ext: kind.ext}, nil
	}

	out, err := NormalizeImage(data, kind.contentType, opts)
	if err != nil {
		return nil, err
	}
	return &Attachment{Data: out, ContentType: "image/jpeg", Ext: ".jpg"}, nil
}
