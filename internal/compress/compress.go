package compress

import "fmt"

// Compress encodes and decodes cached payloads.
type Compress interface {
	Encode(data []byte) ([]byte, error)
	Decode(data []byte) ([]byte, error)
}

const (
	NameNone   = "none"
	NameGzip   = "gzip"
	NameLZ4    = "lz4"
	NameBrotli = "brotli"
)

// New returns the codec registered under name.
func New(name string) (Compress, error) {
	switch name {
	case "", NameNone:
		return NewNop(), nil
	case NameGzip:
		return NewGZip(), nil
	case NameLZ4:
		return NewLZ4(), nil
	case NameBrotli:
		return NewBrotli(), nil
	default:
		return nil, fmt.Errorf("unknown compression %q", name)
	}
}
