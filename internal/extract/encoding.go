package extract

// encoding.go defines the candidate text encodings tried when opening a file.
//
// Go's csv reader never fails on malformed bytes the way Python's decoder
// does, so each candidate wraps the file in a transform.Reader that either
// converts the bytes to UTF-8 or fails fast on input the encoding cannot
// represent:
//
//   - utf-8-sig: strict UTF-8, leading BOM stripped if present
//   - utf-8:     strict UTF-8, BOM (if any) kept as a literal U+FEFF
//   - iso-8859-1: Latin-1, every byte sequence is valid
//   - ascii:     strict 7-bit

import (
	"fmt"
	"io"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Encoding is one candidate text encoding for a delimited file.
type Encoding struct {
	Name string

	newTransformer func() transform.Transformer
}

// Reader wraps r so reads yield UTF-8, failing on undecodable input.
func (e Encoding) Reader(r io.Reader) io.Reader {
	return transform.NewReader(r, e.newTransformer())
}

// Candidates is the ordered list of encodings tried during the probing pass.
// The first one that decodes the whole file wins.
var Candidates = []Encoding{
	{
		Name: "utf-8-sig",
		newTransformer: func() transform.Transformer {
			return transform.Chain(encoding.UTF8Validator, unicode.UTF8BOM.NewDecoder())
		},
	},
	{
		Name: "utf-8",
		newTransformer: func() transform.Transformer {
			return encoding.UTF8Validator
		},
	},
	{
		Name: "iso-8859-1",
		newTransformer: func() transform.Transformer {
			return charmap.ISO8859_1.NewDecoder()
		},
	},
	{
		Name: "ascii",
		newTransformer: func() transform.Transformer {
			return asciiValidator{}
		},
	},
}

// asciiValidator passes 7-bit bytes through unchanged and fails on anything
// above 0x7F.
type asciiValidator struct{}

// ErrNonASCII is returned by the ascii candidate on the first byte >= 0x80.
var ErrNonASCII = fmt.Errorf("encoding: invalid ASCII")

func (asciiValidator) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	n := len(src)
	if n > len(dst) {
		n = len(dst)
		err = transform.ErrShortDst
	}
	for i := 0; i < n; i++ {
		if src[i] >= 0x80 {
			n = i
			err = ErrNonASCII
			break
		}
		dst[i] = src[i]
	}
	return n, n, err
}

func (asciiValidator) Reset() {}

// EncodingError reports that no candidate encoding could decode the file.
// It carries the failure from the last candidate tried.
type EncodingError struct {
	Filename string
	Last     error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("no supported encoding can decode %s: %v", e.Filename, e.Last)
}

func (e *EncodingError) Unwrap() error { return e.Last }
