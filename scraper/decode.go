package scraper

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/net/html/charset"
)

const acceptEncoding = "gzip, deflate, br, zstd"

// decodeBody undoes Content-Encoding, fails when the decoded body is larger
// than maxBody, and transcodes the result to UTF-8 using the Content-Type charset or the
// document's own <meta charset>.
func decodeBody(body io.Reader, contentEncoding, contentType string, maxBody int64) ([]byte, error) {
	r, closeFn, err := decompress(body, contentEncoding)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	raw, err := io.ReadAll(io.LimitReader(r, maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(raw)) > maxBody {
		return nil, fmt.Errorf("body exceeds %d bytes", maxBody)
	}

	utf8Reader, err := charset.NewReader(bytes.NewReader(raw), contentType)
	if err != nil {
		// Unknown charset label: hand back the bytes untouched.
		return raw, nil
	}
	decoded, err := io.ReadAll(utf8Reader)
	if err != nil {
		return nil, fmt.Errorf("transcode body: %w", err)
	}
	return decoded, nil
}

func decompress(body io.Reader, contentEncoding string) (io.Reader, func(), error) {
	noop := func() {}

	switch strings.ToLower(strings.TrimSpace(contentEncoding)) {
	case "", "identity":
		return body, noop, nil
	case "gzip", "x-gzip":
		zr, err := gzip.NewReader(body)
		if err != nil {
			return nil, noop, fmt.Errorf("gzip: %w", err)
		}
		return zr, func() { zr.Close() }, nil
	case "deflate":
		zr, err := zlib.NewReader(body)
		if err != nil {
			return nil, noop, fmt.Errorf("deflate: %w", err)
		}
		return zr, func() { zr.Close() }, nil
	case "br":
		return brotli.NewReader(body), noop, nil
	case "zstd":
		zr, err := zstd.NewReader(body)
		if err != nil {
			return nil, noop, fmt.Errorf("zstd: %w", err)
		}
		return zr, zr.Close, nil
	default:
		return nil, noop, fmt.Errorf("unsupported content-encoding %q", contentEncoding)
	}
}
