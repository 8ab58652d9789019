// Package compression encodes HTTP responses with zstd or gzip.
package compression

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"github.com/debemdeboas/metablog/internal/config"
)

type Compressor interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

// Encodings in server preference order.
var encodings = []struct {
	name       string
	compressor Compressor
}{
	{"zstd", ZstdCompressor{}},
	{"gzip", GzipCompressor{}},
}

// MinSize is the smallest body worth compressing.
const MinSize = 512

// Negotiate picks an encoding from an Accept-Encoding header.
func Negotiate(acceptEncoding string) (string, Compressor) {
	accepted := map[string]bool{}
	for _, part := range strings.Split(acceptEncoding, ",") {
		name, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		if q, ok := strings.CutPrefix(strings.TrimSpace(params), "q="); ok {
			if weight, err := strconv.ParseFloat(q, 64); err == nil && weight == 0 {
				continue
			}
		}
		accepted[strings.ToLower(strings.TrimSpace(name))] = true
	}

	for _, enc := range encodings {
		if accepted[enc.name] {
			return enc.name, enc.compressor
		}
	}
	return "", nil
}

type bufferedWriter struct {
	http.ResponseWriter
	buf    bytes.Buffer
	status int
}

func (b *bufferedWriter) WriteHeader(status int) {
	if b.status == 0 {
		b.status = status
	}
}

func (b *bufferedWriter) Write(p []byte) (int, error) {
	if b.status == 0 {
		b.status = http.StatusOK
	}
	return b.buf.Write(p)
}

// Middleware buffers the response and compresses it when the client allows.
// Paths with a prefix in skip (streams) are passed through untouched.
func Middleware(next http.Handler, skip ...string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, prefix := range skip {
			if strings.HasPrefix(r.URL.Path, prefix) {
				next.ServeHTTP(w, r)
				return
			}
		}

		name, compressor := Negotiate(r.Header.Get(config.HAcceptEnc))
		if compressor == nil || r.Method == http.MethodHead {
			next.ServeHTTP(w, r)
			return
		}

		bw := &bufferedWriter{ResponseWriter: w}
		next.ServeHTTP(bw, r)

		if bw.status == 0 {
			bw.status = http.StatusOK
		}

		h := w.Header()
		h.Add(config.HVary, config.HAcceptEnc)

		body := bw.buf.Bytes()
		if len(body) < MinSize || h.Get(config.HContentEnc) != "" || bw.status == http.StatusNoContent || bw.status == http.StatusNotModified {
			w.WriteHeader(bw.status)
			w.Write(body)
			return
		}

		compressed, err := compressor.Compress(body)
		if err != nil {
			w.WriteHeader(bw.status)
			w.Write(body)
			return
		}

		h.Set(config.HContentEnc, name)
		h.Set(config.HContentLength, strconv.Itoa(len(compressed)))
		w.WriteHeader(bw.status)
		w.Write(compressed)
	})
}
