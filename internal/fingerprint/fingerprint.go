// Package fingerprint produces content-addressed digests of imported
// files. Digests drive import deduplication: two files with identical
// bytes converge to the same paper row.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"

	"github.com/paperflow-app/paperflow/internal/domain"
)

// chunkSize bounds memory while hashing large documents.
const chunkSize = 8 * 1024

// File streams the file at path through SHA-256 and returns the
// lowercase hex digest. Failures are attributed to the failing path so
// the caller can produce a precise message.
func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", domain.IOError(path, "open file for hashing", err)
	}
	defer f.Close()

	return Reader(f, path)
}

// Reader hashes an arbitrary byte stream in bounded chunks. The path is
// used only for error attribution.
func Reader(r io.Reader, path string) (string, error) {
	h := sha256.New()
	buf := make([]byte, chunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", domain.IOError(path, "read file for hashing", err)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
