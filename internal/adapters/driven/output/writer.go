package output

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image/png"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/fxamacker/cbor/v2"

	"github.com/custodia-labs/assetsync/internal/core/domain"
	"github.com/custodia-labs/assetsync/internal/core/ports/driven"
)

// Ensure Writer implements the interface.
var _ driven.ArtifactWriter = (*Writer)(nil)

// Writer writes artifacts below an output root.
type Writer struct {
	root string
	opts domain.OutputOptions
	cbor cbor.EncMode
}

// NewWriter creates a writer rooted at root.
func NewWriter(root string, opts domain.OutputOptions) (*Writer, error) {
	if !opts.DocumentFormat.IsValid() {
		return nil, fmt.Errorf("%w: document format %q", domain.ErrUnsupportedType, opts.DocumentFormat)
	}
	if !opts.ImageFormat.IsValid() {
		return nil, fmt.Errorf("%w: image format %q", domain.ErrUnsupportedType, opts.ImageFormat)
	}
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("cbor encoder: %w", err)
	}
	return &Writer{root: root, opts: opts, cbor: em}, nil
}

// Root returns the output root directory.
func (w *Writer) Root() string {
	return w.root
}

// Write encodes and stores an artifact. Returns the file path written.
func (w *Writer) Write(ctx context.Context, a domain.Artifact) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var (
		data []byte
		ext  string
		err  error
	)
	switch a.Kind {
	case domain.ArtifactDocument:
		data, err = w.encodeDocument(a.Document)
		ext = w.opts.DocumentFormat.Extension()
	case domain.ArtifactImage:
		data, err = encodeImage(a)
		ext = w.opts.ImageFormat.Extension()
	default:
		return "", fmt.Errorf("%w: artifact kind %s", domain.ErrUnsupportedType, a.Kind)
	}
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", a.Path, err)
	}

	dst, err := w.resolve(a.Path + ext)
	if err != nil {
		return "", err
	}
	if err := writeFile(dst, bytes.NewReader(data)); err != nil {
		return "", err
	}
	return dst, nil
}

// CopyRaw copies a cached file to rel under the output root.
func (w *Writer) CopyRaw(ctx context.Context, src, rel string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dst, err := w.resolve(rel)
	if err != nil {
		return "", err
	}

	f, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := writeFile(dst, f); err != nil {
		return "", err
	}
	return dst, nil
}

func (w *Writer) encodeDocument(doc any) ([]byte, error) {
	switch w.opts.DocumentFormat {
	case domain.DocumentFormatCBOR:
		return w.cbor.Marshal(doc)
	default:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}
}

func encodeImage(a domain.Artifact) ([]byte, error) {
	if a.Image == nil {
		return nil, fmt.Errorf("%w: image artifact without pixels", domain.ErrInvalidInput)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, a.Image); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// resolve maps a slash separated relative path to a file below the root.
// Paths escaping the root are rejected.
func (w *Writer) resolve(rel string) (string, error) {
	norm := strings.ReplaceAll(rel, "\\", "/")
	if norm == "" || path.IsAbs(norm) {
		return "", fmt.Errorf("%w: artifact path %q", domain.ErrInvalidInput, rel)
	}
	clean := path.Clean(norm)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: artifact path %q escapes output root", domain.ErrInvalidInput, rel)
	}
	return filepath.Join(w.root, filepath.FromSlash(clean)), nil
}

// writeFile streams r into a temp file beside dst and renames it into place.
func writeFile(dst string, r io.Reader) error {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".artifact-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	_, err = io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Chmod(tmpName, 0644)
	}
	if err == nil {
		err = os.Rename(tmpName, dst)
	}
	if err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", dst, err)
	}
	return nil
}
