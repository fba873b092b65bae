// Package vectors reads the upstream 8088 single-step test corpus.
//
// The corpus consists of a summary document mapping every opcode to a
// descriptor, plus one test-case collection per opcode:
//
//	ProcessorTests/8088/v1/8088.json        summary document
//	ProcessorTests/8088/v1/<opcode>.json.gz test-case collection
//
// Opcodes whose behaviour depends on the ModRM reg field carry a nested
// "reg" mapping; Flatten expands those into one descriptor per variant,
// named "<opcode>.<reg>".
//
// Usage:
//
//	summary, err := vectors.LoadSummary("ProcessorTests/8088/v1/8088.json")
//	descs, err := summary.Flatten()
//	tests, err := vectors.LoadTestCases("ProcessorTests/8088/v1/00.json.gz")
package vectors

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// gzipMagic is the two-byte signature of a gzip stream.
var gzipMagic = [2]byte{0x1f, 0x8b}

// document is an open corpus file, transparently decompressed.
type document struct {
	io.Reader
	file *os.File
	gz   *gzip.Reader
}

func (d *document) Close() error {
	if d.gz != nil {
		if err := d.gz.Close(); err != nil {
			_ = d.file.Close()
			return err
		}
	}
	return d.file.Close()
}

// openDocument opens a corpus file. Files starting with the gzip signature
// are decompressed; anything else is read as plain JSON.
func openDocument(path string) (*document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	br := bufio.NewReader(f)
	head, err := br.Peek(2)
	if err != nil && err != io.EOF {
		_ = f.Close()
		return nil, err
	}

	doc := &document{Reader: br, file: f}
	if len(head) == 2 && head[0] == gzipMagic[0] && head[1] == gzipMagic[1] {
		gz, err := gzip.NewReader(br)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		doc.Reader = gz
		doc.gz = gz
	}

	return doc, nil
}

// decodeAll reads r to the end and decodes it as a single JSON value. The
// whole stream is consumed so a gzip checksum mismatch is reported, and
// anything after the value other than whitespace is an error.
func decodeAll(r io.Reader, v any) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}
	return json.Unmarshal(data, v)
}
