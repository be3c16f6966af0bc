// Package archive reads raw daily paper dumps from the local archive tree:
//
//	<root>/<date>/raw/arxiv_papers_<date>.json
//	<root>/<date>/raw/arxiv_papers_<date>.json.zst
//
// The plain file wins when both exist.
package archive

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/valyala/fastjson"

	"github.com/custodia-labs/papersift/internal/core/domain"
	"github.com/custodia-labs/papersift/internal/core/ports/driven"
	"github.com/custodia-labs/papersift/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.PaperSource = (*Source)(nil)

// CompressedExt is appended to the raw file name for zstd archives.
const CompressedExt = ".zst"

// Source is a driven.PaperSource over a local archive directory.
type Source struct {
	root    string
	decoder *zstd.Decoder
	parsers fastjson.ParserPool
}

// NewSource creates a source rooted at dir.
func NewSource(dir string) (*Source, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &Source{root: dir, decoder: dec}, nil
}

// Close releases the decoder.
func (s *Source) Close() error {
	s.decoder.Close()
	return nil
}

// Root returns the archive root directory.
func (s *Source) Root() string {
	return s.root
}

// Location returns the plain JSON path for date.
func (s *Source) Location(date string) string {
	return filepath.Join(s.RawDir(date), FileName(date))
}

// RawDir returns the directory holding the raw files for date.
func (s *Source) RawDir(date string) string {
	return filepath.Join(s.root, date, "raw")
}

// FileName returns the raw file name for date.
func FileName(date string) string {
	return "arxiv_papers_" + date + ".json"
}

// Load reads the raw records for date. A missing archive or a file that is
// not a JSON array yields no records; non-object entries are skipped.
func (s *Source) Load(ctx context.Context, date string) ([]domain.RawPaper, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, path, err := s.read(date)
	if err != nil {
		return nil, err
	}
	if data == nil {
		logger.Debug("No archive for %s at %s", date, s.Location(date))
		return []domain.RawPaper{}, nil
	}

	p := s.parsers.Get()
	defer s.parsers.Put(p)

	v, err := p.ParseBytes(data)
	if err != nil {
		logger.Warn("Ignoring malformed archive %s: %v", path, err)
		return []domain.RawPaper{}, nil
	}
	if v.Type() != fastjson.TypeArray {
		logger.Warn("Ignoring archive %s: top level is %s, not an array", path, v.Type())
		return []domain.RawPaper{}, nil
	}

	arr, _ := v.Array()
	records := make([]domain.RawPaper, 0, len(arr))
	for _, item := range arr {
		if item.Type() != fastjson.TypeObject {
			continue
		}
		obj, _ := item.Object()
		records = append(records, objectToMap(obj))
	}

	logger.Debug("Read %d records from %s", len(records), path)
	return records, nil
}

// read returns the decompressed file contents, or nil when neither the plain
// nor the compressed file exists.
func (s *Source) read(date string) ([]byte, string, error) {
	plain := s.Location(date)
	data, err := os.ReadFile(plain)
	if err == nil {
		return data, plain, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, plain, fmt.Errorf("read %s: %w", plain, err)
	}

	compressed := plain + CompressedExt
	raw, err := os.ReadFile(compressed)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, "", nil
	}
	if err != nil {
		return nil, compressed, fmt.Errorf("read %s: %w", compressed, err)
	}

	data, err = s.decoder.DecodeAll(raw, nil)
	if err != nil {
		logger.Warn("Ignoring corrupt archive %s: %v", compressed, err)
		return []byte("[]"), compressed, nil
	}
	return data, compressed, nil
}

// objectToMap converts a JSON object into the generic record form.
func objectToMap(obj *fastjson.Object) domain.RawPaper {
	m := make(domain.RawPaper, obj.Len())
	obj.Visit(func(key []byte, v *fastjson.Value) {
		m[string(key)] = toAny(v)
	})
	return m
}

func toAny(v *fastjson.Value) any {
	switch v.Type() {
	case fastjson.TypeString:
		return string(v.GetStringBytes())
	case fastjson.TypeNumber:
		return v.GetFloat64()
	case fastjson.TypeTrue:
		return true
	case fastjson.TypeFalse:
		return false
	case fastjson.TypeArray:
		arr, _ := v.Array()
		out := make([]any, len(arr))
		for i, item := range arr {
			out[i] = toAny(item)
		}
		return out
	case fastjson.TypeObject:
		obj, _ := v.Object()
		return map[string]any(objectToMap(obj))
	default:
		return nil
	}
}
