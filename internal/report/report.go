package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"

	"github.com/teamcutter/patches/internal/domain"
)

type Report struct {
	GeneratedAt time.Time          `json:"generated_at"`
	Host        string             `json:"host"`
	Detections  []domain.Detection `json:"detections"`
}

func New(detections []domain.Detection) *Report {
	host, _ := os.Hostname()
	return &Report{
		GeneratedAt: time.Now().UTC(),
		Host:        host,
		Detections:  detections,
	}
}

// Installed returns the detections that found their package.
func (r *Report) Installed() []domain.Detection {
	var out []domain.Detection
	for _, d := range r.Detections {
		if d.Installed {
			out = append(out, d)
		}
	}
	return out
}

// Write stores r as indented JSON. The file extension picks the compression:
// .gz, .zst or .xz; anything else is written plain.
func Write(path string, r *Report) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()

	w, closeFn, err := getCompressor(path, file)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}

	if closeFn != nil {
		return closeFn()
	}
	return nil
}

func getCompressor(path string, file io.Writer) (io.Writer, func() error, error) {
	lower := strings.ToLower(path)

	switch {
	case strings.HasSuffix(lower, ".gz"):
		gzw := gzip.NewWriter(file)
		return gzw, gzw.Close, nil

	case strings.HasSuffix(lower, ".zst"):
		zw, err := zstd.NewWriter(file)
		if err != nil {
			return nil, nil, fmt.Errorf("zstd: %w", err)
		}
		return zw, zw.Close, nil

	case strings.HasSuffix(lower, ".xz"):
		xzw, err := xz.NewWriter(file)
		if err != nil {
			return nil, nil, fmt.Errorf("xz: %w", err)
		}
		return xzw, xzw.Close, nil

	default:
		return file, nil, nil
	}
}

// Read loads a report written by Write. The compression is sniffed from the
// file header rather than the extension.
func Read(path string) (*Report, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader, cleanup, err := getDecompressor(file)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	var r Report
	if err := json.NewDecoder(reader).Decode(&r); err != nil {
		return nil, fmt.Errorf("decoding report %s: %w", path, err)
	}
	return &r, nil
}

func getDecompressor(file *os.File) (io.Reader, func(), error) {
	header := make([]byte, 6)
	n, _ := io.ReadFull(file, header)
	header = header[:n]
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, nil, err
	}

	switch {
	case n >= 4 && header[0] == 0x28 && header[1] == 0xb5 && header[2] == 0x2f && header[3] == 0xfd:
		// zstd: 0x28B52FFD
		zr, err := zstd.NewReader(file)
		if err != nil {
			return nil, nil, fmt.Errorf("zstd: %w", err)
		}
		return zr, zr.Close, nil

	case n >= 2 && header[0] == 0x1f && header[1] == 0x8b:
		// gzip: 0x1F8B
		gzr, err := gzip.NewReader(file)
		if err != nil {
			return nil, nil, fmt.Errorf("gzip: %w", err)
		}
		return gzr, func() { gzr.Close() }, nil

	case n >= 6 && header[0] == 0xfd && header[1] == 0x37 && header[2] == 0x7a && header[3] == 0x58 && header[4] == 0x5a && header[5] == 0x00:
		// xz: 0xFD377A585A00
		xzr, err := xz.NewReader(file)
		if err != nil {
			return nil, nil, fmt.Errorf("xz: %w", err)
		}
		return xzr, nil, nil

	default:
		return file, nil, nil
	}
}
