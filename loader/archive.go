package loader

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/razeghi71/insight/dataset"
)

// CoursesDir is the archive folder holding course files.
const CoursesDir = "courses/"

var zipMagic = []byte("PK\x03\x04")

// DecodeArchive reads a course archive given as raw zip bytes or their
// base64 encoding. Files under courses/ are decoded on a bounded worker
// pool; files that fail to decode are skipped. Rows keep archive order.
func DecodeArchive(ctx context.Context, content []byte, opts Options) ([]dataset.Section, error) {
	raw, err := unwrap(content)
	if err != nil {
		return nil, err
	}
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}

	var files []*zip.File
	hasDir := false
	for _, f := range zr.File {
		if !strings.HasPrefix(f.Name, CoursesDir) {
			continue
		}
		hasDir = true
		if f.FileInfo().IsDir() {
			continue
		}
		files = append(files, f)
	}
	if !hasDir {
		return nil, fmt.Errorf("%w: no %s folder", ErrInvalidArchive, CoursesDir)
	}

	results, err := decodeFiles(ctx, files, opts)
	if err != nil {
		return nil, err
	}

	var rows []dataset.Section
	for _, r := range results {
		rows = append(rows, r...)
	}
	if len(rows) == 0 {
		return nil, ErrNoSections
	}
	return rows, nil
}

// unwrap returns zip bytes, decoding base64 when content is not a zip.
func unwrap(content []byte) ([]byte, error) {
	if bytes.HasPrefix(content, zipMagic) {
		return content, nil
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(content)))
	if err != nil {
		return nil, fmt.Errorf("%w: content is neither zip nor base64", ErrInvalidArchive)
	}
	return decoded, nil
}

func decodeFiles(ctx context.Context, files []*zip.File, opts Options) ([][]dataset.Section, error) {
	log := opts.logger()
	pool, err := ants.NewPool(opts.workers(), ants.WithPanicHandler(func(v any) {
		log.Error("course file decoder panic", "panic", v)
	}))
	if err != nil {
		return nil, fmt.Errorf("cannot start decode pool: %w", err)
	}
	defer pool.Release()

	results := make([][]dataset.Section, len(files))
	var wg sync.WaitGroup
	for i, f := range files {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return nil, err
		}
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			rows, err := decodeFile(f)
			if err != nil {
				log.Debug("skipping course file", "file", f.Name, "error", err)
				return
			}
			results[i] = rows
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return nil, fmt.Errorf("cannot schedule %s: %w", f.Name, err)
		}
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func decodeFile(f *zip.File) ([]dataset.Section, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	return ParseCourseFile(data)
}
