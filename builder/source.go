package builder

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	gojson "github.com/goccy/go-json"
	"github.com/hupe1980/hfabric/internal/fs"
	"github.com/hupe1980/hfabric/model"
	"github.com/klauspost/compress/zstd"
)

const maxLineSize = 64 << 20

type format int

const (
	formatUnknown format = iota
	formatLines
	formatArray
)

// sourceFormat classifies an input file by extension.
func sourceFormat(name string) (f format, compressed bool) {
	name = strings.ToLower(name)
	if strings.HasSuffix(name, ".zst") {
		compressed = true
		name = strings.TrimSuffix(name, ".zst")
	}
	switch filepath.Ext(name) {
	case ".ndjson", ".jsonl":
		return formatLines, compressed
	case ".json":
		return formatArray, compressed
	}
	return formatUnknown, false
}

// listSources returns the input files of dir in name order.
func listSources(fsys fs.FileSystem, dir string) ([]string, error) {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if f, _ := sourceFormat(e.Name()); f != formatUnknown {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}

// rawItem is a decoded raw record or a per-record decoding failure.
type rawItem struct {
	line int
	rec  model.RawRecord
	err  error
}

// readSource decodes every record of one input file and calls fn for each.
func readSource(fsys fs.FileSystem, path string, fn func(rawItem)) error {
	f, err := fsys.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()

	kind, compressed := sourceFormat(path)
	var r io.Reader = f
	if compressed {
		zr, err := zstd.NewReader(f)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		defer zr.Close()
		r = zr
	}

	if kind == formatArray {
		return readArray(r, fn)
	}
	return readLines(r, fn)
}

func readLines(r io.Reader, fn func(rawItem)) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), maxLineSize)
	line := 0
	for sc.Scan() {
		line++
		b := bytes.TrimSpace(sc.Bytes())
		if len(b) == 0 {
			continue
		}
		var rec model.RawRecord
		err := gojson.Unmarshal(b, &rec)
		fn(rawItem{line: line, rec: rec, err: err})
	}
	return sc.Err()
}

func readArray(r io.Reader, fn func(rawItem)) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	var elems []gojson.RawMessage
	if err := gojson.Unmarshal(data, &elems); err != nil {
		fn(rawItem{line: 0, err: err})
		return nil
	}
	for i, e := range elems {
		var rec model.RawRecord
		err := gojson.Unmarshal(e, &rec)
		fn(rawItem{line: i + 1, rec: rec, err: err})
	}
	return nil
}
