package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/model"
)

// CheckInputs verifies that every path exists and is a regular file. All
// missing paths are reported together so the operator can fix them in
// one pass.
func CheckInputs(paths ...string) error {
	var missing []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || info.IsDir() {
			missing = append(missing, p)
		}
	}
	if len(missing) > 0 {
		return &MissingInputError{Paths: missing}
	}
	return nil
}

func openInput(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &ReadError{Path: path, Err: fmt.Errorf("%w: %w", ErrMissingInput, err)}
		}
		return nil, &ReadError{Path: path, Err: err}
	}
	return f, nil
}

// row is one data line of a headered CSV table. Columns are addressed by
// header name so column order in the file does not matter.
type row struct {
	path  string
	index int
	cols  map[string]int
	rec   []string
}

func (r row) str(key string) string {
	return strings.TrimSpace(r.rec[r.cols[key]])
}

func (r row) requiredStr(key string) (string, error) {
	v := r.str(key)
	if v == "" {
		return "", malformed(r.path, r.index, key, errors.New("empty value"))
	}
	return v, nil
}

// integer accepts "90" as well as float-formatted integers like "90.0".
func (r row) integer(key string) (int, error) {
	v := r.str(key)
	if n, err := strconv.Atoi(v); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, malformed(r.path, r.index, key, err)
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, malformed(r.path, r.index, key, fmt.Errorf("not an integer: %q", v))
	}
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, malformed(r.path, r.index, key, fmt.Errorf("integer out of range: %q", v))
	}
	return int(f), nil
}

func (r row) float(key string) (float64, error) {
	v := r.str(key)
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) {
		if err == nil {
			err = fmt.Errorf("not a number: %q", v)
		}
		return 0, malformed(r.path, r.index, key, err)
	}
	return f, nil
}

func (r row) date(key string) (time.Time, error) {
	t, err := model.ParseDate(r.str(key))
	if err != nil {
		return time.Time{}, malformed(r.path, r.index, key, err)
	}
	return t, nil
}

// readTable parses a headered CSV file and calls fn once per data row.
// The header must contain every required column. Any failure aborts the
// whole read.
func readTable(path string, required []string, fn func(r row) error) error {
	f, err := openInput(path)
	if err != nil {
		return err
	}
	defer f.Close()

	cr := csv.NewReader(f)
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return malformed(path, 0, "", errors.New("empty file, header row expected"))
		}
		return &ReadError{Path: path, Err: err}
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, key := range required {
		if _, ok := cols[key]; !ok {
			return malformed(path, 0, key, errors.New("missing column"))
		}
	}

	for index := 1; ; index++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return malformed(path, index, "", err)
		}
		if err := fn(row{path: path, index: index, cols: cols, rec: rec}); err != nil {
			return err
		}
	}
}
