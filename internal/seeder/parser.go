// Package seeder reads the lists of city names a run is seeded with.
package seeder

import (
	"archive/zip"
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ParseFile reads city names from a .txt file, or from the first .txt entry
// of a .zip archive
func ParseFile(path string) ([]string, error) {
	if strings.EqualFold(filepath.Ext(path), ".zip") {
		return parseZip(path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	return Parse(file)
}

func parseZip(path string) ([]string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open zip: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if !strings.HasSuffix(f.Name, ".txt") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s in zip: %w", f.Name, err)
		}
		defer rc.Close()
		return Parse(rc)
	}

	return nil, fmt.Errorf("no .txt file found in %s", path)
}

// Parse reads one city name per line. Blank lines and lines starting with
// '#' are skipped, repeated names are kept once.
func Parse(r io.Reader) ([]string, error) {
	var names []string
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan city list: %w", err)
	}

	return Merge(names), nil
}

// Merge concatenates name lists, keeping the first occurrence of each name
func Merge(lists ...[]string) []string {
	seen := make(map[string]bool)
	var merged []string
	for _, list := range lists {
		for _, name := range list {
			if seen[name] {
				continue
			}
			seen[name] = true
			merged = append(merged, name)
		}
	}
	return merged
}
