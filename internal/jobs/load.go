package jobs

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Load reads the job list: one source reference per line, with blank lines
// and lines starting with '#' ignored. Order is preserved.
func Load(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading job list %s: %w", path, err)
	}
	defer f.Close()

	refs, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("reading job list %s: %w", path, err)
	}
	return refs, nil
}

// Parse reads job list entries from r.
func Parse(r io.Reader) ([]string, error) {
	var refs []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		refs = append(refs, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return refs, nil
}
