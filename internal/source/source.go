// Package source loads the ticker universe an ingestion run operates on.
package source

import (
	"bufio"
	"os"
	"strings"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

// LoadFile reads one ticker per line, trims whitespace, drops blank lines
// and uppercases everything else.
func LoadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open ticker file").With("path", path)
	}
	defer f.Close()

	var tickers []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		tickers = append(tickers, strings.ToUpper(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "scan ticker file").With("path", path)
	}

	logs.Infof("loaded %d tickers from %s", len(tickers), path)
	return tickers, nil
}

// ParseList splits a comma-separated ticker list, trimming and uppercasing
// each entry. Used by the command line override.
func ParseList(list string) []string {
	var tickers []string
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		tickers = append(tickers, strings.ToUpper(part))
	}
	return tickers
}

// Cap limits the universe to the first n tickers. Zero or negative n keeps
// everything.
func Cap(tickers []string, n int) []string {
	if n <= 0 || n >= len(tickers) {
		return tickers
	}
	return tickers[:n]
}
