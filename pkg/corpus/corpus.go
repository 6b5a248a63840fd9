package corpus

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/bioastra/spacekg/pkg/common"
)

// RequiredColumns are the CSV columns every corpus file must carry.
var RequiredColumns = []string{"paper_id", "title", "abstract"}

// Loader reads the cleaned-papers CSV into memory. Loads are cached per
// path so repeated stages reading the same corpus parse it once.
type Loader struct {
	cache   map[string][]common.Paper
	cacheMu sync.RWMutex
	group   singleflight.Group
}

// NewLoader creates a corpus loader with an empty cache.
func NewLoader() *Loader {
	return &Loader{
		cache: make(map[string][]common.Paper),
	}
}

// Load reads and parses the papers CSV at path. Rows without a paper_id
// or abstract are dropped, matching the cleaned-corpus contract.
func (l *Loader) Load(path string) ([]common.Paper, error) {
	l.cacheMu.RLock()
	if cached, ok := l.cache[path]; ok {
		l.cacheMu.RUnlock()
		return cached, nil
	}
	l.cacheMu.RUnlock()

	result, err, _ := l.group.Do(path, func() (any, error) {
		l.cacheMu.RLock()
		if cached, ok := l.cache[path]; ok {
			l.cacheMu.RUnlock()
			return cached, nil
		}
		l.cacheMu.RUnlock()

		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open corpus CSV: %w", err)
		}
		defer f.Close()

		papers, err := Parse(f)
		if err != nil {
			return nil, err
		}

		l.cacheMu.Lock()
		l.cache[path] = papers
		l.cacheMu.Unlock()

		return papers, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]common.Paper), nil
}

// Parse reads papers from CSV content. The first row must be a header
// containing at least the required columns; extra columns are ignored.
func Parse(r io.Reader) ([]common.Paper, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("corpus CSV is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.TrimSpace(col)] = i
	}
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("missing required column: %s", col)
		}
	}

	field := func(record []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var papers []common.Paper
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		paper := common.Paper{
			ID:       field(record, "paper_id"),
			Title:    field(record, "title"),
			Authors:  field(record, "authors"),
			Journal:  field(record, "journal"),
			DOI:      field(record, "doi_url"),
			Abstract: field(record, "abstract"),
		}
		if year := field(record, "year"); year != "" {
			if parsed, err := strconv.Atoi(year); err == nil {
				paper.Year = parsed
			}
		}

		// Mirrors the cleaned-corpus dropna contract.
		if paper.ID == "" || paper.Abstract == "" {
			continue
		}

		papers = append(papers, paper)
	}

	if len(papers) == 0 {
		return nil, fmt.Errorf("corpus CSV contains no valid papers")
	}

	return papers, nil
}
