package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"

	"github.com/bioastra/spacekg/pkg/common"
)

// ErrNotFound is returned for lookups of papers that do not exist.
var ErrNotFound = errors.New("paper not found")

// Keyword is one extracted keyword with its relevance score.
type Keyword struct {
	Keyword string  `json:"keyword"`
	Score   float64 `json:"score"`
}

// Cluster groups thematically related papers.
type Cluster struct {
	ID      int      `json:"cluster_id"`
	Label   string   `json:"label"`
	Summary string   `json:"summary,omitempty"`
	Papers  []string `json:"papers,omitempty"`
}

// Summary is one generated paper summary.
type Summary struct {
	Text   string `json:"summary"`
	Method string `json:"method,omitempty"`
}

// PaperDetails is a paper together with its relational annotations.
type PaperDetails struct {
	common.Paper
	Summary  string    `json:"summary,omitempty"`
	Keywords []Keyword `json:"keywords,omitempty"`
	Clusters []Cluster `json:"clusters,omitempty"`
}

// Counts summarizes the table sizes.
type Counts struct {
	Papers    int `json:"papers"`
	Keywords  int `json:"keywords"`
	Clusters  int `json:"clusters"`
	Summaries int `json:"summaries"`
}

func scanPaper(scanner interface{ Scan(...any) error }) (common.Paper, error) {
	var paper common.Paper
	var authors, journal, doi sql.NullString
	var year sql.NullInt64
	err := scanner.Scan(&paper.ID, &paper.Title, &authors, &year, &journal, &doi, &paper.Abstract)
	if err != nil {
		return paper, err
	}
	paper.Authors = authors.String
	paper.Journal = journal.String
	paper.DOI = doi.String
	paper.Year = int(year.Int64)
	return paper, nil
}

const paperColumns = "paper_id, title, authors, year, journal, doi_url, abstract"

// ListPapers returns a page of papers ordered by id.
func (s *Store) ListPapers(ctx context.Context, limit, offset int) ([]common.Paper, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+paperColumns+" FROM papers ORDER BY paper_id LIMIT ? OFFSET ?", limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var papers []common.Paper
	for rows.Next() {
		paper, err := scanPaper(rows)
		if err != nil {
			return nil, err
		}
		papers = append(papers, paper)
	}
	return papers, rows.Err()
}

// PaperDetails returns one paper with its summary, keywords and
// cluster memberships.
func (s *Store) PaperDetails(ctx context.Context, paperID string) (PaperDetails, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+paperColumns+" FROM papers WHERE paper_id = ?", paperID)
	paper, err := scanPaper(row)
	if errors.Is(err, sql.ErrNoRows) {
		return PaperDetails{}, ErrNotFound
	}
	if err != nil {
		return PaperDetails{}, err
	}
	details := PaperDetails{Paper: paper}

	var summary sql.NullString
	err = s.db.QueryRowContext(ctx,
		"SELECT summary FROM summaries WHERE paper_id = ?", paperID).Scan(&summary)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return PaperDetails{}, err
	}
	details.Summary = summary.String

	keywordRows, err := s.db.QueryContext(ctx, `
		SELECT k.keyword, pk.score
		FROM paper_keyword pk JOIN keywords k ON k.keyword_id = pk.keyword_id
		WHERE pk.paper_id = ?
		ORDER BY pk.score DESC, k.keyword
	`, paperID)
	if err != nil {
		return PaperDetails{}, err
	}
	defer keywordRows.Close()
	for keywordRows.Next() {
		var keyword Keyword
		if err := keywordRows.Scan(&keyword.Keyword, &keyword.Score); err != nil {
			return PaperDetails{}, err
		}
		details.Keywords = append(details.Keywords, keyword)
	}
	if err := keywordRows.Err(); err != nil {
		return PaperDetails{}, err
	}

	clusterRows, err := s.db.QueryContext(ctx, `
		SELECT c.cluster_id, c.label
		FROM paper_cluster pc JOIN clusters c ON c.cluster_id = pc.cluster_id
		WHERE pc.paper_id = ?
		ORDER BY c.cluster_id
	`, paperID)
	if err != nil {
		return PaperDetails{}, err
	}
	defer clusterRows.Close()
	for clusterRows.Next() {
		var cluster Cluster
		if err := clusterRows.Scan(&cluster.ID, &cluster.Label); err != nil {
			return PaperDetails{}, err
		}
		details.Clusters = append(details.Clusters, cluster)
	}
	return details, clusterRows.Err()
}

// PapersAfterYear lists papers published in or after the given year.
func (s *Store) PapersAfterYear(ctx context.Context, year int) ([]common.Paper, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+paperColumns+" FROM papers WHERE year >= ? ORDER BY year, paper_id", year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var papers []common.Paper
	for rows.Next() {
		paper, err := scanPaper(rows)
		if err != nil {
			return nil, err
		}
		papers = append(papers, paper)
	}
	return papers, rows.Err()
}

// PapersInCluster lists the papers assigned to one cluster.
func (s *Store) PapersInCluster(ctx context.Context, clusterID int) ([]common.Paper, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.paper_id, p.title, p.authors, p.year, p.journal, p.doi_url, p.abstract
		FROM papers p JOIN paper_cluster pc ON pc.paper_id = p.paper_id
		WHERE pc.cluster_id = ?
		ORDER BY p.paper_id
	`, clusterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var papers []common.Paper
	for rows.Next() {
		paper, err := scanPaper(rows)
		if err != nil {
			return nil, err
		}
		papers = append(papers, paper)
	}
	return papers, rows.Err()
}

// SearchByKeyword lists papers annotated with a keyword, best scores
// first.
func (s *Store) SearchByKeyword(ctx context.Context, keyword string) ([]common.Paper, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.paper_id, p.title, p.authors, p.year, p.journal, p.doi_url, p.abstract
		FROM papers p
		JOIN paper_keyword pk ON pk.paper_id = p.paper_id
		JOIN keywords k ON k.keyword_id = pk.keyword_id
		WHERE k.keyword = lower(?)
		ORDER BY pk.score DESC, p.paper_id
	`, keyword)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var papers []common.Paper
	for rows.Next() {
		paper, err := scanPaper(rows)
		if err != nil {
			return nil, err
		}
		papers = append(papers, paper)
	}
	return papers, rows.Err()
}

// Clusters lists all clusters with their paper counts.
func (s *Store) Clusters(ctx context.Context) ([]Cluster, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.cluster_id, c.label, COALESCE(c.summary, ''),
		       COALESCE(group_concat(pc.paper_id), '')
		FROM clusters c
		LEFT JOIN paper_cluster pc ON pc.cluster_id = c.cluster_id
		GROUP BY c.cluster_id
		ORDER BY c.cluster_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clusters []Cluster
	for rows.Next() {
		var cluster Cluster
		var papers string
		if err := rows.Scan(&cluster.ID, &cluster.Label, &cluster.Summary, &papers); err != nil {
			return nil, err
		}
		if papers != "" {
			cluster.Papers = strings.Split(papers, ",")
			sort.Strings(cluster.Papers)
		}
		clusters = append(clusters, cluster)
	}
	return clusters, rows.Err()
}

// Counts returns the table sizes.
func (s *Store) Counts(ctx context.Context) (Counts, error) {
	var counts Counts
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT count(*) FROM papers),
			(SELECT count(*) FROM keywords),
			(SELECT count(*) FROM clusters),
			(SELECT count(*) FROM summaries)
	`).Scan(&counts.Papers, &counts.Keywords, &counts.Clusters, &counts.Summaries)
	return counts, err
}

