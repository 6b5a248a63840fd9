package sqlstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/bioastra/spacekg/pkg/common"
	"github.com/bioastra/spacekg/pkg/logger"
)

// ImportPapers upserts the corpus into the papers table.
func (s *Store) ImportPapers(ctx context.Context, papers []common.Paper) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO papers (paper_id, title, authors, year, journal, doi_url, abstract)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(paper_id) DO UPDATE SET
			title = excluded.title,
			authors = excluded.authors,
			year = excluded.year,
			journal = excluded.journal,
			doi_url = excluded.doi_url,
			abstract = excluded.abstract
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, paper := range papers {
		var year any
		if paper.Year > 0 {
			year = paper.Year
		}
		if _, err := stmt.ExecContext(ctx, paper.ID, paper.Title, paper.Authors, year, paper.Journal, paper.DOI, paper.Abstract); err != nil {
			return fmt.Errorf("importing paper %s: %w", paper.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	logger.Info("papers imported", "count", len(papers))
	return nil
}

// ImportKeywords stores per-paper keywords with their scores. Keywords
// are normalized to lower case and shared across papers.
func (s *Store) ImportKeywords(ctx context.Context, paperKeywords map[string][]Keyword) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for paperID, keywords := range paperKeywords {
		for _, keyword := range keywords {
			word := strings.ToLower(strings.TrimSpace(keyword.Keyword))
			if word == "" {
				continue
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO keywords (keyword) VALUES (?) ON CONFLICT(keyword) DO NOTHING`, word); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO paper_keyword (paper_id, keyword_id, score)
				SELECT ?, keyword_id, ? FROM keywords WHERE keyword = ?
				ON CONFLICT(paper_id, keyword_id) DO UPDATE SET score = excluded.score
			`, paperID, keyword.Score, word); err != nil {
				return fmt.Errorf("linking keyword %q to %s: %w", word, paperID, err)
			}
		}
	}
	return tx.Commit()
}

// ImportClusters stores the clusters and their paper assignments.
func (s *Store) ImportClusters(ctx context.Context, clusters []Cluster) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, cluster := range clusters {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO clusters (cluster_id, label, summary) VALUES (?, ?, ?)
			ON CONFLICT(cluster_id) DO UPDATE SET label = excluded.label, summary = excluded.summary
		`, cluster.ID, cluster.Label, cluster.Summary); err != nil {
			return err
		}
		for _, paperID := range cluster.Papers {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO paper_cluster (paper_id, cluster_id) VALUES (?, ?)
				ON CONFLICT(paper_id, cluster_id) DO NOTHING
			`, paperID, cluster.ID); err != nil {
				return fmt.Errorf("assigning paper %s to cluster %d: %w", paperID, cluster.ID, err)
			}
		}
	}
	return tx.Commit()
}

// ImportSummaries stores one generated summary per paper.
func (s *Store) ImportSummaries(ctx context.Context, summaries map[string]Summary) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for paperID, summary := range summaries {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO summaries (paper_id, summary, method) VALUES (?, ?, ?)
			ON CONFLICT(paper_id) DO UPDATE SET summary = excluded.summary, method = excluded.method
		`, paperID, summary.Text, summary.Method); err != nil {
			return fmt.Errorf("importing summary for %s: %w", paperID, err)
		}
	}
	return tx.Commit()
}
