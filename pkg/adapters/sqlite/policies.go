package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/benepick/benepick/pkg/domain"
	"gopkg.in/yaml.v3"
)

const policyColumns = `policy_id, title, summary, ministry, source_type, ctpv_nm, sgg_nm,
	support_content, target_detail, application_method, phone, website`

// ChunkBenefit is the chunk type reported for keyword search hits.
const ChunkBenefit = "benefit"

// PolicyStore implements ports.PolicySearcher and ports.PolicyCatalog with
// keyword matching.
type PolicyStore struct {
	db *DB
}

// NewPolicyStore returns a policy store over db.
func NewPolicyStore(db *DB) *PolicyStore {
	return &PolicyStore{db: db}
}

// Search matches every query term of two or more characters against title,
// summary and support content. With a region filter, nationwide (central)
// policies always qualify. Scores decay with rank: max(0.5, 1-0.08*rank).
func (s *PolicyStore) Search(ctx context.Context, query string, filter domain.SearchFilter, topK int) ([]domain.PolicySource, error) {
	terms := searchTerms(query)
	if len(terms) == 0 {
		return []domain.PolicySource{}, nil
	}
	if topK <= 0 {
		topK = 5
	}

	var (
		clauses []string
		args    []any
	)
	for _, t := range terms {
		clauses = append(clauses, "(title LIKE ? OR summary LIKE ? OR support_content LIKE ?)")
		p := "%" + t + "%"
		args = append(args, p, p, p)
	}
	q := "SELECT " + policyColumns + " FROM welfare_policies WHERE (" + strings.Join(clauses, " OR ") + ")"
	if filter.Region != "" {
		q += " AND (ctpv_nm LIKE ? OR source_type = 'central')"
		args = append(args, "%"+filter.Region+"%")
	}
	q += " ORDER BY rowid LIMIT ?"
	args = append(args, topK)

	rows, err := s.db.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("search policies: %w", err)
	}
	defer rows.Close()

	out := []domain.PolicySource{}
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, err
		}
		i := len(out)
		out = append(out, domain.PolicySource{
			Policy:       *p,
			Score:        max(0.5, 1-0.08*float64(i)),
			ChunkType:    ChunkBenefit,
			ChunkContent: p.Summary,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search policies: %w", err)
	}
	return out, nil
}

// searchTerms splits a query on whitespace and keeps distinct terms of at
// least two characters.
func searchTerms(query string) []string {
	var terms []string
	seen := make(map[string]bool)
	for _, f := range strings.Fields(query) {
		if utf8.RuneCountInString(f) < 2 || seen[f] {
			continue
		}
		seen[f] = true
		terms = append(terms, f)
	}
	return terms
}

// GetPolicy loads one policy.
func (s *PolicyStore) GetPolicy(ctx context.Context, policyID string) (*domain.Policy, error) {
	row := s.db.db.QueryRowContext(ctx, "SELECT "+policyColumns+" FROM welfare_policies WHERE policy_id = ?", policyID)
	p, err := scanPolicy(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrPolicyNotFound
	}
	return p, err
}

// CountPolicies returns the number of stored policies.
func (s *PolicyStore) CountPolicies(ctx context.Context) (int, error) {
	var n int
	if err := s.db.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM welfare_policies").Scan(&n); err != nil {
		return 0, fmt.Errorf("count policies: %w", err)
	}
	return n, nil
}

// UpsertPolicies inserts or replaces policies in one transaction.
func (s *PolicyStore) UpsertPolicies(ctx context.Context, policies []domain.Policy) error {
	tx, err := s.db.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO welfare_policies (`+policyColumns+`)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(policy_id) DO UPDATE SET
		title = excluded.title,
		summary = excluded.summary,
		ministry = excluded.ministry,
		source_type = excluded.source_type,
		ctpv_nm = excluded.ctpv_nm,
		sgg_nm = excluded.sgg_nm,
		support_content = excluded.support_content,
		target_detail = excluded.target_detail,
		application_method = excluded.application_method,
		phone = excluded.phone,
		website = excluded.website`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, p := range policies {
		if p.PolicyID == "" || p.Title == "" {
			return domain.NewValidationError("policy", "policy_id and title are required")
		}
		sourceType := p.SourceType
		if sourceType == "" {
			sourceType = "central"
		}
		_, err := stmt.ExecContext(ctx,
			p.PolicyID, p.Title, nullable(p.Summary), nullable(p.Ministry), sourceType,
			nullable(p.CtpvNm), nullable(p.SggNm), nullable(p.SupportContent), nullable(p.TargetDetail),
			nullable(p.ApplicationMethod), nullable(p.Phone), nullable(p.Website),
		)
		if err != nil {
			return fmt.Errorf("upsert policy %s: %w", p.PolicyID, err)
		}
	}
	return tx.Commit()
}

// policyFile is the YAML seed format: a top-level "policies" list.
type policyFile struct {
	Policies []domain.Policy `yaml:"policies"`
}

// ImportPolicies reads a YAML seed file and upserts its policies.
// It returns how many were imported.
func (s *PolicyStore) ImportPolicies(ctx context.Context, r io.Reader) (int, error) {
	var f policyFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return 0, fmt.Errorf("decode policies: %w", err)
	}
	if err := s.UpsertPolicies(ctx, f.Policies); err != nil {
		return 0, err
	}
	return len(f.Policies), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPolicy(row scanner) (*domain.Policy, error) {
	var p domain.Policy
	var summary, ministry, ctpv, sgg, support, target sql.NullString
	var method, phone, website sql.NullString
	err := row.Scan(&p.PolicyID, &p.Title, &summary, &ministry, &p.SourceType, &ctpv, &sgg,
		&support, &target, &method, &phone, &website)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan policy row: %w", err)
	}
	p.Summary = summary.String
	p.Ministry = ministry.String
	p.CtpvNm = ctpv.String
	p.SggNm = sgg.String
	p.SupportContent = support.String
	p.TargetDetail = target.String
	p.ApplicationMethod = method.String
	p.Phone = phone.String
	p.Website = website.String
	return &p, nil
}
