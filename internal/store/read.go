package store

import (
	"context"
	"database/sql"
	"fmt"
)

// ResolutionRecord is a journalled resolution as stored.
type ResolutionRecord struct {
	ID         string   `json:"id"`
	Session    string   `json:"session"`
	Seq        int64    `json:"seq"`
	Group      string   `json:"group"`
	Args       []string `json:"args"`
	Outcome    string   `json:"outcome"`
	Mode       string   `json:"mode"`
	Selected   string   `json:"selected,omitempty"`
	Candidates []string `json:"candidates"`
}

// ConversionRecord is a journalled conversion lookup as stored.
type ConversionRecord struct {
	ID          string   `json:"id"`
	Session     string   `json:"session"`
	Seq         int64    `json:"seq"`
	Source      string   `json:"source"`
	Target      string   `json:"target"`
	Convertible bool     `json:"convertible"`
	Direct      bool     `json:"direct"`
	Identity    bool     `json:"identity"`
	Steps       []string `json:"steps"`
}

// ListResolutions returns the journalled resolutions of group, or of every
// group when group is empty. Results are ordered deterministically:
// ORDER BY seq ASC, id ASC COLLATE BINARY.
//
// Returns an empty slice (not nil) if nothing was journalled.
func (s *Store) ListResolutions(ctx context.Context, group string) ([]ResolutionRecord, error) {
	query := `
		SELECT id, session, seq, group_name, args, outcome, mode, selected, candidates
		FROM resolutions`
	var args []any
	if group != "" {
		query += ` WHERE group_name = ?`
		args = append(args, group)
	}
	query += ` ORDER BY seq ASC, id COLLATE BINARY ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query resolutions: %w", err)
	}
	defer rows.Close()

	records := []ResolutionRecord{}
	for rows.Next() {
		rec, err := scanResolution(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate resolutions: %w", err)
	}
	return records, nil
}

func scanResolution(rows *sql.Rows) (ResolutionRecord, error) {
	var (
		rec        ResolutionRecord
		argsJSON   string
		candidates string
	)
	if err := rows.Scan(&rec.ID, &rec.Session, &rec.Seq, &rec.Group, &argsJSON,
		&rec.Outcome, &rec.Mode, &rec.Selected, &candidates); err != nil {
		return rec, fmt.Errorf("scan resolution: %w", err)
	}
	var err error
	if rec.Args, err = unmarshalNames(argsJSON); err != nil {
		return rec, fmt.Errorf("resolution %s: %w", rec.ID, err)
	}
	if rec.Candidates, err = unmarshalNames(candidates); err != nil {
		return rec, fmt.Errorf("resolution %s: %w", rec.ID, err)
	}
	return rec, nil
}

// ListConversions returns every journalled conversion lookup in seq order.
func (s *Store) ListConversions(ctx context.Context) ([]ConversionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session, seq, source, target, convertible, direct, identity, steps
		FROM conversions
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query conversions: %w", err)
	}
	defer rows.Close()

	records := []ConversionRecord{}
	for rows.Next() {
		var (
			rec       ConversionRecord
			stepsJSON string
		)
		if err := rows.Scan(&rec.ID, &rec.Session, &rec.Seq, &rec.Source, &rec.Target,
			&rec.Convertible, &rec.Direct, &rec.Identity, &stepsJSON); err != nil {
			return nil, fmt.Errorf("scan conversion: %w", err)
		}
		if rec.Steps, err = unmarshalNames(stepsJSON); err != nil {
			return nil, fmt.Errorf("conversion %s: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversions: %w", err)
	}
	return records, nil
}

// ListGroups returns the distinct journalled group names, sorted.
func (s *Store) ListGroups(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT group_name FROM resolutions
		ORDER BY group_name COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query groups: %w", err)
	}
	defer rows.Close()

	groups := []string{}
	for rows.Next() {
		var g string
		if err := rows.Scan(&g); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate groups: %w", err)
	}
	return groups, nil
}

// CountResolutions returns the number of journalled call shapes.
func (s *Store) CountResolutions(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM resolutions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count resolutions: %w", err)
	}
	return n, nil
}

// LastSeq returns the highest seq in the journal, or 0 when it is empty.
// A linker continuing the journal starts its clock there.
func (s *Store) LastSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) FROM (
			SELECT seq FROM resolutions
			UNION ALL
			SELECT seq FROM conversions
		)
	`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("last seq: %w", err)
	}
	return seq, nil
}
