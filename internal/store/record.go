package store

import (
	"context"
	"fmt"

	"github.com/anatawa12/sai/internal/linker"
	"github.com/anatawa12/sai/internal/overload"
	"github.com/anatawa12/sai/internal/types"
)

var _ linker.Recorder = (*Store)(nil)

// NewResolutionRecord describes the outcome o of resolving args against
// group in journal form. Session and Seq are left empty.
func NewResolutionRecord(group string, args types.ArgTypes, o *overload.Outcome) (ResolutionRecord, error) {
	id, err := types.ShapeID(group, args)
	if err != nil {
		return ResolutionRecord{}, err
	}
	rec := ResolutionRecord{
		ID:         id,
		Group:      group,
		Args:       args.Names(),
		Outcome:    o.Kind().String(),
		Mode:       o.Mode().String(),
		Candidates: []string{},
	}
	if sig := o.Signature(); sig != nil {
		rec.Selected = sig.Display()
	}
	for _, c := range o.Candidates() {
		rec.Candidates = append(rec.Candidates, c.Display())
	}
	return rec, nil
}

// RecordResolution journals a resolved call shape.
// Uses ON CONFLICT(id) DO NOTHING for idempotency: a shape resolves the
// same way every time, so only its first observation is kept.
func (s *Store) RecordResolution(ctx context.Context, r linker.Resolution) error {
	rec, err := NewResolutionRecord(r.Group, r.Args, r.Outcome)
	if err != nil {
		return fmt.Errorf("record resolution: %w", err)
	}
	argsJSON, err := marshalNames(rec.Args)
	if err != nil {
		return fmt.Errorf("record resolution: %w", err)
	}
	candJSON, err := marshalNames(rec.Candidates)
	if err != nil {
		return fmt.Errorf("record resolution: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO resolutions
		(id, session, seq, group_name, args, outcome, mode, selected, candidates)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		rec.ID,
		r.Session,
		r.Seq,
		rec.Group,
		argsJSON,
		rec.Outcome,
		rec.Mode,
		rec.Selected,
		candJSON,
	)
	if err != nil {
		return fmt.Errorf("record resolution: %w", err)
	}
	return nil
}

// RecordConversion journals a conversion lookup.
// Uses ON CONFLICT(id) DO NOTHING for idempotency.
func (s *Store) RecordConversion(ctx context.Context, c linker.Conversion) error {
	id, err := types.ConversionID(c.Source, c.Target)
	if err != nil {
		return fmt.Errorf("record conversion: %w", err)
	}

	var steps []string
	var direct, identity bool
	if c.Chain != nil {
		steps = c.Chain.Steps()
		direct = c.Chain.IsDirect()
		identity = c.Chain.IsIdentity()
	}
	stepsJSON, err := marshalNames(steps)
	if err != nil {
		return fmt.Errorf("record conversion: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO conversions
		(id, session, seq, source, target, convertible, direct, identity, steps)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		id,
		c.Session,
		c.Seq,
		c.Source.Name(),
		c.Target.Name(),
		boolToInt(c.Convertible),
		boolToInt(direct),
		boolToInt(identity),
		stepsJSON,
	)
	if err != nil {
		return fmt.Errorf("record conversion: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
