package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/anatawa12/sai/internal/compiler"
	"github.com/anatawa12/sai/internal/linker"
	"github.com/anatawa12/sai/internal/store"
	"github.com/anatawa12/sai/internal/types"
)

// linkSession is a linker over freshly compiled specs, optionally
// journalling into a database.
type linkSession struct {
	catalog *compiler.Catalog
	linker  *linker.Linker
	store   *store.Store // nil without --db
}

// openLinkSession loads specsDir and builds a linker over it. With a
// dbPath the linker journals into that database and its clock continues
// after the last recorded seq. The returned error is already reported
// through formatter.
func openLinkSession(ctx context.Context, opts *RootOptions, formatter *OutputFormatter, specsDir, dbPath string) (*linkSession, error) {
	loadResult, loadErrors := LoadSpecs(specsDir, LoadModeFailFast)
	if len(loadErrors) > 0 {
		code, message := firstLoadError(loadErrors[0])
		return nil, commandError(formatter, code, message)
	}
	formatter.VerboseLog("Loaded %d CUE file(s) from %s", loadResult.FileCount, specsDir)

	cat := loadResult.Catalog
	linkOpts := []linker.Option{
		linker.WithRegistry(cat.Registry()),
		linker.WithHarvester(cat),
		linker.WithLogger(opts.logger()),
	}

	s := &linkSession{catalog: cat}
	if dbPath != "" {
		st, err := store.Open(dbPath)
		if err != nil {
			return nil, commandError(formatter, ErrCodeDatabase, fmt.Sprintf("opening database: %v", err))
		}
		last, err := st.LastSeq(ctx)
		if err != nil {
			st.Close()
			return nil, commandError(formatter, ErrCodeDatabase, fmt.Sprintf("reading journal: %v", err))
		}
		formatter.VerboseLog("Journalling to %s after seq %d", dbPath, last)
		s.store = st
		linkOpts = append(linkOpts,
			linker.WithRecorder(st),
			linker.WithClock(linker.NewClockAt(last)),
		)
	}
	s.linker = linker.New(linkOpts...)
	return s, nil
}

// Close releases the journal database, if any.
func (s *linkSession) Close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}

// sessionID returns the linker session when the session journals.
func (s *linkSession) sessionID() string {
	if s.store == nil {
		return ""
	}
	return s.linker.Session()
}

// lookupTypes resolves type names against the session universe.
func (s *linkSession) lookupTypes(names []string) (types.ArgTypes, error) {
	args := make(types.ArgTypes, len(names))
	for i, name := range names {
		t, ok := s.linker.Universe().Lookup(name)
		if !ok {
			return nil, &LoadError{Code: ErrCodeUnknownType, Message: fmt.Sprintf("unknown type %q", name)}
		}
		args[i] = t
	}
	return args, nil
}

// groupError maps a linker group lookup failure to a CLI error code.
func groupError(err error) (string, string) {
	if errors.Is(err, linker.ErrUnknownGroup) {
		return ErrCodeUnknownGroup, err.Error()
	}
	return ErrCodeGeneric, err.Error()
}
