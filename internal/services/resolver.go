package services

import (
	"context"
	"strings"

	"github.com/binamralamsal/quiz-score-maintainer/internal/directory"
	"github.com/binamralamsal/quiz-score-maintainer/internal/parser"

	"github.com/rs/zerolog"
)

// DirectoryClient resolves "@handle" references to stable directory ids.
type DirectoryClient interface {
	LookupHandle(ctx context.Context, handle string) (*directory.User, error)
}

// ResolvedEntry is a parsed entry bound to a participant identity. ExternalID
// and Handle are empty for plain-name entries.
type ResolvedEntry struct {
	Name       string
	Handle     string
	ExternalID string
	Score      int
}

type ResolverService struct {
	dir DirectoryClient
	log zerolog.Logger
}

// NewResolverService builds a resolver. dir may be nil, in which case every
// handle entry is dropped, same as a failed lookup.
func NewResolverService(dir DirectoryClient, log zerolog.Logger) *ResolverService {
	return &ResolverService{dir: dir, log: log}
}

// Resolve turns parsed entries into participant identities. Handle entries go
// through the directory; a lookup failure of any kind drops that entry only,
// the rest of the list is unaffected. Resolve performs the network calls, so
// it must run before the write transaction opens.
func (s *ResolverService) Resolve(ctx context.Context, entries []parser.Entry) []ResolvedEntry {
	resolved := make([]ResolvedEntry, 0, len(entries))

	for _, entry := range entries {
		if !entry.IsHandle() {
			resolved = append(resolved, ResolvedEntry{
				Name:  strings.TrimSpace(entry.Display),
				Score: entry.Score,
			})
			continue
		}

		handle := strings.TrimSpace(entry.Display)
		if s.dir == nil {
			s.log.Debug().Str("handle", handle).Msg("no directory configured, dropping handle entry")
			continue
		}

		user, err := s.dir.LookupHandle(ctx, handle)
		if err != nil {
			s.log.Debug().Err(err).Str("handle", handle).Msg("directory lookup failed, dropping entry")
			continue
		}

		resolved = append(resolved, ResolvedEntry{
			Name:       user.FullName,
			Handle:     handle,
			ExternalID: user.ExternalID,
			Score:      entry.Score,
		})
	}

	return resolved
}
