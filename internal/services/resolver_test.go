package services

import (
	"context"
	"testing"

	"github.com/binamralamsal/quiz-score-maintainer/internal/directory"
	"github.com/binamralamsal/quiz-score-maintainer/internal/parser"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_PlainNames(t *testing.T) {
	r := NewResolverService(nil, zerolog.Nop())

	resolved := r.Resolve(context.Background(), []parser.Entry{
		{Display: "User A", Score: 10},
		{Display: "  User B  ", Score: 5},
	})

	require.Len(t, resolved, 2)
	assert.Equal(t, ResolvedEntry{Name: "User A", Score: 10}, resolved[0])
	assert.Equal(t, ResolvedEntry{Name: "User B", Score: 5}, resolved[1])
}

func TestResolve_HandleLookup(t *testing.T) {
	dir := &fakeDirectory{users: map[string]directory.User{
		"@eve": {ExternalID: "42", FullName: "Eve Adams"},
	}}
	r := NewResolverService(dir, zerolog.Nop())

	resolved := r.Resolve(context.Background(), []parser.Entry{
		{Display: "@eve", Score: 7},
	})

	require.Len(t, resolved, 1)
	assert.Equal(t, ResolvedEntry{
		Name:       "Eve Adams",
		Handle:     "@eve",
		ExternalID: "42",
		Score:      7,
	}, resolved[0])
}

func TestResolve_LookupFailureDropsEntryOnly(t *testing.T) {
	dir := &fakeDirectory{err: errLookupDown}
	r := NewResolverService(dir, zerolog.Nop())

	resolved := r.Resolve(context.Background(), []parser.Entry{
		{Display: "Alice", Score: 3},
		{Display: "@gone", Score: 2},
		{Display: "Bob", Score: 1},
	})

	require.Len(t, resolved, 2)
	assert.Equal(t, "Alice", resolved[0].Name)
	assert.Equal(t, "Bob", resolved[1].Name)
}

func TestResolve_UnknownHandleDropped(t *testing.T) {
	dir := &fakeDirectory{users: map[string]directory.User{}}
	r := NewResolverService(dir, zerolog.Nop())

	resolved := r.Resolve(context.Background(), []parser.Entry{
		{Display: "@nobody", Score: 9},
	})

	assert.Empty(t, resolved)
}

func TestResolve_NoDirectoryConfigured(t *testing.T) {
	r := NewResolverService(nil, zerolog.Nop())

	resolved := r.Resolve(context.Background(), []parser.Entry{
		{Display: "@eve", Score: 7},
		{Display: "Frank", Score: 4},
	})

	require.Len(t, resolved, 1)
	assert.Equal(t, "Frank", resolved[0].Name)
}
