package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/binamralamsal/quiz-score-maintainer/internal/cache"
	"github.com/binamralamsal/quiz-score-maintainer/internal/models"
	"github.com/binamralamsal/quiz-score-maintainer/internal/parser"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type IngestStatus string

const (
	// IngestCreated means a new quiz and its scores were written.
	IngestCreated IngestStatus = "created"
	// IngestDuplicate means the same text was already ingested for this chat.
	IngestDuplicate IngestStatus = "duplicate"
	// IngestEmpty means the text carried no parseable entries; nothing was written.
	IngestEmpty IngestStatus = "empty"
	// IngestUnresolved means no entry survived identity resolution; nothing was
	// written, so the same text can be ingested again once lookups recover.
	IngestUnresolved IngestStatus = "unresolved"
)

// Ingestion stages reported to the progress callback while /addscore runs.
const (
	StageScanning  = "scanning"
	StageInserting = "inserting"
)

// ProgressFunc receives stage notifications during a multi-step ingestion so
// the gateway can edit its status message in place.
type ProgressFunc func(stage string)

type IngestResult struct {
	Status IngestStatus
	Quiz   *models.Quiz
	Scores int
}

// ScoreService ingests quiz-result announcements and removes them. It is the
// only writer of quizzes, participants and scores.
type ScoreService struct {
	db       *gorm.DB
	resolver *ResolverService
	boards   *cache.Board
	log      zerolog.Logger
}

func NewScoreService(db *gorm.DB, resolver *ResolverService, boards *cache.Board, log zerolog.Logger) *ScoreService {
	return &ScoreService{db: db, resolver: resolver, boards: boards, log: log}
}

// Ingest parses announcement text and persists the quiz with one score row
// per resolved participant, atomically. Ingesting the same text twice for a
// chat is reported as IngestDuplicate, including when a concurrent ingestion
// wins the insert race. Directory lookups run before the transaction opens.
func (s *ScoreService) Ingest(ctx context.Context, chatID, text string, tag *string, progress ProgressFunc) (*IngestResult, error) {
	parsed := parser.Parse(text)
	if len(parsed.Entries) == 0 {
		return &IngestResult{Status: IngestEmpty}, nil
	}

	fingerprint := parser.Fingerprint(text)

	var existing models.Quiz
	err := s.db.WithContext(ctx).
		Where("chat_id = ? AND fingerprint = ?", chatID, fingerprint).
		First(&existing).Error
	if err == nil {
		return &IngestResult{Status: IngestDuplicate, Quiz: &existing}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check fingerprint: %w", err)
	}

	notify(progress, StageScanning)
	resolved := s.resolver.Resolve(ctx, parsed.Entries)
	if len(resolved) == 0 {
		// Writing a quiz with no scores would burn the fingerprint for good.
		s.log.Warn().Str("chat_id", chatID).Str("title", parsed.Title).Msg("no entries resolved, skipping ingestion")
		return &IngestResult{Status: IngestUnresolved}, nil
	}

	notify(progress, StageInserting)
	quiz := models.Quiz{
		ChatID:      chatID,
		Title:       parsed.Title,
		Fingerprint: fingerprint,
		Tag:         tag,
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("begin: %w", tx.Error)
	}

	if err := tx.Create(&quiz).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race against a concurrent ingestion of the same text.
			return &IngestResult{Status: IngestDuplicate}, nil
		}
		return nil, fmt.Errorf("insert quiz: %w", err)
	}

	participants, err := mergeParticipants(tx, resolved)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("merge participants: %w", err)
	}

	for _, p := range participants {
		score := models.Score{
			ParticipantID: p.ID,
			QuizID:        quiz.ID,
			Score:         scoreFor(resolved, p),
		}
		if err := tx.Create(&score).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("insert score: %w", err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	s.boards.InvalidateChat(ctx, chatID)
	s.log.Info().Str("chat_id", chatID).Str("title", quiz.Title).Int("scores", len(participants)).Msg("quiz ingested")

	return &IngestResult{Status: IngestCreated, Quiz: &quiz, Scores: len(participants)}, nil
}

// Remove deletes the quiz matching the announcement text for a chat; its
// scores go with it via the cascade. A missing quiz is not an error.
func (s *ScoreService) Remove(ctx context.Context, chatID, text string) (bool, error) {
	fingerprint := parser.Fingerprint(text)

	res := s.db.WithContext(ctx).
		Where("chat_id = ? AND fingerprint = ?", chatID, fingerprint).
		Delete(&models.Quiz{})
	if res.Error != nil {
		return false, fmt.Errorf("delete quiz: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}

	s.boards.InvalidateChat(ctx, chatID)
	s.log.Info().Str("chat_id", chatID).Msg("quiz removed")
	return true, nil
}

// mergeParticipants upserts the resolved identities inside the ingestion
// transaction. Entries carrying an external id are merged on it, refreshing
// name and handle to the latest values; the rest are matched by exact name or
// created fresh.
func mergeParticipants(tx *gorm.DB, resolved []ResolvedEntry) ([]models.Participant, error) {
	participants := make([]models.Participant, 0, len(resolved))

	for _, r := range resolved {
		if r.ExternalID != "" {
			p := models.Participant{
				Name:       r.Name,
				Handle:     optional(r.Handle),
				ExternalID: optional(r.ExternalID),
			}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "external_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"name", "handle", "updated_at"}),
			}).Create(&p).Error
			if err != nil {
				return nil, err
			}
			// Conflict-update paths don't reliably report the id back, so
			// re-read the merged row.
			if err := tx.Where("external_id = ?", r.ExternalID).First(&p).Error; err != nil {
				return nil, err
			}
			participants = append(participants, p)
			continue
		}

		var p models.Participant
		err := tx.Where("name = ?", r.Name).First(&p).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			p = models.Participant{Name: r.Name}
			err = tx.Create(&p).Error
		}
		if err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}

	return participants, nil
}

// scoreFor binds a persisted participant back to its parsed score: external
// id first, display name as the fallback.
func scoreFor(resolved []ResolvedEntry, p models.Participant) int {
	if p.ExternalID != nil {
		for _, r := range resolved {
			if r.ExternalID != "" && r.ExternalID == *p.ExternalID {
				return r.Score
			}
		}
	}
	for _, r := range resolved {
		if r.Name == p.Name {
			return r.Score
		}
	}
	return 0
}

func notify(progress ProgressFunc, stage string) {
	if progress != nil {
		progress(stage)
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
