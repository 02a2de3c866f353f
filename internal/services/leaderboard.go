package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/binamralamsal/quiz-score-maintainer/internal/cache"
	"github.com/binamralamsal/quiz-score-maintainer/internal/models"

	"gorm.io/gorm"
)

// ErrTagNotFound signals a leaderboard query scoped to a tag no quiz has ever
// used. It is a distinguishable "no data" outcome, not a storage failure.
var ErrTagNotFound = errors.New("no quizzes with given tag")

// DefaultBoardLimit caps leaderboard length unless the caller asks otherwise.
const DefaultBoardLimit = 30

// BoardEntry is one aggregated leaderboard row: a participant and the sum of
// their scores across every matching quiz.
type BoardEntry struct {
	ParticipantID uint    `json:"participant_id"`
	Name          string  `json:"name"`
	Handle        *string `json:"handle,omitempty"`
	TotalScore    int     `json:"total_score"`
}

// LeaderboardService answers read-only ranking queries over ingested scores.
type LeaderboardService struct {
	db     *gorm.DB
	boards *cache.Board
}

func NewLeaderboardService(db *gorm.DB, boards *cache.Board) *LeaderboardService {
	return &LeaderboardService{db: db, boards: boards}
}

// Leaderboard sums scores per participant for a chat, optionally scoped to an
// exact tag, ordered by total descending with participant id as the stable
// tie-break. limit <= 0 means DefaultBoardLimit.
func (s *LeaderboardService) Leaderboard(ctx context.Context, chatID string, tag *string, limit int) ([]BoardEntry, error) {
	if limit <= 0 {
		limit = DefaultBoardLimit
	}

	cacheTag := ""
	if tag != nil {
		cacheTag = *tag
	}

	var entries []BoardEntry
	if limit == DefaultBoardLimit && s.boards.Get(ctx, chatID, cacheTag, &entries) {
		return entries, nil
	}

	if tag != nil {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Quiz{}).Where("tag = ?", *tag).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("check tag: %w", err)
		}
		if count == 0 {
			return nil, ErrTagNotFound
		}
	}

	query := s.db.WithContext(ctx).Table("scores").
		Select("participants.id AS participant_id, participants.name AS name, participants.handle AS handle, SUM(scores.score) AS total_score").
		Joins("JOIN participants ON participants.id = scores.participant_id").
		Joins("JOIN quizzes ON quizzes.id = scores.quiz_id").
		Where("quizzes.chat_id = ?", chatID)
	if tag != nil {
		query = query.Where("quizzes.tag = ?", *tag)
	}

	err := query.
		Group("participants.id, participants.name, participants.handle").
		Order("total_score DESC, participants.id ASC").
		Limit(limit).
		Scan(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("aggregate scores: %w", err)
	}

	if limit == DefaultBoardLimit {
		s.boards.Set(ctx, chatID, cacheTag, entries)
	}

	return entries, nil
}

// Quizzes lists the titles of ingested quizzes for a chat, optionally scoped
// to a tag, in ingestion order.
func (s *LeaderboardService) Quizzes(ctx context.Context, chatID string, tag *string) ([]string, error) {
	query := s.db.WithContext(ctx).Model(&models.Quiz{}).Where("chat_id = ?", chatID)
	if tag != nil {
		query = query.Where("tag = ?", *tag)
	}

	var titles []string
	if err := query.Order("id ASC").Pluck("title", &titles).Error; err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	return titles, nil
}

// Tags lists the distinct tags used by a chat's quizzes.
func (s *LeaderboardService) Tags(ctx context.Context, chatID string) ([]string, error) {
	var tags []string
	err := s.db.WithContext(ctx).Model(&models.Quiz{}).
		Distinct().
		Where("chat_id = ? AND tag IS NOT NULL", chatID).
		Order("tag ASC").
		Pluck("tag", &tags).Error
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}
