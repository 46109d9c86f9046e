package progress

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/linguapersonal/backend/services/lesson"
	"github.com/linguapersonal/backend/services/logging"
)

var ErrSessionNotFound = errors.New("learning session not found")

// mistakeLimit caps the history returned by ListMistakes.
const mistakeLimit = 20

// Mistake is an incorrect attempt joined with the language of its session.
type Mistake struct {
	QuestionText  string    `json:"question_text"`
	UserAnswer    string    `json:"user_answer"`
	CorrectAnswer string    `json:"correct_answer"`
	Language      string    `json:"language"`
	AttemptTime   time.Time `json:"attempt_time"`
}

// Service records quiz attempts and keeps per-language progress counters.
type Service struct {
	db       *gorm.DB
	sessions *lesson.Service
	logger   *logging.Service
}

func NewService(db *gorm.DB, sessions *lesson.Service, logger *logging.Service) *Service {
	return &Service{
		db:       db,
		sessions: sessions,
		logger:   logger,
	}
}

// SubmitAttempt stores one quiz answer and updates the user's per-language
// counters in the same transaction. The session must belong to the user.
func (s *Service) SubmitAttempt(userID uint, req AttemptRequest) (*QuestionAttempt, error) {
	session, err := s.sessions.FindUserSession(req.SessionID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to look up learning session: %w", err)
	}

	attempt := &QuestionAttempt{
		SessionID:     req.SessionID,
		QuestionText:  req.QuestionText,
		UserAnswer:    req.UserAnswer,
		CorrectAnswer: req.CorrectAnswer,
		IsCorrect:     req.IsCorrect,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(attempt).Error; err != nil {
			return fmt.Errorf("failed to record attempt: %w", err)
		}
		return upsertProgress(tx, userID, session.Language, req.IsCorrect)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("quiz attempt recorded",
		zap.Uint("user_id", userID),
		zap.Uint("session_id", req.SessionID),
		zap.Bool("is_correct", req.IsCorrect))

	return attempt, nil
}

func upsertProgress(tx *gorm.DB, userID uint, language string, correct bool) error {
	var record UserProgress
	err := tx.Where("user_id = ? AND language = ?", userID, language).First(&record).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		record = UserProgress{
			UserID:      userID,
			Language:    language,
			LastStudied: time.Now().UTC(),
		}
	case err != nil:
		return fmt.Errorf("failed to load progress: %w", err)
	}

	record.TotalQuestions++
	if correct {
		record.CorrectAnswers++
	}
	record.LastStudied = time.Now().UTC()

	if err := tx.Save(&record).Error; err != nil {
		return fmt.Errorf("failed to update progress: %w", err)
	}
	return nil
}

// ListProgress returns the user's counters across all studied languages.
func (s *Service) ListProgress(userID uint) ([]UserProgress, error) {
	records := []UserProgress{}
	err := s.db.Where("user_id = ?", userID).Order("language").Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}
	return records, nil
}

// ListMistakes returns the user's most recent incorrect attempts, newest
// first, optionally filtered by language.
func (s *Service) ListMistakes(userID uint, language string) ([]Mistake, error) {
	query := s.db.Model(&QuestionAttempt{}).
		Select("question_attempts.question_text, question_attempts.user_answer, question_attempts.correct_answer, learning_sessions.language, question_attempts.attempt_time").
		Joins("JOIN learning_sessions ON learning_sessions.id = question_attempts.session_id").
		Where("learning_sessions.user_id = ? AND question_attempts.is_correct = ?", userID, false)

	if language != "" {
		query = query.Where("learning_sessions.language = ?", language)
	}

	mistakes := []Mistake{}
	err := query.Order("question_attempts.attempt_time DESC").Limit(mistakeLimit).Scan(&mistakes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list mistakes: %w", err)
	}
	return mistakes, nil
}
