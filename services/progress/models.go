package progress

import (
	"time"
)

// QuestionAttempt records a single quiz answer inside a learning session.
type QuestionAttempt struct {
	ID            uint      `json:"id" gorm:"primarykey"`
	SessionID     uint      `json:"session_id" gorm:"index;not null"`
	QuestionText  string    `json:"question_text" gorm:"not null"`
	UserAnswer    string    `json:"user_answer"`
	CorrectAnswer string    `json:"correct_answer"`
	IsCorrect     bool      `json:"is_correct"`
	AttemptTime   time.Time `json:"attempt_time" gorm:"autoCreateTime"`
}

func (QuestionAttempt) TableName() string {
	return "question_attempts"
}

// UserProgress aggregates quiz results per user and language. One row per
// (user, language) pair.
type UserProgress struct {
	ID             uint      `json:"id" gorm:"primarykey"`
	UserID         uint      `json:"user_id" gorm:"uniqueIndex:idx_user_language;not null"`
	Language       string    `json:"language" gorm:"uniqueIndex:idx_user_language;not null"`
	TotalQuestions int       `json:"total_questions"`
	CorrectAnswers int       `json:"correct_answers"`
	LastStudied    time.Time `json:"last_studied"`
}

func (UserProgress) TableName() string {
	return "user_progress"
}

// AttemptRequest is the quiz submission body.
type AttemptRequest struct {
	SessionID     uint   `json:"session_id"`
	QuestionText  string `json:"question_text"`
	UserAnswer    string `json:"user_answer"`
	CorrectAnswer string `json:"correct_answer"`
	IsCorrect     bool   `json:"is_correct"`
}

func Models() []any {
	return []any{&QuestionAttempt{}, &UserProgress{}}
}
