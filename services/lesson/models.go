package lesson

import (
	"time"
)

// LearningSession ties generated lessons and quiz attempts to a user and a
// target language.
type LearningSession struct {
	ID          uint       `json:"id" gorm:"primarykey"`
	UserID      uint       `json:"user_id" gorm:"index;not null"`
	Language    string     `json:"language" gorm:"not null"`
	Topic       string     `json:"topic"`
	StartedAt   time.Time  `json:"started_at" gorm:"autoCreateTime"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func (LearningSession) TableName() string {
	return "learning_sessions"
}

// GenerateRequest is the statically validated lesson request body. All three
// fields are required at the boundary.
type GenerateRequest struct {
	UserPrompt string `json:"user_prompt"`
	TargetLang string `json:"target_lang"`
	NativeLang string `json:"native_lang"`
}

type VocabularyItem struct {
	Native string `json:"native"`
	Target string `json:"target"`
}

type Quiz struct {
	VocabMatching    []VocabularyItem `json:"vocab_matching"`
	MiniTranslations []VocabularyItem `json:"mini_translations"`
}

// Lesson is the generated payload returned to the client, annotated with the
// session it was generated under.
type Lesson struct {
	Vocabulary   []VocabularyItem `json:"vocabulary"`
	GrammarNotes string           `json:"grammar_notes"`
	Quiz         Quiz             `json:"quiz"`
	SessionID    uint             `json:"session_id"`
}

func Models() []any {
	return []any{&LearningSession{}}
}
