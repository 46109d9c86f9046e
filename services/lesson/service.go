package lesson

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/linguapersonal/backend/config"
	"github.com/linguapersonal/backend/services/logging"
)

var (
	ErrProviderTimeout = errors.New("lesson provider timed out")
	ErrProviderFailed  = errors.New("lesson provider request failed")
	ErrMalformedLesson = errors.New("lesson provider returned a malformed lesson")
)

const systemPromptTemplate = `You are a helpful language teacher AI. Create a comprehensive lesson based on the user's topic.

EXPAND beyond the user's exact words to include:
- Related vocabulary that would naturally come up in this situation
- Common phrases and expressions
- Practical words someone would actually need

For the topic provided, include 6-8 vocabulary items that cover the real-world scenario.

Return ONLY a JSON object with this exact format:

{
  "vocabulary": [{"native": "...", "target": "..."}],
  "grammar_notes": "...",
  "quiz": {
    "vocab_matching": [{"native": "...", "target": "..."}],
    "mini_translations": [{"native": "...", "target": "..."}]
  }
}

IMPORTANT REQUIREMENTS:
- Include exactly 6-8 vocabulary items in "vocabulary"
- Include exactly 6-8 items in "vocab_matching" (same as vocabulary)
- Include exactly 6 items in "mini_translations" (complete sentences)
- Make mini_translations practical, conversational sentences that use the vocabulary
- Translate from '%s' to '%s'
- Do NOT just break down the user's prompt - expand the vocabulary meaningfully
- Each mini_translation should be a complete, useful sentence someone would actually say`

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Messages    []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Service creates learning sessions and proxies lesson generation to an
// OpenAI-compatible chat-completions endpoint.
type Service struct {
	config     *config.LessonConfig
	db         *gorm.DB
	httpClient *http.Client
	logger     *logging.Service
}

func NewService(cfg *config.LessonConfig, db *gorm.DB, logger *logging.Service) *Service {
	return &Service{
		config:     cfg,
		db:         db,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// Generate records a learning session for the user and fetches a lesson from
// the provider. The session row is committed before the outbound call so the
// returned session_id stays valid for quiz submission even if the lesson has
// to be regenerated.
func (s *Service) Generate(ctx context.Context, userID uint, req GenerateRequest) (*Lesson, error) {
	session := &LearningSession{
		UserID:   userID,
		Language: req.TargetLang,
		Topic:    req.UserPrompt,
	}
	if err := s.db.Create(session).Error; err != nil {
		return nil, fmt.Errorf("failed to create learning session: %w", err)
	}

	s.logger.Info("generating lesson",
		zap.Uint("user_id", userID),
		zap.Uint("session_id", session.ID),
		zap.String("target_lang", req.TargetLang))

	generated, err := s.fetchLesson(ctx, req)
	if err != nil {
		return nil, err
	}

	generated.SessionID = session.ID
	return generated, nil
}

func (s *Service) fetchLesson(ctx context.Context, req GenerateRequest) (*Lesson, error) {
	payload := chatRequest{
		Model:       s.config.Model,
		Temperature: 0.7,
		MaxTokens:   2000,
		Messages: []chatMessage{
			{Role: "system", Content: fmt.Sprintf(systemPromptTemplate, req.NativeLang, req.TargetLang)},
			{Role: "user", Content: strings.TrimSpace(req.UserPrompt)},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode provider request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.APIURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build provider request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+s.config.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			s.logger.Error("lesson provider timed out", zap.Duration("timeout", s.config.Timeout))
			return nil, ErrProviderTimeout
		}
		s.logger.Error("lesson provider request failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrProviderFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Error("lesson provider returned non-200 status", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: status %d", ErrProviderFailed, resp.StatusCode)
	}

	var completion chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedLesson, err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty choices", ErrMalformedLesson)
	}

	var generated Lesson
	if err := json.Unmarshal([]byte(completion.Choices[0].Message.Content), &generated); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedLesson, err)
	}

	return &generated, nil
}

// FindUserSession returns the session only when it belongs to the user.
func (s *Service) FindUserSession(sessionID, userID uint) (*LearningSession, error) {
	var session LearningSession
	err := s.db.Where("id = ? AND user_id = ?", sessionID, userID).First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}
