package chat_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripsentry/tripsentry/internal/chat"
)

type fakeGenerator struct {
	reply   string
	err     error
	calls   int
	history []chat.Message
	delay   time.Duration
}

func (f *fakeGenerator) Generate(ctx context.Context, history []chat.Message) (string, error) {
	f.calls++
	f.history = append([]chat.Message(nil), history...)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func newService(gen chat.Generator, repo chat.Repository) *chat.Service {
	return chat.NewService(chat.ServiceConfig{
		Generator:  gen,
		Repository: repo,
		Logger:     zerolog.Nop(),
	})
}

func TestSendTurn_AppendsBothMessages(t *testing.T) {
	gen := &fakeGenerator{reply: "Stay near well-lit areas."}
	svc := newService(gen, nil)

	history := []chat.Message{
		{Role: chat.RoleUser, Text: "Hello"},
		{Role: chat.RoleAssistant, Text: "Hi!"},
	}

	result, err := svc.SendTurn(context.Background(), chat.TurnInput{
		UserText: "Is the harbor safe at night?",
		History:  history,
	})
	require.NoError(t, err)

	require.Len(t, result.History, 4)
	assert.Equal(t, chat.RoleUser, result.History[2].Role)
	assert.Equal(t, "Is the harbor safe at night?", result.History[2].Text)
	assert.Equal(t, chat.RoleAssistant, result.History[3].Role)
	assert.Equal(t, "Stay near well-lit areas.", result.History[3].Text)
	assert.Equal(t, result.AssistantText, result.History[3].Text)
}

func TestSendTurn_AssignsSessionID(t *testing.T) {
	gen := &fakeGenerator{reply: "ok"}
	svc := newService(gen, nil)

	result, err := svc.SendTurn(context.Background(), chat.TurnInput{UserText: "hi"})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(result.SessionID, "ses_"), "got %q", result.SessionID)

	// An explicit session id is kept as-is.
	result2, err := svc.SendTurn(context.Background(), chat.TurnInput{
		SessionID: result.SessionID,
		UserText:  "again",
	})
	require.NoError(t, err)
	assert.Equal(t, result.SessionID, result2.SessionID)
}

func TestSendTurn_EmptyMessageDoesNotCallBackend(t *testing.T) {
	gen := &fakeGenerator{reply: "ok"}
	svc := newService(gen, nil)

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := svc.SendTurn(context.Background(), chat.TurnInput{UserText: text})

		var valErr *chat.ValidationError
		require.True(t, errors.As(err, &valErr), "text %q: got %v", text, err)
		assert.Equal(t, "message", valErr.Field)
	}

	assert.Equal(t, 0, gen.calls, "backend must not be called for invalid input")
}

func TestSendTurn_BackendSeesUserMessageLast(t *testing.T) {
	gen := &fakeGenerator{reply: "ok"}
	svc := newService(gen, nil)

	_, err := svc.SendTurn(context.Background(), chat.TurnInput{
		UserText: "newest",
		History:  []chat.Message{{Role: chat.RoleUser, Text: "older"}},
	})
	require.NoError(t, err)

	require.NotEmpty(t, gen.history)
	last := gen.history[len(gen.history)-1]
	assert.Equal(t, chat.RoleUser, last.Role)
	assert.Equal(t, "newest", last.Text)
}

func TestSendTurn_FailureLeavesHistoryUntouched(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("backend exploded")}
	svc := newService(gen, nil)

	history := []chat.Message{{Role: chat.RoleUser, Text: "hello"}}

	result, err := svc.SendTurn(context.Background(), chat.TurnInput{
		UserText: "are you there?",
		History:  history,
	})

	assert.Nil(t, result)

	var genErr *chat.GenerationError
	require.True(t, errors.As(err, &genErr))
	assert.Equal(t, chat.KindBackendFailure, genErr.Kind)
	assert.Contains(t, genErr.Detail, "backend exploded")

	// Caller-owned history unchanged
	require.Len(t, history, 1)
	assert.Equal(t, "hello", history[0].Text)
}

func TestSendTurn_ClassifiedGenerationErrorPassesThrough(t *testing.T) {
	gen := &fakeGenerator{err: &chat.GenerationError{Kind: chat.KindRateLimited, Detail: "quota"}}
	svc := newService(gen, nil)

	_, err := svc.SendTurn(context.Background(), chat.TurnInput{UserText: "hi"})

	var genErr *chat.GenerationError
	require.True(t, errors.As(err, &genErr))
	assert.Equal(t, chat.KindRateLimited, genErr.Kind)
}

func TestSendTurn_TimeoutClassified(t *testing.T) {
	gen := &fakeGenerator{reply: "late", delay: 200 * time.Millisecond}
	svc := chat.NewService(chat.ServiceConfig{
		Generator:       gen,
		Logger:          zerolog.Nop(),
		GenerateTimeout: 50 * time.Millisecond,
	})

	_, err := svc.SendTurn(context.Background(), chat.TurnInput{UserText: "hi"})

	var genErr *chat.GenerationError
	require.True(t, errors.As(err, &genErr))
	assert.Equal(t, chat.KindTimeout, genErr.Kind)
}

func TestSendTurn_NoRetryOnFailure(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("boom")}
	svc := newService(gen, nil)

	_, err := svc.SendTurn(context.Background(), chat.TurnInput{UserText: "hi"})
	require.Error(t, err)

	assert.Equal(t, 1, gen.calls, "generation must not be retried")
}

func TestSendTurn_HistoryBounded(t *testing.T) {
	gen := &fakeGenerator{reply: "ok"}
	svc := chat.NewService(chat.ServiceConfig{
		Generator:          gen,
		Logger:             zerolog.Nop(),
		MaxHistoryMessages: 4,
	})

	var history []chat.Message
	for i := 0; i < 10; i++ {
		history = append(history, chat.Message{Role: chat.RoleUser, Text: "old"})
	}
	history[9].Text = "newest-old"

	result, err := svc.SendTurn(context.Background(), chat.TurnInput{
		UserText: "now",
		History:  history,
	})
	require.NoError(t, err)

	// 4 retained + user turn + assistant reply
	require.Len(t, result.History, 6)
	assert.Equal(t, "newest-old", result.History[3].Text, "newest history must be retained")
}

func TestSendTurn_RecordsTurnInRepository(t *testing.T) {
	gen := &fakeGenerator{reply: "noted"}
	repo := chat.NewMemoryRepository()
	svc := newService(gen, repo)

	result, err := svc.SendTurn(context.Background(), chat.TurnInput{UserText: "remember this"})
	require.NoError(t, err)

	session, err := repo.Get(context.Background(), result.SessionID)
	require.NoError(t, err)
	require.Len(t, session.Messages, 2)
	assert.Equal(t, chat.RoleUser, session.Messages[0].Role)
	assert.Equal(t, "remember this", session.Messages[0].Text)
	assert.Equal(t, chat.RoleAssistant, session.Messages[1].Role)
}

type failingRepo struct{}

func (failingRepo) Get(context.Context, string) (*chat.Session, error) {
	return nil, chat.ErrSessionNotFound
}

func (failingRepo) AppendTurn(context.Context, string, chat.Message, chat.Message) error {
	return errors.New("storage offline")
}

func TestSendTurn_RepositoryFailureDoesNotFailTurn(t *testing.T) {
	gen := &fakeGenerator{reply: "still fine"}
	svc := newService(gen, failingRepo{})

	result, err := svc.SendTurn(context.Background(), chat.TurnInput{UserText: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "still fine", result.AssistantText)
}
