package service

import (
	"aru_academy_backend/internal/config"
	"aru_academy_backend/internal/util"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(apiURL string, fallbacks ...string) *HuggingFaceProvider {
	p := NewHuggingFaceProvider(config.AIConfig{
		APIURL:         apiURL,
		APIToken:       "test-token",
		FallbackModels: fallbacks,
		Timeout:        5 * time.Second,
		MaxRetries:     2,
		RetryDelay:     time.Second,
		RateLimitDelay: 10 * time.Second,
	})
	p.sleep = func(time.Duration) {}
	return p
}

func TestGenerate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Write([]byte(`[{"generated_text": "The answer is 42."}]`))
	}))
	defer server.Close()

	p := newTestProvider(server.URL)

	text, err := p.Generate(context.Background(), "prompt", GenerationParameters{})

	require.NoError(t, err)
	assert.Equal(t, "The answer is 42.", text)
}

func TestGenerate_RetriesOn503(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`[{"generated_text": "loaded now"}]`))
	}))
	defer server.Close()

	p := newTestProvider(server.URL)

	text, err := p.Generate(context.Background(), "prompt", GenerationParameters{})

	require.NoError(t, err)
	assert.Equal(t, "loaded now", text)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestGenerate_RetriesOn429WithLongerDelay(t *testing.T) {
	var slept []time.Duration
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`[{"generated_text": "ok"}]`))
	}))
	defer server.Close()

	p := newTestProvider(server.URL)
	p.sleep = func(d time.Duration) { slept = append(slept, d) }

	_, err := p.Generate(context.Background(), "prompt", GenerationParameters{})

	require.NoError(t, err)
	require.Len(t, slept, 1)
	assert.Equal(t, 10*time.Second, slept[0])
}

func TestGenerate_404SwitchesToFallbackModel(t *testing.T) {
	var primaryCalls int32
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&primaryCalls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer primary.Close()

	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"generated_text": "from fallback"}]`))
	}))
	defer fallback.Close()

	p := newTestProvider(primary.URL, fallback.URL)

	text, err := p.Generate(context.Background(), "prompt", GenerationParameters{})

	require.NoError(t, err)
	assert.Equal(t, "from fallback", text)
	// 404不重试，直接切换备选模型
	assert.Equal(t, int32(1), atomic.LoadInt32(&primaryCalls))
}

func TestGenerate_AllModelsExhausted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	p := newTestProvider(server.URL, server.URL)

	_, err := p.Generate(context.Background(), "prompt", GenerationParameters{})

	assert.ErrorIs(t, err, util.ErrAIUnavailable)
}

func TestGenerate_ServerErrorIsTerminalForModel(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	p := newTestProvider(server.URL)

	_, err := p.Generate(context.Background(), "prompt", GenerationParameters{})

	assert.ErrorIs(t, err, util.ErrAIUnavailable)
	// 500不重试
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGenerate_ServerErrorDoesNotSwitchModel(t *testing.T) {
	var fallbackCalls int32
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer primary.Close()
	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&fallbackCalls, 1)
		w.Write([]byte(`[{"generated_text":"from fallback"}]`))
	}))
	defer fallback.Close()

	p := newTestProvider(primary.URL, fallback.URL)

	_, err := p.Generate(context.Background(), "prompt", GenerationParameters{})

	assert.ErrorIs(t, err, util.ErrAIUnavailable)
	// 备选模型只在404时启用
	assert.Equal(t, int32(0), atomic.LoadInt32(&fallbackCalls))
}

func TestGenerate_EmptyResultIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	p := newTestProvider(server.URL)

	_, err := p.Generate(context.Background(), "prompt", GenerationParameters{})

	assert.ErrorIs(t, err, util.ErrAIUnavailable)
}

func TestGenerate_CanceledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	p := newTestProvider(server.URL, server.URL, server.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Generate(ctx, "prompt", GenerationParameters{})

	assert.ErrorIs(t, err, util.ErrAIUnavailable)
}

func TestAskQuestion_BuildsPromptAndExtractsAnswer(t *testing.T) {
	var receivedPrompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			receivedPrompt = req.Inputs
		}
		w.Write([]byte(`[{"generated_text": "Question: Why?\n\nAnswer: Because of gravity."}]`))
	}))
	defer server.Close()

	p := newTestProvider(server.URL)

	answer, elapsed, err := p.AskQuestion(context.Background(), "Why do objects fall?", "physics notes")

	require.NoError(t, err)
	assert.Equal(t, "Because of gravity.", answer)
	assert.GreaterOrEqual(t, elapsed, 0.0)
	assert.Equal(t, "Context: physics notes\n\nQuestion: Why do objects fall?\n\nAnswer:", receivedPrompt)
}

func TestIsAvailable(t *testing.T) {
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"generated_text": "hi"}]`))
	}))
	defer ok.Close()

	loading := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer loading.Close()

	missing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer missing.Close()

	assert.True(t, newTestProvider(ok.URL).IsAvailable(context.Background()))
	// 503表示模型加载中，视为可用
	assert.True(t, newTestProvider(loading.URL).IsAvailable(context.Background()))
	assert.False(t, newTestProvider(missing.URL).IsAvailable(context.Background()))
}

func TestExtractAnswer(t *testing.T) {
	assert.Equal(t, "Paris", ExtractAnswer("Question: capital of France?\n\nAnswer: Paris"))
	assert.Equal(t, "final", ExtractAnswer("Answer: first\nAnswer: final"))
	assert.Equal(t, "no marker here", ExtractAnswer("  no marker here  "))
	assert.Equal(t, "", ExtractAnswer("Answer:"))
}
