package service

import (
	"aru_academy_backend/internal/config"
	"aru_academy_backend/internal/util"
	"aru_academy_backend/pkg/logger"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// HuggingFaceProvider 调用HuggingFace风格的推理接口
// 主模型404时按顺序降级到备选模型
type HuggingFaceProvider struct {
	cfg    config.AIConfig
	client *http.Client

	// 测试注入点，缺省为 time.Sleep
	sleep func(time.Duration)
}

func NewHuggingFaceProvider(cfg config.AIConfig) *HuggingFaceProvider {
	return &HuggingFaceProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		sleep:  time.Sleep,
	}
}

type GenerationParameters struct {
	MaxNewTokens int     `json:"max_new_tokens"`
	Temperature  float64 `json:"temperature"`
	TopP         float64 `json:"top_p"`
	DoSample     bool    `json:"do_sample"`
}

type generationRequest struct {
	Inputs     string               `json:"inputs"`
	Parameters GenerationParameters `json:"parameters"`
}

type generationResult struct {
	GeneratedText string `json:"generated_text"`
}

// Generate 向推理接口发送提示词并返回生成文本
// 超时和503按固定间隔重试，429等待更长间隔，404切换到下一个备选模型
func (p *HuggingFaceProvider) Generate(ctx context.Context, prompt string, params GenerationParameters) (string, error) {
	payload, err := json.Marshal(generationRequest{Inputs: prompt, Parameters: params})
	if err != nil {
		return "", err
	}

	urls := append([]string{p.cfg.APIURL}, p.cfg.FallbackModels...)

	for _, url := range urls {
		text, retryable, err := p.generateFromModel(ctx, url, payload)
		if err == nil {
			return text, nil
		}
		if ctx.Err() != nil {
			return "", util.ErrAIUnavailable
		}
		if !retryable {
			// 只有模型不存在(404)才切换备选模型
			logger.Log.Warn("AI model unavailable, trying fallback",
				zap.String("url", url), zap.Error(err))
			continue
		}
		logger.Log.Error("AI generation failed", zap.String("url", url), zap.Error(err))
		return "", util.ErrAIUnavailable
	}

	return "", util.ErrAIUnavailable
}

// generateFromModel 对单个模型地址执行带重试的调用
// retryable为false表示该模型不存在(404)，应切换备选模型
func (p *HuggingFaceProvider) generateFromModel(ctx context.Context, url string, payload []byte) (string, bool, error) {
	var lastErr error

	for attempt := 0; attempt <= p.cfg.MaxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return "", true, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+p.cfg.APIToken)

		resp, err := p.client.Do(req)
		if err != nil {
			// 网络错误或超时，间隔后重试
			lastErr = err
			p.sleep(p.cfg.RetryDelay)
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusOK:
			var results []generationResult
			if err := json.Unmarshal(body, &results); err != nil {
				return "", true, fmt.Errorf("unexpected AI response: %v", err)
			}
			if len(results) == 0 {
				return "", true, errors.New("AI returned no results")
			}
			return results[0].GeneratedText, true, nil

		case http.StatusServiceUnavailable:
			// 模型加载中，HuggingFace的常见状态
			lastErr = fmt.Errorf("model is loading (status 503)")
			p.sleep(p.cfg.RetryDelay)
			continue

		case http.StatusTooManyRequests:
			lastErr = fmt.Errorf("rate limited (status 429)")
			p.sleep(p.cfg.RateLimitDelay)
			continue

		case http.StatusNotFound:
			return "", false, fmt.Errorf("model not found (status 404)")

		default:
			return "", true, fmt.Errorf("AI API error (status %d): %s", resp.StatusCode, string(body))
		}
	}

	return "", true, lastErr
}

// AskQuestion 问答调用，返回答案和处理耗时（秒）
func (p *HuggingFaceProvider) AskQuestion(ctx context.Context, question, contextText string) (string, float64, error) {
	start := time.Now()

	var prompt string
	if contextText != "" {
		prompt = fmt.Sprintf("Context: %s\n\nQuestion: %s\n\nAnswer:", contextText, question)
	} else {
		prompt = fmt.Sprintf("Question: %s\n\nAnswer:", question)
	}

	text, err := p.Generate(ctx, prompt, GenerationParameters{
		MaxNewTokens: 500,
		Temperature:  0.7,
		TopP:         0.9,
		DoSample:     true,
	})
	elapsed := time.Since(start).Seconds()
	if err != nil {
		return "", elapsed, err
	}

	return ExtractAnswer(text), elapsed, nil
}

// GenerateQuizText 生成测验题目的原始文本，JSON解析由上层处理
func (p *HuggingFaceProvider) GenerateQuizText(ctx context.Context, topic, resourceContent string, numQuestions int) (string, float64, error) {
	start := time.Now()

	contextText := resourceContent
	if contextText == "" {
		contextText = "General knowledge about the topic"
	}

	prompt := fmt.Sprintf(`Generate %d quiz questions about %s.

Context: %s

Generate a mix of multiple choice and short answer questions.
For multiple choice questions, provide 4 options (A, B, C, D).
For each question, provide:
1. Question text
2. Question type (multiple_choice or short_answer)
3. Options (for multiple choice only)
4. Correct answer
5. Brief explanation

Format as JSON:
{
    "questions": [
        {
            "question": "Question text",
            "type": "multiple_choice",
            "options": ["A", "B", "C", "D"],
            "answer": "Correct answer",
            "explanation": "Brief explanation"
        }
    ]
}

Questions:`, numQuestions, topic, contextText)

	text, err := p.Generate(ctx, prompt, GenerationParameters{
		MaxNewTokens: 1000,
		Temperature:  0.8,
		TopP:         0.9,
		DoSample:     true,
	})
	elapsed := time.Since(start).Seconds()
	return text, elapsed, err
}

// IsAvailable 健康检查，503视为可用（模型仍在加载）
func (p *HuggingFaceProvider) IsAvailable(ctx context.Context) bool {
	payload, _ := json.Marshal(generationRequest{
		Inputs: "Hello",
		Parameters: GenerationParameters{
			MaxNewTokens: 10,
			Temperature:  0.1,
		},
	})

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.APIURL, bytes.NewReader(payload))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.cfg.APIToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusServiceUnavailable
}

// ExtractAnswer 生成文本常常回显提示词，只保留最后一个"Answer:"之后的部分
func ExtractAnswer(text string) string {
	if idx := strings.LastIndex(text, "Answer:"); idx >= 0 {
		text = text[idx+len("Answer:"):]
	}
	return strings.TrimSpace(text)
}
