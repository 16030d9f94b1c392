package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"healthpulse-engine/internal/models"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// 对终端用户返回的固定文案（不向用户暴露错误）
const (
	OfflineReply     = "I am currently offline (Configuration Error). Please contact support."
	UnavailableReply = "I'm having trouble connecting to my medical database right now. Please try again later."
)

const noneLogged = "None logged"

// Config 助手客户端配置
type Config struct {
	APIKey            string
	BaseURL           string
	Model             string
	Timeout           time.Duration
	RequestsPerMinute int
	RetryCount        int
}

// PatientContext 提供给模型的患者上下文
type PatientContext struct {
	FirstName     string
	LatestVital   *models.VitalReading
	LatestSymptom *models.SymptomReport
	LatestScore   *models.HealthScore
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Client Gemini generateContent 客户端（带限流）
type Client struct {
	httpClient *resty.Client
	limiter    *rate.Limiter
	apiKey     string
	model      string
	logger     *zap.Logger
}

// NewClient 创建助手客户端
func NewClient(cfg Config, logger *zap.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 60
	}

	return &Client{
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 5),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		logger:     logger,
	}
}

// Chat 返回助手回复；未配置密钥或调用失败时返回固定文案
func (c *Client) Chat(ctx context.Context, message string, pc PatientContext) string {
	if c.apiKey == "" {
		c.logger.Error("Assistant API key is not configured")
		return OfflineReply
	}

	reply, err := c.generate(ctx, BuildPrompt(message, pc))
	if err != nil {
		c.logger.Error("Assistant request failed",
			zap.String("model", c.model),
			zap.Error(err),
		)
		return UnavailableReply
	}
	return reply
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter error: %w", err)
	}

	var result generateResponse
	var errResp apiError
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("model", c.model).
		SetQueryParam("key", c.apiKey).
		SetBody(generateRequest{
			Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		}).
		SetResult(&result).
		SetError(&errResp).
		Post("/v1beta/models/{model}:generateContent")
	if err != nil {
		return "", fmt.Errorf("failed to call generateContent: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("generateContent error (status %d): %s", resp.StatusCode(), errResp.Error.Message)
	}

	var texts []string
	for _, candidate := range result.Candidates {
		for _, p := range candidate.Content.Parts {
			if p.Text != "" {
				texts = append(texts, p.Text)
			}
		}
		if len(texts) > 0 {
			break
		}
	}
	if len(texts) == 0 {
		return "", fmt.Errorf("generateContent returned no text")
	}

	c.logger.Debug("Assistant reply generated",
		zap.String("model", c.model),
		zap.Int("candidate_count", len(result.Candidates)),
	)
	return strings.Join(texts, ""), nil
}

// BuildPrompt 组装带患者上下文的提示词
func BuildPrompt(message string, pc PatientContext) string {
	name := pc.FirstName
	if name == "" {
		name = "Patient"
	}

	var b strings.Builder
	b.WriteString("You are HealthPulse AI, a compassionate and knowledgeable medical assistant.\n\n")
	b.WriteString("PATIENT CONTEXT:\n")
	fmt.Fprintf(&b, "- Name: %s\n", name)
	fmt.Fprintf(&b, "- Recent Vitals: %s\n", describe(pc.LatestVital))
	fmt.Fprintf(&b, "- Recent Symptoms: %s\n", describe(pc.LatestSymptom))
	if pc.LatestScore != nil {
		fmt.Fprintf(&b, "- Health Score: %d (%s, trend %s)\n",
			pc.LatestScore.OverallScore, pc.LatestScore.RiskLevel, pc.LatestScore.Trend)
	}
	fmt.Fprintf(&b, "\nUSER MESSAGE: %q\n\n", message)
	b.WriteString("INSTRUCTIONS:\n")
	b.WriteString("1. Provide helpful, accurate health information.\n")
	b.WriteString("2. If the user mentions severe symptoms (chest pain, difficulty breathing), tell them to seek emergency care immediately.\n")
	b.WriteString("3. Be concise (under 150 words) but warm.\n")
	b.WriteString("4. Do NOT diagnose medical conditions definitively; suggest possibilities and recommend a doctor.\n")
	return b.String()
}

func describe[T any](record *T) string {
	if record == nil {
		return noneLogged
	}
	data, err := json.Marshal(record)
	if err != nil {
		return noneLogged
	}
	return string(data)
}
