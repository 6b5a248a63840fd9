package openai

import (
	"sync"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/bioastra/spacekg/pkg/ai"
)

// OpenAIClient implements ai.Client against an OpenAI-compatible chat
// completion API.
//
// An OpenAIClient should be created using NewOpenAIClient.
type OpenAIClient struct {
	extractionModel string

	baseURL string
	apiKey  string

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	chatClient *openai.Client
}

// NewOpenAIClientParams defines the configuration parameters for creating
// a new OpenAIClient.
//
// ExtractionModel specifies the model used for entity extraction.
// BaseURL and APIKey configure the chat API endpoint; an empty BaseURL
// targets the OpenAI platform.
type NewOpenAIClientParams struct {
	ExtractionModel string

	BaseURL string
	APIKey  string
}

// NewOpenAIClient creates and returns a new OpenAIClient configured with
// the provided parameters.
func NewOpenAIClient(params NewOpenAIClientParams) *OpenAIClient {
	options := []option.RequestOption{
		option.WithAPIKey(params.APIKey),
	}
	if params.BaseURL != "" {
		options = append(options, option.WithBaseURL(params.BaseURL))
	}
	client := openai.NewClient(options...)

	return &OpenAIClient{
		extractionModel: params.ExtractionModel,

		baseURL: params.BaseURL,
		apiKey:  params.APIKey,

		chatClient: &client,
	}
}

func (c *OpenAIClient) modifyMetrics(delta ai.ModelMetrics) {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()

	c.metrics.InputTokens += delta.InputTokens
	c.metrics.OutputTokens += delta.OutputTokens
	c.metrics.TotalTokens += delta.TotalTokens
	c.metrics.DurationMs += delta.DurationMs
}

// ResetMetrics clears the accumulated usage metrics.
func (c *OpenAIClient) ResetMetrics() {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()

	c.metrics = ai.ModelMetrics{}
}

// GetMetrics returns the accumulated usage metrics.
func (c *OpenAIClient) GetMetrics() ai.ModelMetrics {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()

	return c.metrics
}
