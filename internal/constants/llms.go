package constants

const (
	Groq      = "groq"
	OpenAI    = "openai"
	Gemini    = "gemini"
	Anthropic = "anthropic"
)

const (
	GroqBaseURL  = "https://api.groq.com/openai/v1"
	GroqModel    = "llama-3.1-8b-instant"
	OpenAIModel  = "gpt-4o-mini"
	GeminiModel  = "gemini-1.5-flash"
	ClaudeModel  = "claude-3-5-haiku-latest"
	LLMMaxTokens = 1024
)

// SQL generation is always deterministic.
const LLMTemperature float32 = 0

// GetDefaultModel returns the model used when LLM_MODEL is not set.
func GetDefaultModel(provider string) string {
	switch provider {
	case OpenAI:
		return OpenAIModel
	case Gemini:
		return GeminiModel
	case Anthropic:
		return ClaudeModel
	default:
		return GroqModel
	}
}
