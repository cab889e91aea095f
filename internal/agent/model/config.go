package model

import "time"

// ================ Config ================
type OracleConfig struct {
	Provider    string        `envconfig:"ORACLE_PROVIDER" default:"ollama"`
	Temperature float32       `envconfig:"ORACLE_TEMPERATURE" default:"0.1"`
	MaxTokens   int           `envconfig:"ORACLE_MAX_TOKENS" default:"1024"`
	Timeout     time.Duration `envconfig:"ORACLE_TIMEOUT" default:"120s"`

	Ollama struct {
		BaseURL string `envconfig:"OLLAMA_BASE_URL" default:"http://localhost:11434"`
		Model   string `envconfig:"OLLAMA_MODEL" default:"llama3"`
	}
	Gemini struct {
		APIKey  string `envconfig:"GEMINI_API_KEY"`
		BaseURL string `envconfig:"GEMINI_BASE_URL"`
		Model   string `envconfig:"GEMINI_MODEL" default:"gemini-2.5-flash"`
	}
}

type WorkflowConfig struct {
	Timeout      time.Duration `envconfig:"WORKFLOW_TIMEOUT" default:"180s"`
	FallbackName string        `envconfig:"RESPONSE_FALLBACK_NAME" default:"User"`
	MaxRunSteps  int           `envconfig:"WORKFLOW_MAX_RUN_STEPS" default:"10"`
}

type PolicyConfig struct {
	File string `envconfig:"POLICY_FILE" default:"policies.json"`
}

type TranscriptConfig struct {
	TTL        time.Duration `envconfig:"TRANSCRIPT_TTL" default:"24h"`
	MaxHistory int           `envconfig:"TRANSCRIPT_MAX_HISTORY" default:"50"`
}
