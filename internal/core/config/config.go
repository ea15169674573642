package config

import (
	"time"

	"contract-chat-mapping/internal/core/domain"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Files     FilesConfig     `yaml:"files"`
	Auth      AuthConfig      `yaml:"auth"`
	Endpoints EndpointsConfig `yaml:"endpoints"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Retry     RetryConfig     `yaml:"retry"`
	Log       LogConfig       `yaml:"log"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// FilesConfig holds the input, output and log file paths.
type FilesConfig struct {
	InputTxt   string `yaml:"input_txt"`
	OutputFile string `yaml:"output_file"`
	LogFile    string `yaml:"log_file"`
}

// AuthConfig holds the open-platform app credentials and the internal
// API session cookie.
type AuthConfig struct {
	AppID     string `yaml:"app_id"`
	AppSecret string `yaml:"app_secret"`
	Cookies   struct {
		Session string `yaml:"session"`
	} `yaml:"cookies"`
	// AbortOnAuthFailure cancels remaining queued work after the
	// first AUTH_FAILED row instead of draining the rate-limited
	// queue against a dead credential.
	AbortOnAuthFailure bool `yaml:"abort_on_auth_failure"`
}

// EndpointsConfig holds the remote service base URLs; overridable for
// testing against local servers.
type EndpointsConfig struct {
	OpenAPIBase string `yaml:"openapi_base"`
	CLMBase     string `yaml:"clm_base"`
}

// RateLimitConfig holds per-resource requests-per-minute quotas and the
// worker-pool size.
type RateLimitConfig struct {
	GlobalQPM          int `yaml:"global_qpm"`
	ContractSearchQPM  int `yaml:"contract_search_qpm"`
	ContractInfoQPM    int `yaml:"contract_info_qpm"`
	CooperationInfoQPM int `yaml:"cooperation_info_qpm"`
	Concurrency        int `yaml:"concurrency"`
}

// QPMMap returns the named bucket quotas keyed by resource name.
func (c RateLimitConfig) QPMMap() map[string]int {
	return map[string]int{
		"global":           c.GlobalQPM,
		"contract_search":  c.ContractSearchQPM,
		"contract_info":    c.ContractInfoQPM,
		"cooperation_info": c.CooperationInfoQPM,
	}
}

// RetryConfig holds the retry policy, the per-attempt timeout, and the
// statuses treated as final on resume.
type RetryConfig struct {
	TimeoutMS          int      `yaml:"timeout_ms"`
	MaxRetries         int      `yaml:"max_retries"`
	BaseDelayMS        int      `yaml:"base_delay_ms"`
	MaxDelayMS         int      `yaml:"max_delay_ms"`
	Jitter             float64  `yaml:"jitter"`
	SkipResultStatuses []string `yaml:"skip_result_statuses"`
}

// Timeout returns the per-attempt request timeout.
func (c RetryConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// BaseDelay returns the initial backoff delay.
func (c RetryConfig) BaseDelay() time.Duration {
	return time.Duration(c.BaseDelayMS) * time.Millisecond
}

// MaxDelay returns the backoff delay cap.
func (c RetryConfig) MaxDelay() time.Duration {
	return time.Duration(c.MaxDelayMS) * time.Millisecond
}

// FinalStatuses parses the configured skip statuses into a set.
// Validation has already rejected unknown names, so a parse error here
// means the config was never validated.
func (c RetryConfig) FinalStatuses() (map[domain.Status]bool, error) {
	out := make(map[domain.Status]bool, len(c.SkipResultStatuses))
	for _, s := range c.SkipResultStatuses {
		status, err := domain.ParseStatus(s)
		if err != nil {
			return nil, err
		}
		out[status] = true
	}
	return out, nil
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// MetricsConfig holds the optional prometheus listen address.
type MetricsConfig struct {
	Addr string `yaml:"addr"` // empty disables the /metrics server
}
