package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"contract-chat-mapping/internal/core/domain"
	"contract-chat-mapping/internal/logging"
)

// Load reads configuration from a YAML file, applies defaults and
// validates the result. Environment variables in the file content are
// expanded before parsing.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Unmarshal over the defaults so keys absent from the file keep
	// their default values.
	cfg := Default()
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when the file omits a field.
func Default() *AppConfig {
	return &AppConfig{
		Files: FilesConfig{
			InputTxt:   "./input/contracts.txt",
			OutputFile: "./output/contract_openChatId.xlsx",
			LogFile:    "./logs/run.log",
		},
		Endpoints: EndpointsConfig{
			OpenAPIBase: "https://open.feishu.cn",
			CLMBase:     "https://contract.feishu.cn",
		},
		RateLimit: RateLimitConfig{
			GlobalQPM:          60,
			ContractSearchQPM:  60,
			ContractInfoQPM:    60,
			CooperationInfoQPM: 60,
			Concurrency:        1,
		},
		Retry: RetryConfig{
			TimeoutMS:   8000,
			MaxRetries:  3,
			BaseDelayMS: 500,
			MaxDelayMS:  10000,
			Jitter:      0.2,
			SkipResultStatuses: []string{
				string(domain.StatusSuccess),
				string(domain.StatusNotFoundContract),
				string(domain.StatusNoCooperation),
				string(domain.StatusNoChatGroup),
			},
		},
		Log: LogConfig{Level: "debug"},
	}
}

// Validate checks the configuration before any network activity; a
// failure here is process-fatal.
func Validate(cfg *AppConfig) error {
	rl := cfg.RateLimit
	for name, qpm := range rl.QPMMap() {
		if qpm <= 0 {
			return fmt.Errorf("rate_limit: %s qpm must be a positive integer", name)
		}
	}
	if rl.Concurrency < 1 {
		return fmt.Errorf("rate_limit: concurrency must be >= 1")
	}

	rt := cfg.Retry
	if rt.TimeoutMS <= 0 {
		return fmt.Errorf("retry: timeout_ms must be a positive integer")
	}
	if rt.MaxRetries < 0 || rt.BaseDelayMS < 0 || rt.MaxDelayMS < 0 {
		return fmt.Errorf("retry: max_retries, base_delay_ms and max_delay_ms must be non-negative")
	}
	if rt.MaxDelayMS < rt.BaseDelayMS {
		return fmt.Errorf("retry: max_delay_ms must be >= base_delay_ms")
	}
	if rt.Jitter < 0 || rt.Jitter > 1 {
		return fmt.Errorf("retry: jitter must be within [0,1]")
	}
	if _, err := rt.FinalStatuses(); err != nil {
		return fmt.Errorf("retry: invalid skip_result_statuses: %w", err)
	}

	if cfg.Files.InputTxt == "" || cfg.Files.OutputFile == "" || cfg.Files.LogFile == "" {
		return fmt.Errorf("files: input_txt, output_file and log_file must not be empty")
	}

	if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	return nil
}
