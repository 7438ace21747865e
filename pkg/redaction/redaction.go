// Package redaction masks credentials before they reach log output.
// It knows the shapes of Discord bot tokens, authorization header values,
// webhook URLs and secrets embedded in JSON or key=value text.
package redaction

import (
	"regexp"
	"strings"
	"sync"
)

// Config holds redaction configuration.
type Config struct {
	// Enabled controls whether redaction is active.
	Enabled bool `json:"enabled"`

	// RedactTokens redacts bot tokens, authorization values and webhook secrets.
	RedactTokens bool `json:"redact_tokens"`

	// RedactAPIKeys redacts generic key=value API keys and JSON secrets.
	RedactAPIKeys bool `json:"redact_api_keys"`

	// CustomPatterns allows additional regex patterns to redact.
	CustomPatterns []string `json:"custom_patterns"`

	// Replacement is the string used to replace sensitive data.
	Replacement string `json:"replacement"`
}

// DefaultConfig returns the default redaction configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:       true,
		RedactTokens:  true,
		RedactAPIKeys: true,
		Replacement:   "[REDACTED]",
	}
}

var (
	discordTokenPattern = regexp.MustCompile(`[A-Za-z\d_-]{23,28}\.[A-Za-z\d_-]{6,7}\.[A-Za-z\d_-]{27,40}`)
	authHeaderPattern   = regexp.MustCompile(`(?i)\b(?:bot|bearer)\s+([A-Za-z0-9_\-\.]{20,})`)
	webhookPattern      = regexp.MustCompile(`(?i)discord(?:app)?\.com/api/(?:v\d+/)?webhooks/\d+/([A-Za-z0-9_\-]+)`)
	apiKeyPattern       = regexp.MustCompile(`(?i)(?:api[_-]?key|api[_-]?secret|token|secret[_-]?key)\s*[=:]\s*['"]?([A-Za-z0-9_\-\.]{20,})['"]?`)
	jsonSecretPattern   = regexp.MustCompile(`"(?:api_key|apikey|secret|password|token|bot_token|private_key)"\s*:\s*"([^"]+)"`)
)

// Redactor provides sensitive data redaction capabilities.
type Redactor struct {
	config         Config
	compiledCustom []*regexp.Regexp
	mu             sync.RWMutex
}

// NewRedactor creates a new Redactor with the given configuration.
// Custom patterns that fail to compile are skipped.
func NewRedactor(config Config) *Redactor {
	if config.Replacement == "" {
		config.Replacement = "[REDACTED]"
	}
	r := &Redactor{config: config}
	for _, pattern := range config.CustomPatterns {
		if re, err := regexp.Compile(pattern); err == nil {
			r.compiledCustom = append(r.compiledCustom, re)
		}
	}
	return r
}

// Redact applies all configured redaction rules to the input string.
func (r *Redactor) Redact(input string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.config.Enabled || input == "" {
		return input
	}

	result := input
	if r.config.RedactTokens {
		result = r.replaceGroup(result, authHeaderPattern)
		result = r.replaceGroup(result, webhookPattern)
		result = discordTokenPattern.ReplaceAllString(result, r.config.Replacement)
	}
	if r.config.RedactAPIKeys {
		result = r.replaceGroup(result, jsonSecretPattern)
		result = r.replaceGroup(result, apiKeyPattern)
	}
	for _, re := range r.compiledCustom {
		result = re.ReplaceAllString(result, r.config.Replacement)
	}
	return result
}

// replaceGroup redacts only the first capture group of each match so the
// surrounding key or prefix stays readable.
func (r *Redactor) replaceGroup(input string, re *regexp.Regexp) string {
	return re.ReplaceAllStringFunc(input, func(match string) string {
		sub := re.FindStringSubmatch(match)
		if len(sub) < 2 || sub[1] == "" || sub[1] == r.config.Replacement {
			return match
		}
		return strings.Replace(match, sub[1], r.config.Replacement, 1)
	})
}

// RedactFields redacts sensitive values in a map. Keys that name a secret
// are replaced wholesale; string values are scanned.
func (r *Redactor) RedactFields(fields map[string]any) map[string]any {
	r.mu.RLock()
	enabled := r.config.Enabled
	replacement := r.config.Replacement
	r.mu.RUnlock()

	if !enabled || fields == nil {
		return fields
	}

	result := make(map[string]any, len(fields))
	for k, v := range fields {
		if isSensitiveKey(strings.ToLower(k)) {
			result[k] = replacement
			continue
		}
		switch val := v.(type) {
		case string:
			result[k] = r.Redact(val)
		case error:
			result[k] = r.Redact(val.Error())
		case map[string]any:
			result[k] = r.RedactFields(val)
		default:
			result[k] = v
		}
	}
	return result
}

var sensitiveKeys = []string{
	"password", "secret", "token", "api_key", "apikey",
	"authorization", "credential", "private_key",
}

func isSensitiveKey(key string) bool {
	for _, sk := range sensitiveKeys {
		if strings.Contains(key, sk) {
			return true
		}
	}
	return false
}

// SetEnabled enables or disables redaction at runtime.
func (r *Redactor) SetEnabled(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.config.Enabled = enabled
}

// AddCustomPattern adds a custom redaction pattern at runtime.
func (r *Redactor) AddCustomPattern(pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.compiledCustom = append(r.compiledCustom, re)
	return nil
}

var (
	globalMu       sync.RWMutex
	globalRedactor = NewRedactor(DefaultConfig())
)

func global() *Redactor {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalRedactor
}

// Redact applies redaction using the global redactor.
func Redact(input string) string {
	return global().Redact(input)
}

// RedactFields redacts fields using the global redactor.
func RedactFields(fields map[string]any) map[string]any {
	return global().RedactFields(fields)
}

// SetGlobalConfig sets the configuration for the global redactor.
func SetGlobalConfig(config Config) {
	r := NewRedactor(config)
	globalMu.Lock()
	globalRedactor = r
	globalMu.Unlock()
}
