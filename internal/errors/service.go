// internal/errors/service.go - error recovery and presentation service
package errors

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/valpere/DressCodex/internal/utils"
)

// Service provides retry and CLI error presentation
type Service struct {
	retryConfig    RetryConfig
	messageHandler *MessageHandler
}

// RetryConfig defines retry behavior
type RetryConfig struct {
	MaxRetries    int           `yaml:"max_retries" json:"max_retries"`
	BaseDelay     time.Duration `yaml:"base_delay" json:"base_delay"`
	BackoffFactor float64       `yaml:"backoff_factor" json:"backoff_factor"`
	MaxDelay      time.Duration `yaml:"max_delay" json:"max_delay"`
}

// MessageHandler converts technical errors to user-friendly messages
type MessageHandler struct {
	showTechnical bool
}

// DefaultRetryConfig retries twice with exponential backoff from 500ms.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:    2,
		BaseDelay:     500 * time.Millisecond,
		BackoffFactor: 2.0,
		MaxDelay:      10 * time.Second,
	}
}

// NewService creates a new error service with default retry settings
func NewService() *Service {
	return &Service{
		retryConfig:    DefaultRetryConfig(),
		messageHandler: &MessageHandler{showTechnical: false},
	}
}

// WithVerbose enables technical error details
func (s *Service) WithVerbose(verbose bool) *Service {
	s.messageHandler.showTechnical = verbose
	return s
}

// WithRetryConfig replaces the retry settings
func (s *Service) WithRetryConfig(cfg RetryConfig) *Service {
	s.retryConfig = cfg
	return s
}

// ExecuteWithRetry runs operation until it succeeds, returns a
// non-retryable error, or the attempts are exhausted.
func (s *Service) ExecuteWithRetry(ctx context.Context, operation func() error, operationName string) error {
	var lastErr error

	for attempt := 0; attempt <= s.retryConfig.MaxRetries; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}

		lastErr = err

		if !s.shouldRetry(err, attempt) {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.calculateDelay(attempt)):
		}
	}

	return fmt.Errorf("operation %s failed: %w", operationName, lastErr)
}

// shouldRetry determines if error is retryable
func (s *Service) shouldRetry(err error, attempt int) bool {
	if attempt >= s.retryConfig.MaxRetries {
		return false
	}

	var se *utils.StructuredError
	if asStructured(err, &se) {
		return se.Retryable
	}

	errStr := strings.ToLower(err.Error())
	retryableErrors := []string{
		"timeout", "connection refused", "connection reset",
		"500", "502", "503", "504", "429",
		"temporary", "service unavailable",
	}

	for _, retryable := range retryableErrors {
		if strings.Contains(errStr, retryable) {
			return true
		}
	}

	return false
}

// calculateDelay computes exponential backoff delay
func (s *Service) calculateDelay(attempt int) time.Duration {
	delay := time.Duration(float64(s.retryConfig.BaseDelay) * pow(s.retryConfig.BackoffFactor, attempt))
	if delay > s.retryConfig.MaxDelay {
		delay = s.retryConfig.MaxDelay
	}
	return delay
}

// GetUserFriendlyError converts technical errors to user-friendly messages
func (s *Service) GetUserFriendlyError(err error) (title, message string, suggestions []string) {
	if err == nil {
		return "", "", nil
	}

	message = utils.GetUserFriendlyMessage(err)

	switch utils.CodeOf(err) {
	case utils.ErrCodeNoName:
		return "No Product Found", message, []string{
			"Check that the URL points to a single product page",
			"Add selectors for this retailer under 'retailers:' in the configuration",
			"Run 'dresscodex parse' on a saved copy of the page to inspect it",
		}
	case utils.ErrCodeInvalidURL, utils.ErrCodeInvalidInput:
		return "Invalid Input", message, []string{
			"Check the URL or text you passed",
		}
	case utils.ErrCodeFetchFailed:
		return "Page Fetch Failed", message, []string{
			"Check your internet connection",
			"Open the URL in a browser to make sure it is reachable",
			"Increase fetch.timeout in the configuration",
		}
	case utils.ErrCodeRateLimited:
		return "Rate Limit Exceeded", message, []string{
			"Lower fetch.requests_per_second",
			"Wait a moment and try again",
		}
	case utils.ErrCodeInvalidConfig, utils.ErrCodeValidation:
		return "Configuration Error", message, []string{
			"Run 'dresscodex validate <file>' for details",
			"Check YAML indentation (use spaces, not tabs)",
			"Run 'dresscodex template' for a working example",
		}
	case utils.ErrCodeCapabilityFailed, utils.ErrCodeCapabilityUnavailable, utils.ErrCodeMalformedResponse:
		return "Language Model Unavailable", message, []string{
			"Check llm.api_key and llm.base_url",
			"Results were computed without the language model",
		}
	case utils.ErrCodeDatabaseError:
		return "Database Error", message, []string{
			"Check mongo.uri and that the server is reachable",
		}
	case utils.ErrCodeParsingError:
		return "Parsing Error", message, []string{
			"The page may not be HTML",
		}
	}

	return "Unexpected Error", message, []string{
		"Try running the command again",
		"Run with --verbose for technical details",
	}
}

// Exit codes returned by the CLI
const (
	ExitOK         = 0
	ExitGeneral    = 1
	ExitConfig     = 2
	ExitNetwork    = 3
	ExitParsing    = 4
	ExitNoProduct  = 5
	ExitValidation = 6
	ExitRateLimit  = 7
	ExitCapability = 8
)

// GetExitCode returns appropriate exit code for error
func (s *Service) GetExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	switch utils.CodeOf(err) {
	case utils.ErrCodeInvalidConfig:
		return ExitConfig
	case utils.ErrCodeFetchFailed:
		return ExitNetwork
	case utils.ErrCodeParsingError:
		return ExitParsing
	case utils.ErrCodeNoName:
		return ExitNoProduct
	case utils.ErrCodeValidation, utils.ErrCodeInvalidInput, utils.ErrCodeInvalidURL:
		return ExitValidation
	case utils.ErrCodeRateLimited:
		return ExitRateLimit
	case utils.ErrCodeCapabilityFailed, utils.ErrCodeCapabilityUnavailable, utils.ErrCodeMalformedResponse:
		return ExitCapability
	default:
		return ExitGeneral
	}
}

// FormatErrorForCLI formats error for command-line display
func (s *Service) FormatErrorForCLI(err error) string {
	if err == nil {
		return ""
	}
	title, message, suggestions := s.GetUserFriendlyError(err)

	var b strings.Builder
	fmt.Fprintf(&b, "Error: %s\n%s\n", title, message)

	if s.messageHandler.showTechnical {
		fmt.Fprintf(&b, "\nTechnical details: %s\n", err.Error())
	}

	if len(suggestions) > 0 {
		b.WriteString("\nSuggestions:\n")
		for _, suggestion := range suggestions {
			fmt.Fprintf(&b, "  - %s\n", suggestion)
		}
	}

	return b.String()
}

func pow(base float64, exp int) float64 {
	result := 1.0
	for i := 0; i < exp; i++ {
		result *= base
	}
	return result
}
