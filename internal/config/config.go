package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv = "NEWSBRIEF_CONFIG"

	tavilyAPIKeyEnv    = "TAVILY_API_KEY"
	azureEndpointEnv   = "AZURE_OPENAI_ENDPOINT"
	azureAPIKeyEnv     = "AZURE_OPENAI_API_KEY"
	azureDeploymentEnv = "AZURE_OPENAI_DEPLOYMENT_NAME"
	azureAPIVersionEnv = "AZURE_OPENAI_API_VERSION"
	resendAPIKeyEnv    = "RESEND_API_KEY"
	fromEmailEnv       = "FROM_EMAIL"
	recipientEmailsEnv = "RECIPIENT_EMAILS"
	interestsEnv       = "AI_INTERESTS"
	audienceEnv        = "TARGET_AUDIENCE"
	newsletterNameEnv  = "NEWSLETTER_NAME"
	trustedDomainsEnv  = "TRUSTED_NEWS_DOMAINS"
	feedURLsEnv        = "FEED_URLS"
	logLevelEnv        = "NEWSBRIEF_LOG_LEVEL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Search     SearchConfig     `yaml:"search"`
	Completion CompletionConfig `yaml:"completion"`
	Email      EmailConfig      `yaml:"email"`
	Newsletter NewsletterConfig `yaml:"newsletter"`
	Feeds      FeedConfig       `yaml:"feeds"`
	Retry      RetryConfig      `yaml:"retry"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SearchConfig describes how to contact the news search API.
type SearchConfig struct {
	BaseURL        string `yaml:"baseUrl"`
	APIKey         string `yaml:"apiKey"`
	MaxResults     int    `yaml:"maxResults"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
}

// Timeout resolves the call-level timeout for search requests.
func (s SearchConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// CompletionConfig describes the Azure OpenAI deployment used for
// scoring and newsletter writing.
type CompletionConfig struct {
	Endpoint       string `yaml:"endpoint"`
	APIKey         string `yaml:"apiKey"`
	Deployment     string `yaml:"deployment"`
	APIVersion     string `yaml:"apiVersion"`
	ContentLimit   int    `yaml:"contentLimit"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
}

// Timeout resolves the call-level timeout for completion requests.
func (c CompletionConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// EmailConfig wires the outbound email provider and the recipient list.
type EmailConfig struct {
	BaseURL        string   `yaml:"baseUrl"`
	APIKey         string   `yaml:"apiKey"`
	From           string   `yaml:"from"`
	Recipients     []string `yaml:"recipients"`
	TimeoutSeconds int      `yaml:"timeoutSeconds"`
}

// Timeout resolves the call-level timeout for email sends.
func (e EmailConfig) Timeout() time.Duration {
	return time.Duration(e.TimeoutSeconds) * time.Second
}

// NewsletterConfig shapes the editorial side of a run.
type NewsletterConfig struct {
	Name           string   `yaml:"name"`
	Interests      string   `yaml:"interests"`
	Audience       string   `yaml:"audience"`
	TrustedDomains []string `yaml:"trustedDomains"`
	MaxArticles    int      `yaml:"maxArticles"`
}

// FeedConfig lists supplemental syndication feeds. An empty URL list
// disables the feed source entirely.
type FeedConfig struct {
	URLs           []string `yaml:"urls"`
	TimeoutSeconds int      `yaml:"timeoutSeconds"`
}

// Timeout resolves the per-feed fetch timeout.
func (f FeedConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSeconds) * time.Second
}

// RetryConfig bounds retries for the outbound API calls. Email keeps a
// separate attempt budget because a duplicate send is worse than a
// duplicate search.
type RetryConfig struct {
	Attempts      int `yaml:"attempts"`
	EmailAttempts int `yaml:"emailAttempts"`
	BaseDelayMS   int `yaml:"baseDelayMs"`
}

// BaseDelay resolves the first backoff interval.
func (r RetryConfig) BaseDelay() time.Duration {
	return time.Duration(r.BaseDelayMS) * time.Millisecond
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()

	return cfg
}

// Validate checks the required secret/endpoint subset and names every
// missing variable at once, so one failed run reports the full fix.
func (c Config) Validate() error {
	var missing []string
	if c.Search.APIKey == "" {
		missing = append(missing, tavilyAPIKeyEnv)
	}
	if c.Completion.Endpoint == "" {
		missing = append(missing, azureEndpointEnv)
	}
	if c.Completion.APIKey == "" {
		missing = append(missing, azureAPIKeyEnv)
	}
	if c.Email.APIKey == "" {
		missing = append(missing, resendAPIKeyEnv)
	}
	if c.Email.From == "" {
		missing = append(missing, fromEmailEnv)
	}
	if len(c.Email.Recipients) == 0 {
		missing = append(missing, recipientEmailsEnv)
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(tavilyAPIKeyEnv); v != "" {
		c.Search.APIKey = v
	}

	if v := os.Getenv(azureEndpointEnv); v != "" {
		c.Completion.Endpoint = v
	}
	if v := os.Getenv(azureAPIKeyEnv); v != "" {
		c.Completion.APIKey = v
	}
	if v := os.Getenv(azureDeploymentEnv); v != "" {
		c.Completion.Deployment = v
	}
	if v := os.Getenv(azureAPIVersionEnv); v != "" {
		c.Completion.APIVersion = v
	}

	if v := os.Getenv(resendAPIKeyEnv); v != "" {
		c.Email.APIKey = v
	}
	if v := os.Getenv(fromEmailEnv); v != "" {
		c.Email.From = v
	}
	if v := os.Getenv(recipientEmailsEnv); v != "" {
		c.Email.Recipients = splitList(v)
	}

	if v := os.Getenv(interestsEnv); v != "" {
		c.Newsletter.Interests = v
	}
	if v := os.Getenv(audienceEnv); v != "" {
		c.Newsletter.Audience = v
	}
	if v := os.Getenv(newsletterNameEnv); v != "" {
		c.Newsletter.Name = v
	}
	if v := os.Getenv(trustedDomainsEnv); v != "" {
		c.Newsletter.TrustedDomains = splitList(v)
	}

	if v := os.Getenv(feedURLsEnv); v != "" {
		c.Feeds.URLs = splitList(v)
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.Search.BaseURL != "" {
		base.Search.BaseURL = override.Search.BaseURL
	}
	if override.Search.APIKey != "" {
		base.Search.APIKey = override.Search.APIKey
	}
	if override.Search.MaxResults > 0 {
		base.Search.MaxResults = override.Search.MaxResults
	}
	if override.Search.TimeoutSeconds > 0 {
		base.Search.TimeoutSeconds = override.Search.TimeoutSeconds
	}

	if override.Completion.Endpoint != "" {
		base.Completion.Endpoint = override.Completion.Endpoint
	}
	if override.Completion.APIKey != "" {
		base.Completion.APIKey = override.Completion.APIKey
	}
	if override.Completion.Deployment != "" {
		base.Completion.Deployment = override.Completion.Deployment
	}
	if override.Completion.APIVersion != "" {
		base.Completion.APIVersion = override.Completion.APIVersion
	}
	if override.Completion.ContentLimit > 0 {
		base.Completion.ContentLimit = override.Completion.ContentLimit
	}
	if override.Completion.TimeoutSeconds > 0 {
		base.Completion.TimeoutSeconds = override.Completion.TimeoutSeconds
	}

	if override.Email.BaseURL != "" {
		base.Email.BaseURL = override.Email.BaseURL
	}
	if override.Email.APIKey != "" {
		base.Email.APIKey = override.Email.APIKey
	}
	if override.Email.From != "" {
		base.Email.From = override.Email.From
	}
	if len(override.Email.Recipients) > 0 {
		base.Email.Recipients = override.Email.Recipients
	}
	if override.Email.TimeoutSeconds > 0 {
		base.Email.TimeoutSeconds = override.Email.TimeoutSeconds
	}

	if override.Newsletter.Name != "" {
		base.Newsletter.Name = override.Newsletter.Name
	}
	if override.Newsletter.Interests != "" {
		base.Newsletter.Interests = override.Newsletter.Interests
	}
	if override.Newsletter.Audience != "" {
		base.Newsletter.Audience = override.Newsletter.Audience
	}
	if len(override.Newsletter.TrustedDomains) > 0 {
		base.Newsletter.TrustedDomains = override.Newsletter.TrustedDomains
	}
	if override.Newsletter.MaxArticles > 0 {
		base.Newsletter.MaxArticles = override.Newsletter.MaxArticles
	}

	if len(override.Feeds.URLs) > 0 {
		base.Feeds.URLs = override.Feeds.URLs
	}
	if override.Feeds.TimeoutSeconds > 0 {
		base.Feeds.TimeoutSeconds = override.Feeds.TimeoutSeconds
	}

	if override.Retry.Attempts > 0 {
		base.Retry.Attempts = override.Retry.Attempts
	}
	if override.Retry.EmailAttempts > 0 {
		base.Retry.EmailAttempts = override.Retry.EmailAttempts
	}
	if override.Retry.BaseDelayMS > 0 {
		base.Retry.BaseDelayMS = override.Retry.BaseDelayMS
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Search: SearchConfig{
			BaseURL:        "https://api.tavily.com",
			MaxResults:     20,
			TimeoutSeconds: 30,
		},
		Completion: CompletionConfig{
			Deployment:     "gpt-5-mini",
			APIVersion:     "2024-12-01-preview",
			ContentLimit:   4000,
			TimeoutSeconds: 120,
		},
		Email: EmailConfig{
			BaseURL:        "https://api.resend.com",
			TimeoutSeconds: 30,
		},
		Newsletter: NewsletterConfig{
			Name:      "AI Daily Brief",
			Interests: "Large Language Models, AI agents, AI tools, machine learning breakthroughs",
			Audience:  "tech professionals and AI enthusiasts",
			TrustedDomains: []string{
				"openai.com",
				"anthropic.com",
				"deepmind.google",
				"ai.meta.com",
				"blogs.microsoft.com",
				"huggingface.co",
			},
			MaxArticles: 5,
		},
		Feeds: FeedConfig{TimeoutSeconds: 30},
		Retry: RetryConfig{
			Attempts:      2,
			EmailAttempts: 1,
			BaseDelayMS:   400,
		},
	}
}
