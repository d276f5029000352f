package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the resolved runtime configuration for the onboarding
// service. It merges file defaults and environment overrides to
// support both local and deployed runs.
type Config struct {
	ServiceID string

	HTTPPort int

	RedisURL    string
	DatabaseURL string

	KafkaBrokers []string
	KafkaTopic   string

	CRMBaseURL  string
	CRMUsername string
	CRMPassword string

	WhatsAppEndpoint string
	WhatsAppToken    string
	OTPTemplate      string
	OTPLanguage      string

	ChallengeEndpoint string
	ChallengeSecret   string

	MSATermsURL   string
	DebitTermsURL string
	BrandTitle    string
	BrandContact  string

	BlobDir        string
	BlobPublicBase string

	AdminCIDRs       []string
	StaffTokenSecret string
	StaffTokenTTL    time.Duration

	CustomerOTPTTL time.Duration
	StaffOTPTTL    time.Duration
	PDFCacheTTL    time.Duration
	WrapCacheTTL   time.Duration
	TermsCacheTTL  time.Duration

	ReusePlaceholderName string
}

// configFile mirrors the YAML schema used by configs/default.yaml.
// It is intentionally separate from Config so runtime-only fields stay internal.
type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		HTTPPort int    `yaml:"http_port"`
	} `yaml:"service"`
	Dependencies struct {
		RedisURL     string   `yaml:"redis_url"`
		PostgresURL  string   `yaml:"postgres_url"`
		KafkaBrokers []string `yaml:"kafka_brokers"`
		KafkaTopic   string   `yaml:"kafka_topic"`
	} `yaml:"dependencies"`
	CRM struct {
		BaseURL  string `yaml:"base_url"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
	} `yaml:"crm"`
	WhatsApp struct {
		Endpoint string `yaml:"endpoint"`
		Token    string `yaml:"token"`
		Template string `yaml:"template"`
		Language string `yaml:"language"`
	} `yaml:"whatsapp"`
	Challenge struct {
		Endpoint string `yaml:"endpoint"`
		Secret   string `yaml:"secret"`
	} `yaml:"challenge"`
	Documents struct {
		MSATermsURL   string `yaml:"msa_terms_url"`
		DebitTermsURL string `yaml:"debit_terms_url"`
		BrandTitle    string `yaml:"brand_title"`
		BrandContact  string `yaml:"brand_contact"`
	} `yaml:"documents"`
	Blobs struct {
		Dir        string `yaml:"dir"`
		PublicBase string `yaml:"public_base"`
	} `yaml:"blobs"`
	Admin struct {
		AllowedCIDRs []string `yaml:"allowed_cidrs"`
		TokenSecret  string   `yaml:"token_secret"`
	} `yaml:"admin"`
}

// LoadConfig resolves configuration in priority order: defaults -> file -> env.
// This order keeps local bootstrap simple while allowing environment-specific overrides.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:            "onboarding-service",
		HTTPPort:             8080,
		OTPTemplate:          "onboarding_otp",
		OTPLanguage:          "en",
		ChallengeEndpoint:    "https://challenges.cloudflare.com/turnstile/v0/siteverify",
		BrandTitle:           "Vinet Internet Solutions",
		BrandContact:         "www.vinet.co.za | 021 007 0200",
		BlobDir:              "data/blobs",
		StaffTokenTTL:        12 * time.Hour,
		CustomerOTPTTL:       10 * time.Minute,
		StaffOTPTTL:          15 * time.Minute,
		PDFCacheTTL:          24 * time.Hour,
		WrapCacheTTL:         24 * time.Hour,
		TermsCacheTTL:        time.Hour,
		ReusePlaceholderName: "RE-USE",
	}

	raw, err := os.ReadFile(path)
	if err == nil {
		var f configFile
		if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
			return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
		}
		if f.Service.ID != "" {
			cfg.ServiceID = f.Service.ID
		}
		if f.Service.HTTPPort > 0 {
			cfg.HTTPPort = f.Service.HTTPPort
		}
		if f.Dependencies.RedisURL != "" {
			cfg.RedisURL = f.Dependencies.RedisURL
		}
		if f.Dependencies.PostgresURL != "" {
			cfg.DatabaseURL = f.Dependencies.PostgresURL
		}
		if len(f.Dependencies.KafkaBrokers) > 0 {
			cfg.KafkaBrokers = f.Dependencies.KafkaBrokers
		}
		if f.Dependencies.KafkaTopic != "" {
			cfg.KafkaTopic = f.Dependencies.KafkaTopic
		}
		if f.CRM.BaseURL != "" {
			cfg.CRMBaseURL = f.CRM.BaseURL
		}
		if f.CRM.Username != "" {
			cfg.CRMUsername = f.CRM.Username
		}
		if f.CRM.Password != "" {
			cfg.CRMPassword = f.CRM.Password
		}
		if f.WhatsApp.Endpoint != "" {
			cfg.WhatsAppEndpoint = f.WhatsApp.Endpoint
		}
		if f.WhatsApp.Token != "" {
			cfg.WhatsAppToken = f.WhatsApp.Token
		}
		if f.WhatsApp.Template != "" {
			cfg.OTPTemplate = f.WhatsApp.Template
		}
		if f.WhatsApp.Language != "" {
			cfg.OTPLanguage = f.WhatsApp.Language
		}
		if f.Challenge.Endpoint != "" {
			cfg.ChallengeEndpoint = f.Challenge.Endpoint
		}
		if f.Challenge.Secret != "" {
			cfg.ChallengeSecret = f.Challenge.Secret
		}
		if f.Documents.MSATermsURL != "" {
			cfg.MSATermsURL = f.Documents.MSATermsURL
		}
		if f.Documents.DebitTermsURL != "" {
			cfg.DebitTermsURL = f.Documents.DebitTermsURL
		}
		if f.Documents.BrandTitle != "" {
			cfg.BrandTitle = f.Documents.BrandTitle
		}
		if f.Documents.BrandContact != "" {
			cfg.BrandContact = f.Documents.BrandContact
		}
		if f.Blobs.Dir != "" {
			cfg.BlobDir = f.Blobs.Dir
		}
		if f.Blobs.PublicBase != "" {
			cfg.BlobPublicBase = f.Blobs.PublicBase
		}
		if len(f.Admin.AllowedCIDRs) > 0 {
			cfg.AdminCIDRs = f.Admin.AllowedCIDRs
		}
		if f.Admin.TokenSecret != "" {
			cfg.StaffTokenSecret = f.Admin.TokenSecret
		}
	}

	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.DatabaseURL = envOrDefault("DB_URL", envOrDefault("POSTGRES_URL", cfg.DatabaseURL))
	cfg.KafkaBrokers = envCSV("KAFKA_BROKERS", cfg.KafkaBrokers)
	cfg.KafkaTopic = envOrDefault("KAFKA_TOPIC", cfg.KafkaTopic)
	cfg.CRMBaseURL = envOrDefault("CRM_BASE_URL", cfg.CRMBaseURL)
	cfg.CRMUsername = envOrDefault("CRM_USERNAME", cfg.CRMUsername)
	cfg.CRMPassword = envOrDefault("CRM_PASSWORD", cfg.CRMPassword)
	cfg.WhatsAppEndpoint = envOrDefault("WHATSAPP_ENDPOINT", cfg.WhatsAppEndpoint)
	cfg.WhatsAppToken = envOrDefault("WHATSAPP_TOKEN", cfg.WhatsAppToken)
	cfg.OTPTemplate = envOrDefault("WHATSAPP_OTP_TEMPLATE", cfg.OTPTemplate)
	cfg.OTPLanguage = envOrDefault("WHATSAPP_OTP_LANGUAGE", cfg.OTPLanguage)
	cfg.ChallengeEndpoint = envOrDefault("CHALLENGE_ENDPOINT", cfg.ChallengeEndpoint)
	cfg.ChallengeSecret = envOrDefault("CHALLENGE_SECRET", cfg.ChallengeSecret)
	cfg.MSATermsURL = envOrDefault("MSA_TERMS_URL", cfg.MSATermsURL)
	cfg.DebitTermsURL = envOrDefault("DEBIT_TERMS_URL", cfg.DebitTermsURL)
	cfg.BrandTitle = envOrDefault("BRAND_TITLE", cfg.BrandTitle)
	cfg.BrandContact = envOrDefault("BRAND_CONTACT", cfg.BrandContact)
	cfg.BlobDir = envOrDefault("BLOB_DIR", cfg.BlobDir)
	cfg.BlobPublicBase = envOrDefault("BLOB_PUBLIC_BASE", cfg.BlobPublicBase)
	cfg.AdminCIDRs = envCSV("ADMIN_ALLOWED_CIDRS", cfg.AdminCIDRs)
	cfg.StaffTokenSecret = envOrDefault("STAFF_TOKEN_SECRET", cfg.StaffTokenSecret)
	cfg.ReusePlaceholderName = envOrDefault("REUSE_PLACEHOLDER_NAME", cfg.ReusePlaceholderName)

	cfg.StaffTokenTTL = time.Duration(envInt("STAFF_TOKEN_TTL_HOURS", int(cfg.StaffTokenTTL.Hours()))) * time.Hour
	cfg.CustomerOTPTTL = time.Duration(envInt("CUSTOMER_OTP_TTL_SECONDS", int(cfg.CustomerOTPTTL.Seconds()))) * time.Second
	cfg.StaffOTPTTL = time.Duration(envInt("STAFF_OTP_TTL_SECONDS", int(cfg.StaffOTPTTL.Seconds()))) * time.Second
	cfg.PDFCacheTTL = time.Duration(envInt("PDF_CACHE_TTL_SECONDS", int(cfg.PDFCacheTTL.Seconds()))) * time.Second
	cfg.WrapCacheTTL = time.Duration(envInt("WRAP_CACHE_TTL_SECONDS", int(cfg.WrapCacheTTL.Seconds()))) * time.Second
	cfg.TermsCacheTTL = time.Duration(envInt("TERMS_CACHE_TTL_SECONDS", int(cfg.TermsCacheTTL.Seconds()))) * time.Second

	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("missing REDIS_URL")
	}
	if cfg.CRMBaseURL == "" {
		return Config{}, fmt.Errorf("missing CRM_BASE_URL")
	}
	if cfg.StaffTokenSecret == "" {
		return Config{}, fmt.Errorf("missing STAFF_TOKEN_SECRET")
	}

	return cfg, nil
}

// envOrDefault returns an env var when present, otherwise the provided fallback.
func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

// envInt parses integer env vars with safe fallback on empty/invalid values.
func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// envCSV parses comma-separated env vars and removes empty segments.
func envCSV(name string, fallback []string) []string {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	parts := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		parts = append(parts, trimmed)
	}
	if len(parts) == 0 {
		return fallback
	}
	return parts
}
