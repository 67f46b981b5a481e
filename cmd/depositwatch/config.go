package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/planmoni/depositwatch/internal/logger"
	"github.com/planmoni/depositwatch/internal/service/notify"
	"github.com/planmoni/depositwatch/internal/service/reconciler"
)

const (
	defaultListenAddr     = "localhost:8000"
	defaultLoggingLevel   = logger.LevelInfo
	defaultEnvironment    = logger.EnvProduction
	defaultPaystackAPIURL = "https://api.paystack.co"
	defaultResendFrom     = "Planmoni <notifications@planmoni.com>"
)

type Config struct {
	// Default logging level
	LogLevel string

	// Address on which the depositwatch service will be run
	ListenAddr string

	// Database to connect to
	DatabaseDSN string

	// Payment processor API
	PaystackAPIURL    string
	PaystackSecretKey string

	// Transactional email delivery
	ResendAPIURL string
	ResendAPIKey string
	ResendFrom   string

	// Push delivery. Empty server key disables push entirely.
	FCMSendURL   string
	FCMServerKey string

	// Static bearer token guarding the job-trigger endpoint
	ServiceToken string

	// Settlement channel expected for virtual account credits
	Channel string

	// User id to run the client-style poller for. Empty disables the poller.
	PollUserID string

	// Environment
	Environment string
}

func NewConfig() *Config {
	return &Config{
		LogLevel:       defaultLoggingLevel,
		ListenAddr:     defaultListenAddr,
		PaystackAPIURL: defaultPaystackAPIURL,
		ResendAPIURL:   notify.DefaultResendURL,
		ResendFrom:     defaultResendFrom,
		FCMSendURL:     notify.DefaultFCMSendURL,
		Channel:        reconciler.DefaultChannel,
		Environment:    defaultEnvironment,
	}
}

// Load variable from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		c.LoadEnv(func(key string) string {
			return envMap[key]
		})
		return nil
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) {
		return func(value string) {
			if value != "" {
				*o = value
			}
		}
	}

	envMap := map[string]func(string){
		"RUN_ADDRESS":         setString(&c.ListenAddr),
		"DATABASE_URI":        setString(&c.DatabaseDSN),
		"LOG_LEVEL":           setString(&c.LogLevel),
		"ENVIRONMENT":         setString(&c.Environment),
		"PAYSTACK_API_URL":    setString(&c.PaystackAPIURL),
		"PAYSTACK_SECRET_KEY": setString(&c.PaystackSecretKey),
		"RESEND_API_URL":      setString(&c.ResendAPIURL),
		"RESEND_API_KEY":      setString(&c.ResendAPIKey),
		"RESEND_FROM":         setString(&c.ResendFrom),
		"FCM_SEND_URL":        setString(&c.FCMSendURL),
		"FCM_SERVER_KEY":      setString(&c.FCMServerKey),
		"SERVICE_TOKEN":       setString(&c.ServiceToken),
		"SETTLEMENT_CHANNEL":  setString(&c.Channel),
		"POLL_USER_ID":        setString(&c.PollUserID),
	}

	for key, parseFn := range envMap {
		parseFn(getenv(key))
	}
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("depositwatch", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")
	fs.StringVar(&c.PaystackSecretKey, "paystack-key", c.PaystackSecretKey, "Paystack secret key")
	fs.StringVar(&c.ResendAPIKey, "resend-key", c.ResendAPIKey, "Resend API key")
	fs.StringVar(&c.FCMServerKey, "fcm-key", c.FCMServerKey, "FCM server key (empty disables push)")
	fs.StringVarP(&c.ServiceToken, "service-token", "t", c.ServiceToken, "Bearer token for the job-trigger endpoint")
	fs.StringVar(&c.PollUserID, "poll-user", c.PollUserID, "User id to poll deposits for (empty disables the poller)")

	return fs.Parse(args)
}

// Validate checks the options the service cannot run without. Called once at
// startup so a missing secret fails fast with a clear message instead of a
// mid-request error.
func (c *Config) Validate() error {
	required := map[string]string{
		"database connection string": c.DatabaseDSN,
		"paystack secret key":        c.PaystackSecretKey,
		"resend api key":             c.ResendAPIKey,
		"service token":              c.ServiceToken,
	}

	for name, value := range required {
		if value == "" {
			return fmt.Errorf("configuration error: %s is required", name)
		}
	}

	return nil
}
