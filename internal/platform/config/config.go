package config

import (
	"os"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr                string
	DatabaseURL         string
	MessageServiceURL   string
	ParameterServiceURL string
	LookupTimeout       time.Duration
	EventBuffer         int
}

// FromEnv builds a Server config from environment variables so main stays
// lean. An empty DatabaseURL selects the in-memory stores; an empty lookup
// URL selects the offline client for that catalog.
func FromEnv() Server {
	addr := os.Getenv("VICTUS_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	lookupTimeout := 3 * time.Second
	if raw := os.Getenv("VICTUS_LOOKUP_TIMEOUT"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			lookupTimeout = d
		}
	}

	return Server{
		Addr:                addr,
		DatabaseURL:         os.Getenv("VICTUS_DB_URL"),
		MessageServiceURL:   os.Getenv("VICTUS_MESSAGE_SERVICE_URL"),
		ParameterServiceURL: os.Getenv("VICTUS_PARAMETER_SERVICE_URL"),
		LookupTimeout:       lookupTimeout,
		EventBuffer:         16,
	}
}
