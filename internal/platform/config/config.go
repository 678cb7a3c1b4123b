package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	id "agegate/pkg/domain"
)

// Protocol parameter defaults, in micro-units and ticks. Fee and bond are
// mutable at runtime through the admin surface; the validity period is fixed
// for the lifetime of the process.
var (
	DefaultVerificationFee     = uint64(1_000_000)
	DefaultProofBond           = uint64(5_000_000)
	DefaultProofValidityPeriod = uint64(8640)
	DefaultTickInterval        = time.Second
)

// Server captures process-level configuration so main stays lean.
type Server struct {
	Addr        string
	Environment string

	// Protocol principals. Owner gates the admin surface; operator receives
	// fees; escrow holds posted bonds.
	Owner           id.Principal
	OperatorAccount id.Principal
	EscrowAccount   id.Principal

	VerificationFee     uint64
	ProofBond           uint64
	ProofValidityPeriod uint64
	TickInterval        time.Duration

	JWTSigningKey string
	AdminKeyHash  string

	// TrustedProxyCIDRs is the raw comma-separated CIDR list; parsing happens
	// in main where a failure can be reported and fatal.
	TrustedProxyCIDRs string

	PostgresURL  string
	AutoMigrate  bool
	RedisAddr    string
	KafkaBrokers []string
	AuditTopic   string
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	cfg := Server{
		Addr:                envOr("AGEGATE_ADDR", ":8080"),
		Environment:         envOr("AGEGATE_ENV", "development"),
		Owner:               id.Principal(envOr("AGEGATE_OWNER", "owner")),
		OperatorAccount:     id.Principal(envOr("AGEGATE_OPERATOR_ACCOUNT", "agegate.operator")),
		EscrowAccount:       id.Principal(envOr("AGEGATE_ESCROW_ACCOUNT", "agegate.escrow")),
		VerificationFee:     envUint("AGEGATE_VERIFICATION_FEE", DefaultVerificationFee),
		ProofBond:           envUint("AGEGATE_PROOF_BOND", DefaultProofBond),
		ProofValidityPeriod: envUint("AGEGATE_PROOF_VALIDITY_PERIOD", DefaultProofValidityPeriod),
		TickInterval:        envDuration("AGEGATE_TICK_INTERVAL", DefaultTickInterval),
		JWTSigningKey:       os.Getenv("AGEGATE_JWT_SIGNING_KEY"),
		AdminKeyHash:        os.Getenv("AGEGATE_ADMIN_KEY_HASH"),
		TrustedProxyCIDRs:   os.Getenv("AGEGATE_TRUSTED_PROXIES"),
		PostgresURL:         os.Getenv("AGEGATE_POSTGRES_URL"),
		AutoMigrate:         envBool("AGEGATE_AUTO_MIGRATE", false),
		RedisAddr:           os.Getenv("AGEGATE_REDIS_ADDR"),
		AuditTopic:          envOr("AGEGATE_AUDIT_TOPIC", "agegate.audit.events"),
	}
	if brokers := os.Getenv("AGEGATE_KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}
	if cfg.JWTSigningKey == "" {
		// Development default; must be overridden in production.
		cfg.JWTSigningKey = "dev-secret-key-change-in-production"
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envUint(key string, fallback uint64) uint64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
