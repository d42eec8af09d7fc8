package types

type Config struct {
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	ServerPort      uint   `envconfig:"SERVER_PORT" default:"8080"`
	BaseURL         string `envconfig:"BASE_URL" default:"http://localhost:8080"`
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	ReadTimeoutSec  uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"15"`

	// Session cookie
	CookieName       string `envconfig:"SESSION_COOKIE_NAME" default:"waterline_session"`
	SessionMaxAgeSec int    `envconfig:"SESSION_MAX_AGE_SEC" default:"604800"` // 7 days

	// Cookie encryption keys (base64 encoded)
	// openssl rand -base64 32
	// to generate values
	CookieHashKey  string `envconfig:"COOKIE_HASH_KEY"`  // 32 or 64 bytes
	CookieBlockKey string `envconfig:"COOKIE_BLOCK_KEY"` // 16, 24, or 32 bytes

	// Mail dispatch
	SendGridAPIKey string `envconfig:"SENDGRID_API_KEY"`
	MailFromName   string `envconfig:"MAIL_FROM_NAME" default:"Waterline"`
	MailFromAddr   string `envconfig:"MAIL_FROM_ADDR" default:"noreply@waterincidenttool.com"`

	// Evidence image storage
	EvidenceBucket string `envconfig:"EVIDENCE_BUCKET"`

	// Bootstrap admin account, created by the seed command
	AdminPassword string `envconfig:"ADMIN_PASSWORD" default:"adminpassword123"`
}
