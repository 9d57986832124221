package config

import "os"

// CredentialOrigin says where a secret was read from.
type CredentialOrigin string

const (
	OriginEnv    CredentialOrigin = "env"
	OriginFile   CredentialOrigin = "config"
	OriginUnset  CredentialOrigin = "none"
	redactKeep                    = 3
)

// Credential describes one secret for the status command without revealing it.
type Credential struct {
	Name   string
	EnvVar string
	Origin CredentialOrigin
	Hint   string // first and last characters, empty when unset
}

// Set reports whether the secret has a value.
func (c Credential) Set() bool { return c.Origin != OriginUnset }

// Credentials lists the secrets a run may use. The Postgres DSN is one of
// them since it usually embeds a password.
func Credentials(cfg *Config) []Credential {
	secrets := []struct{ name, env, value string }{
		{"Hugging Face token", "STOCKCAST_SENTIMENT_HUGGINGFACE_TOKEN", cfg.Sentiment.HuggingFace.Token},
		{"Postgres DSN", "STOCKCAST_POSTGRES_DSN", cfg.Postgres.DSN},
		{"Redis password", "STOCKCAST_CACHE_REDIS_PASSWORD", cfg.Cache.Redis.Password},
	}
	out := make([]Credential, 0, len(secrets))
	for _, s := range secrets {
		c := Credential{Name: s.name, EnvVar: s.env, Origin: OriginUnset}
		switch {
		case s.value == "":
		case os.Getenv(s.env) == s.value:
			c.Origin = OriginEnv
		default:
			c.Origin = OriginFile
		}
		if c.Set() {
			c.Hint = redact(s.value)
		}
		out = append(out, c)
	}
	return out
}

// redact hides a secret, keeping a few characters at each end when it is
// long enough that they give nothing away.
func redact(secret string) string {
	if len(secret) <= 2*redactKeep+2 {
		return "***"
	}
	return secret[:redactKeep] + "..." + secret[len(secret)-redactKeep:]
}
