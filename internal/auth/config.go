package auth

import "os"

// Config holds auth configuration for the doctor portal.
type Config struct {
	Issuer string
	Secret string
}

// DefaultIssuer is the token issuer staff tokens are minted with.
const DefaultIssuer = "jcjuneja-hospital/triage-service"

// LoadConfig reads config from env. AUTH_JWT_SECRET is the HS256 shared
// secret; an empty secret disables the portal entirely rather than leaving
// it open. Override the issuer with AUTH_ISSUER.
func LoadConfig() Config {
	issuer := os.Getenv("AUTH_ISSUER")
	if issuer == "" {
		issuer = DefaultIssuer
	}
	return Config{
		Issuer: issuer,
		Secret: os.Getenv("AUTH_JWT_SECRET"),
	}
}
