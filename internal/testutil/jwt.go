package testutil

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/jcjuneja-hospital/triage-service/internal/auth"
)

// TestSecret is the shared HMAC secret used by all test tokens.
const TestSecret = "triage-test-secret"

// CreateTestVerifier creates a verifier configured for testing. Tokens minted
// with GenerateTestJWT and TestSecret validate against it.
func CreateTestVerifier(t *testing.T) *auth.Verifier {
	t.Helper()

	cfg := auth.Config{
		Issuer: auth.DefaultIssuer,
		Secret: TestSecret,
	}
	return auth.NewVerifier(cfg)
}

// GenerateTestJWT creates a valid HS256 token with the specified subject and
// roles, signed with TestSecret.
func GenerateTestJWT(t *testing.T, userID string, roles []string) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub":   userID,
		"iss":   auth.DefaultIssuer,
		"exp":   time.Now().Add(1 * time.Hour).Unix(),
		"iat":   time.Now().Unix(),
		"roles": interfaceSlice(roles),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(TestSecret))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}

	return tokenString
}

// GenerateDoctorToken creates a DOCTOR token for testing
func GenerateDoctorToken(t *testing.T) string {
	t.Helper()
	return GenerateTestJWT(t, "doctor-123", []string{"DOCTOR"})
}

// GenerateAdminToken creates an ADMIN token for testing
func GenerateAdminToken(t *testing.T) string {
	t.Helper()
	return GenerateTestJWT(t, "admin-123", []string{"ADMIN"})
}

// GenerateExpiredToken creates a token that expired an hour ago
func GenerateExpiredToken(t *testing.T) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub":   "doctor-123",
		"iss":   auth.DefaultIssuer,
		"exp":   time.Now().Add(-1 * time.Hour).Unix(),
		"iat":   time.Now().Add(-2 * time.Hour).Unix(),
		"roles": interfaceSlice([]string{"DOCTOR"}),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(TestSecret))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}

	return tokenString
}

// interfaceSlice converts []string to []interface{} for JWT claims
func interfaceSlice(strings []string) []interface{} {
	result := make([]interface{}, len(strings))
	for i, s := range strings {
		result[i] = s
	}
	return result
}
