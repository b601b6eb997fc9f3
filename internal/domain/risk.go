package domain

import "github.com/google/uuid"

// RiskLevel is a display band derived from the numeric risk score. It is
// informational only; decisions (freezing, reviews) stay with operators.
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "LOW"
	RiskLevelMedium   RiskLevel = "MEDIUM"
	RiskLevelHigh     RiskLevel = "HIGH"
	RiskLevelCritical RiskLevel = "CRITICAL"
)

// RiskLevelFor maps a score to its band. Scores are unbounded above, so
// anything at or past 100 is CRITICAL.
func RiskLevelFor(score int) RiskLevel {
	switch {
	case score < 30:
		return RiskLevelLow
	case score < 60:
		return RiskLevelMedium
	case score < 100:
		return RiskLevelHigh
	default:
		return RiskLevelCritical
	}
}

// RiskProfile is the read model returned by risk lookups.
type RiskProfile struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	KYCStatus KYCStatus `json:"kyc_status"`
	RiskScore int       `json:"risk_score"`
	RiskLevel RiskLevel `json:"risk_level"`
	IsFrozen  bool      `json:"is_frozen"`
}
