package models

import "time"

type Status string

const (
	StatusNormal   Status = "normal"
	StatusCaution  Status = "caution"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
)

type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

type AnalysisResult struct {
	Timestamp       string    `json:"timestamp"`
	UserID          string    `json:"user_id"`
	Status          Status    `json:"status"`
	RiskLevel       RiskLevel `json:"risk_level"`
	Anomalies       []Anomaly `json:"anomalies"`
	AnomalyCount    int       `json:"anomaly_count"`
	Recommendations []string  `json:"recommendations"`
	ProcessedAt     time.Time `json:"processed_at"`
}

func (r *AnalysisResult) IsAnomalous() bool {
	return r.AnomalyCount > 0
}
