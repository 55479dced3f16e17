// internal/services/statement_service.go
package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/playline/agency-backend/internal/config"
	"github.com/playline/agency-backend/internal/models"
)

// StatementService archives paid settlements as JSON statements in S3 so
// every payout has an immutable audit artifact.
type StatementService struct {
	s3Client *s3.S3
	config   *config.Config
}

func NewStatementService(cfg *config.Config) (*StatementService, error) {
	if cfg.AWS.AccessKeyID == "" {
		// Return service without S3 for local development
		return &StatementService{config: cfg}, nil
	}

	// Create AWS session
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.AWS.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AWS.AccessKeyID,
			cfg.AWS.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &StatementService{
		s3Client: s3.New(sess),
		config:   cfg,
	}, nil
}

type settlementStatement struct {
	SettlementID string    `json:"settlement_id"`
	AgentID      string    `json:"agent_id"`
	PeriodStart  time.Time `json:"period_start"`
	PeriodEnd    time.Time `json:"period_end"`
	RollingTotal string    `json:"rolling_total"`
	LosingTotal  string    `json:"losing_total"`
	GrossTotal   string    `json:"gross_total"`
	NetTotal     string    `json:"net_total"`
	EntryCount   int64     `json:"entry_count"`
	PaidAt       string    `json:"paid_at"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// UploadStatement writes the statement object and returns its URL. Returns
// an empty URL when no S3 client is configured.
func (s *StatementService) UploadStatement(settlement *models.Settlement) (string, error) {
	if s.s3Client == nil {
		return "", nil
	}

	statement := settlementStatement{
		SettlementID: settlement.ID.String(),
		AgentID:      settlement.AgentID.String(),
		PeriodStart:  settlement.PeriodStart,
		PeriodEnd:    settlement.PeriodEnd,
		RollingTotal: settlement.RollingTotal.StringFixed(2),
		LosingTotal:  settlement.LosingTotal.StringFixed(2),
		GrossTotal:   settlement.GrossTotal.StringFixed(2),
		NetTotal:     settlement.NetTotal.StringFixed(2),
		EntryCount:   settlement.EntryCount,
		GeneratedAt:  time.Now(),
	}
	if settlement.PaidAt != nil {
		statement.PaidAt = settlement.PaidAt.Format(time.RFC3339)
	}

	body, err := json.MarshalIndent(statement, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize statement: %w", err)
	}

	key := fmt.Sprintf("statements/%s/%s.json", settlement.AgentID, settlement.ID)

	_, err = s.s3Client.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(s.config.AWS.S3Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload statement: %w", err)
	}

	url := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s",
		s.config.AWS.S3Bucket, s.config.AWS.Region, key)
	return url, nil
}
