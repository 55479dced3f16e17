// internal/services/auth_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/playline/agency-backend/internal/config"
	"github.com/playline/agency-backend/internal/models"
	"github.com/playline/agency-backend/internal/utils"
)

type AuthService struct {
	db     *gorm.DB
	config *config.Config
}

type LoginRequest struct {
	Code     string `json:"code" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	Agent models.Agent `json:"agent"`
}

func NewAuthService(db *gorm.DB, cfg *config.Config) *AuthService {
	return &AuthService{
		db:     db,
		config: cfg,
	}
}

// Login authenticates an agent by code and issues a portal token.
func (s *AuthService) Login(req *LoginRequest) (*LoginResponse, error) {
	var agent models.Agent
	if err := s.db.First(&agent, "code = ?", req.Code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("invalid credentials")
		}
		return nil, fmt.Errorf("failed to fetch agent: %w", err)
	}

	if !agent.IsActive() {
		return nil, fmt.Errorf("agent account is %s", agent.Status)
	}

	if err := agent.CheckPassword(req.Password); err != nil {
		return nil, errors.New("invalid credentials")
	}

	token, err := utils.GenerateJWT(agent.ID, agent.Code, string(agent.Role), s.config.JWT.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	now := time.Now()
	if err := s.db.Model(&agent).UpdateColumn("last_login_at", now).Error; err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}
	agent.LastLoginAt = &now

	return &LoginResponse{
		Token: token,
		Agent: agent,
	}, nil
}
