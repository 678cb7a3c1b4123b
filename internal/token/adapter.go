package token

import (
	"agegate/pkg/platform/middleware/auth"
)

// ServiceAdapter bridges the token service to the auth middleware's
// validator interface.
type ServiceAdapter struct {
	service *Service
}

func NewServiceAdapter(service *Service) *ServiceAdapter {
	return &ServiceAdapter{service: service}
}

func (a *ServiceAdapter) ValidateToken(tokenString string) (*auth.Claims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &auth.Claims{
		Principal: claims.Subject,
		JTI:       claims.ID,
	}, nil
}
