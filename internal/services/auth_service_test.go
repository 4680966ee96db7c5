package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	cacheSvc := new(MockCacheService)
	cacheSvc.On("SetString", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	service := NewAuthService(cacheSvc, "test-secret", 3600, 86400)
	userID := uuid.New()
	companyID := uuid.New()

	resp, err := service.GenerateTokens(context.Background(), userID, &companyID)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.NotEmpty(t, resp.RefreshToken)

	claims, err := service.ValidateToken(context.Background(), resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	require.NotNil(t, claims.CompanyID)
	assert.Equal(t, companyID.String(), *claims.CompanyID)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	cacheSvc := new(MockCacheService)
	cacheSvc.On("SetString", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	issuer := NewAuthService(cacheSvc, "secret-a", 3600, 86400)
	verifier := NewAuthService(cacheSvc, "secret-b", 3600, 86400)

	resp, err := issuer.GenerateTokens(context.Background(), uuid.New(), nil)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(context.Background(), resp.AccessToken)
	assert.Error(t, err)
}

// Refresh rotates: the presented token is deleted from the store and a new
// pair is issued for the same identity.
func TestRefreshToken_Rotates(t *testing.T) {
	cacheSvc := new(MockCacheService)
	service := NewAuthService(cacheSvc, "test-secret", 3600, 86400)
	userID := uuid.New()

	stored := ""
	cacheSvc.On("SetString", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			stored = args.String(2)
		}).Return(nil)

	resp, err := service.GenerateTokens(context.Background(), userID, nil)
	require.NoError(t, err)

	cacheSvc.On("GetString", mock.Anything, mock.Anything).Return(stored, nil).Once()
	cacheSvc.On("Delete", mock.Anything, mock.Anything).Return(nil)

	rotated, err := service.RefreshToken(context.Background(), resp.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), rotated.UserID)
	assert.NotEqual(t, resp.RefreshToken, rotated.RefreshToken)
	cacheSvc.AssertCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestRefreshToken_UnknownToken(t *testing.T) {
	cacheSvc := new(MockCacheService)
	service := NewAuthService(cacheSvc, "test-secret", 3600, 86400)

	cacheSvc.On("GetString", mock.Anything, mock.Anything).Return("", fmt.Errorf("cache miss"))

	_, err := service.RefreshToken(context.Background(), "no-such-token")
	assert.Error(t, err)
}
