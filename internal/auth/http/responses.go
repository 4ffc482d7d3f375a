package http

import (
	"github.com/jobfolio/auth/internal/auth/domain"
	"github.com/jobfolio/auth/pkg/authsdk"
)

func userInfo(u domain.User) authsdk.UserInfo {
	return authsdk.UserInfo{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
	}
}

func sessionResponse(u domain.User, t domain.SessionTokens) authsdk.SessionResponse {
	return authsdk.SessionResponse{
		AccessToken: t.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(t.ExpiresIn.Seconds()),
		User:        userInfo(u),
	}
}
