package v1

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/evemind/evemind/internal/auth"
)

type LoginInput struct {
	Body struct {
		Email    string `json:"email" minLength:"3" maxLength:"255" doc:"User email"`
		Password string `json:"password" minLength:"1" maxLength:"128" doc:"Password"` //nolint:gosec // G117: login credential DTO
	}
}

type LoginOutput struct {
	Body struct {
		Success bool   `json:"success"`
		Message string `json:"message,omitempty"`
		Data    struct {
			Token        string     `json:"token"`         //nolint:gosec // G117: auth response DTO
			RefreshToken string     `json:"refresh_token"` //nolint:gosec // G117: auth response DTO
			User         *auth.User `json:"user"`
		} `json:"data"`
	}
}

type VerifyInput struct {
	Authorization string `header:"Authorization" doc:"Bearer access token"`
}

type VerifyOutput struct {
	Body struct {
		Success bool `json:"success"`
		Data    struct {
			User *auth.Claims `json:"user"`
		} `json:"data"`
	}
}

type RefreshInput struct {
	Body struct {
		RefreshToken string `json:"refresh_token" minLength:"1" doc:"Refresh token"` //nolint:gosec // G117: token refresh DTO
	}
}

type RefreshOutput struct {
	Body struct {
		Success bool   `json:"success"`
		Token   string `json:"token"` //nolint:gosec // G117: auth response DTO
	}
}

type LogoutOutput struct {
	Body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
}

// RegisterAuthRoutes wires login, token verification, refresh and logout.
func RegisterAuthRoutes(api huma.API, authSvc *auth.Service) {
	huma.Register(api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/auth/login",
		Summary:     "Realizar login no sistema",
		Tags:        []string{"Autenticação"},
	}, func(_ context.Context, input *LoginInput) (*LoginOutput, error) {
		user, accessToken, refreshToken, err := authSvc.Login(input.Body.Email, input.Body.Password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				return nil, huma.Error401Unauthorized("credenciais inválidas")
			}
			return nil, huma.Error500InternalServerError("erro ao realizar login", err)
		}

		out := &LoginOutput{}
		out.Body.Success = true
		out.Body.Message = "login realizado com sucesso"
		out.Body.Data.Token = accessToken
		out.Body.Data.RefreshToken = refreshToken
		out.Body.Data.User = user
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "verify-token",
		Method:      http.MethodGet,
		Path:        "/auth/verify",
		Summary:     "Verificar token de acesso",
		Tags:        []string{"Autenticação"},
	}, func(_ context.Context, input *VerifyInput) (*VerifyOutput, error) {
		token := ""
		if len(input.Authorization) > 7 && strings.EqualFold(input.Authorization[:7], "bearer ") {
			token = input.Authorization[7:]
		}
		if token == "" {
			return nil, huma.Error401Unauthorized("token não fornecido")
		}

		claims, err := authSvc.Validate(token)
		if err != nil {
			return nil, huma.Error401Unauthorized("token inválido")
		}

		out := &VerifyOutput{}
		out.Body.Success = true
		out.Body.Data.User = claims
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "refresh-token",
		Method:      http.MethodPost,
		Path:        "/auth/refresh",
		Summary:     "Renovar token de acesso",
		Tags:        []string{"Autenticação"},
	}, func(_ context.Context, input *RefreshInput) (*RefreshOutput, error) {
		accessToken, err := authSvc.Refresh(input.Body.RefreshToken)
		if err != nil {
			return nil, huma.Error401Unauthorized("refresh token inválido ou expirado")
		}

		out := &RefreshOutput{}
		out.Body.Success = true
		out.Body.Token = accessToken
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "logout",
		Method:      http.MethodPost,
		Path:        "/auth/logout",
		Summary:     "Encerrar sessão",
		Tags:        []string{"Autenticação"},
	}, func(_ context.Context, _ *struct{}) (*LogoutOutput, error) {
		// Tokens are stateless; logout is an acknowledgement for the client.
		out := &LogoutOutput{}
		out.Body.Success = true
		out.Body.Message = "logout realizado com sucesso"
		return out, nil
	})
}
