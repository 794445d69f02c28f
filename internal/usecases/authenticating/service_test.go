package authenticating

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/traffic-autopilot/internal/config"
	"golang.org/x/crypto/bcrypt"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3nha-forte"), bcrypt.MinCost)
	require.NoError(t, err)

	return NewService(&config.Config{Auth: config.Auth{
		Secret:               "segredo-de-teste",
		OperatorEmail:        "Operador@Empresa.com",
		OperatorPasswordHash: string(hash),
		TokenTTLHours:        1,
	}})
}

func TestLoginOperator(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "credenciais corretas", email: " operador@empresa.com", password: "s3nha-forte"},
		{name: "senha errada", email: "operador@empresa.com", password: "errada", wantErr: ErrInvalidCredentials},
		{name: "email de outra pessoa", email: "outro@empresa.com", password: "s3nha-forte", wantErr: ErrInvalidCredentials},
		{name: "campos vazios", email: "", password: "", wantErr: ErrMissingRequiredData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := newTestService(t)
			token, err := service.LoginOperator(tt.email, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, token)
				return
			}

			require.NoError(t, err)
			claims, err := service.ValidateToken(token)
			require.NoError(t, err)
			assert.Equal(t, "operador@empresa.com", claims.OperatorEmail)
		})
	}
}

func TestLoginWithoutConfiguredHash(t *testing.T) {
	service := NewService(&config.Config{Auth: config.Auth{Secret: "x", OperatorEmail: "op@x.com"}})
	_, err := service.LoginOperator("op@x.com", "qualquer")
	assert.ErrorIs(t, err, ErrOperatorNotSet)
	assert.True(t, IsCredentialsError(err))
}

func TestValidateToken(t *testing.T) {
	service := newTestService(t)
	token, err := service.LoginOperator("operador@empresa.com", "s3nha-forte")
	require.NoError(t, err)

	t.Run("token expirado", func(t *testing.T) {
		expired := *service
		expired.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := expired.ValidateToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
		assert.True(t, IsTokenError(err))
	})

	t.Run("assinado com outro segredo", func(t *testing.T) {
		other := *service
		other.secret = []byte("outro")
		_, err := other.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("lixo", func(t *testing.T) {
		_, err := service.ValidateToken("abc.def.ghi")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
