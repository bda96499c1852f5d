package services

import (
	"testing"

	"github.com/gitfolio/gitfolio/internal/config"
	"github.com/gitfolio/gitfolio/internal/utils"
	"github.com/gitfolio/gitfolio/pkg/response"
)

func init() {
	utils.SetJWTSecret("test-secret-for-service-testing")
}

func newAuthService(t *testing.T) *AuthService {
	db := newTestDB(t)
	return NewAuthService(db, &config.JWTConfig{Secret: "x", ExpireHour: 24})
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newAuthService(t)

	result, err := svc.Register(&RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "correct horse"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if result.Token == "" {
		t.Error("registration should sign the user in")
	}
	if result.User.Password == "correct horse" {
		t.Error("password must be stored hashed")
	}

	login, err := svc.Login(&LoginRequest{Email: "ada@example.com", Password: "correct horse"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if login.User.ID != result.User.ID {
		t.Error("login should resolve the registered user")
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := newAuthService(t)

	if _, err := svc.Register(&RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "secret123"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	_, err := svc.Register(&RegisterRequest{Name: "Imposter", Email: "ada@example.com", Password: "secret123"})
	if !response.IsValidation(err) {
		t.Errorf("duplicate email: expected validation error, got %v", err)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	svc := newAuthService(t)
	svc.Register(&RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "secret123"})

	cases := []struct {
		name string
		req  LoginRequest
	}{
		{"wrong password", LoginRequest{Email: "ada@example.com", Password: "nope"}},
		{"unknown email", LoginRequest{Email: "ghost@example.com", Password: "secret123"}},
	}
	var messages []string
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(&tt.req)
			if err == nil {
				t.Fatal("expected an error")
			}
			appErr, ok := err.(*response.AppError)
			if !ok || appErr.HTTPStatus != 401 {
				t.Fatalf("expected 401 AppError, got %v", err)
			}
			messages = append(messages, appErr.Message)
		})
	}
	// Same message either way: a failed login never reveals whether the
	// email is registered.
	if len(messages) == 2 && messages[0] != messages[1] {
		t.Errorf("login failures should be indistinguishable: %q vs %q", messages[0], messages[1])
	}
}

func TestChangePassword(t *testing.T) {
	svc := newAuthService(t)
	result, _ := svc.Register(&RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "oldsecret"})

	err := svc.ChangePassword(result.User.ID, &ChangePasswordRequest{OldPassword: "wrong", NewPassword: "newsecret1"})
	if !response.IsValidation(err) {
		t.Errorf("wrong old password: expected validation error, got %v", err)
	}

	if err := svc.ChangePassword(result.User.ID, &ChangePasswordRequest{OldPassword: "oldsecret", NewPassword: "newsecret1"}); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}

	if _, err := svc.Login(&LoginRequest{Email: "ada@example.com", Password: "newsecret1"}); err != nil {
		t.Errorf("login with the new password: %v", err)
	}
	if _, err := svc.Login(&LoginRequest{Email: "ada@example.com", Password: "oldsecret"}); err == nil {
		t.Error("old password must stop working")
	}
}
