package acceptance

import (
	"net/http"
	"sync"

	"github.com/prperemyshlev/autoimport/internal/domain"
	"github.com/prperemyshlev/autoimport/internal/dto"
)

func (s *Suite) TestRegister_Success() {
	data := s.register("test@example.com")

	s.Equal("test@example.com", data.User.Email)
	s.Equal(domain.RoleUser, data.User.Role)
	s.True(data.User.IsActive)
	s.NotEmpty(data.User.ID)
	s.NotEmpty(data.Tokens.AccessToken)
	s.NotEmpty(data.Tokens.RefreshToken)
	s.Equal("Bearer", data.Tokens.TokenType)
	s.NotZero(data.Tokens.ExpiresIn)
}

func (s *Suite) TestRegister_DuplicateEmail() {
	s.register("duplicate@example.com")

	status, errResp := s.do(http.MethodPost, "/api/v1/auth/register", "",
		dto.RegisterRequest{Email: "Duplicate@Example.com", Password: testPassword}, nil)

	s.Equal(http.StatusConflict, status)
	s.Equal(domain.CodeEmailExists, errResp.Error.Code)
}

func (s *Suite) TestRegister_InvalidEmail() {
	status, errResp := s.do(http.MethodPost, "/api/v1/auth/register", "",
		dto.RegisterRequest{Email: "invalid-email", Password: testPassword}, nil)

	s.Equal(http.StatusBadRequest, status)
	s.Equal(domain.CodeValidation, errResp.Error.Code)
	s.NotNil(errResp.Error.Details)
}

func (s *Suite) TestRegister_WeakPassword() {
	status, errResp := s.do(http.MethodPost, "/api/v1/auth/register", "",
		dto.RegisterRequest{Email: "weak@example.com", Password: "alllowercase"}, nil)

	s.Equal(http.StatusBadRequest, status)
	s.Equal(domain.CodeValidation, errResp.Error.Code)
}

func (s *Suite) TestLogin_SetsLastLogin() {
	registered := s.register("login@example.com")
	s.Nil(registered.User.LastLoginAt)

	data := s.login("login@example.com")

	s.Equal(registered.User.ID, data.User.ID)
	s.NotNil(data.User.LastLoginAt)
	s.NotEmpty(data.Tokens.AccessToken)
}

func (s *Suite) TestLogin_DoesNotRevealAccounts() {
	s.register("known@example.com")

	wrongPassword, wrongResp := s.do(http.MethodPost, "/api/v1/auth/login", "",
		dto.LoginRequest{Email: "known@example.com", Password: "WrongPassword1"}, nil)
	unknownEmail, unknownResp := s.do(http.MethodPost, "/api/v1/auth/login", "",
		dto.LoginRequest{Email: "nobody@example.com", Password: testPassword}, nil)

	s.Equal(http.StatusUnauthorized, wrongPassword)
	s.Equal(wrongPassword, unknownEmail)
	s.Equal(wrongResp.Error, unknownResp.Error)
	s.Equal(domain.CodeInvalidCredentials, wrongResp.Error.Code)
}

func (s *Suite) TestLogin_DeactivatedAccount() {
	s.register("inactive@example.com")
	_, err := s.Postgres.DB.Exec(`UPDATE users SET is_active = FALSE WHERE email = $1`, "inactive@example.com")
	s.Require().NoError(err)

	status, errResp := s.do(http.MethodPost, "/api/v1/auth/login", "",
		dto.LoginRequest{Email: "inactive@example.com", Password: testPassword}, nil)

	s.Equal(http.StatusForbidden, status)
	s.Equal(domain.CodeAccountDeactivated, errResp.Error.Code)
}

func (s *Suite) TestRefresh_RotatesOnce() {
	original := s.register("refresh@example.com").Tokens.RefreshToken

	var refreshed dto.TokensData
	status, _ := s.do(http.MethodPost, "/api/v1/auth/refresh", "",
		dto.RefreshRequest{RefreshToken: original}, &refreshed)
	s.Require().Equal(http.StatusOK, status)
	s.NotEmpty(refreshed.Tokens.AccessToken)
	s.NotEqual(original, refreshed.Tokens.RefreshToken)

	status, errResp := s.do(http.MethodPost, "/api/v1/auth/refresh", "",
		dto.RefreshRequest{RefreshToken: original}, nil)
	s.Equal(http.StatusUnauthorized, status)
	s.Equal(domain.CodeInvalidRefreshToken, errResp.Error.Code)

	status, _ = s.do(http.MethodPost, "/api/v1/auth/refresh", "",
		dto.RefreshRequest{RefreshToken: refreshed.Tokens.RefreshToken}, &refreshed)
	s.Equal(http.StatusOK, status)
}

func (s *Suite) TestRefresh_ConcurrentReplayHasOneWinner() {
	token := s.register("race@example.com").Tokens.RefreshToken

	const attempts = 5
	statuses := make([]int, attempts)

	var wg sync.WaitGroup
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			statuses[i], _ = s.do(http.MethodPost, "/api/v1/auth/refresh", "",
				dto.RefreshRequest{RefreshToken: token}, nil)
		}()
	}
	wg.Wait()

	ok := 0
	for _, status := range statuses {
		if status == http.StatusOK {
			ok++
		} else {
			s.Equal(http.StatusUnauthorized, status)
		}
	}
	s.Equal(1, ok)
}

func (s *Suite) TestRefresh_RejectsAccessToken() {
	access := s.register("swap@example.com").Tokens.AccessToken

	status, errResp := s.do(http.MethodPost, "/api/v1/auth/refresh", "",
		dto.RefreshRequest{RefreshToken: access}, nil)

	s.Equal(http.StatusUnauthorized, status)
	s.Equal(domain.CodeInvalidRefreshToken, errResp.Error.Code)
}

func (s *Suite) TestLogout_RevokesOnlyThatSession() {
	first := s.register("logout@example.com").Tokens
	second := s.login("logout@example.com").Tokens

	status, _ := s.do(http.MethodPost, "/api/v1/auth/logout", "",
		dto.LogoutRequest{RefreshToken: first.RefreshToken}, nil)
	s.Require().Equal(http.StatusOK, status)

	status, _ = s.do(http.MethodPost, "/api/v1/auth/refresh", "",
		dto.RefreshRequest{RefreshToken: first.RefreshToken}, nil)
	s.Equal(http.StatusUnauthorized, status)

	status, _ = s.do(http.MethodPost, "/api/v1/auth/refresh", "",
		dto.RefreshRequest{RefreshToken: second.RefreshToken}, nil)
	s.Equal(http.StatusOK, status)
}

func (s *Suite) TestLogout_UnknownTokenSucceeds() {
	status, _ := s.do(http.MethodPost, "/api/v1/auth/logout", "",
		dto.LogoutRequest{RefreshToken: "not-a-stored-token"}, nil)

	s.Equal(http.StatusOK, status)
}

func (s *Suite) TestLogoutAll_RevokesEverySession() {
	first := s.register("everywhere@example.com").Tokens
	second := s.login("everywhere@example.com").Tokens

	var revoked struct {
		SessionsRevoked int64 `json:"sessionsRevoked"`
	}
	status, _ := s.do(http.MethodPost, "/api/v1/auth/logout-all", second.AccessToken, nil, &revoked)
	s.Require().Equal(http.StatusOK, status)
	s.Equal(int64(2), revoked.SessionsRevoked)

	for _, token := range []string{first.RefreshToken, second.RefreshToken} {
		status, errResp := s.do(http.MethodPost, "/api/v1/auth/refresh", "",
			dto.RefreshRequest{RefreshToken: token}, nil)
		s.Equal(http.StatusUnauthorized, status)
		s.Equal(domain.CodeInvalidRefreshToken, errResp.Error.Code)
	}
}

func (s *Suite) TestMe() {
	registered := s.register("me@example.com")

	var data dto.UserData
	status, _ := s.do(http.MethodGet, "/api/v1/auth/me", registered.Tokens.AccessToken, nil, &data)

	s.Equal(http.StatusOK, status)
	s.Equal(registered.User.ID, data.User.ID)
	s.Equal("me@example.com", data.User.Email)
}

func (s *Suite) TestMe_RequiresToken() {
	status, errResp := s.do(http.MethodGet, "/api/v1/auth/me", "", nil, nil)

	s.Equal(http.StatusUnauthorized, status)
	s.Equal(domain.CodeNoToken, errResp.Error.Code)

	status, errResp = s.do(http.MethodGet, "/api/v1/auth/me", "garbage", nil, nil)

	s.Equal(http.StatusUnauthorized, status)
	s.Equal(domain.CodeInvalidToken, errResp.Error.Code)
}

func (s *Suite) TestSetActive_RequiresAdmin() {
	user := s.register("plain@example.com")

	status, errResp := s.do(http.MethodPatch, "/api/v1/users/"+user.User.ID+"/active", user.Tokens.AccessToken,
		dto.SetActiveRequest{IsActive: new(bool)}, nil)

	s.Equal(http.StatusUnauthorized, status)
	s.Equal(domain.CodeInsufficientRole, errResp.Error.Code)
}

func (s *Suite) TestSetActive_DeactivationRevokesSessions() {
	admin := s.registerWithRole("admin@example.com", string(domain.RoleAdmin))
	user := s.register("target@example.com")

	var data dto.UserData
	status, _ := s.do(http.MethodPatch, "/api/v1/users/"+user.User.ID+"/active", admin.Tokens.AccessToken,
		dto.SetActiveRequest{IsActive: new(bool)}, &data)
	s.Require().Equal(http.StatusOK, status)
	s.False(data.User.IsActive)

	status, _ = s.do(http.MethodPost, "/api/v1/auth/refresh", "",
		dto.RefreshRequest{RefreshToken: user.Tokens.RefreshToken}, nil)
	s.Equal(http.StatusUnauthorized, status)
}
