package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/user"
)

type loginApi struct {
	auth     *authenticator
	usrSvc   *user.Service
	validate *validator.Validate
}

func registerLoginAPI(v1 *echo.Group, authed echo.MiddlewareFunc, auth *authenticator, deps ServerDeps) {
	api := loginApi{auth: auth, usrSvc: deps.UserSvc, validate: deps.Validate}

	g := v1.Group("/login")
	// TODO: rate limit `/access-token`
	g.POST("/access-token", api.login)
	g.POST("/test-token", api.testToken, authed)
	g.POST("/refresh-token", api.refreshToken, authed)
	g.POST("/logout", api.logout, authed)
}

func (api *loginApi) login(ctx echo.Context) error {
	data, err := bindInput[LoginRequest](ctx, api.validate)
	if err != nil {
		return err
	}
	usr, err := api.usrSvc.Authenticate(ctx.Request().Context(), data.Username, data.Password)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	token, err := api.auth.GenerateToken(api.auth.NewClaims(usr))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, newTokenResponse(token))
}

func (api *loginApi) testToken(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *loginApi) refreshToken(ctx echo.Context) error {
	token, err := api.auth.refreshToken(ctx)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, newTokenResponse(token))
}

func (api *loginApi) logout(ctx echo.Context) error {
	if err := api.auth.revoke(ctx); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "logged out"})
}

// IssueToken returns a signed access token for usr.
func (s *Server) IssueToken(usr user.User) (string, error) {
	return s.auth.GenerateToken(s.auth.NewClaims(usr))
}

type (
	LoginRequest struct {
		Username string `json:"username" form:"username" validate:"required"`
		Password string `json:"password" form:"password" validate:"required"`
	}

	TokenResponse struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Username = core.CleanString(lr.Username, true /* lower */)
	return validate.Struct(lr)
}

func newTokenResponse(token string) TokenResponse {
	return TokenResponse{AccessToken: token, TokenType: "bearer"}
}
