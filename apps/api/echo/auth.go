package echoapi

import (
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/user"
	"github.com/trezcool/madrasa/services/tokenstore"
)

const (
	contextTokenKey = "userToken"
	contextUserKey  = "user"
)

var errNoContextUser = errors.New("user object not found in echo.Context")

// Claims represents the authorization claims transmitted via a JWT.
// StandardClaims.Id (jti) identifies the token for revocation.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64     `json:"oriat,omitempty"`
	Username     string    `json:"username,omitempty"`
	Role         user.Role `json:"role,omitempty"`
}

func (c Claims) UserID() (int, error) {
	return strconv.Atoi(c.Subject)
}

type authenticator struct {
	conf      *core.Config
	tokens    tokenstore.Store
	usrSvc    *user.Service
	jwtConfig middleware.JWTConfig
}

func newAuthenticator(conf *core.Config, tokens tokenstore.Store, usrSvc *user.Service) *authenticator {
	return &authenticator{
		conf:   conf,
		tokens: tokens,
		usrSvc: usrSvc,
		jwtConfig: middleware.JWTConfig{
			SigningKey:    []byte(conf.SecretKey),
			SigningMethod: middleware.AlgorithmHS256,
			ContextKey:    contextTokenKey,
			Claims:        new(Claims),
			ErrorHandler: func(err error) error {
				if err == middleware.ErrJWTMissing {
					return err
				}
				return errInvalidCredentials
			},
		},
	}
}

// NewClaims returns the claims of a fresh token for usr.
// origIat is the issue time of the first token of the session, when refreshing.
func (a *authenticator) NewClaims(usr user.User, origIat ...int64) *Claims {
	now := time.Now()
	nownix := now.Unix()

	oriat := nownix
	if len(origIat) > 0 {
		oriat = origIat[0]
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.NewString(),
			Issuer:    a.conf.AppName,
			Subject:   strconv.Itoa(usr.ID),
			ExpiresAt: now.Add(a.conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
		Username:     usr.Username,
		Role:         usr.Role,
	}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func (a *authenticator) GenerateToken(claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(a.jwtConfig.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(a.jwtConfig.SigningKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// middleware authenticates the bearer token then loads the active user it was issued to.
func (a *authenticator) middleware() echo.MiddlewareFunc {
	jwtMiddleware := middleware.JWTWithConfig(a.jwtConfig)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return jwtMiddleware(a.loadUser(next))
	}
}

func (a *authenticator) loadUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		claims, err := getContextClaims(ctx)
		if err != nil {
			return err
		}
		revoked, err := a.tokens.IsRevoked(ctx.Request().Context(), claims.Id)
		if err != nil {
			return errors.Wrap(err, "checking token revocation")
		}
		if revoked {
			return errInvalidCredentials
		}
		uid, err := claims.UserID()
		if err != nil {
			return errInvalidCredentials
		}

		usr, err := a.usrSvc.Get(ctx.Request().Context(), uid)
		if err != nil {
			return err
		}
		if !usr.IsActive {
			return user.ErrInactive
		}
		ctx.Set(contextUserKey, usr)
		return next(ctx)
	}
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errInvalidCredentials
}

func getContextUser(ctx echo.Context) (user.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr, nil
	}
	return user.User{}, errNoContextUser
}

func (a *authenticator) refreshToken(ctx echo.Context) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting context claims")
	}
	usr, err := getContextUser(ctx)
	if err != nil {
		return "", err
	}

	// check if refresh has not expired
	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(a.conf.Server.JWTRefreshExpirationDelta)
	if time.Now().After(expTime) {
		return "", errRefreshExpired
	}

	token, err := a.GenerateToken(a.NewClaims(usr, claims.OrigIssuedAt))
	return token, errors.Wrap(err, "generating token")
}

// revoke rejects the token of the request until it expires.
func (a *authenticator) revoke(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	err = a.tokens.Revoke(ctx.Request().Context(), claims.Id, time.Unix(claims.ExpiresAt, 0))
	return errors.Wrap(err, "revoking token")
}

// requireRole rejects users having none of roles.
func requireRole(roles ...user.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := getContextUser(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context user")
			}
			for _, role := range roles {
				if usr.Role == role {
					return next(ctx)
				}
			}
			return errHttpForbidden
		}
	}
}

var (
	adminOnly      = requireRole(user.RoleAdmin)
	teacherOnly    = requireRole(user.RoleTeacher)
	studentOnly    = requireRole(user.RoleStudent)
	teacherOrAdmin = requireRole(user.RoleTeacher, user.RoleAdmin)
)
