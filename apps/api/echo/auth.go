package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/mustangstride/stride/core"
	"github.com/mustangstride/stride/core/study"
)

var (
	// appJWTConfig is the default JWT auth middleware config.
	appJWTConfig = middleware.JWTConfig{
		SigningKey:    []byte(core.Conf.GetString("secretKey")),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    "userToken",
		Claims:        new(Claims),
	}
	contextUserKey = "user"
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Username  string `json:"username,omitempty"`
	Section   string `json:"section,omitempty"`
	IsStudent bool   `json:"is_student,omitempty"` // -> STUDENT PORTAL
	IsTeacher bool   `json:"is_teacher,omitempty"` // -> TEACHER PORTAL
	IsAdmin   bool   `json:"is_admin,omitempty"`   // -> ADMIN PORTAL
}

func GetUserClaims(usr study.User) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    core.Conf.GetString("appName"),
			Subject:   usr.ID,
			Audience:  "Academia",
			ExpiresAt: now.Add(core.Conf.GetDuration("jwtExpirationDelta")).Unix(),
			IssuedAt:  now.Unix(),
		},
		Username:  usr.Username,
		Section:   usr.Section,
		IsStudent: usr.IsStudent(),
		IsTeacher: usr.IsTeacher(),
		IsAdmin:   usr.IsAdmin(),
	}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(appJWTConfig.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(appJWTConfig.SigningKey)
	if err != nil {
		return "", errors.New("signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(appJWTConfig.ContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func getContextUser(ctx echo.Context, svc *study.Service) (study.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(study.User); ok {
		return usr, nil
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return study.User{}, errors.Wrap(err, "getting context claims")
	}
	usr, ok := svc.Store().GetUser(claims.Subject)
	if !ok {
		return study.User{}, errUnauthorized
	}
	ctx.Set(contextUserKey, usr)
	return usr, nil
}

type authApi struct {
	svc *study.Service
}

func registerAuthAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *study.Service) {
	api := authApi{svc: svc}
	g.POST("/login", api.login)
	g.POST("/logout", api.logout, jwt)
}

type LoginResponse struct {
	Token string     `json:"token"`
	User  study.User `json:"user"`
}

func (api *authApi) login(ctx echo.Context) error {
	var data study.Credentials
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Credentials")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	usr, err := api.svc.Login(data.Name, data.Password)
	if err != nil {
		if errors.Cause(err) == study.ErrAuthenticationFailed {
			// transient failure: clients drop the error banner after this window
			ctx.Response().Header().Set("Retry-After", retryAfterSeconds())
			return errAuthenticationFailed
		}
		return errors.Wrap(err, "authenticating")
	}

	token, err := GenerateToken(GetUserClaims(usr))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, User: usr})
}

func (api *authApi) logout(ctx echo.Context) error {
	api.svc.Logout()
	return ctx.NoContent(http.StatusNoContent)
}

func retryAfterSeconds() string {
	ttl := core.Conf.GetDuration("loginErrorTTL")
	return strconv.Itoa(int(ttl / time.Second))
}
