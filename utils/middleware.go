package utils

import (
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

// InvalidTokenHandler is installed as the JWT verifier's error handler so
// that missing/expired/garbage tokens all answer 401 {"SubCode":"InvalidToken"}.
func InvalidTokenHandler(ctx iris.Context, err error) {
	CreateInvalidToken(ctx)
	ctx.StopExecution()
}

// CurrentUserID returns the authenticated user's id from the verified
// access token claims.
func CurrentUserID(ctx iris.Context) uint {
	claims := jwt.Get(ctx).(*AccessToken)
	return claims.ID
}
