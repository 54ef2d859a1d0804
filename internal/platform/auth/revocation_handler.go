package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type revocationListResponse struct {
	Count   int              `json:"count"`
	Entries []RevocationInfo `json:"entries"`
}

// RegisterSessionRoutes adds sign-out for the caller's own token and an
// admin-only listing of signed-out tokens.
func RegisterSessionRoutes(g *echo.Group, list *RevocationList) {
	g.POST("/session/logout", handleLogout(list))
	g.GET("/session/revocations", handleListRevocations(list), RequireRole(RoleAdmin))
}

func handleLogout(list *RevocationList) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		jti, expiresAt := TokenFromContext(ctx)
		if jti == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "token has no id")
		}
		list.Revoke(jti, UserIDFromContext(ctx), expiresAt)
		return c.NoContent(http.StatusNoContent)
	}
}

func handleListRevocations(list *RevocationList) echo.HandlerFunc {
	return func(c echo.Context) error {
		entries := list.Entries()
		return c.JSON(http.StatusOK, revocationListResponse{Count: len(entries), Entries: entries})
	}
}
