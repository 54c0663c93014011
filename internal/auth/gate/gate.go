// Package gate redirects page requests based on whether the visitor is signed in.
package gate

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/hushbox/internal/auth/token"
)

// Decision is the outcome of evaluating a page request.
type Decision struct {
	Redirect string
}

// Pass reports whether the request should reach the page.
func (d Decision) Pass() bool {
	return d.Redirect == ""
}

var protectedPages = map[string]struct{}{
	"/dashboard": {},
	"/profile":   {},
	"/settings":  {},
}

// Decide applies the page rules in order; the first match wins.
func Decide(path string, authenticated bool) Decision {
	if _, ok := protectedPages[path]; ok && !authenticated {
		return Decision{Redirect: "/"}
	}
	if authenticated && path == "/" {
		return Decision{Redirect: "/dashboard"}
	}
	if authenticated && strings.HasPrefix(path, "/auth/") {
		return Decision{Redirect: "/dashboard"}
	}
	return Decision{}
}

// Verifier checks an access token without touching storage.
type Verifier interface {
	VerifyAccess(raw string) (token.Claims, bool)
}

// Middleware applies Decide to every request it wraps. An unreadable or
// invalid cookie counts as anonymous.
func Middleware(verifier Verifier, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authenticated := false
		if raw, err := c.Cookie(cookieName); err == nil && raw != "" {
			_, authenticated = verifier.VerifyAccess(raw)
		}

		decision := Decide(c.Request.URL.Path, authenticated)
		if !decision.Pass() {
			c.Redirect(http.StatusTemporaryRedirect, decision.Redirect)
			c.Abort()
			return
		}
		c.Next()
	}
}
