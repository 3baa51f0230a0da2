// Package ginauth runs the authentication filter as gin middleware.
package ginauth

import (
	"net/http"

	"github.com/andrebq/turnstile/auth"
	"github.com/gin-gonic/gin"
)

const (
	// PrincipalKey is the gin context key holding the *auth.Principal.
	PrincipalKey = "turnstile.principal"
)

// Middleware aborts the chain whenever the filter rejects the request.
func Middleware(filter *auth.Filter) gin.HandlerFunc {
	return func(c *gin.Context) {
		d, err := filter.Authenticate(c.Request)
		if err != nil {
			abort(c, http.StatusServiceUnavailable)
			return
		}
		if !d.Proceed() {
			abort(c, d.StatusCode())
			return
		}
		if d.Principal != nil {
			c.Set(PrincipalKey, d.Principal)
			c.Request = c.Request.WithContext(auth.WithPrincipal(c.Request.Context(), d.Principal))
		}
		c.Next()
	}
}

// Principal returns the principal attached by Middleware.
func Principal(c *gin.Context) (*auth.Principal, bool) {
	v, ok := c.Get(PrincipalKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*auth.Principal)
	return p, ok && p != nil
}

func abort(c *gin.Context, code int) {
	c.AbortWithStatusJSON(code, gin.H{"error": http.StatusText(code)})
}
