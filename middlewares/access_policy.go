package middlewares

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/oncounter-billing/utils"
)

type AccessLevel int

const (
	// AccessReadOnly lets anyone read; writes need an authenticated caller.
	AccessReadOnly AccessLevel = iota
	AccessOpen
	AccessAuthenticated
)

var errAuthRequired = errors.New("authentication credentials were not provided")

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// Allow decides whether a request may proceed.
func Allow(level AccessLevel, method string, authenticated bool) bool {
	switch level {
	case AccessOpen:
		return true
	case AccessAuthenticated:
		return authenticated
	default:
		return authenticated || isSafeMethod(method)
	}
}

// AccessPolicy maps route templates (gin FullPath) to access levels.
type AccessPolicy struct {
	levels       map[string]AccessLevel
	defaultLevel AccessLevel
}

func NewAccessPolicy(defaultLevel AccessLevel) *AccessPolicy {
	return &AccessPolicy{levels: make(map[string]AccessLevel), defaultLevel: defaultLevel}
}

func (p *AccessPolicy) Set(level AccessLevel, paths ...string) *AccessPolicy {
	for _, path := range paths {
		p.levels[path] = level
	}
	return p
}

func (p *AccessPolicy) Level(path string) AccessLevel {
	if level, ok := p.levels[path]; ok {
		return level
	}
	return p.defaultLevel
}

// Enforce must run after AuthMiddleware. Unmatched routes pass through so
// the router can answer 404 or 405.
func (p *AccessPolicy) Enforce() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.FullPath() == "" {
			c.Next()
			return
		}
		_, authenticated := Principal(c)
		if !Allow(p.Level(c.FullPath()), c.Request.Method, authenticated) {
			utils.RespondError(c, http.StatusUnauthorized, errAuthRequired)
			c.Abort()
			return
		}
		c.Next()
	}
}
