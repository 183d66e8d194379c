package http

import (
	"net/http"
	"time"

	"github.com/aq2208/gstore-api/configs"
	"github.com/aq2208/gstore-api/internal/security"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

type TokenHandler struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
}

func NewTokenHandler(cfg configs.Config) *TokenHandler {
	ttl := cfg.Security.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenHandler{
		secret:   []byte(cfg.Security.JWTSecret),
		issuer:   cfg.Security.Issuer,
		audience: cfg.Security.Audience,
		ttl:      ttl,
	}
}

type tokenReq struct {
	ClientID     string `json:"client_id" form:"client_id"`
	ClientSecret string `json:"client_secret" form:"client_secret"`
}

// POST /v1/token (form or JSON)
// Accepts: client_id, client_secret
func (h *TokenHandler) IssueToken(c *gin.Context) {
	var req tokenReq
	_ = c.ShouldBind(&req)
	if req.ClientID == "" || req.ClientSecret == "" {
		c.JSON(http.StatusUnauthorized, errorResp{Error: "invalid_client", Message: "client credentials required"})
		return
	}

	cl, ok := security.Lookup(req.ClientID, req.ClientSecret)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResp{Error: "invalid_client", Message: "unknown or disabled client"})
		return
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iss":      h.issuer,              // issuer
		"aud":      h.audience,            // audience
		"iat":      now.Unix(),            // issued at
		"nbf":      now.Unix(),            // not before
		"exp":      now.Add(h.ttl).Unix(), // expire
		"clientID": cl.ID,
		"perms":    cl.Perms,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(h.secret)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": signed,
		"token_type":   "Bearer",
		"expires_in":   int64(h.ttl.Seconds()),
	})
}
