package config

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	authCookie = "auth"
	signCookie = "sign"
)

var ErrMalformedClaims = errors.New("malformed claims")

// Cookies splits a player's JWT in two: the header and payload are readable
// by the page, the signature is HttpOnly.
type Cookies struct {
	Domain   string
	Secure   bool
	SameSite http.SameSite
	jwt      *JWT
}

type PlayerClaims struct {
	PlayerId int64  `json:"player_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

func NewPlayerClaims(playerId int64, username string) *PlayerClaims {
	return &PlayerClaims{
		PlayerId: playerId,
		Username: username,
	}
}

func parseSameSite(s string) http.SameSite {
	switch strings.ToUpper(s) {
	case "DEFAULT":
		return http.SameSiteDefaultMode
	case "LAX":
		return http.SameSiteLaxMode
	case "NONE":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteStrictMode
	}
}

func NewCookies(j *JWT) (*Cookies, error) {
	env, err := requireEnv("COOKIES_DOMAIN", "COOKIES_SECURE", "COOKIES_SAMESITE")
	if err != nil {
		return nil, err
	}

	cookies := &Cookies{
		Domain:   env["COOKIES_DOMAIN"],
		Secure:   env["COOKIES_SECURE"] != "0",
		SameSite: parseSameSite(env["COOKIES_SAMESITE"]),
		jwt:      j,
	}

	return cookies, nil
}

func NewCookiesWith(j *JWT, domain string, secure bool, sameSite http.SameSite) *Cookies {
	return &Cookies{Domain: domain, Secure: secure, SameSite: sameSite, jwt: j}
}

func (c *Cookies) JWT() *JWT {
	return c.jwt
}

func (c *Cookies) cookie(name, value string, httpOnly bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Path:     "/",
		Value:    value,
		HttpOnly: httpOnly,
		Domain:   c.Domain,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	}
}

func (c *Cookies) Clear(w http.ResponseWriter) {
	for _, name := range []string{authCookie, signCookie} {
		cookie := c.cookie(name, "delete", name == signCookie)
		cookie.MaxAge = -1
		http.SetCookie(w, cookie)
	}
}

// Refresh signs claims anew and writes both halves of the token.
func (c *Cookies) Refresh(w http.ResponseWriter, claims *PlayerClaims) error {
	token, err := c.jwt.Sign(claims)
	if err != nil {
		return err
	}
	i := strings.LastIndexByte(token, '.')
	if i < 0 {
		return errors.New("malformed JWT token generated")
	}
	expires := time.Now().Add(c.jwt.tokenLifetime)
	for name, value := range map[string]string{
		authCookie: token[:i],
		signCookie: token[i+1:],
	} {
		cookie := c.cookie(name, value, name == signCookie)
		cookie.Expires = expires
		http.SetCookie(w, cookie)
	}
	return nil
}

func (c *Cookies) ParsePlayerClaims(r *http.Request) (*PlayerClaims, error) {
	auth, err := r.Cookie(authCookie)
	if err != nil {
		return nil, err
	}
	sign, err := r.Cookie(signCookie)
	if err != nil {
		return nil, err
	}
	token, err := c.jwt.ParseWithClaims(auth.Value+"."+sign.Value, &PlayerClaims{})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*PlayerClaims)
	if !ok {
		return nil, ErrMalformedClaims
	}
	return claims, nil
}
