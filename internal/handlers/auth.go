package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/eventerx/eventerx-api/internal/authz"
	"github.com/eventerx/eventerx-api/internal/models"
	"github.com/eventerx/eventerx-api/internal/repository"
)

const tokenTTL = 24 * time.Hour

type AuthHandler struct {
	users     repository.UserRepository
	resolver  *authz.ScopeResolver
	redis     *redis.Client
	jwtSecret string
	logger    zerolog.Logger
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func NewAuthHandler(users repository.UserRepository, resolver *authz.ScopeResolver, redisClient *redis.Client, jwtSecret string, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		users:     users,
		resolver:  resolver,
		redis:     redisClient,
		jwtSecret: jwtSecret,
		logger:    logger,
	}
}

// Login authenticates by email and password, resolves the account's
// school scope, and returns a bearer token carrying the identity.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.users.AuthenticateUser(strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		http.Error(w, "Authentication failed", http.StatusUnauthorized)
		return
	}

	identity, err := h.resolver.Resolve(user)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", user.ID).Msg("failed to resolve scope")
		http.Error(w, "Failed to resolve account", http.StatusInternalServerError)
		return
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   identity.UserID,
		"email": identity.Email,
		"role":  int(identity.Role),
		"sid":   identity.SchoolID,
		"jti":   uuid.NewString(),
		"exp":   time.Now().Add(tokenTTL).Unix(),
	})
	tokenString, err := token.SignedString([]byte(h.jwtSecret))
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"token": tokenString})
}

// Logout revokes the presented token by blacklisting its jti until the
// token would have expired anyway.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, err := h.parseToken(r)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	jti, _ := claims["jti"].(string)
	if jti == "" {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	ttl := tokenTTL
	if exp, ok := claims["exp"].(float64); ok {
		if until := time.Until(time.Unix(int64(exp), 0)); until > 0 {
			ttl = until
		}
	}

	if err := h.redis.Set(r.Context(), blacklistKey(jti), "1", ttl).Err(); err != nil {
		h.logger.Error().Err(err).Msg("failed to blacklist token")
		http.Error(w, "Failed to log out", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// JWTMiddleware authenticates requests, rejects revoked tokens, and
// stores the identity on the request context.
func (h *AuthHandler) JWTMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := h.parseToken(r)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		if jti, ok := claims["jti"].(string); ok && jti != "" {
			val, err := h.redis.Get(r.Context(), blacklistKey(jti)).Result()
			if err == nil && val == "1" {
				http.Error(w, "Token has been revoked", http.StatusUnauthorized)
				return
			}
		}

		roleClaim, ok := claims["role"].(float64)
		if !ok {
			http.Error(w, "Missing role claim", http.StatusUnauthorized)
			return
		}
		role := models.Role(int(roleClaim))
		if !role.IsValid() {
			http.Error(w, "Invalid role claim", http.StatusUnauthorized)
			return
		}

		userID, _ := claims["sub"].(string)
		email, _ := claims["email"].(string)
		schoolID, _ := claims["sid"].(string)

		ctx := authz.WithIdentity(r.Context(), authz.Identity{
			UserID:   userID,
			Email:    email,
			Role:     role,
			SchoolID: schoolID,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *AuthHandler) parseToken(r *http.Request) (jwt.MapClaims, error) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return nil, jwt.ErrTokenMalformed
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, jwt.ErrTokenMalformed
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(h.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !claims.VerifyExpiresAt(time.Now().Unix(), true) {
		return nil, jwt.ErrTokenExpired
	}
	return claims, nil
}

func blacklistKey(jti string) string {
	return fmt.Sprintf("blacklist:access_token:%s", jti)
}
