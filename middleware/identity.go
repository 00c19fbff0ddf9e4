package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"weblog/utils"
)

// ContextAuthorIDKey is the key used to store the resolved author reference in Gin context.
const ContextAuthorIDKey = "author_id"

// ErrUnknownIdentity is returned when a token does not resolve to an author.
var ErrUnknownIdentity = errors.New("unknown identity")

// IdentityResolver is the user-identity collaborator: it turns an opaque
// bearer token into an author reference. Authentication internals live on
// the other side of this interface.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (uint, error)
}

// HTTPIdentityResolver asks a remote identity service to resolve tokens.
type HTTPIdentityResolver struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPIdentityResolver builds a resolver against the given identity service URL.
func NewHTTPIdentityResolver(baseURL string) *HTTPIdentityResolver {
	return &HTTPIdentityResolver{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 5 * time.Second},
	}
}

// Resolve calls GET {base}/whoami with the bearer token and expects {"id": <author id>}.
func (r *HTTPIdentityResolver) Resolve(ctx context.Context, token string) (uint, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.BaseURL+"/whoami", nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := r.Client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return 0, ErrUnknownIdentity
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("identity service returned %d", resp.StatusCode)
	}

	var payload struct {
		ID uint `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, err
	}
	if payload.ID == 0 {
		return 0, ErrUnknownIdentity
	}
	return payload.ID, nil
}

// AuthorRequired ensures the request carries a token the identity
// collaborator can resolve, and stores the author reference in context.
func AuthorRequired(resolver IdentityResolver) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")
		if authHeader == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40101, "authorization header missing")
			ctx.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			utils.Error(ctx, http.StatusUnauthorized, 40102, "invalid authorization header format")
			ctx.Abort()
			return
		}

		token := strings.TrimSpace(parts[1])
		if token == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40103, "empty bearer token")
			ctx.Abort()
			return
		}

		authorID, err := resolver.Resolve(ctx.Request.Context(), token)
		if err != nil {
			if errors.Is(err, ErrUnknownIdentity) {
				utils.Error(ctx, http.StatusUnauthorized, 40104, "unknown identity")
			} else {
				utils.Error(ctx, http.StatusBadGateway, 50210, "identity service unavailable")
			}
			ctx.Abort()
			return
		}

		ctx.Set(ContextAuthorIDKey, authorID)
		ctx.Next()
	}
}
