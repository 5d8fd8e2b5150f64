package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/avolkov/marketplace-order-service/internal/entities"
)

// StaticResolver verifies credentials against a fixed token table.
// Suitable for development and tests only.
type StaticResolver struct {
	tokens map[string]Identity
}

func NewStaticResolver() *StaticResolver {
	return &StaticResolver{tokens: make(map[string]Identity)}
}

// ParseStaticResolver builds a resolver from a comma-separated list of
// token:userID:ROLE triples.
func ParseStaticResolver(spec string) (*StaticResolver, error) {
	r := NewStaticResolver()
	if spec == "" {
		return r, nil
	}
	for _, entry := range strings.Split(spec, ",") {
		parts := strings.Split(strings.TrimSpace(entry), ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("malformed token entry %q", entry)
		}
		role := entities.Role(parts[2])
		if !role.Valid() {
			return nil, fmt.Errorf("unknown role %q in token entry", parts[2])
		}
		r.Add(parts[0], Identity{UserID: parts[1], Role: role})
	}
	return r, nil
}

func (r *StaticResolver) Add(token string, id Identity) {
	r.tokens[token] = id
}

func (r *StaticResolver) Verify(_ context.Context, credential string) (Identity, error) {
	id, ok := r.tokens[credential]
	if !ok {
		return Identity{}, ErrInvalidCredential
	}
	return id, nil
}
