package auth

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophnotes/internal/common"
)

// ParseBearerToken extracts the token from an Authorization header value.
// An empty header, or a scheme with no token after it, is reported as
// common.ErrMissingToken. Any scheme other than Bearer (matched
// case-insensitively) is common.ErrInvalidToken.
func ParseBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", common.ErrMissingToken
	}

	scheme, token, _ := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if token == "" {
		return "", common.ErrMissingToken
	}
	if !strings.EqualFold(scheme, common.BearerScheme) {
		return "", fmt.Errorf("%w: unsupported scheme %q", common.ErrInvalidToken, scheme)
	}
	return token, nil
}
