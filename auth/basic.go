package auth

import (
	"net/http"

	"github.com/andrebq/turnstile/internal/logutil"
)

type (
	// BasicStrategy authenticates every request with HTTP Basic credentials,
	// the identifier being the principal email.
	BasicStrategy struct {
		dir      Directory
		verifier Verifier
	}
)

var (
	_ Strategy = (*BasicStrategy)(nil)
)

func NewBasicStrategy(dir Directory, verifier Verifier) *BasicStrategy {
	return &BasicStrategy{
		dir:      dir,
		verifier: verifier,
	}
}

func (b *BasicStrategy) Name() string { return "basic_auth" }

func (b *BasicStrategy) RequiresAuth(path string, excluded []string) bool {
	return RequiresAuth(path, excluded)
}

// Credentials decodes the Basic credential pair carried by r.
func (b *BasicStrategy) Credentials(r *http.Request) (email, secret string, ok bool) {
	header, ok := AuthorizationHeaderValue(r)
	if !ok {
		return "", "", false
	}
	payload, ok := ExtractSchemePayload(header, BasicScheme)
	if !ok {
		return "", "", false
	}
	decoded, ok := Decode(payload)
	if !ok {
		return "", "", false
	}
	return SplitCredentialPair(decoded, CredentialSeparator)
}

func (b *BasicStrategy) ResolvePrincipal(r *http.Request) (*Principal, Reason, error) {
	email, secret, ok := b.Credentials(r)
	if !ok || email == "" {
		return nil, InvalidCredentials, nil
	}
	ctx := r.Context()
	p, err := findOne(ctx, b.dir, ByEmail(email))
	if err != nil {
		log := logutil.GetOrDefault(ctx)
		log.Error().Err(err).Str("strategy", b.Name()).Msg("Unable to lookup principal by email")
		return nil, InvalidCredentials, nil
	}
	if p == nil {
		return nil, InvalidCredentials, nil
	}
	if !b.verifier.Verify(p.PasswordHash, []byte(secret)) {
		return nil, InvalidCredentials, nil
	}
	return p, NoReason, nil
}
