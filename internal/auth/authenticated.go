package auth

import (
	"context"

	"infusionconsole/internal/apiclient"
)

// Authenticated wraps a Requester so that requests without a token carry the
// cached one, issuing it first if needed. The wrapped Requester is left
// untouched: calls made on it directly with an empty token stay anonymous.
type Authenticated struct {
	Next   apiclient.Requester
	Tokens *TokenCache
}

func NewAuthenticated(next apiclient.Requester, tokens *TokenCache) *Authenticated {
	return &Authenticated{Next: next, Tokens: tokens}
}

func (a *Authenticated) Do(ctx context.Context, req apiclient.Request) apiclient.Result[apiclient.Payload] {
	if req.Token == "" {
		tok, err := a.Tokens.Token()
		if err != nil {
			return apiclient.Fail[apiclient.Payload](apiclient.KindAuth, "issue token: "+err.Error(), 0)
		}
		req.Token = tok
	}
	return a.Next.Do(ctx, req)
}
