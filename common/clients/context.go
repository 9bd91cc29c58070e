package clients

import "context"

type clientIDKey struct{}

// WithClientID attaches the id of the portal user (or tool) on whose behalf
// requests are made. HTTPClient sends it as X-Client-ID, which the kinship
// service uses as the rate-limit key.
func WithClientID(ctx context.Context, clientID string) context.Context {
	return context.WithValue(ctx, clientIDKey{}, clientID)
}

// GetClientID returns the client id attached to ctx, if any
func GetClientID(ctx context.Context) (string, bool) {
	clientID, ok := ctx.Value(clientIDKey{}).(string)
	return clientID, ok && clientID != ""
}
