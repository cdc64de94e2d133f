package common

// AuthorizationHeaderName is the HTTP header (and gRPC metadata key, lower
// case) carrying the session token.
const AuthorizationHeaderName = "Authorization"

// BearerScheme is the only accepted authorization scheme.
const BearerScheme = "Bearer"
