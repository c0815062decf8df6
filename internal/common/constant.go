package common

// AuthorizationHeaderName is the HTTP header used to carry the bearer access
// token on authenticated requests.
const AuthorizationHeaderName = "Authorization"

// BearerSchemePrefix prefixes the access token value inside the
// Authorization header.
const BearerSchemePrefix = "Bearer "
