package common

// SessionCookieName is the cookie slot carrying the signed session token.
const SessionCookieName = "jwt"
