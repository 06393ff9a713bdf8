package common

// SessionCookieName is the HTTP-only cookie carrying the session token.
const SessionCookieName = "staffgate_session"

// OTPDigits is the fixed length of generated one-time codes.
const OTPDigits = 6
