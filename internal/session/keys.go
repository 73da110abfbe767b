package session

type Key string

const (
	KeyNavigation        Key = "navigation"
	KeyOauthState        Key = "oauth_state"
	KeyOauthNonce        Key = "oauth_nonce"
	KeyOauthCodeVerifier Key = "oauth_code_verifier"
)
