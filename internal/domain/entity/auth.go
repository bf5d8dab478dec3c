package entity

// Identity is the claim set announced by the identity provider for an authenticated account.
type Identity struct {
	UID         string // Provider-assigned user id.
	Email       string // May be empty.
	DisplayName string // Optional.
	PhotoURL    string // Optional.
}

// Credential is an email and password pair used for sign-in and sign-up.
type Credential struct {
	Email    string
	Password string
}

// GoogleCredential carries the ID token a client obtained from the Google sign-in popup.
type GoogleCredential struct {
	IDToken string
}
