package common

import "time"

const (
	// MaxJSONBody limits JSON request bodies.
	MaxJSONBody = 1 << 20
	// RequestTimeout bounds the store and blob calls of one request.
	RequestTimeout = 5 * time.Second
	// UploadTimeout bounds requests that carry image uploads.
	UploadTimeout = 60 * time.Second
)

// Localized fallbacks for failures that carry no message of their own.
const (
	MessageUnavailable   = "Tjenesten er midlertidig utilgjengelig. Prøv igjen."
	MessageNotFound      = "Fant ikke ressursen."
	MessageInvalidBody   = "Ugyldig forespørsel."
	MessageMissingToken  = "Du må være logget inn."
	MessageInvalidToken  = "Innloggingen er ugyldig eller utløpt. Logg inn på nytt."
	MessageAdminRequired = "Ingen tilgang."
)
