package common

// AuthorizationHeaderName is the HTTP header carrying the bearer token.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the token value in the Authorization header.
const BearerPrefix = "Bearer "

// TitleLength is how many characters of the first user message become
// the chat title in the user's index.
const TitleLength = 40

// MinAnswerLength is the shortest model answer the server will persist.
const MinAnswerLength = 2

// Turn roles as stored in transcripts.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Title returns the index title for a chat started with text.
func Title(text string) string {
	r := []rune(text)
	if len(r) <= TitleLength {
		return text
	}
	return string(r[:TitleLength])
}
