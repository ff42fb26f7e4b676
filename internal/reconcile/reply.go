package reconcile

import (
	"strings"

	errs "github.com/edgard/slackchat/internal/errors"
)

// replyDelimiter separates the key from the value in a threaded reply.
const replyDelimiter = ": "

// ParseReply splits a reply body on the first ": " into key and value.
// The key and value are not validated further.
func ParseReply(text string) (key, value string, err error) {
	key, value, found := strings.Cut(text, replyDelimiter)
	if !found {
		return "", "", &errs.KeyValueError{Text: text}
	}
	return key, value, nil
}
