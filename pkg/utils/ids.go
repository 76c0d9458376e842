package utils

import (
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/text/cases"
)

// NewID returns a fresh document id in the same hex form mongodb uses for ObjectIDs.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// ConversationKey is the natural key of the conversation between a and b.
// The pair is unordered: ConversationKey(a, b) == ConversationKey(b, a).
func ConversationKey(a string, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return pair[0] + ":" + pair[1]
}

// Fold normalizes emails and usernames for case-insensitive uniqueness.
// A Caser keeps state, so each call gets its own.
func Fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}
