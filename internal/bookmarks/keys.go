package bookmarks

import (
	"fmt"
	"strings"
)

// KeyPrefix is the namespace for all bookmark records.
const KeyPrefix = "bookmarks:"

// Key returns the storage key for one bookmark.
// Layout: bookmarks:{userId}:{bookmarkId}
func Key(userID, bookmarkID string) string {
	return KeyPrefix + userID + ":" + bookmarkID
}

// UserPrefix returns the scan prefix covering exactly one user's bookmarks.
func UserPrefix(userID string) string {
	return KeyPrefix + userID + ":"
}

// ParseKey splits a storage key back into (userId, bookmarkId).
func ParseKey(key string) (userID, bookmarkID string, err error) {
	rest, ok := strings.CutPrefix(key, KeyPrefix)
	if !ok {
		return "", "", fmt.Errorf("key %q is outside the bookmark namespace", key)
	}
	userID, bookmarkID, ok = strings.Cut(rest, ":")
	if !ok || userID == "" || bookmarkID == "" {
		return "", "", fmt.Errorf("malformed bookmark key %q", key)
	}
	return userID, bookmarkID, nil
}
