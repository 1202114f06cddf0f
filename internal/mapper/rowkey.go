package mapper

import (
	"crypto/md5"
	"encoding/hex"
)

// HashRowKey prefixes key with six hex digits of its MD5 so sequential keys spread across the
// key space: "user1" becomes "24c9e1-user1".
func HashRowKey(key string) string {
	sum := md5.Sum([]byte(key))
	return hex.EncodeToString(sum[:])[:6] + "-" + key
}
