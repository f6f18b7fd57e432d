package services

import (
	"fmt"
	"math/rand"
	"net/url"
)

// DiceBear styles that look reasonable as profile pictures.
var avatarStyles = []string{
	"identicon",
	"bottts",
	"avataaars",
	"micah",
	"open-peeps",
}

// RandomAvatarURL builds a DiceBear avatar URL for a new account. The seed
// keeps the generated picture stable for the same input.
func RandomAvatarURL(seed string) string {
	style := avatarStyles[rand.Intn(len(avatarStyles))]

	params := url.Values{}
	params.Set("seed", seed)
	params.Set("size", "200")

	return fmt.Sprintf("https://api.dicebear.com/7.x/%s/svg?%s", style, params.Encode())
}
