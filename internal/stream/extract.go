package stream

import (
	"regexp"

	"github.com/mr-tron/base58"
)

// base58Pattern matches candidate Solana addresses embedded in signal text.
var base58Pattern = regexp.MustCompile(`[1-9A-HJ-NP-Za-km-z]{32,44}`)

// ExtractAddresses pulls contract addresses out of a raw signal message.
// Matches are validated by decoding: only strings that decode to 32 bytes
// are real public keys. Order is preserved and duplicates within one
// message are collapsed.
func ExtractAddresses(text string) []string {
	matches := base58Pattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	var out []string
	for _, m := range matches {
		if _, dup := seen[m]; dup {
			continue
		}
		raw, err := base58.Decode(m)
		if err != nil || len(raw) != 32 {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}
