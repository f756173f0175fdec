// internal/token/list.go
package token

// Dedupe оставляет первое вхождение каждого адреса и обрезает список до limit
// (limit <= 0 - без обрезки). Порядок сохраняется.
func Dedupe(tokens []CanonicalToken, limit int) []CanonicalToken {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]CanonicalToken, 0, len(tokens))
	for _, tok := range tokens {
		if _, ok := seen[tok.BaseToken.Address]; ok {
			continue
		}
		seen[tok.BaseToken.Address] = struct{}{}
		out = append(out, tok)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
