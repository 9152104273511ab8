package sec

const bearerPrefix = "Bearer "

// BearerHeader builds an Authorization header value. Empty token -> ""
func BearerHeader(token string) string {
	if token == "" {
		return ""
	}
	return bearerPrefix + token
}

func ExtractBearerToken(header string) string {
	prefixLen := len(bearerPrefix)
	if len(header) > prefixLen && header[:prefixLen] == bearerPrefix {
		return header[prefixLen:]
	}
	return ""
}
