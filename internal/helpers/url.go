package helpers

import (
	"errors"
	"net/url"
	"path"
	"strings"
)

// CanonicalURL normalises a URL string for deduplication. It lowercases
// scheme/host, removes default ports, strips fragments and cleans path
// segments. When the scheme is omitted it defaults to https.
func CanonicalURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("empty url")
	}

	parsed, err := parseURLPreserveHost(raw)
	if err != nil {
		return "", err
	}

	if parsed.Scheme == "" {
		parsed.Scheme = "https"
	}
	parsed.Scheme = strings.ToLower(parsed.Scheme)

	host := strings.ToLower(parsed.Host)
	if host == "" {
		return "", errors.New("url missing host")
	}
	if strings.Contains(host, ":") {
		parts := strings.Split(host, ":")
		if len(parts) == 2 {
			port := parts[1]
			if (parsed.Scheme == "http" && port == "80") || (parsed.Scheme == "https" && port == "443") {
				host = parts[0]
			}
		}
	}
	parsed.Host = host

	if parsed.Path == "" {
		parsed.Path = "/"
	}
	cleanPath := path.Clean(parsed.Path)
	if cleanPath == "." {
		cleanPath = "/"
	}
	if !strings.HasPrefix(cleanPath, "/") {
		cleanPath = "/" + cleanPath
	}
	parsed.Path = cleanPath
	parsed.Fragment = ""

	return parsed.String(), nil
}

// Domain extracts the lowercased host of a URL, without port.
func Domain(raw string) string {
	parsed, err := parseURLPreserveHost(raw)
	if err != nil {
		return ""
	}
	host := strings.ToLower(parsed.Host)
	if idx := strings.IndexByte(host, ':'); idx >= 0 {
		host = host[:idx]
	}
	return host
}

// DomainAllowed reports whether the URL's domain matches the allow-list.
// A domain matches on exact equality or as a subdomain of an allowed entry.
// An empty allow-list means unrestricted.
func DomainAllowed(raw string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	d := Domain(raw)
	if d == "" {
		return false
	}
	for _, a := range allowed {
		a = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(a)), ".")
		if a == "" {
			continue
		}
		if d == a || strings.HasSuffix(d, "."+a) {
			return true
		}
	}
	return false
}

// parseURLPreserveHost attempts to parse raw into a url.URL, handling schemeless URLs.
func parseURLPreserveHost(raw string) (*url.URL, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if parsed.Scheme == "" && parsed.Host == "" {
		if strings.HasPrefix(raw, "//") {
			return url.Parse("https:" + raw)
		}
		return url.Parse("https://" + raw)
	}
	return parsed, nil
}
