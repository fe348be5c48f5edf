package validation

import (
	"net/url"
	"strings"

	apperrors "github.com/anime-shed/mindtrack-report/internal/errors"
)

// URLValidator handles validation of social media post URLs submitted for
// extraction
type URLValidator struct {
	allowedSchemes []string
	allowedHosts   []string
}

// SupportedHosts are the platforms the analysis API can extract posts from
var SupportedHosts = []string{
	"twitter.com",
	"x.com",
	"reddit.com",
	"instagram.com",
	"threads.net",
	"threads.com",
	"facebook.com",
}

// NewURLValidator creates a URL validator accepting posts from SupportedHosts
func NewURLValidator() *URLValidator {
	return &URLValidator{
		allowedSchemes: []string{"http", "https"},
		allowedHosts:   SupportedHosts,
	}
}

// ValidatePostURL validates a post URL before it is forwarded upstream
func (v *URLValidator) ValidatePostURL(postURL string) error {
	if strings.TrimSpace(postURL) == "" {
		return apperrors.NewValidationError("URL cannot be empty", nil)
	}

	parsedURL, err := url.Parse(strings.TrimSpace(postURL))
	if err != nil {
		return apperrors.NewValidationError("Invalid URL format", err)
	}

	if !v.isSchemeAllowed(strings.ToLower(parsedURL.Scheme)) {
		return apperrors.NewValidationError("URL scheme not allowed", nil)
	}

	if parsedURL.Host == "" {
		return apperrors.NewValidationError("URL must have a valid host", nil)
	}

	if !v.isHostAllowed(strings.ToLower(parsedURL.Hostname())) {
		return apperrors.NewValidationError("URL host not allowed", nil)
	}

	return nil
}

func (v *URLValidator) isSchemeAllowed(scheme string) bool {
	for _, allowed := range v.allowedSchemes {
		if scheme == allowed {
			return true
		}
	}
	return false
}

// isHostAllowed returns true if no host restrictions are set; otherwise the
// host must match an allowed host or be a subdomain of one
func (v *URLValidator) isHostAllowed(host string) bool {
	if len(v.allowedHosts) == 0 {
		return true
	}
	for _, allowed := range v.allowedHosts {
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return true
		}
	}
	return false
}
