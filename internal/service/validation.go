package service

import (
	"errors"
	"net/url"
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
	"golang.org/x/net/idna"

	"github.com/octobees/itinerary-maker/api/internal/entity"
)

var (
	emailPattern = regexp.MustCompile(`^[a-z0-9._%+\-']+@[a-z0-9.-]+\.[a-z]{2,}$`)
	idnaProfile  = idna.Lookup
)

const (
	trackingPrefix     = "utm_"
	defaultPhoneRegion = "ID"
)

var allowedSocialDomains = map[string]entity.SocialPlatform{
	"linkedin.com":  entity.PlatformLinkedIn,
	"facebook.com":  entity.PlatformFacebook,
	"fb.com":        entity.PlatformFacebook,
	"instagram.com": entity.PlatformInstagram,
	"youtube.com":   entity.PlatformYouTube,
	"youtu.be":      entity.PlatformYouTube,
	"tiktok.com":    entity.PlatformTikTok,
	"x.com":         entity.PlatformX,
	"twitter.com":   entity.PlatformX,
}

// Path segments that prefix the handle rather than being the handle.
var socialPathPrefixes = map[string]struct{}{
	"in":      {},
	"company": {},
	"channel": {},
	"user":    {},
	"c":       {},
	"pages":   {},
}

// SocialProfile is a sanitized social profile link.
type SocialProfile struct {
	URL      string
	Platform entity.SocialPlatform
	Username string
}

// ContactNormalizer cleans emails, phone numbers and social links before they are stored.
type ContactNormalizer struct {
	DefaultRegion string
}

// NewContactNormalizer builds a normalizer; phone numbers without a country
// prefix are parsed in defaultRegion.
func NewContactNormalizer(defaultRegion string) *ContactNormalizer {
	region := strings.ToUpper(strings.TrimSpace(defaultRegion))
	if region == "" {
		region = defaultPhoneRegion
	}
	return &ContactNormalizer{DefaultRegion: region}
}

// Email lowercases the address and checks its shape and domain.
func (n *ContactNormalizer) Email(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" || !emailPattern.MatchString(email) {
		return "", invalidf("invalid email address")
	}
	parts := strings.SplitN(email, "@", 2)
	if !isDomainValid(parts[1]) {
		return "", invalidf("invalid email domain")
	}
	if ascii, err := idnaProfile.ToASCII(parts[1]); err != nil || ascii == "" {
		return "", invalidf("invalid email domain")
	}
	return email, nil
}

// Phone returns the E.164 form of raw and the number type inferred from it.
func (n *ContactNormalizer) Phone(raw string) (string, entity.ContactNumberType, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", "", invalidf("phone number is required")
	}
	region := n.DefaultRegion
	if region == "" {
		region = defaultPhoneRegion
	}
	number, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return "", "", invalidf("invalid phone number")
	}
	if !phonenumbers.IsPossibleNumber(number) || !phonenumbers.IsValidNumber(number) {
		return "", "", invalidf("invalid phone number")
	}
	return phonenumbers.Format(number, phonenumbers.E164), numberType(number), nil
}

func numberType(number *phonenumbers.PhoneNumber) entity.ContactNumberType {
	switch phonenumbers.GetNumberType(number) {
	case phonenumbers.MOBILE, phonenumbers.FIXED_LINE_OR_MOBILE:
		return entity.ContactNumberMobile
	case phonenumbers.FIXED_LINE:
		return entity.ContactNumberLandline
	case phonenumbers.TOLL_FREE:
		return entity.ContactNumberTollFree
	default:
		return entity.ContactNumberOther
	}
}

// SocialProfile sanitizes a profile URL. The platform is taken from the host;
// when hint is set it must agree with it.
func (n *ContactNormalizer) SocialProfile(raw, hint string) (SocialProfile, error) {
	u, err := sanitizeURL(raw)
	if err != nil {
		return SocialProfile{}, invalidf("invalid profile url")
	}
	platform, ok := hostMatchesAllowed(u.Hostname())
	if !ok {
		return SocialProfile{}, invalidf("unsupported social network host %q", u.Hostname())
	}
	if strings.TrimSpace(hint) != "" {
		want, err := entity.ParseSocialPlatform(hint)
		if err != nil {
			return SocialProfile{}, invalidf("%v", err)
		}
		if want != platform {
			return SocialProfile{}, invalidf("profile url does not belong to %s", want)
		}
	}
	stripTracking(u)
	u.Fragment = ""
	return SocialProfile{URL: u.String(), Platform: platform, Username: usernameFromPath(u.Path)}, nil
}

func usernameFromPath(path string) string {
	for _, segment := range strings.Split(path, "/") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		if _, skip := socialPathPrefixes[strings.ToLower(segment)]; skip {
			continue
		}
		return strings.TrimPrefix(segment, "@")
	}
	return ""
}

func hostMatchesAllowed(host string) (entity.SocialPlatform, bool) {
	host = strings.ToLower(strings.Trim(strings.TrimSpace(host), "."))
	if host == "" {
		return "", false
	}
	for domain, platform := range allowedSocialDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return platform, true
		}
	}
	return "", false
}

func sanitizeURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("empty url")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil, errors.New("invalid url")
	}
	u.Scheme = "https"
	return u, nil
}

func stripTracking(u *url.URL) {
	if u == nil {
		return
	}
	query := u.Query()
	changed := false
	for key := range query {
		if strings.HasPrefix(strings.ToLower(key), trackingPrefix) {
			query.Del(key)
			changed = true
		}
	}
	if changed {
		u.RawQuery = query.Encode()
	}
}

func isDomainValid(domain string) bool {
	if strings.Count(domain, ".") == 0 {
		return false
	}
	parts := strings.Split(domain, ".")
	for _, part := range parts {
		if part == "" || strings.HasPrefix(part, "-") || strings.HasSuffix(part, "-") {
			return false
		}
	}
	return true
}
