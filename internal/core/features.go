package core

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// scamLexicons maps a signal category to its curated phrase list. Matching
// is case-insensitive substring matching against the normalized text.
// Versioned with the code: changing a lexicon changes scores.
var scamLexicons = map[string][]string{
	"urgency":  {"urgent", "immediately", "expires", "limited time", "act now", "hurry", "right away"},
	"money":    {"prize", "winner", "won", "free", "cash", "reward", "million", "inheritance", "claim your", "$", "£", "€"},
	"trust":    {"government", "bank", "official", "verify", "confirm", "security"},
	"action":   {"click", "download", "install", "call now", "reply", "forward"},
	"threat":   {"suspended", "blocked", "compromised", "fraud", "unauthorized", "violation", "penalty"},
	"personal": {"ssn", "social security", "credit card", "password", "pin", "account number"},
}

// suspiciousDomains are URL shorteners and domain shapes commonly seen in
// scam campaigns. Matched as substrings of the URL host, never resolved.
var suspiciousDomains = []string{
	"bit.ly", "tinyurl.com", "goo.gl", "t.co",
	"secure-bank-update.com", "verify-account.net",
}

// institutionalTerms in a sender's local part signal a claimed identity
// that the domain must plausibly back.
var institutionalTerms = []string{"security", "support", "admin", "billing", "account", "service", "bank"}

// senderAlertTerms are sender substrings typical of spoofed notification
// addresses.
var senderAlertTerms = []string{"noreply", "donotreply", "alert", "security"}

var (
	urlPattern   = regexp.MustCompile(`https?://[^\s<>"]+`)
	phonePattern = regexp.MustCompile(`(\+?1[-.\s]?)?\(?[0-9]{3}\)?[-.\s]?[0-9]{3}[-.\s]?[0-9]{4}`)
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
)

// FeatureExtractor converts raw message text into a FeatureSet. Extraction
// is deterministic, side-effect-free and never fails: any input string,
// including control characters and invalid UTF-8, yields a valid set.
type FeatureExtractor struct{}

// NewFeatureExtractor creates a new feature extractor
func NewFeatureExtractor() *FeatureExtractor {
	return &FeatureExtractor{}
}

// Extract computes the full feature set for a message. Unknown metadata
// keys are ignored.
func (e *FeatureExtractor) Extract(text, sender string, metadata map[string]any) FeatureSet {
	text = norm.NFC.String(text)
	lower := strings.ToLower(text)

	features := make(FeatureSet)
	e.extractBasic(text, features)
	e.extractLexical(lower, features)
	e.extractURLs(text, features)
	e.extractContacts(text, features)
	e.extractSender(sender, features)

	if flag, ok := metadata["detect_mixed_language"].(bool); ok && flag {
		features["mixed_script"] = boolFeature(hasMixedScripts(text))
	}

	return features
}

// extractBasic computes length and punctuation anomaly signals. Ratios are
// guarded against empty input.
func (e *FeatureExtractor) extractBasic(text string, features FeatureSet) {
	runes := []rune(text)
	total := len(runes)

	upper := 0
	digits := 0
	for _, r := range runes {
		if unicode.IsUpper(r) {
			upper++
		}
		if unicode.IsDigit(r) {
			digits++
		}
	}

	words := strings.Fields(text)
	capsWords := 0
	for _, w := range words {
		if len([]rune(w)) > 2 && w == strings.ToUpper(w) && strings.IndexFunc(w, unicode.IsLetter) >= 0 {
			capsWords++
		}
	}

	features["length"] = float64(total)
	features["word_count"] = float64(len(words))
	features["exclamation_count"] = float64(strings.Count(text, "!"))
	features["question_count"] = float64(strings.Count(text, "?"))
	features["caps_lock_words"] = float64(capsWords)
	features["currency_symbols"] = float64(strings.Count(text, "$") + strings.Count(text, "£") + strings.Count(text, "€"))

	if total > 0 {
		features["uppercase_ratio"] = float64(upper) / float64(total)
		features["digit_ratio"] = float64(digits) / float64(total)
	} else {
		features["uppercase_ratio"] = 0
		features["digit_ratio"] = 0
	}
}

// extractLexical counts matches against each scam lexicon.
func (e *FeatureExtractor) extractLexical(lower string, features FeatureSet) {
	for category, phrases := range scamLexicons {
		count := 0
		for _, phrase := range phrases {
			if strings.Contains(lower, phrase) {
				count++
			}
		}
		features[category+"_keywords"] = float64(count)
		features["has_"+category+"_keywords"] = boolFeature(count > 0)
	}
}

// extractURLs counts URL-like substrings and flags suspicious hosts.
func (e *FeatureExtractor) extractURLs(text string, features FeatureSet) {
	urls := urlPattern.FindAllString(text, -1)
	features["url_count"] = float64(len(urls))
	features["has_urls"] = boolFeature(len(urls) > 0)

	suspicious := 0
	for _, raw := range urls {
		parsed, err := url.Parse(raw)
		if err != nil {
			continue
		}
		host := strings.ToLower(parsed.Hostname())
		for _, bad := range suspiciousDomains {
			if strings.Contains(host, bad) {
				suspicious++
				break
			}
		}
	}
	features["suspicious_url_count"] = float64(suspicious)
}

// extractContacts detects embedded phone numbers and email addresses.
func (e *FeatureExtractor) extractContacts(text string, features FeatureSet) {
	phones := len(phonePattern.FindAllString(text, -1))
	emails := len(emailPattern.FindAllString(text, -1))
	features["phone_count"] = float64(phones)
	features["email_count"] = float64(emails)
	features["has_contact_info"] = boolFeature(phones > 0 || emails > 0)
}

// extractSender computes sender heuristics. All checks are string-based;
// no lookups are performed.
func (e *FeatureExtractor) extractSender(sender string, features FeatureSet) {
	if sender == "" {
		return
	}

	lower := strings.ToLower(sender)
	features["sender_length"] = float64(len(sender))
	features["sender_has_numbers"] = boolFeature(strings.IndexFunc(sender, unicode.IsDigit) >= 0)
	features["sender_is_email"] = boolFeature(strings.Contains(sender, "@"))
	features["sender_is_phone"] = boolFeature(isPhoneString(sender))

	suspicious := false
	for _, term := range senderAlertTerms {
		if strings.Contains(lower, term) {
			suspicious = true
			break
		}
	}
	features["sender_suspicious"] = boolFeature(suspicious)
	features["sender_mismatch"] = boolFeature(senderIdentityMismatch(lower))
}

// senderIdentityMismatch flags senders whose local part claims an
// institutional identity ("security@", "billing@") while the domain does
// not look institutional: lookalike domains with digits or hyphens, or a
// known suspicious domain.
func senderIdentityMismatch(sender string) bool {
	at := strings.LastIndex(sender, "@")
	if at <= 0 || at == len(sender)-1 {
		return false
	}
	local, domain := sender[:at], sender[at+1:]

	claimed := false
	for _, term := range institutionalTerms {
		if strings.Contains(local, term) {
			claimed = true
			break
		}
	}
	if !claimed {
		return false
	}

	for _, bad := range suspiciousDomains {
		if strings.Contains(domain, bad) {
			return true
		}
	}
	return strings.ContainsAny(domain, "-0123456789")
}

// hasMixedScripts reports whether the text mixes Latin and non-Latin
// letters above a small threshold, a common obfuscation tactic.
func hasMixedScripts(text string) bool {
	const threshold = 3
	latin, other := 0, 0
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		if unicode.Is(unicode.Latin, r) {
			latin++
		} else {
			other++
		}
		if latin >= threshold && other >= threshold {
			return true
		}
	}
	return false
}

// isPhoneString reports whether a sender string is a bare phone number.
func isPhoneString(s string) bool {
	stripped := strings.Map(func(r rune) rune {
		switch r {
		case '-', ' ', '(', ')', '+', '.':
			return -1
		}
		return r
	}, s)
	if stripped == "" {
		return false
	}
	for _, r := range stripped {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
