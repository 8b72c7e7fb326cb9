package mail

import (
	"fmt"
	"regexp"
	"strings"
)

// SpamThreshold is the score at which a message is considered spam.
const SpamThreshold = 50

var spamKeywords = []string{
	"oferta especial", "promoción limitada", "ganar dinero", "gratis", "urgente",
	"felicidades", "premio", "sorteo", "lotería", "millones", "dinero fácil",
	"trabajo desde casa", "ingresos extras", "oportunidad única", "por tiempo limitado",
	"haga clic aquí", "compre ahora", "descuento masivo", "oferta irresistible",
	"free money", "get rich quick", "urgent", "congratulations", "winner",
	"claim now", "limited time", "act now", "buy now", "click here",
	"make money fast", "work from home", "no strings attached", "risk free",
}

var spamDomains = map[string]bool{
	"tempmail.org":      true,
	"10minutemail.com":  true,
	"guerrillamail.com": true,
	"mailinator.com":    true,
	"trash-mail.com":    true,
	"throwaway.email":   true,
	"yopmail.com":       true,
	"emailondeck.com":   true,
}

var suspiciousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\$\d[\d,]*\s*(millones?|millions?)`),
	regexp.MustCompile(`(?i)\b\d+%\s*(descuento|discount|off)\b`),
	regexp.MustCompile(`(?i)\b(viagra|casino|poker|lottery|pills)\b`),
	regexp.MustCompile(`[A-Z]{5,}`),
	regexp.MustCompile(`!{3,}`),
}

var linkPattern = regexp.MustCompile(`(?i)<a\s+[^>]*href`)

// ScoreSpam scores an email against keyword, domain and formatting
// heuristics. Spam is anything scoring SpamThreshold or above.
func ScoreSpam(e Email) (score int, reasons []string) {
	if domain := senderDomain(e.From.Address); domain != "" && spamDomains[domain] {
		score += 50
		reasons = append(reasons, fmt.Sprintf("dominio temporal o sospechoso: %s", domain))
	}

	subject := strings.ToLower(e.Subject)
	if hits := keywordHits(subject); len(hits) > 0 {
		score += len(hits) * 15
		reasons = append(reasons, fmt.Sprintf("palabras spam en asunto: %s", strings.Join(hits, ", ")))
	}

	text := strings.ToLower(e.Text)
	if hits := keywordHits(text); len(hits) > 0 {
		score += len(hits) * 10
		reasons = append(reasons, fmt.Sprintf("palabras spam en contenido: %s", strings.Join(hits, ", ")))
	}

	for _, pattern := range suspiciousPatterns {
		if match := pattern.FindString(e.Text); match != "" {
			score += 20
			reasons = append(reasons, fmt.Sprintf("patrón sospechoso: %s", match))
		}
	}

	if links := linkPattern.FindAllString(e.Text, -1); len(links) > 5 {
		score += 25
		reasons = append(reasons, fmt.Sprintf("demasiados enlaces: %d", len(links)))
	}

	if e.From.Address == "" {
		score += 30
		reasons = append(reasons, "remitente vacío")
	}

	if strings.TrimSpace(e.Subject) == "" {
		score += 20
		reasons = append(reasons, "asunto vacío")
	} else if uppercaseRatio(e.Subject) > 0.5 {
		score += 15
		reasons = append(reasons, "demasiadas mayúsculas en asunto")
	}

	return score, reasons
}

// FlagSpam scores the email and records the verdict on it.
func FlagSpam(e *Email) {
	score, reasons := ScoreSpam(*e)
	e.SpamScore = score
	e.SpamReasons = reasons
	e.Spam = score >= SpamThreshold
}

func keywordHits(lowered string) []string {
	var hits []string
	for _, kw := range spamKeywords {
		if strings.Contains(lowered, kw) {
			hits = append(hits, kw)
		}
	}
	return hits
}

func senderDomain(addr string) string {
	_, domain, found := strings.Cut(strings.ToLower(addr), "@")
	if !found {
		return ""
	}
	return domain
}

func uppercaseRatio(s string) float64 {
	upper := 0
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			upper++
		}
	}
	return float64(upper) / float64(len([]rune(s)))
}
