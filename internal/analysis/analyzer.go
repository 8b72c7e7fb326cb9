// Package analysis summarizes mailbox activity with a chat completion
// model, degrading to a synthetic summary when the model misbehaves.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/concilia-dev/concilia/internal/mail"
)

const systemPrompt = "Eres un experto analista de correos electrónicos para hoteles y spas. " +
	"Proporciona análisis precisos y útiles en formato JSON."

const promptTemplate = `Analiza estos {emailCount} correos de {timeSlot} ({today}) y responde SOLO con un objeto JSON con esta forma:

{
  "summary": "resumen breve de 2-3 líneas",
  "detailedAnalysis": "análisis detallado del período",
  "keyTopics": ["máximo 5 temas"],
  "sentimentAnalysis": {"positive": 0, "neutral": 0, "negative": 0, "score": 0},
  "urgentEmails": [{"subject": "", "from": "", "reason": ""}],
  "actionRequired": ["acciones recomendadas"],
  "metadata": {"domains": [], "types": [], "trends": ""}
}

Correos:
{emailData}`

// Sentiment counts emails per mood plus an overall score in [-1, 1].
type Sentiment struct {
	Positive int     `json:"positive"`
	Neutral  int     `json:"neutral"`
	Negative int     `json:"negative"`
	Score    float64 `json:"score"`
}

// UrgentEmail flags a message the model thinks needs a same-day reply.
type UrgentEmail struct {
	Subject string `json:"subject"`
	From    string `json:"from"`
	Reason  string `json:"reason"`
}

// Metadata carries loose aggregates the model reports about the batch.
type Metadata struct {
	Domains []string `json:"domains"`
	Types   []string `json:"types"`
	Trends  string   `json:"trends,omitempty"`
}

// Result is one completed mailbox analysis.
type Result struct {
	AnalysisDate     string        `json:"analysisDate"`
	TimeSlot         string        `json:"timeSlot"`
	EmailsAnalyzed   int           `json:"emailsAnalyzed"`
	Summary          string        `json:"summary"`
	DetailedAnalysis string        `json:"detailedAnalysis"`
	KeyTopics        []string      `json:"keyTopics"`
	Sentiment        Sentiment     `json:"sentimentAnalysis"`
	UrgentEmails     []UrgentEmail `json:"urgentEmails"`
	ActionRequired   []string      `json:"actionRequired"`
	Metadata         Metadata      `json:"metadata"`
	Degraded         bool          `json:"degraded,omitempty"`
}

// Options tunes a single analysis run.
type Options struct {
	Model     string
	MaxEmails int
	TextLimit int
}

// Analyzer turns a batch of emails into a structured summary.
type Analyzer struct {
	client *openai.Client
	opts   Options
	log    *log.Logger
	now    func() time.Time
}

func New(client *openai.Client, opts Options, logger *log.Logger) *Analyzer {
	if opts.Model == "" {
		opts.Model = openai.GPT4oMini
	}
	if opts.MaxEmails <= 0 {
		opts.MaxEmails = 50
	}
	if opts.TextLimit <= 0 {
		opts.TextLimit = 500
	}
	return &Analyzer{client: client, opts: opts, log: logger, now: time.Now}
}

// Analyze sends the batch to the model and parses its JSON verdict.
// Spam is excluded before anything leaves the machine. A model that
// answers with malformed JSON degrades to a synthetic result instead of
// failing the run; a transport error fails it.
func (a *Analyzer) Analyze(ctx context.Context, emails []mail.Email) (Result, error) {
	now := a.now()
	result := Result{
		AnalysisDate: now.Format("2006-01-02"),
		TimeSlot:     timeSlot(now.Hour()),
	}

	batch := clean(emails, a.opts.MaxEmails)
	result.EmailsAnalyzed = len(batch)
	if len(batch) == 0 {
		return emptyResult(result), nil
	}

	prompt := buildPrompt(promptTemplate, result.TimeSlot, result.AnalysisDate, batch, a.opts.TextLimit)

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.opts.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return Result{}, fmt.Errorf("requesting analysis: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Result{}, fmt.Errorf("analysis response has no choices")
	}

	if err := parseVerdict(resp.Choices[0].Message.Content, &result); err != nil {
		a.log.Warn("model returned malformed analysis, degrading", "err", err)
		return fallbackResult(result, batch), nil
	}
	return result, nil
}

// clean drops spam and caps the batch size.
func clean(emails []mail.Email, limit int) []mail.Email {
	var out []mail.Email
	for _, e := range emails {
		if e.Spam {
			continue
		}
		out = append(out, e)
		if len(out) == limit {
			break
		}
	}
	return out
}

func buildPrompt(template, slot, today string, emails []mail.Email, textLimit int) string {
	var b strings.Builder
	for i, e := range emails {
		text := e.Text
		if text == "" {
			text = "Sin contenido de texto"
		}
		if len(text) > textLimit {
			text = text[:textLimit] + "..."
		}
		fmt.Fprintf(&b, "%d. DE: %s\n   ASUNTO: %s\n   FECHA: %s\n   CONTENIDO: %s\n\n",
			i+1, e.From.Address, e.Subject, e.Date.Format(time.RFC3339), text)
	}

	r := strings.NewReplacer(
		"{emailCount}", strconv.Itoa(len(emails)),
		"{timeSlot}", slot,
		"{today}", today,
		"{emailData}", b.String(),
	)
	return r.Replace(template)
}

// parseVerdict extracts the first JSON object from the completion and
// unmarshals it over the result. Models often wrap the object in prose
// or code fences.
func parseVerdict(content string, result *Result) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return fmt.Errorf("empty completion")
	}

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end < start {
		return fmt.Errorf("no JSON object in completion")
	}

	if err := json.Unmarshal([]byte(content[start:end+1]), result); err != nil {
		return fmt.Errorf("decoding analysis: %w", err)
	}
	if result.Summary == "" {
		return fmt.Errorf("analysis has no summary")
	}
	return nil
}

func emptyResult(base Result) Result {
	base.Summary = "No hay correos nuevos sin leer en este período."
	base.DetailedAnalysis = "Sin correos no leídos detectados. El equipo está al día con la correspondencia."
	base.KeyTopics = []string{"Sin correos pendientes"}
	base.Sentiment = Sentiment{Positive: 1, Score: 1}
	base.ActionRequired = []string{"Mantener la revisión regular de correos"}
	base.Metadata = Metadata{Domains: []string{}, Types: []string{}}
	return base
}

func fallbackResult(base Result, emails []mail.Email) Result {
	base.Summary = fmt.Sprintf("Análisis %s: %d correos procesados. Error en análisis detallado de IA.",
		base.TimeSlot, len(emails))
	base.DetailedAnalysis = "Error al procesar análisis detallado con IA. Análisis manual requerido."
	base.KeyTopics = []string{"correos_entrantes"}
	base.Sentiment = Sentiment{Neutral: len(emails)}
	base.ActionRequired = []string{"Revisar correos manualmente"}
	base.Metadata = Metadata{
		Domains: senderDomains(emails),
		Types:   []string{"correos_generales"},
		Trends:  "Error en análisis de IA",
	}
	base.Degraded = true
	return base
}

func senderDomains(emails []mail.Email) []string {
	seen := map[string]bool{}
	var domains []string
	for _, e := range emails {
		_, domain, found := strings.Cut(e.From.Address, "@")
		if !found || seen[domain] {
			continue
		}
		seen[domain] = true
		domains = append(domains, domain)
	}
	return domains
}

func timeSlot(hour int) string {
	switch {
	case hour >= 6 && hour < 12:
		return "morning"
	case hour >= 12 && hour < 15:
		return "midday"
	case hour >= 15 && hour < 20:
		return "afternoon"
	default:
		return "evening"
	}
}
