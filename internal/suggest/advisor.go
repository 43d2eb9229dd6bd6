package suggest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fjacquet/payrecon/internal/currencyutils"
	"fjacquet/payrecon/internal/dateutils"
	"fjacquet/payrecon/internal/logging"
	"fjacquet/payrecon/internal/models"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// maxPromptInvoices caps the invoices listed in a prompt.
const maxPromptInvoices = 20

// Advisor returns a free-text suggestion for an unmatched payment.
type Advisor interface {
	Advise(ctx context.Context, payment models.Payment, invoices []models.Invoice) (string, error)
}

// TextGenerator is the single call the advisor needs from a language model.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// GeminiAdvisor asks a Gemini model which invoice an unmatched payment
// most likely settles.
type GeminiAdvisor struct {
	generator TextGenerator
	timeout   time.Duration
	logger    logging.Logger
}

// NewGeminiAdvisor returns an advisor over generator. A zero timeout means
// no limit beyond ctx.
func NewGeminiAdvisor(generator TextGenerator, timeout time.Duration, logger logging.Logger) *GeminiAdvisor {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &GeminiAdvisor{generator: generator, timeout: timeout, logger: logger}
}

// Advise implements Advisor.
func (a *GeminiAdvisor) Advise(ctx context.Context, payment models.Payment, invoices []models.Invoice) (string, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	a.logger.Debug("Requesting review advice",
		logging.F(logging.FieldPayment, payment.ID),
		logging.F(logging.FieldCount, len(invoices)))

	text, err := a.generator.GenerateText(ctx, BuildPrompt(payment, invoices))
	if err != nil {
		return "", fmt.Errorf("gemini advice for payment %s: %w", payment.ID, err)
	}
	return strings.TrimSpace(text), nil
}

// BuildPrompt describes the payment and the tenant's open invoices.
func BuildPrompt(payment models.Payment, invoices []models.Invoice) string {
	var b strings.Builder
	b.WriteString("A bank payment could not be matched to an invoice automatically.\n")
	fmt.Fprintf(&b, "Payment: amount %s, value date %s, reference %q, description %q\n",
		currencyutils.FormatMinor(payment.Amount),
		dateutils.ToISODate(payment.ValueDate),
		models.StringValue(payment.Reference),
		models.StringValue(payment.Description))

	b.WriteString("Open invoices:\n")
	listed := 0
	for _, inv := range invoices {
		if !inv.Status.Outstanding() {
			continue
		}
		if listed == maxPromptInvoices {
			b.WriteString("- ...\n")
			break
		}
		fmt.Fprintf(&b, "- id %s, reference %s, total %s, outstanding %s, due %s\n",
			inv.ID, inv.Reference,
			currencyutils.FormatMinor(inv.TotalAmount),
			currencyutils.FormatMinor(inv.Outstanding()),
			dateutils.ToISODate(inv.DueDate))
		listed++
	}
	if listed == 0 {
		b.WriteString("- none\n")
	}

	b.WriteString("Answer in one line:\nInvoice: [invoice id or NONE]\nReason: [short explanation]")
	return b.String()
}

// GeminiModel is a TextGenerator backed by the Gemini API.
type GeminiModel struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiModel connects to the Gemini API with apiKey.
func NewGeminiModel(ctx context.Context, apiKey, model string) (*GeminiModel, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	m := client.GenerativeModel(model)
	m.SetTemperature(0)
	return &GeminiModel{client: client, model: m}, nil
}

// GenerateText implements TextGenerator.
func (g *GeminiModel) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from Gemini API")
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String(), nil
}

// Close releases the client.
func (g *GeminiModel) Close() error {
	return g.client.Close()
}
