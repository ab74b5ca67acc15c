package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/moznion/go-optional"
	"google.golang.org/genai"

	"github.com/rustyeddy/advisor/market"
	"github.com/rustyeddy/advisor/pkg/errors"
)

const (
	DefaultGenAIModel = "gemini-2.5-flash"
	// DefaultPromptBars is how much of the history the model is shown.
	DefaultPromptBars = 60
)

const analystInstruction = `You are a professional financial analyst with expertise in technical analysis.
You are given daily price bars for one stock up to and including the analysis date.
You must not assume any knowledge of prices after the analysis date.
Answer with a single JSON object with these exact keys:
recommendation (BUY, SELL or HOLD), confidence (integer 1-10),
price_target (number), reasons (short list of strings).`

// ContentGenerator is the slice of the genai client the oracle needs.
// *genai.Models satisfies it.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GenAI asks a Gemini model for a recommendation. It is safe for concurrent
// use to the extent the underlying client is.
type GenAI struct {
	Models     ContentGenerator
	Model      string
	PromptBars int
}

// NewGenAI builds a Gemini API client.
func NewGenAI(ctx context.Context, apiKey, model string) (*GenAI, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeConfiguration, "gemini oracle requires an API key (GEMINI_API_KEY)")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfiguration, err, "create gemini client")
	}
	return NewGenAIWith(client.Models, model), nil
}

// NewGenAIWith wraps an existing generator.
func NewGenAIWith(models ContentGenerator, model string) *GenAI {
	if model == "" {
		model = DefaultGenAIModel
	}
	return &GenAI{Models: models, Model: model, PromptBars: DefaultPromptBars}
}

func (g *GenAI) Evaluate(ctx context.Context, q Query) (Recommendation, error) {
	history := q.History.Through(q.AsOf)
	if len(history) == 0 {
		return HoldFor(q.AsOf, "no history"), nil
	}

	resp, err := g.Models.GenerateContent(ctx, g.Model, genai.Text(g.prompt(q.Symbol, q.AsOf, history)),
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: analystInstruction}}},
			ResponseMIMEType:  "application/json",
			Temperature:       genai.Ptr[float32](0.3),
		})
	if err != nil {
		return Recommendation{}, fmt.Errorf("generate content: %w", err)
	}
	if resp == nil {
		return Recommendation{}, fmt.Errorf("generate content: empty response")
	}
	return parseModelAnswer(resp.Text())
}

func (g *GenAI) prompt(symbol string, asOf time.Time, history market.Bars) string {
	n := g.PromptBars
	if n <= 0 || n > len(history) {
		n = len(history)
	}
	window := history[len(history)-n:]
	last := window[len(window)-1]

	var sb strings.Builder
	fmt.Fprintf(&sb, "Stock: %s\n", symbol)
	fmt.Fprintf(&sb, "Analysis date: %s\n", market.FormatDate(asOf))
	fmt.Fprintf(&sb, "Current price: %.2f\n", last.Close)
	if len(history) > 1 {
		prev := history[len(history)-2].Close
		fmt.Fprintf(&sb, "1D change: %+.2f%%\n", (last.Close/prev-1)*100)
	}
	if len(history) > 21 {
		prev := history[len(history)-22].Close
		fmt.Fprintf(&sb, "1M change: %+.2f%%\n", (last.Close/prev-1)*100)
	}
	sb.WriteString("\ndate,open,high,low,close,volume\n")
	for _, b := range window {
		fmt.Fprintf(&sb, "%s,%.4f,%.4f,%.4f,%.4f,%.0f\n",
			market.FormatDate(b.Date), b.Open, b.High, b.Low, b.Close, b.Volume)
	}
	return sb.String()
}

type modelAnswer struct {
	Recommendation string          `json:"recommendation"`
	Confidence     json.Number     `json:"confidence"`
	PriceTarget    *float64        `json:"price_target"`
	Reasons        json.RawMessage `json:"reasons"`
}

// parseModelAnswer extracts the first JSON object from free-form text.
// Unknown actions become HOLD and a malformed answer is an error. AsOf is
// left zero for the adapter to fill in.
func parseModelAnswer(text string) (Recommendation, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return Recommendation{}, fmt.Errorf("no JSON object in model answer")
	}

	var ans modelAnswer
	dec := json.NewDecoder(strings.NewReader(text[start : end+1]))
	dec.UseNumber()
	if err := dec.Decode(&ans); err != nil {
		return Recommendation{}, fmt.Errorf("decode model answer: %w", err)
	}

	conf, err := ans.Confidence.Float64()
	if err != nil {
		return Recommendation{}, fmt.Errorf("confidence %q: %w", ans.Confidence, err)
	}

	rec := Recommendation{
		Action:     NormalizeAction(ans.Recommendation),
		Confidence: int(conf + 0.5),
		Rationale:  reasons(ans.Reasons),
	}
	if ans.PriceTarget != nil && *ans.PriceTarget > 0 {
		rec.TargetPrice = optional.Some(*ans.PriceTarget)
	}
	return rec, nil
}

func reasons(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, "; ")
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
