package response

import (
	"context"
	"fmt"
	"strings"

	"ai-mailroom-be/internal/entity"
	"ai-mailroom-be/pkg/llm"
	"ai-mailroom-be/pkg/rag/retrieval"
)

// CompanyInfo is the signature block appended to every outgoing reply.
type CompanyInfo struct {
	Name         string
	ContactEmail string
	Phone        string
	PolicyURL    string
}

// Alternative is an in-stock product suggested in place of an unavailable one.
type Alternative struct {
	ProductId string
	Name      string
	Snippet   string
}

// Generator assembles reply bodies. Stock notices and confirmations are
// template-backed; inquiry answers go through the LLM with retrieved catalog
// context.
type Generator struct {
	llmProvider llm.LLMProvider
	company     CompanyInfo
}

func NewGenerator(llmProvider llm.LLMProvider, company CompanyInfo) *Generator {
	return &Generator{
		llmProvider: llmProvider,
		company:     company,
	}
}

// OrderConfirmation renders the per-line results of a processed order.
func (g *Generator) OrderConfirmation(outcomes []*entity.OrderOutcome, names map[string]string) string {
	var created, unavailable []string
	for _, o := range outcomes {
		name := names[o.ProductId]
		if name == "" {
			name = o.ProductId
		}
		line := fmt.Sprintf("- %d x %s", o.Quantity, name)
		if o.Status == entity.OutcomeCreated {
			created = append(created, line)
		} else {
			unavailable = append(unavailable, line)
		}
	}

	var sb strings.Builder
	if len(created) > 0 {
		sb.WriteString("Thank you for your order! We're processing the following items:\n\n")
		sb.WriteString(strings.Join(created, "\n"))
		sb.WriteString("\n")
	}
	if len(unavailable) > 0 {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("We're sorry, some items aren't available right now:\n\n")
		sb.WriteString(strings.Join(unavailable, "\n"))
		sb.WriteString("\n")
	}
	sb.WriteString(g.companyFooter())
	return sb.String()
}

// StockNotice renders an out-of-stock notification with alternatives.
func (g *Generator) StockNotice(unavailable []*entity.OrderOutcome, names map[string]string, alternatives []Alternative) string {
	var sb strings.Builder
	sb.WriteString("We're sorry, some items aren't available:\n\n")
	for _, o := range unavailable {
		name := names[o.ProductId]
		if name == "" {
			name = o.ProductId
		}
		sb.WriteString(fmt.Sprintf("- %s (Requested: %d)\n", name, o.Quantity))
	}

	sb.WriteString("\nAlternatives we recommend:\n")
	if len(alternatives) == 0 {
		sb.WriteString("None available at this time\n")
	} else {
		for _, alt := range alternatives {
			snippet := alt.Snippet
			if len(snippet) > 100 {
				snippet = snippet[:100] + "..."
			}
			sb.WriteString(fmt.Sprintf("- %s: %s\n", alt.Name, snippet))
		}
	}

	sb.WriteString(g.companyFooter())
	return sb.String()
}

const inquiryPromptTemplate = `You're a customer service agent for %s.
Answer this customer question using only the catalog excerpts below.
Question: %s

Catalog excerpts:
%s

Respond in 2-3 paragraphs with:
1. Direct answer to the question
2. Key product benefits
3. Call-to-action

Tone: Professional but friendly`

// InquiryAnswer generates a product inquiry reply grounded in the retrieved
// catalog entries. An empty retrieval result yields a polite fallback without
// touching the LLM.
func (g *Generator) InquiryAnswer(ctx context.Context, question string, result *retrieval.Result, names map[string]string) (string, error) {
	if result == nil || len(result.Items) == 0 {
		return g.noMatchReply(), nil
	}

	var excerpts strings.Builder
	for _, item := range result.Items {
		name := names[item.ProductId]
		if name == "" {
			name = item.ProductId
		}
		excerpts.WriteString(fmt.Sprintf("[%s] %s: %s\n", item.ProductId, name, item.Snippet))
	}

	prompt := fmt.Sprintf(inquiryPromptTemplate, g.company.Name, question, excerpts.String())

	answer, err := g.llmProvider.Generate(ctx, prompt, llm.WithTemperature(0.3))
	if err != nil {
		return "", fmt.Errorf("inquiry answer generation failed: %w", err)
	}

	return answer + g.companyFooter(), nil
}

func (g *Generator) noMatchReply() string {
	return "Thank you for reaching out! We couldn't find a catalog item matching " +
		"your question, and we'd rather not guess. Could you share a product name " +
		"or SKU so we can help precisely?" + g.companyFooter()
}

func (g *Generator) companyFooter() string {
	return fmt.Sprintf(
		"\n\n%s Customer Service\nEmail: %s | Phone: %s\nView our policies: %s",
		g.company.Name,
		g.company.ContactEmail,
		g.company.Phone,
		g.company.PolicyURL,
	)
}
