package generation

import (
	"fmt"
	"strings"

	"github.com/jobreadyai/backend/internal/models"
)

// BuildPrompt serializes a generation request into the instruction sent
// upstream: a role preamble, a strict HTML-output contract and the form
// fields the document should be built from.
func BuildPrompt(docType models.DocumentType, req *models.GenerationRequest) string {
	var b strings.Builder

	switch docType {
	case models.TypeCoverLetter:
		b.WriteString("You are an expert career writer. Write a persuasive, professional cover letter.\n")
	case models.TypePortfolio:
		b.WriteString("You are an expert web designer. Build a polished personal portfolio page.\n")
	default:
		b.WriteString("You are an expert resume writer. Build a clean, ATS-friendly resume.\n")
	}

	b.WriteString("Respond with a single complete HTML document and nothing else: ")
	b.WriteString("no markdown, no explanation, no code fences. ")
	b.WriteString("Use inline CSS only, and keep all content truthful to the details below.\n\n")

	writeField(&b, "Full name", req.FullName)
	writeField(&b, "Email", req.Email)
	writeField(&b, "Phone", req.Phone)
	writeField(&b, "Location", req.Location)
	writeField(&b, "Professional summary", req.Summary)
	writeField(&b, "Work experience", req.Experience)
	writeField(&b, "Education", req.Education)
	writeField(&b, "Skills", req.Skills)
	writeField(&b, "Target role", req.TargetJob)
	writeField(&b, "Target company", req.TargetCompany)
	writeField(&b, "Template style", req.Template)

	writeItems(&b, "Projects", req.Projects)
	writeItems(&b, "Products", req.Products)
	writeItems(&b, "Certifications", req.Certifications)

	if len(req.ImagePaths) > 0 {
		fmt.Fprintf(&b, "Reference these image paths where appropriate: %s\n", strings.Join(req.ImagePaths, ", "))
	}

	return b.String()
}

func writeField(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "%s: %s\n", label, value)
}

func writeItems(b *strings.Builder, label string, items []models.PortfolioItem) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "%s:\n", label)
	for _, item := range items {
		fmt.Fprintf(b, "- %s", item.Title)
		if item.Description != "" {
			fmt.Fprintf(b, ": %s", item.Description)
		}
		if item.Link != "" {
			fmt.Fprintf(b, " (%s)", item.Link)
		}
		b.WriteString("\n")
	}
}
