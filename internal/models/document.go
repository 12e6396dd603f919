package models

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DocumentType is the closed set of artifact kinds the product generates.
type DocumentType string

const (
	TypeResume      DocumentType = "resume"
	TypeCoverLetter DocumentType = "cover_letter"
	TypePortfolio   DocumentType = "portfolio"
	TypeReport      DocumentType = "report"
	TypeArticle     DocumentType = "article"
)

// NormalizeDocumentType maps loose client strings ("Cover Letter", "resume")
// onto the closed enum. Unknown values are rejected.
func NormalizeDocumentType(raw string) (DocumentType, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(strings.ToLower(raw)), " ", "_")
	normalized = strings.ReplaceAll(normalized, "-", "_")

	switch DocumentType(normalized) {
	case TypeResume, TypeCoverLetter, TypePortfolio, TypeReport, TypeArticle:
		return DocumentType(normalized), nil
	}
	return "", fmt.Errorf("unknown document type %q", raw)
}

// Document is a generated artifact embedded on its owning user record.
type Document struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title         string             `bson:"title" json:"title"`
	Type          DocumentType       `bson:"type" json:"type"`
	Content       string             `bson:"content" json:"content"`
	IsPublic      bool               `bson:"is_public" json:"is_public"`
	SourceRequest *GenerationRequest `bson:"source_request,omitempty" json:"source_request,omitempty"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}

// GenerationRequest is the form snapshot a document was generated from. It is
// stored on the document so the edit flow can re-open the wizard pre-filled.
type GenerationRequest struct {
	FullName   string `bson:"full_name,omitempty" json:"full_name,omitempty"`
	Email      string `bson:"email,omitempty" json:"email,omitempty"`
	Phone      string `bson:"phone,omitempty" json:"phone,omitempty"`
	Location   string `bson:"location,omitempty" json:"location,omitempty"`
	Summary    string `bson:"summary,omitempty" json:"summary,omitempty"`
	Experience string `bson:"experience,omitempty" json:"experience,omitempty"`
	Education  string `bson:"education,omitempty" json:"education,omitempty"`
	Skills     string `bson:"skills,omitempty" json:"skills,omitempty"`

	TargetJob     string `bson:"target_job,omitempty" json:"target_job,omitempty"`
	TargetCompany string `bson:"target_company,omitempty" json:"target_company,omitempty"`
	Template      string `bson:"template,omitempty" json:"template,omitempty"`

	Projects       []PortfolioItem `bson:"projects,omitempty" json:"projects,omitempty"`
	Products       []PortfolioItem `bson:"products,omitempty" json:"products,omitempty"`
	Certifications []PortfolioItem `bson:"certifications,omitempty" json:"certifications,omitempty"`

	// Server-relative /uploads/ paths only; external URLs are rejected.
	ImagePaths []string `bson:"image_paths,omitempty" json:"image_paths,omitempty"`
}

// PortfolioItem is a single showcased entry inside a portfolio request.
type PortfolioItem struct {
	Title       string `bson:"title" json:"title"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
	Link        string `bson:"link,omitempty" json:"link,omitempty"`
	Image       string `bson:"image,omitempty" json:"image,omitempty"`
}
