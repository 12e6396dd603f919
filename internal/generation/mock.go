package generation

import (
	"context"
	"fmt"

	"github.com/jobreadyai/backend/internal/models"
)

// MockClient returns a deterministic HTML document without any network
// dependency. Used whenever no generation API key is configured.
type MockClient struct{}

// Generate renders a minimal but complete document from the request fields.
func (m *MockClient) Generate(_ context.Context, docType models.DocumentType, req *models.GenerationRequest) (string, error) {
	name := req.FullName
	if name == "" {
		name = "Your Name"
	}

	heading := "Resume"
	switch docType {
	case models.TypeCoverLetter:
		heading = "Cover Letter"
	case models.TypePortfolio:
		heading = "Portfolio"
	case models.TypeReport:
		heading = "Report"
	case models.TypeArticle:
		heading = "Article"
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><title>%s - %s</title></head>
<body style="font-family: Arial, sans-serif; max-width: 800px; margin: 0 auto; padding: 24px;">
<h1 style="margin-bottom: 4px;">%s</h1>
<p style="color: #555;">%s | %s | %s</p>
<h2>%s</h2>
<p>%s</p>
<h3>Experience</h3>
<p>%s</p>
<h3>Education</h3>
<p>%s</p>
<h3>Skills</h3>
<p>%s</p>
</body>
</html>`, name, heading, name, req.Email, req.Phone, req.Location,
		heading, req.Summary, req.Experience, req.Education, req.Skills), nil
}
