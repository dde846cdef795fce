package services

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/unidoc/unipdf/v3/common/license"
	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"
)

func init() {

	// Load .env file from the current directory
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables.")
	}
	err := license.SetMeteredKey(os.Getenv("UNIDOC_LICENSE_KEY"))
	if err != nil {
		fmt.Printf("ERROR: Failed to set Unidoc license key: %v. PDF processing will fail.\n", err)
	}
}

// ExtractTextFromFile reads a file and returns its text content.
// It automatically handles different file types.
func ExtractTextFromFile(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".txt", ".md":
		content, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(content), nil
	case ".pdf":
		text, _, err := ExtractPDF(path)
		return text, err
	default:
		return "", fmt.Errorf("unsupported file type: %s", ext)
	}
}

// ExtractPDF uses UniPDF to get the full text and the document information
// dictionary from a PDF file. Text is extracted page by page; blank pages
// are skipped and pages are joined with paragraph breaks.
func ExtractPDF(path string) (string, map[string]interface{}, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", nil, err
	}
	defer f.Close()

	pdfReader, err := model.NewPdfReader(f)
	if err != nil {
		return "", nil, err
	}

	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return "", nil, err
	}

	var sb strings.Builder
	for i := 1; i <= numPages; i++ {
		page, err := pdfReader.GetPage(i)
		if err != nil {
			return "", nil, err
		}

		ex, err := extractor.New(page)
		if err != nil {
			return "", nil, err
		}

		text, err := ex.ExtractText()
		if err != nil {
			return "", nil, err
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n\n") // Add space between pages
	}

	metadata := extractPDFMetadata(pdfReader, numPages)
	return sb.String(), metadata, nil
}

// extractPDFMetadata pulls title/author/dates out of the PDF info
// dictionary. Missing fields become empty strings rather than errors.
func extractPDFMetadata(pdfReader *model.PdfReader, numPages int) map[string]interface{} {
	metadata := map[string]interface{}{
		"title":             "",
		"author":            "",
		"subject":           "",
		"creator":           "",
		"producer":          "",
		"creation_date":     "",
		"modification_date": "",
		"page_count":        numPages,
	}

	info, err := pdfReader.GetPdfInfo()
	if err != nil || info == nil {
		return metadata
	}

	if info.Title != nil {
		metadata["title"] = info.Title.Decoded()
	}
	if info.Author != nil {
		metadata["author"] = info.Author.Decoded()
	}
	if info.Subject != nil {
		metadata["subject"] = info.Subject.Decoded()
	}
	if info.Creator != nil {
		metadata["creator"] = info.Creator.Decoded()
	}
	if info.Producer != nil {
		metadata["producer"] = info.Producer.Decoded()
	}
	if info.CreationDate != nil {
		metadata["creation_date"] = info.CreationDate.ToGoTime().Format(time.RFC3339)
	}
	if info.ModifiedDate != nil {
		metadata["modification_date"] = info.ModifiedDate.ToGoTime().Format(time.RFC3339)
	}
	return metadata
}
