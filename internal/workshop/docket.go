package workshop

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

const docketTemplate = "docket.html"

// ErrDocketUnavailable is returned when docket rendering is not configured.
var ErrDocketUnavailable = errors.New("docket rendering not configured")

// DocketView is the data handed to the docket template.
type DocketView struct {
	Job        Job
	Evaluation StatusResult
	History    []StatusEvent
	Title      string
}

// Docket renders the quote/repair worksheet of a job as HTML.
func (s *Service) Docket(ctx context.Context, id uuid.UUID) (string, error) {
	if s.templates == nil {
		return "", ErrDocketUnavailable
	}
	job, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	title := "Repair Docket"
	if job.QuoteOrRepair == ModeQuote {
		title = "Quote Docket"
	}
	html, err := s.templates.RenderString(docketTemplate, DocketView{
		Job:        job.Job,
		Evaluation: job.Evaluation,
		History:    job.History,
		Title:      title,
	})
	if err != nil {
		return "", fmt.Errorf("render docket: %w", err)
	}
	return html, nil
}

// DocketPDF renders the docket and converts it to PDF.
func (s *Service) DocketPDF(ctx context.Context, id uuid.UUID) ([]byte, error) {
	if s.pdf == nil {
		return nil, ErrDocketUnavailable
	}
	html, err := s.Docket(ctx, id)
	if err != nil {
		return nil, err
	}
	pdf, err := s.pdf.RenderHTML(ctx, html)
	if err != nil {
		return nil, fmt.Errorf("convert docket: %w", err)
	}
	return pdf, nil
}
