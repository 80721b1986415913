package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"moodmelt/llm"
	"moodmelt/models"
	"moodmelt/utils"
)

// Fixed texts returned in place of a generated summary.
const (
	InsufficientDataMessage   = "Not enough data to build a summary."
	UnexpectedResponseMessage = "Failed to build summary: unexpected API response."
)

// SummaryErrorKind tells apart the ways a summary request can fail.
type SummaryErrorKind int

const (
	SummaryTransport SummaryErrorKind = iota + 1
	SummaryStatus
	SummaryUnexpected
)

func (k SummaryErrorKind) String() string {
	switch k {
	case SummaryTransport:
		return "transport"
	case SummaryStatus:
		return "status"
	case SummaryUnexpected:
		return "unexpected response"
	default:
		return "unknown"
	}
}

// SummaryError wraps a failed summary request. Message gives the text shown
// to the user instead of a summary.
type SummaryError struct {
	Kind SummaryErrorKind
	Err  error
}

func (e *SummaryError) Error() string {
	return fmt.Sprintf("summary: %s: %v", e.Kind, e.Err)
}

func (e *SummaryError) Unwrap() error { return e.Err }

// Message returns displayable text describing the failure.
func (e *SummaryError) Message() string {
	switch e.Kind {
	case SummaryUnexpected:
		return UnexpectedResponseMessage
	case SummaryStatus:
		return fmt.Sprintf("Summary API returned an error: %v", e.Err)
	default:
		return fmt.Sprintf("Error contacting the summary API: %v", e.Err)
	}
}

// TextGenerator is the external text-generation endpoint.
type TextGenerator interface {
	GenerateContent(ctx context.Context, apiKey, prompt string) (string, error)
}

// SummaryResult is delivered by Request for the latest request only.
type SummaryResult struct {
	Ticket uint64
	Text   string
	Err    *SummaryError
}

// Summarizer turns a filtered dataset into a campaign strategy summary.
type Summarizer struct {
	client TextGenerator
	logger *utils.Logger
	pool   *utils.WorkerPool
	seq    utils.Sequence
}

// NewSummarizer creates a Summarizer. pool runs asynchronous requests; nil
// means a single worker without rate limiting.
func NewSummarizer(client TextGenerator, logger *utils.Logger, pool *utils.WorkerPool) *Summarizer {
	if pool == nil {
		pool = utils.NewWorkerPool(1, 0)
	}
	return &Summarizer{client: client, logger: logger, pool: pool}
}

// BuildPrompt embeds the insight scalars into the summary request template.
func BuildPrompt(in models.CampaignInsights) string {
	var b strings.Builder
	b.WriteString("Based on the following media intelligence data and insights, provide a concise ")
	b.WriteString("campaign strategy summary (key actions and recommendations).\n")
	fmt.Fprintf(&b, "- Dominant sentiment: %s.\n", in.DominantSentiment)
	fmt.Fprintf(&b, "- Top engagement platform: %s with %d engagements.\n", in.TopPlatform, in.TopPlatformEngagements)
	fmt.Fprintf(&b, "- Overall engagement trend: %s from %s to %s.\n", in.Trend, in.StartDate, in.EndDate)
	fmt.Fprintf(&b, "- Most frequent media type: %s.\n", in.DominantMediaType)
	fmt.Fprintf(&b, "- Top location for engagement: %s with %d engagements.\n", in.TopLocation, in.TopLocationEngagements)
	b.WriteString("Suggest 3-5 actionable recommendations to optimise the media campaign. ")
	b.WriteString("Focus on concrete steps grounded in these data points.\n")
	b.WriteString("Format the answer as bullet points.\n")
	return b.String()
}

// Generate requests a summary for ds. An empty dataset yields
// InsufficientDataMessage without contacting the endpoint. Failures come
// back as *SummaryError.
func (s *Summarizer) Generate(ctx context.Context, apiKey string, ds *models.Dataset) (string, error) {
	if ds.Empty() {
		return InsufficientDataMessage, nil
	}

	prompt := BuildPrompt(Insights(ds))
	s.logger.Debug("[summary] Prompt:\n%s", prompt)

	text, err := s.client.GenerateContent(ctx, apiKey, prompt)
	if err != nil {
		return "", classifySummaryError(err)
	}
	s.logger.Info("[summary] Received %d characters of summary text", len(text))
	return text, nil
}

func classifySummaryError(err error) *SummaryError {
	var status *llm.StatusError
	switch {
	case errors.Is(err, llm.ErrUnexpectedResponse):
		return &SummaryError{Kind: SummaryUnexpected, Err: err}
	case errors.As(err, &status):
		return &SummaryError{Kind: SummaryStatus, Err: err}
	default:
		return &SummaryError{Kind: SummaryTransport, Err: err}
	}
}

// Summarize is Generate with every failure turned into displayable text.
func (s *Summarizer) Summarize(ctx context.Context, apiKey string, ds *models.Dataset) string {
	text, err := s.Generate(ctx, apiKey, ds)
	if err == nil {
		return text
	}
	s.logger.Error("[summary] %v", err)
	var se *SummaryError
	if errors.As(err, &se) {
		return se.Message()
	}
	return fmt.Sprintf("Summary failed: %v", err)
}

// Request starts a summary on the worker pool and returns its ticket and a
// channel that yields at most one result. It never blocks the caller, even
// while every worker is busy. Issuing a newer request supersedes this one:
// its in-flight call is left to finish, but the result is dropped and the
// channel closes empty. A request issued just as a result is being delivered
// can race with it, so consumers that keep several requests open should
// check Current(res.Ticket) before using a result.
func (s *Summarizer) Request(ctx context.Context, apiKey string, ds *models.Dataset) (uint64, <-chan SummaryResult) {
	ticket := s.seq.Next()
	results := make(chan SummaryResult, 1)

	s.pool.Go(func() {
		defer close(results)

		if !s.seq.IsLatest(ticket) {
			s.logger.Debug("[summary] Request %d superseded before start", ticket)
			return
		}

		res := SummaryResult{Ticket: ticket}
		text, err := s.Generate(ctx, apiKey, ds)
		if err != nil {
			var se *SummaryError
			if !errors.As(err, &se) {
				se = classifySummaryError(err)
			}
			res.Err = se
			res.Text = se.Message()
		} else {
			res.Text = text
		}

		if !s.seq.IsLatest(ticket) {
			s.logger.Debug("[summary] Discarding stale result of request %d (latest %d)", ticket, s.seq.Latest())
			return
		}
		results <- res
	})

	return ticket, results
}

// Current reports whether ticket belongs to the most recent request.
func (s *Summarizer) Current(ticket uint64) bool {
	return s.seq.IsLatest(ticket)
}

// Wait blocks until every dispatched request has finished.
func (s *Summarizer) Wait() {
	s.pool.Wait()
}
