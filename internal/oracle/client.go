package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/acadplan/timetable-api/internal/engine"
	appErrors "github.com/acadplan/timetable-api/pkg/errors"
)

// Client talks to the external recommendation service over HTTP. The service
// is untrusted advice: malformed entries in its response are dropped one by
// one instead of failing the batch, and transport failures surface as
// ErrOracleUnavailable so the caller can fall back to deterministic placement.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient builds an oracle client. The timeout bounds the whole request;
// callers typically also pass a context with their own deadline.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type recommendRequest struct {
	Constraints engine.Constraints `json:"constraints"`
	Level       int                `json:"level"`
}

type timeslot struct {
	Day   string `json:"day"`
	Start string `json:"start"`
	End   string `json:"end"`
}

type recommendation struct {
	CourseCode          string   `json:"course_code"`
	SectionLabel        string   `json:"section_label"`
	Timeslot            timeslot `json:"timeslot"`
	Room                string   `json:"room"`
	AllocatedStudentIDs []string `json:"allocated_student_ids"`
	Justification       string   `json:"justification"`
	Confidence          float64  `json:"confidence_score"`
}

type recommendResponse struct {
	Recommendations []recommendation `json:"recommendations"`
}

// Recommend posts the constraint payload and returns the proposals that
// survive shape validation, preserving the service's ordering.
func (c *Client) Recommend(ctx context.Context, constraints engine.Constraints, level int) ([]engine.Proposal, error) {
	body, err := json.Marshal(recommendRequest{Constraints: constraints, Level: level})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode oracle request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/recommendations", bytes.NewReader(body))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build oracle request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrOracleUnavailable.Code, appErrors.ErrOracleUnavailable.Status, "oracle request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, appErrors.Clone(appErrors.ErrOracleUnavailable, fmt.Sprintf("oracle returned status %d", resp.StatusCode))
	}

	var decoded recommendResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrOracleUnavailable.Code, appErrors.ErrOracleUnavailable.Status, "oracle returned a malformed response")
	}

	proposals := make([]engine.Proposal, 0, len(decoded.Recommendations))
	for i, rec := range decoded.Recommendations {
		proposal := engine.Proposal{
			CourseCode:          rec.CourseCode,
			SectionLabel:        rec.SectionLabel,
			Day:                 rec.Timeslot.Day,
			Start:               rec.Timeslot.Start,
			End:                 rec.Timeslot.End,
			Room:                rec.Room,
			AllocatedStudentIDs: rec.AllocatedStudentIDs,
			Justification:       rec.Justification,
			Confidence:          rec.Confidence,
		}
		if !proposal.Complete() {
			c.logger.Warn("dropping malformed oracle recommendation",
				zap.Int("index", i),
				zap.String("course", rec.CourseCode),
				zap.Int("level", level))
			continue
		}
		proposals = append(proposals, proposal)
	}
	return proposals, nil
}
