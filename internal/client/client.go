// Package client talks to a remote checkmate server over its JSON API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dgallion1/checkmate/internal/importer"
	"github.com/dgallion1/checkmate/internal/section"
)

// Client communicates with the checkmate HTTP API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// StatusError is a non-success response from the server.
type StatusError struct {
	Op     string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Body)
}

// Tree is the response of the section tree endpoint.
type Tree struct {
	Tree         []*section.DisplaySection `json:"tree"`
	Selected     []int64                   `json:"selected"`
	OpenSections []int64                   `json:"openSections"`
}

// ImportAccepted is the response to a queued import.
type ImportAccepted struct {
	JobID   string `json:"job_id"`
	Status  string `json:"status"`
	PollURL string `json:"poll_url"`
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// do sends req and decodes a JSON response into out when the status is one
// of ok.
func (c *Client) do(req *http.Request, op string, out any, ok ...int) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	for _, code := range ok {
		if resp.StatusCode == code {
			if out == nil {
				return nil
			}
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return fmt.Errorf("decode %s: %w", op, err)
			}
			return nil
		}
	}
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return &StatusError{Op: op, Status: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
}

// Health checks that the server is up.
func (c *Client) Health(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return err
	}
	return c.do(req, "health", nil, http.StatusOK)
}

// SectionTree fetches a project's section forest. selected is sent as the
// sectionIds parameter when not empty.
func (c *Client) SectionTree(ctx context.Context, projectID int64, selected []int64) (*Tree, error) {
	path := "/api/v1/projects/" + strconv.FormatInt(projectID, 10) + "/sections/tree"
	if len(selected) > 0 {
		path += "?" + url.Values{section.QueryParam: {section.EncodeSectionIDs(selected)}}.Encode()
	}
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	var tree Tree
	if err := c.do(req, "get section tree", &tree, http.StatusOK); err != nil {
		return nil, err
	}
	return &tree, nil
}

// Sections lists a project's sections with their hierarchy paths.
func (c *Client) Sections(ctx context.Context, projectID int64) ([]section.WithHierarchy, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/v1/projects/"+strconv.FormatInt(projectID, 10)+"/sections", nil)
	if err != nil {
		return nil, err
	}
	var out []section.WithHierarchy
	if err := c.do(req, "list sections", &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

// Import uploads a document to be imported into projectID.
func (c *Client) Import(ctx context.Context, projectID int64, filename string, data []byte) (*ImportAccepted, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := fw.Write(data); err != nil {
		return nil, fmt.Errorf("write form file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close form: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/v1/projects/"+strconv.FormatInt(projectID, 10)+"/import", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out ImportAccepted
	if err := c.do(req, "import "+filename, &out, http.StatusAccepted); err != nil {
		return nil, err
	}
	return &out, nil
}

// ImportStatus returns the state of an import job, or nil if the server no
// longer knows it.
func (c *Client) ImportStatus(ctx context.Context, jobID string) (*importer.JobSnapshot, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/v1/import/"+url.PathEscape(jobID)+"/status", nil)
	if err != nil {
		return nil, err
	}
	var snap importer.JobSnapshot
	if err := c.do(req, "import status", &snap, http.StatusOK); err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Status == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &snap, nil
}

// WaitImport polls a job until it reaches a final state or ctx is done.
func (c *Client) WaitImport(ctx context.Context, jobID string, interval time.Duration) (*importer.JobSnapshot, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		snap, err := c.ImportStatus(ctx, jobID)
		if err != nil {
			return nil, err
		}
		if snap == nil {
			return nil, fmt.Errorf("import job %s not found", jobID)
		}
		if snap.Status.Done() {
			return snap, nil
		}
		select {
		case <-ctx.Done():
			return snap, ctx.Err()
		case <-ticker.C:
		}
	}
}
