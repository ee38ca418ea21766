package docgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/emrgen/docgen/internal/model"
	"github.com/emrgen/docgen/internal/service"
)

// APIError is a non 2xx response of the server.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	if e.Details != nil {
		return fmt.Sprintf("%d %s: %v", e.Status, e.Code, e.Details)
	}
	return fmt.Sprintf("%d %s", e.Status, e.Code)
}

// Client calls the docgen HTTP API on behalf of one user.
type Client struct {
	baseURL string
	userID  string
	http    *http.Client
}

func NewClient(baseURL, userID string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		userID:  userID,
		http:    &http.Client{Timeout: time.Minute},
	}
}

type (
	CreateDocumentRequest = service.CreateDocumentRequest
	UpdateDocumentRequest = service.UpdateDocumentRequest
	UpdateProfileRequest  = service.UpdateProfileRequest
)

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	contentType := "application/json"
	switch b := body.(type) {
	case nil:
	case []byte:
		reader = bytes.NewReader(b)
		contentType = "application/octet-stream"
	default:
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-User-ID", c.userID)

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		apiErr := &APIError{Status: res.StatusCode}
		_ = json.NewDecoder(res.Body).Decode(apiErr)
		if apiErr.Code == "" {
			apiErr.Code = http.StatusText(res.StatusCode)
		}
		return apiErr
	}

	switch v := out.(type) {
	case nil:
		return nil
	case *[]byte:
		*v, err = io.ReadAll(res.Body)
		return err
	default:
		return json.NewDecoder(res.Body).Decode(out)
	}
}

func (c *Client) CreateDocument(ctx context.Context, req *CreateDocumentRequest) (*model.Document, error) {
	var doc model.Document
	if err := c.do(ctx, http.MethodPost, "/v1/documents", req, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Client) GetDocument(ctx context.Context, id string) (*model.Document, error) {
	var doc model.Document
	if err := c.do(ctx, http.MethodGet, "/v1/documents/"+url.PathEscape(id), nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Client) ListDocuments(ctx context.Context) ([]*model.Document, error) {
	var docs []*model.Document
	if err := c.do(ctx, http.MethodGet, "/v1/documents", nil, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (c *Client) UpdateDocument(ctx context.Context, id string, req *UpdateDocumentRequest) (*model.Document, error) {
	var doc model.Document
	if err := c.do(ctx, http.MethodPut, "/v1/documents/"+url.PathEscape(id), req, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Client) DeleteDocument(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/v1/documents/"+url.PathEscape(id), nil, nil)
}

func (c *Client) AddItem(ctx context.Context, id string) (*model.Document, error) {
	var doc model.Document
	if err := c.do(ctx, http.MethodPost, "/v1/documents/"+url.PathEscape(id)+"/items", nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Client) UpdateItem(ctx context.Context, id string, index int, field, value string) (*model.Document, error) {
	var doc model.Document
	body := map[string]string{"field": field, "value": value}
	path := "/v1/documents/" + url.PathEscape(id) + "/items/" + strconv.Itoa(index)
	if err := c.do(ctx, http.MethodPatch, path, body, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// DocumentPDF downloads the rendered PDF.
func (c *Client) DocumentPDF(ctx context.Context, id string) ([]byte, error) {
	var data []byte
	if err := c.do(ctx, http.MethodGet, "/v1/documents/"+url.PathEscape(id)+"/pdf", nil, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// StorePDF asks the server to store the PDF and returns its reference.
func (c *Client) StorePDF(ctx context.Context, id string) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/documents/"+url.PathEscape(id)+"/pdf?store=true", nil, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

func (c *Client) SendDocument(ctx context.Context, id, email, message string) (*model.Document, error) {
	var doc model.Document
	body := map[string]string{"email": email, "message": message}
	if err := c.do(ctx, http.MethodPost, "/v1/documents/"+url.PathEscape(id)+"/send", body, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Client) ListTemplates(ctx context.Context) ([]*model.Template, error) {
	var tmpls []*model.Template
	if err := c.do(ctx, http.MethodGet, "/v1/templates", nil, &tmpls); err != nil {
		return nil, err
	}
	return tmpls, nil
}

func (c *Client) GetTemplate(ctx context.Context, name string) (*model.Template, error) {
	var tmpl model.Template
	if err := c.do(ctx, http.MethodGet, "/v1/templates/"+url.PathEscape(name), nil, &tmpl); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

func (c *Client) PutTemplate(ctx context.Context, name, content string) (*model.Template, error) {
	var tmpl model.Template
	body := map[string]string{"content": content}
	if err := c.do(ctx, http.MethodPut, "/v1/templates/"+url.PathEscape(name), body, &tmpl); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

func (c *Client) DeleteTemplate(ctx context.Context, name string, force bool) error {
	path := "/v1/templates/" + url.PathEscape(name) + "?force=" + strconv.FormatBool(force)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) GetProfile(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := c.do(ctx, http.MethodGet, "/v1/profile", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) UpdateProfile(ctx context.Context, req *UpdateProfileRequest) (*model.User, error) {
	var user model.User
	if err := c.do(ctx, http.MethodPut, "/v1/profile", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UploadLogo sends the image; filename only needs the right extension.
func (c *Client) UploadLogo(ctx context.Context, filename string, data []byte) (*model.User, error) {
	var user model.User
	path := "/v1/profile/logo?filename=" + url.QueryEscape(filename)
	if err := c.do(ctx, http.MethodPut, path, data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
