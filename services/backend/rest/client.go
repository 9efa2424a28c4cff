package restbackend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/trezcool/masomo-feedback/core"
	"github.com/trezcool/masomo-feedback/core/evaluation"
)

type Client struct {
	baseURL    string
	token      string
	http       *rest.Client
	validate   *validator.Validate
	translator ut.Translator
}

var (
	_ evaluation.Directory = (*Client)(nil)
	_ evaluation.Backend   = (*Client)(nil)
)

// NewClient returns a client for the evaluation REST backend.
// The validator must have the core and evaluation validators registered.
func NewClient(conf *core.Config, validate *validator.Validate, translator ut.Translator) *Client {
	return &Client{
		baseURL:    conf.Backend.BaseURL,
		token:      conf.Backend.Token,
		http:       &rest.Client{HTTPClient: &http.Client{}},
		validate:   validate,
		translator: translator,
	}
}

func (c *Client) request(method rest.Method, path string, body interface{}) (rest.Request, error) {
	req := rest.Request{
		Method:  method,
		BaseURL: c.baseURL + path,
		Headers: map[string]string{"Accept": "application/json"},
	}
	if c.token != "" {
		req.Headers["Authorization"] = "Bearer " + c.token
	}
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return rest.Request{}, errors.Wrap(err, "encoding request body")
		}
		req.Body = data
		req.Headers["Content-Type"] = "application/json"
	}
	return req, nil
}

// send makes one attempt; non-2xx responses become *evaluation.BackendError.
func (c *Client) send(ctx context.Context, req rest.Request, out interface{}) error {
	httpReq, err := rest.BuildRequestObject(req)
	if err != nil {
		return errors.Wrap(err, fmt.Sprintf("building %s %s", req.Method, req.BaseURL))
	}
	httpRes, err := c.http.MakeRequest(httpReq.WithContext(ctx))
	if err != nil {
		return errors.Wrap(err, fmt.Sprintf("%s %s", req.Method, req.BaseURL))
	}
	res, err := rest.BuildResponse(httpRes)
	if err != nil {
		return errors.Wrap(err, fmt.Sprintf("reading %s %s response", req.Method, req.BaseURL))
	}
	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return &evaluation.BackendError{Status: res.StatusCode, Message: errorMessage(res.Body)}
	}
	if out == nil || res.Body == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(res.Body), out); err != nil {
		return errors.Wrap(err, fmt.Sprintf("decoding %s %s response", req.Method, req.BaseURL))
	}
	return nil
}

// errorMessage extracts the message of an error body: {"message"|"detail"|"error": "..."}.
func errorMessage(body string) string {
	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return ""
	}
	for _, key := range []string{"message", "detail", "error"} {
		if msg, ok := payload[key].(string); ok && core.CleanString(msg) != "" {
			return core.CleanString(msg)
		}
	}
	return ""
}

func (c *Client) validationErr(err error, what string) error {
	return errors.Wrap(core.TranslateValidationErrors(errors.Cause(err), c.translator), "invalid "+what)
}

func (c *Client) ListDepartments(ctx context.Context) ([]evaluation.Department, error) {
	req, err := c.request(rest.Get, "/departments", nil)
	if err != nil {
		return nil, err
	}
	var deps []evaluation.Department
	if err = c.send(ctx, req, &deps); err != nil {
		return nil, errors.Wrap(err, "listing departments")
	}
	if err = evaluation.ValidateDepartments(c.validate, deps); err != nil {
		return nil, c.validationErr(err, "departments")
	}
	return deps, nil
}

type startRequest struct {
	DepartmentID int    `json:"department_id"`
	Key          string `json:"key"`
}

type startResponse struct {
	SessionID evaluation.SessionID `json:"session_id"`
}

func (c *Client) StartEvaluation(ctx context.Context, departmentID int, key string) (evaluation.SessionID, error) {
	req, err := c.request(rest.Post, "/evaluations/start", startRequest{DepartmentID: departmentID, Key: key})
	if err != nil {
		return "", err
	}
	var res startResponse
	if err = c.send(ctx, req, &res); err != nil {
		return "", errors.Wrap(err, "starting evaluation")
	}
	return res.SessionID, nil
}

func (c *Client) GetQuestions(ctx context.Context, departmentID int) ([]evaluation.Question, error) {
	req, err := c.request(rest.Get, "/departments/"+strconv.Itoa(departmentID)+"/questions", nil)
	if err != nil {
		return nil, err
	}
	var qs []evaluation.Question
	if err = c.send(ctx, req, &qs); err != nil {
		return nil, errors.Wrap(err, "getting questions")
	}
	if err = evaluation.ValidateQuestions(c.validate, qs); err != nil {
		return nil, c.validationErr(err, "questions")
	}
	evaluation.SortQuestions(qs)
	return qs, nil
}

type submitRequest struct {
	Responses []evaluation.Response `json:"responses"`
}

func (c *Client) SubmitEvaluation(ctx context.Context, sessionID evaluation.SessionID, responses []evaluation.Response) error {
	path := "/evaluations/" + url.PathEscape(sessionID.String()) + "/submit"
	req, err := c.request(rest.Post, path, submitRequest{Responses: responses})
	if err != nil {
		return err
	}
	if err = c.send(ctx, req, nil); err != nil {
		return errors.Wrap(err, "submitting evaluation")
	}
	return nil
}
