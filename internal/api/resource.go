package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"trustdesk-cli/internal/listing"
	"trustdesk-cli/internal/model"
)

// ResourceSpec describes how one entity is exposed by the server.
type ResourceSpec struct {
	// Path is the collection path, e.g. "/users".
	Path string
	// CreateSuffix is appended to Path for create calls ("/store" on some
	// endpoints).
	CreateSuffix string
	// UpdateMethod is PUT unless set.
	UpdateMethod string
	ReadOnly     bool
}

func (s ResourceSpec) updateMethod() string {
	if s.UpdateMethod == "" {
		return http.MethodPut
	}
	return s.UpdateMethod
}

func (s ResourceSpec) itemPath(id int64) string {
	return strings.TrimRight(s.Path, "/") + "/" + strconv.FormatInt(id, 10)
}

// Resource is a typed view of one collection endpoint. It satisfies
// listing.Source so a listing.Controller can drive it directly.
type Resource[T listing.Record] struct {
	c    *Client
	spec ResourceSpec
}

func NewResource[T listing.Record](c *Client, spec ResourceSpec) *Resource[T] {
	return &Resource[T]{c: c, spec: spec}
}

func (r *Resource[T]) Spec() ResourceSpec { return r.spec }

type listEnvelope[T any] struct {
	Data []T               `json:"data"`
	Meta *listing.PageInfo `json:"meta"`

	// Some endpoints return the paginator fields at the root.
	CurrentPage *int `json:"current_page"`
	LastPage    *int `json:"last_page"`
	PerPage     *int `json:"per_page"`
	Total       *int `json:"total"`
}

func (e listEnvelope[T]) pageInfo() (listing.PageInfo, bool) {
	if e.Meta != nil {
		return *e.Meta, true
	}
	if e.CurrentPage == nil && e.LastPage == nil && e.PerPage == nil && e.Total == nil {
		return listing.PageInfo{}, false
	}
	var info listing.PageInfo
	if e.CurrentPage != nil {
		info.CurrentPage = *e.CurrentPage
	}
	if e.LastPage != nil {
		info.LastPage = *e.LastPage
	}
	if e.PerPage != nil {
		info.PerPage = *e.PerPage
	}
	if e.Total != nil {
		info.Total = *e.Total
	}
	return info, true
}

type itemEnvelope[T any] struct {
	Data *T `json:"data"`
}

// List fetches one page. hasInfo is false when the response carried no
// pagination metadata at all.
func (r *Resource[T]) List(ctx context.Context, page int) (listing.Page[T], bool, error) {
	if page < 1 {
		page = 1
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	if r.c.cfg.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(r.c.cfg.PerPage))
	}
	var env listEnvelope[T]
	if err := r.c.do(ctx, request{method: http.MethodGet, path: r.spec.Path, query: q}, &env); err != nil {
		return listing.Page[T]{}, false, err
	}
	info, ok := env.pageInfo()
	items := env.Data
	if items == nil {
		items = []T{}
	}
	return listing.Page[T]{Items: items, Info: info}, ok, nil
}

func (r *Resource[T]) Get(ctx context.Context, id int64) (T, error) {
	var zero T
	raw, err := r.call(ctx, request{method: http.MethodGet, path: r.spec.itemPath(id)})
	if err != nil {
		return zero, err
	}
	return decodeItem[T](raw)
}

func (r *Resource[T]) Create(ctx context.Context, input any) (T, error) {
	var zero T
	if r.spec.ReadOnly {
		return zero, ErrUnsupported
	}
	req, err := buildBody(input)
	if err != nil {
		return zero, err
	}
	req.method = http.MethodPost
	req.path = strings.TrimRight(r.spec.Path, "/") + r.spec.CreateSuffix
	raw, err := r.call(ctx, req)
	if err != nil {
		return zero, err
	}
	return decodeItem[T](raw)
}

func (r *Resource[T]) Update(ctx context.Context, id int64, input any) (T, error) {
	var zero T
	if r.spec.ReadOnly {
		return zero, ErrUnsupported
	}
	req, err := buildBody(input)
	if err != nil {
		return zero, err
	}
	req.method = r.spec.updateMethod()
	req.path = r.spec.itemPath(id)
	raw, err := r.call(ctx, req)
	if err != nil {
		return zero, err
	}
	return decodeItem[T](raw)
}

// Delete removes a record. Activity logs are read-only but may still be
// deleted by administrators.
func (r *Resource[T]) Delete(ctx context.Context, id int64) error {
	return r.c.do(ctx, request{method: http.MethodDelete, path: r.spec.itemPath(id)}, nil)
}

func (r *Resource[T]) call(ctx context.Context, req request) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := r.c.do(ctx, req, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// decodeItem accepts both {"data": {...}} and a bare object. A body that
// does not carry a record id is rejected.
func decodeItem[T listing.Record](raw json.RawMessage) (T, error) {
	var zero T
	if len(bytes.TrimSpace(raw)) == 0 {
		return zero, &Error{Kind: KindServer, Message: msgDecode}
	}
	var out T
	var env itemEnvelope[T]
	if err := json.Unmarshal(raw, &env); err == nil && env.Data != nil {
		out = *env.Data
	} else if err := json.Unmarshal(raw, &out); err != nil {
		return zero, &Error{Kind: KindServer, Message: msgDecode, Err: err}
	}
	if out.RecordID() == 0 {
		return zero, &Error{Kind: KindServer, Message: msgDecode}
	}
	return out, nil
}

// buildBody validates input and encodes it as JSON, or as multipart form
// data when it carries files.
func buildBody(input any) (request, error) {
	if input == nil {
		return request{}, Classify(&model.InputError{})
	}
	if err := model.Validate(input); err != nil {
		return request{}, Classify(err)
	}
	if wa, ok := input.(model.WithAttachments); ok {
		if files := wa.Files(); len(files) > 0 {
			body, contentType, err := multipartBody(input, files)
			if err != nil {
				return request{}, Classify(err)
			}
			return request{body: body, contentType: contentType}, nil
		}
	}
	body, err := jsonBody(input)
	if err != nil {
		return request{}, Classify(err)
	}
	return request{body: body, contentType: "application/json"}, nil
}

func multipartBody(input any, files []model.Attachment) (io.Reader, string, error) {
	fields, err := formFields(input)
	if err != nil {
		return nil, "", err
	}
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, kv := range fields {
		if err := mw.WriteField(kv[0], kv[1]); err != nil {
			return nil, "", err
		}
	}
	for _, f := range files {
		if err := attach(mw, f); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

func attach(mw *multipart.Writer, f model.Attachment) error {
	src, err := os.Open(f.Path)
	if err != nil {
		return fmt.Errorf("open attachment: %w", err)
	}
	defer src.Close()
	dst, err := mw.CreateFormFile(f.Field, filepath.Base(f.Path))
	if err != nil {
		return err
	}
	_, err = io.Copy(dst, src)
	return err
}

// formFields flattens the JSON form of input into sorted key/value pairs.
// Booleans are sent as 1/0 and arrays as repeated key[] fields.
func formFields(input any) ([][2]string, error) {
	b, err := json.Marshal(input)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out [][2]string
	for _, k := range keys {
		switch v := m[k].(type) {
		case nil:
		case []any:
			for _, item := range v {
				out = append(out, [2]string{k + "[]", formValue(item)})
			}
		default:
			out = append(out, [2]string{k, formValue(v)})
		}
	}
	return out, nil
}

func formValue(v any) string {
	switch t := v.(type) {
	case bool:
		if t {
			return "1"
		}
		return "0"
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}
