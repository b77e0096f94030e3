package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"

	apierrors "github.com/Mutombe/silver-carbon/internal/errors"
	"github.com/Mutombe/silver-carbon/internal/models"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// rest — общие помощники REST-вызовов поверх *http.Client.
// Ответ 2xx декодируется в out, остальные превращаются в *apierrors.Error.
type rest struct {
	client *http.Client
	base   string
}

func newRest(client *http.Client, baseURL string) *rest {
	return &rest{client: client, base: strings.TrimRight(baseURL, "/")}
}

func (r *rest) url(path string, q url.Values) string {
	u := r.base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	return u
}

// doJSON — in == nil — запрос без тела; out == nil — тело ответа отбрасывается.
func (r *rest) doJSON(ctx context.Context, method, path string, q url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return apierrors.New(apierrors.KindInternal, 0, nil, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.url(path, q), body)
	if err != nil {
		return apierrors.New(apierrors.KindInternal, 0, nil, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return r.do(req, out)
}

// doMultipart отправляет форму из буфера: тело можно переотправить после обновления токенов.
func (r *rest) doMultipart(ctx context.Context, method, path string, f *form, out any) error {
	if err := f.close(); err != nil {
		return apierrors.New(apierrors.KindInternal, 0, nil, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.url(path, nil), bytes.NewReader(f.buf.Bytes()))
	if err != nil {
		return apierrors.New(apierrors.KindInternal, 0, nil, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", f.w.FormDataContentType())

	return r.do(req, out)
}

func (r *rest) do(req *http.Request, out any) error {
	resp, err := r.client.Do(req)
	if err != nil {
		return apierrors.FromTransport(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apierrors.FromResponse(resp)
	}
	defer resp.Body.Close()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apierrors.New(apierrors.KindInternal, resp.StatusCode, nil, fmt.Errorf("decode %s %s: %w", req.Method, req.URL.Path, err))
	}

	return nil
}

// form — multipart/form-data в памяти.
type form struct {
	buf bytes.Buffer
	w   *multipart.Writer
	err error
}

func newForm() *form {
	f := &form{}
	f.w = multipart.NewWriter(&f.buf)
	return f
}

// field пишет значение; пустые строки пропускаются, если !keepEmpty.
func (f *form) field(name, value string, keepEmpty bool) {
	if f.err != nil || (value == "" && !keepEmpty) {
		return
	}
	f.err = f.w.WriteField(name, value)
}

func (f *form) file(name string, file *models.File) {
	if f.err != nil || file == nil {
		return
	}

	ct := file.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, name, file.Name))
	h.Set("Content-Type", ct)

	part, err := f.w.CreatePart(h)
	if err != nil {
		f.err = err
		return
	}
	_, f.err = part.Write(file.Content)
}

func (f *form) close() error {
	if f.err != nil {
		return f.err
	}

	return f.w.Close()
}
