package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"onboard/internal/reconciliation"
	"onboard/internal/staging"
	dErrors "onboard/pkg/domain-errors"
)

// multipartMemory is how much of an upload is held in memory before the
// standard library spills parts to disk.
const multipartMemory = 8 << 20

var clientIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]{0,63}$`)

// documentFields maps multipart file fields to document kinds.
var documentFields = []string{
	reconciliation.KindForm,
	reconciliation.KindProfile,
	reconciliation.KindPassport,
}

// ValidateClientID checks a client identifier from a form field or URL.
func ValidateClientID(clientID string) error {
	if clientID == "" {
		return dErrors.New(dErrors.CodeValidation, "client_id is required")
	}
	if !clientIDPattern.MatchString(clientID) {
		return dErrors.New(dErrors.CodeValidation, "client_id must be 1-64 letters, digits, '.', '_' or '-'")
	}
	return nil
}

// evaluateUpload is a parsed POST /v1/evaluations body. Close releases the
// opened parts and any temporary files the multipart reader created.
type evaluateUpload struct {
	request reconciliation.EvaluateRequest
	files   []multipart.File
	form    *multipart.Form
}

func (u *evaluateUpload) Close() {
	for _, f := range u.files {
		_ = f.Close()
	}
	if u.form != nil {
		_ = u.form.RemoveAll()
	}
}

func parseEvaluateUpload(r *http.Request) (*evaluateUpload, error) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return nil, dErrors.New(dErrors.CodeBadRequest, "expected multipart/form-data")
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, dErrors.New(dErrors.CodeValidation, "upload exceeds size limit")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "malformed multipart body")
	}

	up := &evaluateUpload{form: r.MultipartForm}
	clientID := strings.TrimSpace(r.FormValue("client_id"))
	if clientID == "" {
		clientID = uuid.NewString()
	}
	if err := ValidateClientID(clientID); err != nil {
		up.Close()
		return nil, err
	}
	up.request.ClientID = clientID

	for _, kind := range documentFields {
		headers := r.MultipartForm.File[kind]
		if len(headers) == 0 {
			continue
		}
		if len(headers) > 1 {
			up.Close()
			return nil, dErrors.New(dErrors.CodeValidation, "only one "+kind+" document is allowed")
		}
		f, err := headers[0].Open()
		if err != nil {
			up.Close()
			return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "cannot read "+kind+" document")
		}
		up.files = append(up.files, f)
		up.request.Documents = append(up.request.Documents, staging.Document{
			Kind: kind,
			Name: headers[0].Filename,
			Body: f,
		})
	}
	return up, nil
}
