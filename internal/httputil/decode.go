package httputil

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/devextech/devex-api/internal/apperr"
)

const maxBodyBytes = 1 << 20

// DecodeJSON reads a JSON body into dst.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("Request body is required", nil).WithCode(CodeInvalidRequestBody)
		}
		return apperr.Validation("Invalid request body", nil).WithCode(CodeInvalidRequestBody)
	}
	return nil
}

// FlexString decodes from either a JSON string or a JSON number, keeping the
// number's literal text.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string {
	return string(f)
}
