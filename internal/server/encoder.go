package server

import (
	"net/http"
	"strconv"

	"CourseLane/internal/biz"

	"github.com/go-kratos/kratos/v2/encoding"
	"github.com/go-kratos/kratos/v2/encoding/json"
	"github.com/go-kratos/kratos/v2/errors"
)

// Response envelope status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope is the body of every HTTP response.
type Envelope struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Reason  string            `json:"reason,omitempty"`
	Data    interface{}       `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func codec() encoding.Codec {
	return encoding.GetCodec(json.Name)
}

// EncodeResponse wraps a reply in a success envelope.
// The status code was already chosen by the route handler.
func EncodeResponse(w http.ResponseWriter, _ *http.Request, v interface{}) error {
	body, err := codec().Marshal(&Envelope{
		Status:  StatusSuccess,
		Message: "OK",
		Data:    v,
	})
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(body)
	return err
}

// EncodeError renders err as an error envelope with the HTTP status of its Kratos code.
// Internal errors never leak their cause.
func EncodeError(w http.ResponseWriter, _ *http.Request, err error) {
	se := errors.FromError(err)

	code := int(se.Code)
	if code < 400 || code > 599 {
		code = http.StatusInternalServerError
	}

	env := &Envelope{
		Status:  StatusError,
		Message: se.Message,
		Reason:  se.Reason,
	}
	if code >= http.StatusInternalServerError {
		env.Message = "internal server error"
		env.Reason = biz.ReasonInternal
	}
	if se.Reason == biz.ReasonValidationFailed && len(se.Metadata) > 0 {
		env.Errors = se.Metadata
	}
	if code == http.StatusTooManyRequests {
		if secs := int64(biz.RetryAfterFromError(se).Seconds()); secs > 0 {
			w.Header().Set("Retry-After", strconv.FormatInt(secs, 10))
		}
	}

	body, mErr := codec().Marshal(env)
	if mErr != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(body)
}
