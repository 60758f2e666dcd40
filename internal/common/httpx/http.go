// Package httpx provides HTTP request/response handling utilities.
// It includes support for JSON responses, error handling, request parsing,
// and streamed (chunk-flushed) responses.
package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/agentbridge/agentbridge/internal/common/apperrors"
)

// GetRequestData parses a JSON request body into the provided data structure.
// Only supports POST and PUT methods. Returns an error if the request body is
// empty or cannot be parsed.
func GetRequestData(r *http.Request, data any) error {
	if r.Method != http.MethodPost && r.Method != http.MethodPut {
		return ErrReqMethodNotSupported()
	}
	if r.Body == nil {
		log.Ctx(r.Context()).Error().Msg("empty request body")
		return ErrUnableToParseReqData()
	}
	if err := json.NewDecoder(r.Body).Decode(data); err != nil {
		return ErrUnableToParseReqData()
	}
	return nil
}

// WriteChunksFunc writes the streamed part of a response. The writer is
// flushed after the function returns; implementations that interleave writes
// should flush through the provided flusher themselves.
type WriteChunksFunc func(w http.ResponseWriter, flush func()) error

// Response represents an HTTP response with configurable status code,
// content type, and optional streamed body.
type Response struct {
	StatusCode  int
	Response    any
	ContentType string
	Stream      WriteChunksFunc
}

// RequestHandler defines a function type for handling HTTP requests.
type RequestHandler func(r *http.Request) (*Response, error)

// WrapHttpRsp wraps a RequestHandler to provide standardized HTTP response
// handling, including classified error responses and streamed bodies.
func WrapHttpRsp(handler RequestHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rsp, err := handler(r)
		if err != nil {
			sendHandlerError(w, err)
			return
		}
		if rsp == nil {
			ErrApplicationError().Send(w)
			return
		}

		if rsp.Stream != nil {
			w.Header().Set("Content-Type", rsp.ContentType)
			w.WriteHeader(rsp.StatusCode)
			flush := func() {}
			if f, ok := w.(http.Flusher); ok {
				flush = f.Flush
			}
			if err := rsp.Stream(w, flush); err != nil {
				log.Ctx(r.Context()).Error().Err(err).Msg("error writing stream")
			}
			flush()
			return
		}

		if rsp.ContentType == "" {
			rsp.ContentType = "application/json"
		}
		switch rsp.ContentType {
		case "application/json":
			SendJsonRsp(r.Context(), w, rsp.StatusCode, rsp.Response)
		case "text/plain":
			w.Header().Set("Content-Type", "text/plain")
			w.WriteHeader(rsp.StatusCode)
			w.Write([]byte(rsp.Response.(string)))
		default:
			ErrApplicationError("unsupported response type").Send(w)
		}
	}
}

func sendHandlerError(w http.ResponseWriter, err error) {
	if httperror, ok := err.(*Error); ok {
		httperror.Send(w)
		return
	}
	if appErr, ok := err.(apperrors.Error); ok {
		SendError(w, appErr)
		return
	}
	ErrApplicationError(err.Error()).Send(w)
}
