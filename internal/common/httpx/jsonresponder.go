package httpx

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/agentbridge/agentbridge/internal/common/logtrace"
)

// SendJsonRsp sends a JSON response with the given status code and message.
// Handles both pre-marshaled JSON ([]byte or string) and structs.
func SendJsonRsp(ctx context.Context, w http.ResponseWriter, statusCode int, msg any) {
	var msgJson []byte
	if jsonStr, ok := msg.(string); ok {
		b := []byte(jsonStr)
		if json.Valid(b) {
			msgJson = b
		}
	} else if jsonBytes, ok := msg.([]byte); ok {
		if json.Valid(jsonBytes) {
			msgJson = jsonBytes
		}
	} else {
		var err error
		msgJson, err = json.Marshal(msg)
		if err != nil {
			log.Ctx(ctx).Err(err).Msg("unable to marshal json")
			ErrApplicationError("Id: " + logtrace.RequestIDFromContext(ctx)).Send(w)
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(msgJson)
}
